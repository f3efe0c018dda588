package utils

import (
	"bufio"
	"fmt"
	"io"
	"sync"
)

// Color is a terminal escape sequence used to colorize the output of
// a child process.
type Color string

const (
	Cyan        Color = "\033[0;36m"
	LightBlue   Color = "\033[1;34m"
	LightGray   Color = "\033[0;37m"
	LightGreen  Color = "\033[1;32m"
	LightPurple Color = "\033[1;35m"
	LightCyan   Color = "\033[1;36m"
	Purple      Color = "\033[0;35m"
	Yellow      Color = "\033[0;33m"
	Reset       Color = "\033[0;0m"
)

// Wrap [text] with this color's escape sequence and a trailing reset.
func (c Color) Wrap(text string) string {
	return string(c) + text + string(Reset)
}

var supportedColors = []Color{
	Cyan,
	LightBlue,
	LightGray,
	LightGreen,
	LightPurple,
	LightCyan,
	Purple,
	Yellow,
}

// ColorPicker allows to assign a color to different child processes
type ColorPicker interface {
	NextColor() Color
}

type colorPicker struct {
	lock       sync.Mutex
	usedColors []Color
}

func NewColorPicker() ColorPicker {
	return &colorPicker{
		usedColors: make([]Color, 0),
	}
}

// NextColor assigns a new color. If all supportedColors have been
// assigned, it starts over with the first color.
func (c *colorPicker) NextColor() Color {
	c.lock.Lock()
	defer c.lock.Unlock()

	if len(c.usedColors) == len(supportedColors) {
		c.usedColors = make([]Color, 0)
	}

	pick := supportedColors[len(c.usedColors)]
	c.usedColors = append(c.usedColors, pick)

	return pick
}

// ColorAndPrepend scans the given [reader] for text, colors it with
// [color] and prepends "[wrapText]" to every line before writing it
// to [writer].
func ColorAndPrepend(reader io.Reader, writer io.Writer, wrapText string, color Color) {
	scanner := bufio.NewScanner(reader)
	go func(scanner *bufio.Scanner) {
		// we should not need any go routine control here:
		// when the process exits, `Scan()` will hit an EOF and return false,
		// and therefore the routine terminates
		for scanner.Scan() {
			txt := color.Wrap(fmt.Sprintf("[%s] %s\n", wrapText, scanner.Text()))
			if _, err := writer.Write([]byte(txt)); err != nil {
				fmt.Println("failed to write wrapped text to writer")
			}
		}
	}(scanner)
}
