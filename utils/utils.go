package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

var (
	ErrEmptyExecPath = errors.New("validator exec is not defined")
	ErrNotExists     = errors.New("validator exec not exists")
)

func CheckExecPath(exec string) error {
	if exec == "" {
		return ErrEmptyExecPath
	}
	_, err := os.Stat(exec)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotExists
		}
		return fmt.Errorf("failed to stat exec %q (%w)", exec, err)
	}
	return nil
}
