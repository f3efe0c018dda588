package setup

import (
	"fmt"
	"os"
)

const replayHeader = "#!/usr/bin/env sh\n# Commands executed during network setup, in order.\n"

// ReplayLog appends every executed handshake command, verbatim and in
// order, to a runnable shell script. This is an audit/debug artifact,
// not required for correctness.
type ReplayLog struct {
	path string
}

func NewReplayLog(path string) *ReplayLog {
	return &ReplayLog{path: path}
}

func (r *ReplayLog) Path() string {
	return r.path
}

// Append writes [command] as the next line of the replay script,
// creating the script with a header on first use.
func (r *ReplayLog) Append(command string) error {
	_, statErr := os.Stat(r.path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o755)
	if err != nil {
		return fmt.Errorf("couldn't open replay log: %w", err)
	}
	defer f.Close()

	if fresh {
		if _, err := f.WriteString(replayHeader); err != nil {
			return err
		}
	}
	_, err = f.WriteString(command + "\n")
	return err
}
