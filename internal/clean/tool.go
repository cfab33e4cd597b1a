package clean

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"unicode/utf8"
)

// ToolRunner executes a special rule's command line and returns its
// combined output.
type ToolRunner interface {
	Run(command string) ([]byte, error)
}

// ShellRunner runs commands through the platform shell (cmd /C on Windows,
// sh -c elsewhere). It waits for the command without a timeout: a tool that
// never exits blocks its rule.
type ShellRunner struct{}

// Run implements ToolRunner.
func (ShellRunner) Run(command string) ([]byte, error) {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/C", command)
	} else {
		cmd = exec.Command("sh", "-c", command)
	}
	return cmd.CombinedOutput()
}

// maxToolOutput caps how much tool output is carried in a report message.
const maxToolOutput = 200

// toolFailure turns a run error into a report message. Exit codes are
// reported as such; anything else is a spawn failure.
func toolFailure(err error, output []byte) string {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return err.Error()
	}

	msg := fmt.Sprintf("Tool exit code: %d", exitErr.ExitCode())
	out := strings.TrimSpace(string(output))
	if out == "" {
		return msg
	}
	if len(out) > maxToolOutput {
		// Truncate at a valid UTF-8 boundary.
		out = out[:maxToolOutput]
		for len(out) > 0 && !utf8.ValidString(out) {
			out = out[:len(out)-1]
		}
		out += "..."
	}
	return msg + ": " + out
}
