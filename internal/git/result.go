package git

import (
	"fmt"
	"strings"

	"github.com/thiagokokada/gitdeck/internal/process"
)

// Result is the outcome of one git invocation.
type Result struct {
	process.Result

	// Args is the full argument vector, starting with the git binary.
	Args []string
}

// Command returns the command line as it would be typed in a shell, without
// quoting.
func (r Result) Command() string {
	return strings.Join(r.Args, " ")
}

// Lines splits stdout into lines, dropping the trailing empty line.
func (r Result) Lines() []string {
	out := strings.TrimRight(r.Stdout, "\r\n")
	if out == "" {
		return nil
	}
	lines := strings.Split(out, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func (r Result) TrimmedStdout() string {
	return strings.TrimSpace(r.Stdout)
}

// Err returns nil for a successful command and a *CommandError otherwise.
func (r Result) Err() error {
	if r.Success() {
		return nil
	}
	return &CommandError{
		Command:  r.Command(),
		ExitCode: r.ExitCode,
		Stderr:   strings.TrimSpace(r.Stderr),
	}
}

// Describe returns a short human-readable explanation of a failure, or the
// empty string for a successful command.
func (r Result) Describe() string {
	if r.Success() {
		return ""
	}
	return Describe(r.Stderr)
}

// CommandError reports a git command that did not exit with status zero.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: exit status %d: %s", e.Command, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s: exit status %d", e.Command, e.ExitCode)
}

func (r Result) TrimmedStderr() string {
	return strings.TrimSpace(r.Stderr)
}
