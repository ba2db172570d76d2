package replay

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// PathPlaceholder in a CommandParser argument is replaced by the replay path.
const PathPlaceholder = "{path}"

// maxStderr bounds how much of the command's stderr ends up in an error.
const maxStderr = 2048

// CommandParser runs an external program that prints telemetry JSON on stdout.
type CommandParser struct {
	command string
	args    []string
	timeout time.Duration
}

// NewCommandParser creates a CommandParser. The replay path replaces every
// PathPlaceholder in args, or is appended when args has none.
// A zero timeout disables the per-file deadline.
func NewCommandParser(command string, args []string, timeout time.Duration) *CommandParser {
	return &CommandParser{
		command: command,
		args:    append([]string(nil), args...),
		timeout: timeout,
	}
}

// Parse runs the command for path and decodes its output.
func (p *CommandParser) Parse(ctx context.Context, path string) (*Telemetry, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, p.command, p.commandArgs(path)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %s %s: %w", ErrParserCommand, p.command, path, ctxErr)
		}

		return nil, fmt.Errorf("%w: %s %s: %w: %s", ErrParserCommand, p.command, path, err, tail(stderr.String()))
	}

	tel, err := Decode(stdout.Bytes(), FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", p.command, path, err)
	}

	return tel, nil
}

func (p *CommandParser) commandArgs(path string) []string {
	args := make([]string, 0, len(p.args)+1)
	substituted := false

	for _, arg := range p.args {
		if strings.Contains(arg, PathPlaceholder) {
			arg = strings.ReplaceAll(arg, PathPlaceholder, path)
			substituted = true
		}

		args = append(args, arg)
	}

	if !substituted {
		args = append(args, path)
	}

	return args
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		s = "..." + s[len(s)-maxStderr:]
	}

	return s
}
