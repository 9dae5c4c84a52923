package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/kballard/go-shellquote"

	"github.com/modulus-sa/abcmd/logger"
)

// Func executes a rendered command line and returns its return code,
// standard output and standard error.
type Func func(command string) (int, string, string)

// Return codes for failures that happen before the process exits
const (
	ReturnCodeStartFailed = 1
	ReturnCodeBadCommand  = 2
	ReturnCodeNotFound    = 127
	ReturnCodeTimeout     = -1
)

// Executor runs rendered command lines as subprocesses
type Executor struct {
	stdout  io.Writer
	stderr  io.Writer
	env     []string
	dir     string
	timeout time.Duration
	log     logger.Logger

	// For mocking in tests
	commandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// Options configures command execution
type Options struct {
	Stdout  io.Writer     // Echo of the process output, nil to capture only
	Stderr  io.Writer     // Echo of the process errors, nil to capture only
	Env     []string      // Additional environment variables
	Dir     string        // Working directory
	Timeout time.Duration // Zero waits forever
	Logger  logger.Logger
}

// NewExecutor creates an executor. A nil opts captures output without echo
// and never times out.
func NewExecutor(opts *Options) *Executor {
	if opts == nil {
		opts = &Options{}
	}

	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	return &Executor{
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		env:         opts.Env,
		dir:         opts.Dir,
		timeout:     opts.Timeout,
		log:         log,
		commandFunc: exec.CommandContext, // Can be mocked for tests
	}
}

// Run executes command with a default executor. It is the Func used when
// no other is configured.
func Run(command string) (int, string, string) {
	return NewExecutor(nil).Exec(command)
}

// Exec splits command with shell quoting rules, runs it and waits for it
// to finish. It satisfies Func. Operators such as ; | < > are plain text:
// no shell is involved.
func (e *Executor) Exec(command string) (int, string, string) {
	args, err := shellquote.Split(command)
	if err != nil {
		return ReturnCodeBadCommand, "", fmt.Sprintf("cannot parse command %q: %v", command, err)
	}
	if len(args) == 0 {
		return ReturnCodeBadCommand, "", "empty command"
	}

	ctx := context.Background()
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := e.commandFunc(ctx, args[0], args[1:]...)
	if e.dir != "" {
		cmd.Dir = e.dir
	}
	if len(e.env) > 0 {
		cmd.Env = append(cmd.Environ(), e.env...)
	}

	var stdout, stderr bytes.Buffer
	stdoutEcho := e.echo(e.stdout, lipgloss.Color("240"))
	stderrEcho := e.echo(e.stderr, lipgloss.Color("203"))
	cmd.Stdout = tee(&stdout, stdoutEcho)
	cmd.Stderr = tee(&stderr, stderrEcho)

	e.log.Debug("Running command", logger.F("command", command))
	err = cmd.Run()
	flush(stdoutEcho, stderrEcho)

	out, errText := e.decode(stdout.Bytes(), stderr.Bytes())
	if err == nil {
		return 0, out, errText
	}

	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		return ReturnCodeTimeout, out, appendLine(errText, fmt.Sprintf("%s timed out after %s", args[0], e.timeout))
	case errors.As(err, &exitErr):
		return exitErr.ExitCode(), out, errText
	case isCommandNotFound(err):
		return ReturnCodeNotFound, out, appendLine(errText, enhanceError(err, args[0]).Error())
	default:
		return ReturnCodeStartFailed, out, appendLine(errText, fmt.Sprintf("failed to start %s: %v", args[0], err))
	}
}

// DryRun returns a Func that logs every command and reports success
// without running anything.
func DryRun(log logger.Logger) Func {
	if log == nil {
		log = logger.Default()
	}
	return func(command string) (int, string, string) {
		log.Info("Dry run", logger.F("command", command))
		return 0, "", ""
	}
}

func (e *Executor) echo(w io.Writer, color lipgloss.Color) *StreamingWriter {
	if w == nil {
		return nil
	}
	return NewStreamingWriter(w, "  │ ", color)
}

// decode returns the streams as text, replacing invalid UTF-8
func (e *Executor) decode(stdout, stderr []byte) (string, string) {
	if utf8.Valid(stdout) && utf8.Valid(stderr) {
		return string(stdout), string(stderr)
	}
	e.log.Warn("Unicode error while decoding command output, replacing offending characters")
	return strings.ToValidUTF8(string(stdout), "\uFFFD"), strings.ToValidUTF8(string(stderr), "\uFFFD")
}

func tee(buf *bytes.Buffer, echo *StreamingWriter) io.Writer {
	if echo == nil {
		return buf
	}
	return io.MultiWriter(buf, echo)
}

func flush(writers ...*StreamingWriter) {
	for _, w := range writers {
		if w != nil {
			_ = w.Flush()
		}
	}
}

func appendLine(text, line string) string {
	if text == "" || strings.HasSuffix(text, "\n") {
		return text + line
	}
	return text + "\n" + line
}

// isCommandNotFound checks if an error indicates a command was not found
func isCommandNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, exec.ErrNotFound) ||
		// Some systems return different errors
		strings.Contains(err.Error(), "executable file not found") ||
		strings.Contains(err.Error(), "no such file or directory")
}

// enhanceError adds helpful message for missing commands
func enhanceError(err error, cmd string) error {
	return fmt.Errorf("%w: command '%s' not found, please install it and try again", err, cmd)
}
