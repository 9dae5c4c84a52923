package command

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modulus-sa/abcmd/exec"
	"github.com/modulus-sa/abcmd/logger"
)

// handlerSurface declares the handlers the matching grid is checked against
func handlerSurface(called *[]string) *Surface {
	record := func(name string) HandlerFunc {
		return func(c *Command, errText string) bool {
			*called = append(*called, name)
			return true
		}
	}

	return NewSurface("test").
		Template("command", "command").
		Handle(Handler{Name: "handler0", Command: "command", Error: "error0", Func: record("handler0")}).
		Handle(Handler{Name: "handler1", Command: "command", Error: "error1", Func: record("handler1")}).
		Handle(Handler{Name: "handler2", Command: "command", Func: record("handler2")}).
		Handle(Handler{Name: "handler3", RC: RC(10), Func: record("handler3")})
}

func TestResolve_SelectsMatchingHandlers(t *testing.T) {
	tests := []struct {
		rc     int
		stderr string
		want   []string
	}{
		{rc: 1, stderr: "error0", want: []string{"handler0", "handler2"}},
		{rc: 1, stderr: "error1", want: []string{"handler1", "handler2"}},
		{rc: 10, stderr: "error", want: []string{"handler2", "handler3"}},
		{rc: 10, stderr: "error1", want: []string{"handler1", "handler2", "handler3"}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("rc %d %s", tt.rc, tt.stderr), func(t *testing.T) {
			var called []string
			rec := &recorder{rc: tt.rc, stderr: tt.stderr}
			cmd := New(handlerSurface(&called), nil, nil, WithExec(rec.exec), silent())

			res, err := cmd.Call("command")
			require.NoError(t, err)
			assert.True(t, res.Handled)
			assert.Equal(t, tt.want, called)
		})
	}
}

func TestResolve_SuccessSkipsHandlers(t *testing.T) {
	var called []string
	rec := &recorder{stderr: "error0"}
	cmd := New(handlerSurface(&called), nil, nil, WithExec(rec.exec), silent())

	res, err := cmd.Call("command")
	require.NoError(t, err)
	assert.False(t, res.Handled)
	assert.Empty(t, called)
}

func TestResolve_HandledFailureIsSilent(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(logger.LevelDebug, &buf)

	var gotErr string
	surface := NewSurface("test").
		Template("fail", "false").
		Handle(Handler{Command: "fail", Func: func(c *Command, errText string) bool {
			gotErr = errText
			return true
		}})
	run := func(string) (int, string, string) { return 1, "", "boom" }
	cmd := New(surface, nil, nil, WithExec(run), WithLogger(log))

	res, err := cmd.Call("fail")
	require.NoError(t, err)
	assert.True(t, res.Handled)
	assert.Equal(t, "boom", gotErr)
	assert.NotContains(t, buf.String(), "Unhandled error")
	assert.NotContains(t, buf.String(), "ERR")
}

func TestResolve_RejectingHandlerFails(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(logger.LevelDebug, &buf)

	surface := NewSurface("test").
		Template("fail", "false").
		Handle(Handler{Command: "fail", Func: func(*Command, string) bool { return false }})
	run := func(string) (int, string, string) { return 1, "", "boom" }
	cmd := New(surface, nil, nil, WithExec(run), WithLogger(log))

	_, err := cmd.Call("fail")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSubprocess))

	var unhandled *UnhandledError
	require.ErrorAs(t, err, &unhandled)
	assert.Equal(t, "false", unhandled.Command)
	assert.Equal(t, 1, unhandled.ReturnCode)
	assert.Equal(t, "fail", unhandled.Runner)
	assert.Equal(t, "false: boom", err.Error())
	assert.Contains(t, buf.String(), "Unhandled error: false: boom")
}

func TestResolve_StopsAtFirstRejection(t *testing.T) {
	var called []string
	surface := NewSurface("test").
		Template("fail", "false").
		Handle(Handler{Name: "first", Func: func(*Command, string) bool {
			called = append(called, "first")
			return false
		}}).
		Handle(Handler{Name: "second", Func: func(*Command, string) bool {
			called = append(called, "second")
			return true
		}})
	rec := &recorder{rc: 1}
	cmd := New(surface, nil, nil, WithExec(rec.exec), silent())

	_, err := cmd.Call("fail")
	assert.ErrorIs(t, err, ErrSubprocess)
	assert.Equal(t, []string{"first"}, called)
}

func TestResolve_CommandPatternMatchesRenderedText(t *testing.T) {
	var called bool
	surface := NewSurface("test").
		Template("create", "borg create {REPOSITORY}::{ARCHIVE}").
		Handle(Handler{Command: `^borg create /srv`, Func: func(*Command, string) bool {
			called = true
			return true
		}})
	rec := &recorder{rc: 2}
	cfg := map[string]any{"REPOSITORY": "/srv/repo", "ARCHIVE": "now"}
	cmd := New(surface, cfg, nil, WithExec(rec.exec), silent())

	_, err := cmd.Call("create")
	require.NoError(t, err)
	assert.True(t, called)
}

func TestResolve_RunnerNameMatchesOnlyThatRunner(t *testing.T) {
	var called []string
	surface := NewSurface("borg").
		Template("create", "borg create {REPOSITORY}::now").
		Template("prune", "borg prune {REPOSITORY}").
		Handle(Handler{Command: "create", Error: "does not exist", Func: func(*Command, string) bool {
			called = append(called, "create")
			return true
		}})
	run := func(string) (int, string, string) { return 2, "", "Repository /srv/created does not exist" }
	cmd := New(surface, map[string]any{"REPOSITORY": "/srv/created"}, nil, WithExec(run), silent())

	res, err := cmd.Call("prune")
	assert.ErrorIs(t, err, ErrSubprocess)
	assert.False(t, res.Handled)
	assert.Empty(t, called)

	_, err = cmd.Call("create")
	require.NoError(t, err)
	assert.Equal(t, []string{"create"}, called)
}

func TestResolve_CommandPatternIsNotAName(t *testing.T) {
	var called bool
	surface := NewSurface("test").
		Template("fail", "false --now").
		Handle(Handler{Command: `false\b`, Func: func(*Command, string) bool {
			called = true
			return true
		}})
	rec := &recorder{rc: 1}
	cmd := New(surface, nil, nil, WithExec(rec.exec), silent())

	_, err := cmd.Call("fail")
	require.NoError(t, err)
	assert.True(t, called)
}

// catchAll is a procedure with a catch-all error handler
type catchAll struct {
	handled  []string
	response bool
}

func (p *catchAll) Run(c *Command, args ...string) error {
	_, err := c.Call("fail")
	return err
}

func (p *catchAll) HandleError(c *Command, command, errText string) bool {
	p.handled = append(p.handled, command+": "+errText)
	return p.response
}

func TestResolve_CatchAllWhenNothingMatches(t *testing.T) {
	surface := NewSurface("test").
		Template("fail", "fail {WHAT}").
		Handle(Handler{Error: "unrelated", Func: func(*Command, string) bool {
			t.Fatal("handler should not match")
			return true
		}})
	rec := &recorder{rc: 1, stderr: "boom"}
	proc := &catchAll{response: true}
	cmd := New(surface, map[string]any{"WHAT": "now"}, proc, WithExec(rec.exec), silent())

	require.NoError(t, cmd.Execute())
	assert.Equal(t, []string{"fail now: boom"}, proc.handled)
}

func TestResolve_CatchAllRejects(t *testing.T) {
	surface := NewSurface("test").Template("fail", "fail")
	rec := &recorder{rc: 1, stderr: "boom"}
	proc := &catchAll{response: false}
	cmd := New(surface, nil, proc, WithExec(rec.exec), silent())

	err := cmd.Execute()
	assert.ErrorIs(t, err, ErrSubprocess)
	assert.Len(t, proc.handled, 1)
}

func TestResolve_CatchAllSkippedWhenHandlerMatches(t *testing.T) {
	surface := NewSurface("test").
		Template("fail", "fail").
		Handle(Handler{Error: "boom", Func: func(*Command, string) bool { return true }})
	rec := &recorder{rc: 1, stderr: "boom"}
	proc := &catchAll{response: true}
	cmd := New(surface, nil, proc, WithExec(rec.exec), silent())

	require.NoError(t, cmd.Execute())
	assert.Empty(t, proc.handled)
}

func TestResolve_NoHandlerAtAll(t *testing.T) {
	surface := NewSurface("test").Template("fail", "fail")
	rec := &recorder{rc: 3, stderr: "nope\n"}
	cmd := New(surface, nil, nil, WithExec(rec.exec), silent())

	res, err := cmd.Call("fail")
	require.Error(t, err)
	assert.Equal(t, 3, res.ReturnCode)
	assert.Equal(t, "fail: nope", err.Error())
}

func TestResolve_InheritedHandlersRunFirst(t *testing.T) {
	var called []string
	record := func(name string) HandlerFunc {
		return func(*Command, string) bool {
			called = append(called, name)
			return true
		}
	}

	base := NewSurface("base").
		Template("fail", "fail").
		Handle(Handler{Name: "base", Func: record("base")})
	left := NewSurface("left", base).Handle(Handler{Name: "left", Func: record("left")})
	right := NewSurface("right", base).Handle(Handler{Name: "right", Func: record("right")})
	child := NewSurface("child", left, right).Handle(Handler{Name: "child", Func: record("child")})

	rec := &recorder{rc: 1}
	cmd := New(child, nil, nil, WithExec(rec.exec), silent())

	_, err := cmd.Call("fail")
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "left", "right", "child"}, called)

	names := make([]string, 0)
	for _, h := range child.Handlers() {
		names = append(names, h.Name)
	}
	assert.Equal(t, []string{"base", "left", "right", "child"}, names)
}

func TestResolve_HandlerCanRetry(t *testing.T) {
	attempts := 0
	run := func(command string) (int, string, string) {
		if command == "init" {
			return 0, "", ""
		}
		attempts++
		if attempts == 1 {
			return 2, "", "Repository /r does not exist."
		}
		return 0, "", ""
	}

	surface := NewSurface("borg").
		Template("init", "init").
		Template("create", "create").
		Handle(Handler{Command: "create", Error: "Repository .* does not exist", Func: func(c *Command, errText string) bool {
			if _, err := c.Call("init"); err != nil {
				return false
			}
			_, err := c.Call("create")
			return err == nil
		}})
	cmd := New(surface, nil, nil, WithExec(run), silent())

	res, err := cmd.Call("create")
	require.NoError(t, err)
	assert.True(t, res.Handled)
	assert.Equal(t, 2, attempts)
}

func TestResolve_RealProcessFailure(t *testing.T) {
	surface := NewSurface("test").Template("fail", "cat NON_EXISTING_FILE")
	proc := &catchAll{response: true}
	cmd := New(surface, nil, proc, WithExec(exec.Run), silent())

	require.NoError(t, cmd.Execute())
	require.Len(t, proc.handled, 1)
	assert.Contains(t, proc.handled[0], "cat NON_EXISTING_FILE")
	assert.Contains(t, proc.handled[0], "NON_EXISTING_FILE")
}

func TestSurface_HandlePanics(t *testing.T) {
	assert.Panics(t, func() {
		NewSurface("test").Handle(Handler{Name: "nofunc"})
	})
	assert.Panics(t, func() {
		NewSurface("test").Handle(Handler{Error: "(", Func: func(*Command, string) bool { return true }})
	})
}
