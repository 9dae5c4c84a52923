package command

import (
	"fmt"

	"github.com/modulus-sa/abcmd/exec"
	"github.com/modulus-sa/abcmd/formatter"
	"github.com/modulus-sa/abcmd/logger"
)

// ExecFunc executes a rendered command line, see exec.Func
type ExecFunc = exec.Func

// Procedure describes what a command does when executed
type Procedure interface {
	Run(c *Command, args ...string) error
}

// RunFunc adapts a function to Procedure
type RunFunc func(c *Command, args ...string) error

// Run calls f
func (f RunFunc) Run(c *Command, args ...string) error {
	return f(c, args...)
}

// DontRunner is implemented by procedures that may cancel execution.
// Returning true skips BeforeRun, Run and AfterRun.
type DontRunner interface {
	DontRun(c *Command) bool
}

// BeforeRunner is implemented by procedures with a hook before Run
type BeforeRunner interface {
	BeforeRun(c *Command) error
}

// AfterRunner is implemented by procedures with a hook after Run
type AfterRunner interface {
	AfterRun(c *Command) error
}

// ErrorHandler is the catch-all for failures no Handler matched.
// Returning true marks the failure as handled.
type ErrorHandler interface {
	HandleError(c *Command, command, errText string) bool
}

// Command is a configured instance of a surface
type Command struct {
	surface   *Surface
	proc      Procedure
	config    map[string]any
	formatter *formatter.Formatter
	exec      ExecFunc
	log       logger.Logger

	templates map[string]string
	handlers  []handler
	runners   map[string]*Runner
}

// Option configures a Command
type Option func(*Command)

// WithExec sets the function that executes rendered commands
func WithExec(fn ExecFunc) Option {
	return func(c *Command) {
		if fn != nil {
			c.exec = fn
		}
	}
}

// WithLogger sets the logger for traces and unhandled failures
func WithLogger(l logger.Logger) Option {
	return func(c *Command) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a command of the given surface. The config map is held by
// reference; mutate it through Config or Set so renders stay current.
func New(surface *Surface, config map[string]any, proc Procedure, opts ...Option) *Command {
	if config == nil {
		config = map[string]any{}
	}

	c := &Command{
		surface:   surface,
		proc:      proc,
		config:    config,
		exec:      exec.Run,
		log:       logger.Default(),
		templates: surface.Templates(),
		handlers:  surface.collectHandlers(nil, make(map[*Surface]bool)),
		runners:   make(map[string]*Runner),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.log = c.log.WithFields(logger.F("surface", surface.Name()))
	c.formatter = formatter.New(c.config, formatter.WithLogger(c.log))
	return c
}

// Execute runs the procedure lifecycle: DontRun, BeforeRun, Run, AfterRun
func (c *Command) Execute(args ...string) error {
	if c.proc == nil {
		return fmt.Errorf("%s: %w", c.surface.Name(), ErrNoProcedure)
	}

	if d, ok := c.proc.(DontRunner); ok && d.DontRun(c) {
		c.log.Debug("Procedure cancelled by DontRun")
		return nil
	}

	if b, ok := c.proc.(BeforeRunner); ok {
		if err := b.BeforeRun(c); err != nil {
			return fmt.Errorf("before run: %w", err)
		}
	}

	if err := c.proc.Run(c, args...); err != nil {
		return err
	}

	if a, ok := c.proc.(AfterRunner); ok {
		if err := a.AfterRun(c); err != nil {
			return fmt.Errorf("after run: %w", err)
		}
	}
	return nil
}

// Config returns the configuration for reading or mutation and drops
// every cached rendering.
func (c *Command) Config() map[string]any {
	return c.formatter.Config()
}

// Get returns a configuration value without invalidating renders
func (c *Command) Get(key string) (any, bool) {
	val, ok := c.config[key]
	return val, ok
}

// Set assigns a configuration value and drops every cached rendering
func (c *Command) Set(key string, value any) {
	c.Config()[key] = value
}

// Surface returns the surface the command was built from
func (c *Command) Surface() *Surface {
	return c.surface
}

// Procedure returns the procedure the command runs
func (c *Command) Procedure() Procedure {
	return c.proc
}

// Logger returns the command's logger
func (c *Command) Logger() logger.Logger {
	return c.log
}

// Render renders text as a template against the current configuration
func (c *Command) Render(template string) string {
	return c.formatter.Render(template)
}

// Exec runs a command line through the command's ExecFunc without error
// resolution.
func (c *Command) Exec(commandText string) (int, string, string) {
	return c.exec(commandText)
}

// Lookup returns the runner of a declared template, creating it on first
// use. Later calls return the same runner.
func (c *Command) Lookup(name string) (*Runner, bool) {
	if r, ok := c.runners[name]; ok {
		return r, true
	}
	template, ok := c.templates[name]
	if !ok {
		return nil, false
	}

	r := &Runner{name: name, template: template, owner: c}
	c.runners[name] = r
	return r, true
}

// Runner returns the runner of a declared template, or nil
func (c *Command) Runner(name string) *Runner {
	r, _ := c.Lookup(name)
	return r
}

// Call runs the named template, through its override when one exists
func (c *Command) Call(name string) (Result, error) {
	r, ok := c.Lookup(name)
	if fn, overridden := c.surface.lookupOverride(name); overridden {
		return fn(c, r)
	}
	if !ok {
		return Result{}, fmt.Errorf("%s: %w: %s", c.surface.Name(), ErrUnknownTemplate, name)
	}
	return r.Run()
}

// resolve walks the handlers for a failed runner and reports whether the
// failure was handled.
func (c *Command) resolve(r *Runner, res Result) bool {
	var matching []handler
	for _, h := range c.handlers {
		if h.matches(r.name, res.Command, res.Stderr, res.ReturnCode) {
			matching = append(matching, h)
		}
	}

	if len(matching) > 0 {
		for _, h := range matching {
			c.log.Debug("Calling error handler", logger.F("handler", h.Name), logger.F("runner", r.name))
			if !h.Func(c, res.Stderr) {
				return false
			}
		}
		return true
	}

	if eh, ok := c.proc.(ErrorHandler); ok {
		return eh.HandleError(c, res.Command, res.Stderr)
	}
	return false
}
