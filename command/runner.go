package command

import (
	"fmt"

	"github.com/modulus-sa/abcmd/logger"
)

// Result describes one execution of a runner
type Result struct {
	Command    string
	ReturnCode int
	Stdout     string
	Stderr     string
	Handled    bool // a failure was resolved by a handler
}

// Runner renders and executes one template for one Command
type Runner struct {
	name     string
	template string
	owner    *Command
}

// Name returns the template name
func (r *Runner) Name() string {
	return r.name
}

// Template returns the unrendered template
func (r *Runner) Template() string {
	return r.template
}

// String returns the command line rendered against the current configuration
func (r *Runner) String() string {
	return r.owner.formatter.Render(r.template)
}

// GoString identifies the runner in debugging output
func (r *Runner) GoString() string {
	return fmt.Sprintf("%s runner at %p", r.name, r)
}

// Run executes the rendered template. A failure that handlers resolve
// returns a nil error with Handled set.
func (r *Runner) Run() (Result, error) {
	commandText := r.String()
	rc, stdout, stderr := r.owner.exec(commandText)

	res := Result{
		Command:    commandText,
		ReturnCode: rc,
		Stdout:     stdout,
		Stderr:     stderr,
	}
	if rc == 0 {
		return res, nil
	}

	if r.owner.resolve(r, res) {
		res.Handled = true
		return res, nil
	}

	err := &UnhandledError{
		Runner:     r.name,
		Command:    commandText,
		ReturnCode: rc,
		Stderr:     stderr,
	}
	r.owner.log.Error("Unhandled error: "+err.Error(), logger.F("runner", r.name), logger.F("rc", rc))
	return res, err
}
