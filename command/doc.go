// Package command binds command templates to configured instances and
// dispatches their failures to error handlers.
//
// # Surfaces
//
// A Surface is the static description of a command type: its named
// templates, its error handlers and any template overrides. Surfaces are
// built once, usually as package variables, and may extend other surfaces:
//
//	var Borg = command.NewSurface("borg").
//	    Template("init", "borg init {-e encryption} {repository}").
//	    Template("create", "borg create {verbose} {-e exclude} {repository}::{archive} {paths}").
//	    Handle(command.Handler{
//	        Name:    "missing-repository",
//	        Command: "create",
//	        Error:   "Repository .* does not exist",
//	        Func:    initAndRetry,
//	    })
//
//	var BorgWithPrune = command.NewSurface("borg-prune", Borg).
//	    Template("prune", "borg prune {--keep-daily keep_daily} {repository}")
//
// Parents are merged in the order given. Templates declared later win, so
// a surface always overrides its parents. Handlers are never replaced:
// the parents' handlers come first, followed by the surface's own, each in
// declaration order.
//
// # Commands and runners
//
// New creates a Command from a surface, a configuration mapping and a
// Procedure. Execute runs the procedure's lifecycle:
//
//	DontRun -> BeforeRun -> Run -> AfterRun
//
// where every hook except Run is optional. Inside the procedure, templates
// are executed by name:
//
//	res, err := c.Call("create")
//
// Each template has exactly one Runner per Command, created on first use.
//
// # Error resolution
//
// A non-zero return code triggers resolution. Every handler whose criteria
// match is called in order until one returns false. When none match, the
// procedure's HandleError catch-all is consulted. A failure that nobody
// resolves is logged and returned as an *UnhandledError, which wraps
// ErrSubprocess.
//
// Handler criteria:
//   - Command: a runner name such as "create", or any other text as a
//     regular expression found in the rendered command line
//   - Error: a regular expression found in the standard error text
//   - RC: the exact return code
//
// Unset criteria match anything.
package command
