// Package exec turns rendered command lines into subprocesses.
//
// Every runner in abcmd executes through a Func: it takes the rendered
// command text and reports the return code with the captured output and
// error streams.
//
//	rc, stdout, stderr := exec.Run("borg list /backups")
//
// Run is the default Func. It splits the text with shell quoting rules,
// blocks until the process exits and never times out. Callers that need a
// timeout, a working directory, extra environment or live output build an
// Executor instead:
//
//	executor := exec.NewExecutor(&exec.Options{
//	    Timeout: 2 * time.Hour,
//	    Stdout:  os.Stdout,
//	})
//	cmd := command.New(surface, cfg, proc, command.WithExec(executor.Exec))
//
// # Failures
//
// A Func never returns a Go error. Problems that prevent the process from
// running are folded into the triple so error handlers see them like any
// other failure:
//
//   - unparsable command text: return code 2
//   - executable not found: return code 127
//   - any other start failure: return code 1
//   - timeout: return code -1
//
// # Dry runs and spinners
//
// DryRun logs commands instead of running them. Executor.WithSpinner wraps
// execution in a terminal spinner when stderr is a TTY.
package exec
