// Package wrapper builds the command line of a wrapper binary: it parses
// the task name and flags, sets up logging, loads and checks the task
// configuration and executes the procedure.
package wrapper

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/modulus-sa/abcmd"
	"github.com/modulus-sa/abcmd/command"
	"github.com/modulus-sa/abcmd/config"
	"github.com/modulus-sa/abcmd/exec"
	"github.com/modulus-sa/abcmd/logger"
	"github.com/modulus-sa/abcmd/output"
)

// ExitCode is the status a wrapper exits with on failure
const ExitCode = 2

// Spec describes a wrapper binary
type Spec struct {
	Name    string // Program name, also the environment prefix
	Short   string
	ConfDir string // Default configuration directory
	Surface *command.Surface
	Schema  *config.Schema // Optional, checked after loading

	// Procedure creates the procedure for a task
	Procedure func(task string, cfg config.Config) command.Procedure

	// Options are applied after the wrapper's own command options
	Options []command.Option
}

// settings are the wrapper's own options, from flags or environment
type settings struct {
	ConfigPath string
	DryRun     bool
	Verbose    bool
	LogLevel   string
}

// New creates the root command of a wrapper
func New(spec Spec) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix(spec.Name))
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	confDir := spec.ConfDir
	if confDir == "" {
		confDir = "."
	}

	cmd := &cobra.Command{
		Use:           spec.Name + " TASK [ARGS...]",
		Short:         spec.Short,
		Version:       abcmd.Version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(v.GetBool("verbose"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			task := args[0]
			s := readSettings(v)
			log := setupLogging(spec.Name, task, s, cmd.ErrOrStderr())

			c, err := build(spec, task, s, log, cmd.OutOrStdout())
			if err != nil {
				return fail(log, err)
			}

			if err := c.Execute(args[1:]...); err != nil {
				return fail(log, err)
			}
			output.Success(fmt.Sprintf("%s %s finished", spec.Name, task))
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringP("configpath", "c", confDir, "the configuration path")
	flags.Bool("dry-run", false, "check without doing any changes")
	flags.BoolP("verbose", "v", false, "echo command output and log at debug level")
	flags.String("log-level", "", "log level: debug, info, warn, error or silent")
	for _, name := range []string{"configpath", "dry-run", "verbose", "log-level"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	cmd.AddCommand(
		renderCmd(spec, v),
		templatesCmd(spec),
		versionCmd(spec),
	)
	return cmd
}

// Main runs the wrapper for os.Args and exits with ExitCode on failure
func Main(spec Spec) {
	if err := New(spec).Execute(); err != nil {
		os.Exit(ExitCode)
	}
}

func envPrefix(name string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name))
}

func readSettings(v *viper.Viper) settings {
	return settings{
		ConfigPath: v.GetString("configpath"),
		DryRun:     v.GetBool("dry-run"),
		Verbose:    v.GetBool("verbose"),
		LogLevel:   v.GetString("log-level"),
	}
}

// setupLogging makes a logger tagged with the program and task and
// installs it as the default.
func setupLogging(name, task string, s settings, out io.Writer) logger.Logger {
	level := logger.LevelInfo
	if s.Verbose {
		level = logger.LevelDebug
	}
	parsed, known := logger.ParseLevel(s.LogLevel)
	if known {
		level = parsed
	}

	log := logger.NewLogger(level, out).WithFields(
		logger.F("proc", name),
		logger.F("pid", os.Getpid()),
		logger.F("task", task),
	)
	logger.SetDefault(log)

	if s.LogLevel != "" && !known {
		log.Warn("Unknown log level " + s.LogLevel + ", using " + level.String())
	}
	return log
}

// loadConfig loads the task configuration and checks it against the schema
func loadConfig(spec Spec, task string, s settings) (config.Config, error) {
	if spec.Schema != nil {
		return spec.Schema.Load(task, s.ConfigPath)
	}
	return config.Load(task, s.ConfigPath)
}

// build creates the command for task
func build(spec Spec, task string, s settings, log logger.Logger, out io.Writer) (*command.Command, error) {
	cfg, err := loadConfig(spec, task, s)
	if err != nil {
		return nil, err
	}

	var run command.ExecFunc
	if s.DryRun {
		run = exec.DryRun(log)
	} else {
		opts := &exec.Options{Logger: log}
		if s.Verbose {
			opts.Stdout = out
			opts.Stderr = out
		}
		executor := exec.NewExecutor(opts)
		run = executor.Exec
		if !s.Verbose {
			run = executor.WithSpinner(fmt.Sprintf("%s %s", spec.Name, task))
		}
	}

	var proc command.Procedure
	if spec.Procedure != nil {
		proc = spec.Procedure(task, cfg)
	}
	if proc == nil {
		return nil, fmt.Errorf("%s: no procedure for task %s", spec.Name, task)
	}

	opts := append([]command.Option{command.WithExec(run), command.WithLogger(log)}, spec.Options...)
	return command.New(spec.Surface, cfg, proc, opts...), nil
}

func fail(log logger.Logger, err error) error {
	log.Error(err.Error())
	output.Error(err.Error())
	return err
}
