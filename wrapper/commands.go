package wrapper

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/modulus-sa/abcmd"
	"github.com/modulus-sa/abcmd/command"
	"github.com/modulus-sa/abcmd/logger"
)

// renderCmd prints a template rendered with a task configuration
func renderCmd(spec Spec, v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "render TASK NAME",
		Short: "Print a command as it would run for a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, name := args[0], args[1]
			s := readSettings(v)

			cfg, err := loadConfig(spec, task, s)
			if err != nil {
				return err
			}

			c := command.New(spec.Surface, cfg, nil, command.WithLogger(logger.NewSilentLogger()))
			r, ok := c.Lookup(name)
			if !ok {
				return fmt.Errorf("%s: %w: %s", spec.Surface.Name(), command.ErrUnknownTemplate, name)
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.String())
			return nil
		},
	}
}

// templatesCmd lists the templates the wrapper declares
func templatesCmd(spec Spec) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the command templates",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			templates := spec.Surface.Templates()
			for _, name := range spec.Surface.TemplateNames() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, templates[name])
			}
		},
	}
}

func versionCmd(spec Spec) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (abcmd v%s)\n", spec.Name, abcmd.Version)
		},
	}
}
