package cli

import (
	"github.com/spf13/cobra"

	"ResearchBriefing/internal/app"
	"ResearchBriefing/internal/config"
	"ResearchBriefing/internal/logging"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	ConfigPath string
	StatePath  string
	Verbose    bool
}

// NewRootCommand creates the researchbrief root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "researchbrief",
		Short: "Research briefing bot",
		Long: `Collects arXiv papers and tech-blog posts into a daily buffer and
delivers the accumulated items as one Slack briefing.

The two subcommands are independent, stateless invocations sharing the
state file; a scheduler runs collect frequently and brief once a day,
never concurrently.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config (default config.yml if present)")
	cmd.PersistentFlags().StringVar(&opts.StatePath, "state", "", "override the state file path")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewCollectCommand(opts))
	cmd.AddCommand(NewBriefCommand(opts))

	return cmd
}

// buildApp loads config, applies flag overrides, and wires the application.
func buildApp(opts *RootOptions) (*app.Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.StatePath != "" {
		cfg.State.Path = opts.StatePath
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}

	logger := logging.New(cfg.Logging.Level)
	return app.New(cfg, logger), nil
}
