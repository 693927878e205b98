package cli

import (
	"github.com/spf13/cobra"
)

// NewCollectCommand creates the collect command.
func NewCollectCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Fetch feeds and buffer new items",
		Long: `Fetches the configured blog RSS feeds and recent arXiv papers,
classifies papers against the keyword list, drops already-seen items,
and appends the survivors to today's buffer in the state file.

Nothing is posted to Slack; delivery happens in a separate brief run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp(opts)
			if err != nil {
				return err
			}
			return application.Collect(cmd.Context())
		},
	}
}
