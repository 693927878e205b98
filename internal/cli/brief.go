package cli

import (
	"github.com/spf13/cobra"
)

// NewBriefCommand creates the brief command.
func NewBriefCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "brief",
		Short: "Send the daily briefing and clear the buffer",
		Long: `Peeks today's buffered items, posts them to Slack as one briefing
message with Markdown and PDF attachments, and clears today's buffer entry only
after the send is confirmed. On any failure the buffer is left intact
and the next scheduled run retries with the same data.

A day with nothing buffered still sends a zero-item briefing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp(opts)
			if err != nil {
				return err
			}
			return application.Brief(cmd.Context())
		},
	}
}
