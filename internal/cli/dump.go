package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/homeservices/marketplace/internal/infrastructure/db/records"
)

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the stored users and requests as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := openBackend(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer b.Close()

			snap, err := records.Dump(cmd.Context(), b.records)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		},
	}
}
