// Package export writes a user's transactions to csv, json or xlsx.
package export

import (
	"bytes"

	"fjacquet/fintrack/cmd/root"
	"fjacquet/fintrack/internal/export"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/validation"

	"github.com/spf13/cobra"
)

var (
	startDate string
	endDate   string
	format    string
)

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export transactions",
	Long: `Export the transactions visible to the acting user, ordered by date.
Without --output the export is written to stdout.`,
	RunE: exportFunc,
}

func init() {
	Cmd.Flags().StringVar(&startDate, "start", "", "First transaction date to include")
	Cmd.Flags().StringVar(&endDate, "end", "", "Last transaction date to include")
	Cmd.Flags().StringVarP(&format, "format", "f", "", "Export format: csv, json or xlsx (default from configuration)")
}

func exportFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	name := format
	if name == "" {
		name = c.GetConfig().Export.DefaultFormat
	}
	f, err := export.ParseFormat(name)
	if err != nil {
		return err
	}
	start, end, err := validation.ParseDateRange(startDate, endDate)
	if err != nil {
		return err
	}
	user, err := root.CurrentUser(cmd.Context())
	if err != nil {
		return err
	}

	if root.SharedFlags.Output != "" {
		if err := validation.IsValidOutputFile(root.SharedFlags.Output); err != nil {
			return err
		}
		_, err := c.GetExporter().ExportFile(cmd.Context(), user.ID, start, end, f, root.SharedFlags.Output)
		return err
	}

	var buf bytes.Buffer
	n, err := c.GetExporter().Export(cmd.Context(), user.ID, start, end, f, &buf)
	if err != nil {
		return err
	}
	root.Log.Debug("Export written to stdout", logging.F(logging.FieldCount, n))
	return root.WriteOutput(buf.Bytes())
}
