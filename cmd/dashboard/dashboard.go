// Package dashboard prints the dashboard and period summaries of a user.
package dashboard

import (
	"fjacquet/fintrack/cmd/root"
	"fjacquet/fintrack/internal/report"
	"fjacquet/fintrack/internal/validation"

	"github.com/spf13/cobra"
)

var (
	format string
	period string
)

// Cmd represents the dashboard command
var Cmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the dashboard of a user",
	Long: `Print balances, this month's income and expenses, the five most recent
transactions, budget totals and goal progress of the acting user.`,
	RunE: dashboardFunc,
}

// SummaryCmd represents the summary command
var SummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print income, expenses and categories for a period",
	RunE:  summaryFunc,
}

func init() {
	Cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json or yaml)")
	SummaryCmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json or yaml)")
	SummaryCmd.Flags().StringVar(&period, "period", "month", "Period: week, month, quarter or year")
}

func dashboardFunc(cmd *cobra.Command, args []string) error {
	if err := validation.IsValidReportFormat(format); err != nil {
		return err
	}
	user, err := root.CurrentUser(cmd.Context())
	if err != nil {
		return err
	}
	c, _ := root.GetContainer()
	d, err := c.GetAggregate().Dashboard(cmd.Context(), user.ID, c.Today())
	if err != nil {
		return err
	}
	return render(d)
}

func summaryFunc(cmd *cobra.Command, args []string) error {
	if err := validation.IsValidReportFormat(format); err != nil {
		return err
	}
	user, err := root.CurrentUser(cmd.Context())
	if err != nil {
		return err
	}
	c, _ := root.GetContainer()
	s, err := c.GetAggregate().FinancialSummary(cmd.Context(), user.ID, period, c.Today())
	if err != nil {
		return err
	}
	return render(s)
}

func render(v interface{}) error {
	out, err := report.Render(v, format)
	if err != nil {
		return err
	}
	return root.WriteOutput(out)
}
