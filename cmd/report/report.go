// Package report defines and generates financial reports.
package report

import (
	"encoding/json"
	"fmt"

	"fjacquet/fintrack/cmd/root"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
	reports "fjacquet/fintrack/internal/report"
	"fjacquet/fintrack/internal/store"
	"fjacquet/fintrack/internal/validation"

	"github.com/spf13/cobra"
)

var (
	reportID uint
	format   string

	title      string
	reportType string
	startDate  string
	endDate    string
	orgID      uint
	projectID  uint
)

// Cmd represents the report command
var Cmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a saved financial report",
	Long: `Generate the report with the given id and print its payload. The payload
is also stored on the report so it can be read back later.`,
	RunE: generateFunc,
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Define a financial report",
	RunE:  createFunc,
}

func init() {
	Cmd.Flags().UintVar(&reportID, "id", 0, "Id of the report to generate")
	Cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json or yaml)")

	createCmd.Flags().StringVar(&title, "title", "", "Title of the report")
	createCmd.Flags().StringVar(&reportType, "type", "", "Report type: income_statement, expense_report, cash_flow, budget_analysis, project_finance or tax_report")
	createCmd.Flags().StringVar(&startDate, "start", "", "First day covered by the report")
	createCmd.Flags().StringVar(&endDate, "end", "", "Last day covered by the report")
	createCmd.Flags().UintVar(&orgID, "org", 0, "Organization the report belongs to")
	createCmd.Flags().UintVar(&projectID, "project", 0, "Project of a project_finance report")
	Cmd.AddCommand(createCmd)
}

func generateFunc(cmd *cobra.Command, args []string) error {
	if reportID == 0 {
		return fmt.Errorf("--id is required")
	}
	if err := validation.IsValidReportFormat(format); err != nil {
		return err
	}
	user, err := root.CurrentUser(cmd.Context())
	if err != nil {
		return err
	}
	c, _ := root.GetContainer()
	result, err := c.GetReports().Generate(cmd.Context(), user.ID, reportID)
	if err != nil {
		return err
	}
	out, err := reports.Render(result.Data, format)
	if err != nil {
		return err
	}
	return root.WriteOutput(out)
}

func createFunc(cmd *cobra.Command, args []string) error {
	if startDate == "" || endDate == "" {
		return fmt.Errorf("--start and --end are required")
	}
	start, end, err := validation.ParseDateRange(startDate, endDate)
	if err != nil {
		return err
	}
	user, err := root.CurrentUser(cmd.Context())
	if err != nil {
		return err
	}

	in := store.NewReport{
		Title:      title,
		ReportType: models.ReportType(reportType),
		StartDate:  start,
		EndDate:    end,
	}
	if orgID != 0 {
		id := orgID
		in.OrganizationID = &id
	}
	if projectID != 0 {
		params, err := json.Marshal(map[string]uint{reports.ParamProjectID: projectID})
		if err != nil {
			return err
		}
		in.Parameters = string(params)
	}

	c, _ := root.GetContainer()
	rep, err := c.GetStore().CreateReport(cmd.Context(), user.ID, in)
	if err != nil {
		return err
	}
	root.Log.Debug("Report created from command line", logging.F(logging.FieldReportID, rep.ID))
	return root.WriteOutput([]byte(fmt.Sprintf("%d\t%s\n", rep.ID, rep.Title)))
}
