package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fjacquet/fintrack/internal/aggregate"
	"fjacquet/fintrack/internal/dateutils"
	"fjacquet/fintrack/internal/ledgererror"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/scope"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// ParamProjectID is the report parameter naming the project of a
// project_finance report.
const ParamProjectID = "project_id"

// carriedParams are input keys copied into the persisted payload so that a
// report can be generated again.
var carriedParams = []string{ParamProjectID}

// Generator generates saved reports for a user.
type Generator struct {
	db        *gorm.DB
	log       logging.Logger
	aggregate *aggregate.Engine
	clock     func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the clock used for budget period windows.
func WithClock(clock func() time.Time) Option {
	return func(g *Generator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// NewGenerator creates a report generator.
func NewGenerator(db *gorm.DB, log logging.Logger, agg *aggregate.Engine, opts ...Option) *Generator {
	g := &Generator{db: db, log: log, aggregate: agg, clock: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result is a generated report.
type Result struct {
	Report *models.FinancialReport `json:"-" yaml:"-"`
	Data   interface{}             `json:"data" yaml:"data"`
}

// Generate builds report reportID for userID and stores the payload on the
// report's parameters. The report must be visible to userID, and so must
// the project of a project_finance report.
func (g *Generator) Generate(ctx context.Context, userID, reportID uint) (*Result, error) {
	const op = "report.Generate"
	start := time.Now()

	db := g.db.WithContext(ctx)
	rep, err := scope.Report(db, userID, reportID)
	if err != nil {
		return nil, err
	}
	if !Supported(rep.ReportType) {
		return nil, ledgererror.Newf(ledgererror.KindValidation, op, "unsupported report type: %s", rep.ReportType)
	}
	params, err := ParseParameters(rep.Parameters)
	if err != nil {
		return nil, ledgererror.New(ledgererror.KindValidation, op, "report parameters are not a JSON object")
	}

	in := Input{Report: *rep}
	if rep.ReportType == models.ReportProjectFinance {
		projectID, ok := ProjectID(params)
		if !ok {
			return nil, ledgererror.New(ledgererror.KindMissingParameter, op,
				"project_id is required for a project finance report")
		}
		project, err := scope.Project(db, userID, projectID)
		if err != nil {
			return nil, err
		}
		metrics, err := g.aggregate.ProjectMetrics(ctx, project)
		if err != nil {
			return nil, err
		}
		in.Project = &metrics
	}

	q := db.Scopes(scope.Transactions(userID)).
		Where("transaction_date >= ? AND transaction_date <= ?", dateutils.Day(rep.StartDate), dateutils.Day(rep.EndDate))
	if rep.OrganizationID != nil {
		q = q.Where("organization_id = ?", *rep.OrganizationID)
	}
	if err := q.Order("transaction_date, id").Find(&in.Transactions).Error; err != nil {
		return nil, ledgererror.Store(op, "transaction", err)
	}
	if in.Lookup, err = g.aggregate.Lookup(ctx, in.Transactions); err != nil {
		return nil, err
	}

	if rep.ReportType == models.ReportBudgetAnalysis {
		budgets, err := g.aggregate.VisibleBudgets(ctx, userID, aggregate.BudgetFilter{OrganizationID: rep.OrganizationID})
		if err != nil {
			return nil, err
		}
		if in.Budgets, err = g.aggregate.BudgetViews(ctx, budgets, g.clock()); err != nil {
			return nil, err
		}
	}

	data, err := Build(rep.ReportType, in)
	if err != nil {
		return nil, err
	}

	stored, err := persistable(data, params)
	if err != nil {
		return nil, ledgererror.Store(op, "report", err)
	}
	if err := db.Model(&models.FinancialReport{}).Where("id = ?", rep.ID).Update("parameters", stored).Error; err != nil {
		return nil, ledgererror.Store(op, "report", err)
	}
	rep.Parameters = stored

	g.log.Info("Report generated",
		logging.F(logging.FieldReportID, rep.ID),
		logging.F(logging.FieldReportType, rep.ReportType),
		logging.F(logging.FieldCount, len(in.Transactions)),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return &Result{Report: rep, Data: data}, nil
}

// ParseParameters decodes a report's parameter text. Empty text is an empty
// object. Numbers are kept as json.Number.
func ParseParameters(text string) (map[string]interface{}, error) {
	params := map[string]interface{}{}
	if strings.TrimSpace(text) == "" {
		return params, nil
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&params); err != nil {
		return nil, fmt.Errorf("failed to decode report parameters: %w", err)
	}
	return params, nil
}

// ProjectID reads the project_id parameter as a positive integer given
// either as a JSON number or a numeric string.
func ProjectID(params map[string]interface{}) (uint, bool) {
	var raw string
	switch v := params[ParamProjectID].(type) {
	case json.Number:
		raw = v.String()
	case string:
		raw = strings.TrimSpace(v)
	case float64:
		raw = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// persistable merges the payload with the carried input parameters.
func persistable(data interface{}, params map[string]interface{}) (string, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report payload: %w", err)
	}
	merged, err := ParseParameters(string(encoded))
	if err != nil {
		return "", err
	}
	for _, key := range carriedParams {
		if v, ok := params[key]; ok {
			merged[key] = v
		}
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report parameters: %w", err)
	}
	return string(out), nil
}

// Render encodes a payload as indented json or as yaml.
func Render(data interface{}, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
		}
		return append(out, '\n'), nil
	case "yaml", "yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}
