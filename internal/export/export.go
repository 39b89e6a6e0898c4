// Package export writes a user's transactions as csv, json or xlsx.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/fintrack/internal/aggregate"
	"fjacquet/fintrack/internal/ledgererror"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/store"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

// Format is an export file format.
type Format string

// Supported export formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported formats.
var Formats = []Format{FormatCSV, FormatJSON, FormatXLSX}

// SheetName is the worksheet xlsx exports are written to.
const SheetName = "Transactions"

// ParseFormat normalizes a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", ledgererror.Newf(ledgererror.KindValidation, "export.ParseFormat",
		"unsupported export format: %s (must be csv, json or xlsx)", s)
}

// ContentType returns the MIME type of an export.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Row is one exported transaction. The csv tags fix the column order.
type Row struct {
	Date         string `csv:"date" json:"date"`
	Title        string `csv:"title" json:"title"`
	Amount       string `csv:"amount" json:"amount"`
	Type         string `csv:"type" json:"type"`
	Category     string `csv:"category" json:"category"`
	Account      string `csv:"account" json:"account"`
	Status       string `csv:"status" json:"status"`
	Description  string `csv:"description" json:"description"`
	Organization string `csv:"organization" json:"organization"`
	Project      string `csv:"project" json:"project"`
	Reference    string `csv:"reference" json:"reference"`
}

// headers matches the csv tags of Row.
var headers = []string{
	"date", "title", "amount", "type", "category", "account",
	"status", "description", "organization", "project", "reference",
}

func (r Row) values() []interface{} {
	return []interface{}{
		r.Date, r.Title, r.Amount, r.Type, r.Category, r.Account,
		r.Status, r.Description, r.Organization, r.Project, r.Reference,
	}
}

// NewRow renders a resolved transaction with display names for type and status.
func NewRow(v aggregate.TransactionView) Row {
	return Row{
		Date:         v.Date,
		Title:        v.Title,
		Amount:       v.Amount.String(),
		Type:         v.Type.DisplayName(),
		Category:     v.Category,
		Account:      v.Account,
		Status:       v.Status.DisplayName(),
		Description:  v.Description,
		Organization: v.Organization,
		Project:      v.Project,
		Reference:    v.Reference,
	}
}

// Exporter selects and writes transactions.
type Exporter struct {
	store     *store.Store
	aggregate *aggregate.Engine
	log       logging.Logger
	delimiter rune
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithDelimiter sets the csv field delimiter.
func WithDelimiter(delim rune) Option {
	return func(e *Exporter) {
		if delim != 0 {
			e.delimiter = delim
		}
	}
}

// NewExporter creates an exporter. The csv delimiter defaults to a comma.
func NewExporter(st *store.Store, agg *aggregate.Engine, log logging.Logger, opts ...Option) *Exporter {
	e := &Exporter{store: st, aggregate: agg, log: log, delimiter: ','}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rows returns the transactions visible to userID dated between start and
// end inclusive, ordered by date. A zero start or end leaves that side open.
func (e *Exporter) Rows(ctx context.Context, userID uint, start, end time.Time) ([]Row, error) {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return nil, ledgererror.New(ledgererror.KindValidation, "export.Rows", "end date is before start date")
	}
	txs, err := e.store.ListTransactions(ctx, userID, store.TransactionFilter{Start: start, End: end})
	if err != nil {
		return nil, err
	}
	lookup, err := e.aggregate.Lookup(ctx, txs)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, NewRow(lookup.View(t)))
	}
	return rows, nil
}

// Export writes the selected transactions to w and returns the row count.
func (e *Exporter) Export(ctx context.Context, userID uint, start, end time.Time, format Format, w io.Writer) (int, error) {
	began := time.Now()
	rows, err := e.Rows(ctx, userID, start, end)
	if err != nil {
		return 0, err
	}
	if err := e.Write(w, rows, format); err != nil {
		return 0, err
	}
	e.log.Info("Transactions exported",
		logging.F(logging.FieldUserID, userID),
		logging.F(logging.FieldFormat, format),
		logging.F(logging.FieldCount, len(rows)),
		logging.F(logging.FieldDuration, time.Since(began).Milliseconds()))
	return len(rows), nil
}

// ExportFile writes the export to path, creating parent directories.
func (e *Exporter) ExportFile(ctx context.Context, userID uint, start, end time.Time, format Format, path string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), models.PermissionDirectory); err != nil {
		return 0, fmt.Errorf("error creating directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, models.PermissionReportFile) // #nosec G304 -- path is chosen by the operator
	if err != nil {
		return 0, fmt.Errorf("error creating export file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			e.log.WithError(err).Warn("Failed to close file", logging.F(logging.FieldOutputFile, path))
		}
	}()

	n, err := e.Export(ctx, userID, start, end, format, file)
	if err != nil {
		return 0, err
	}
	e.log.Debug("Export file written",
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldCount, n))
	return n, nil
}

// Write encodes rows in format.
func (e *Exporter) Write(w io.Writer, rows []Row, format Format) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rows, e.delimiter)
	case FormatJSON:
		return WriteJSON(w, rows)
	case FormatXLSX:
		return WriteXLSX(w, rows)
	default:
		_, err := ParseFormat(string(format))
		return err
	}
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row, delim rune) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delim
	if len(rows) == 0 {
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("error writing CSV header: %w", err)
		}
		csvWriter.Flush()
		return csvWriter.Error()
	}
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV: %w", err)
	}
	return nil
}

// WriteJSON writes rows as an indented array.
func WriteJSON(w io.Writer, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("error writing JSON: %w", err)
	}
	return nil
}

// WriteXLSX writes rows to a single worksheet with a header row.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("error creating worksheet: %w", err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("error writing XLSX header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := r.values()
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("error writing XLSX row %d: %w", i+1, err)
		}
	}

	widths := map[string]float64{"A": 12, "B": 30, "C": 12, "H": 40}
	for col, width := range widths {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("error sizing XLSX column %s: %w", col, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing XLSX: %w", err)
	}
	return nil
}
