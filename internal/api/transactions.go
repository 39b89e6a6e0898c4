package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"fjacquet/fintrack/internal/aggregate"
	"fjacquet/fintrack/internal/dateutils"
	"fjacquet/fintrack/internal/export"
	"fjacquet/fintrack/internal/ledger"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createTransactionRequest struct {
	Account            uint                     `json:"account"`
	DestinationAccount *uint                    `json:"destination_account"`
	Title              string                   `json:"title"`
	Amount             decimal.Decimal          `json:"amount"`
	Type               models.TransactionType   `json:"transaction_type"`
	Status             models.TransactionStatus `json:"status"`
	TransactionDate    string                   `json:"transaction_date"`
	Description        string                   `json:"description"`
	Category           *uint                    `json:"category"`
	Organization       *uint                    `json:"organization"`
	Project            *uint                    `json:"project"`
	IsRecurring        bool                     `json:"is_recurring"`
	RecurrenceType     models.RecurrenceType    `json:"recurrence_type"`
	RecurrenceEndDate  string                   `json:"recurrence_end_date"`
	ReferenceNumber    string                   `json:"reference_number"`
	Tags               string                   `json:"tags"`
}

type updateTransactionRequest struct {
	Title             *string                `json:"title"`
	Description       *string                `json:"description"`
	Category          *uint                  `json:"category"`
	TransactionDate   *string                `json:"transaction_date"`
	IsRecurring       *bool                  `json:"is_recurring"`
	RecurrenceType    *models.RecurrenceType `json:"recurrence_type"`
	RecurrenceEndDate *string                `json:"recurrence_end_date"`
	ReferenceNumber   *string                `json:"reference_number"`
	Tags              *string                `json:"tags"`
}

type statusRequest struct {
	Status models.TransactionStatus `json:"status"`
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	d, _, err := dateutils.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", field, value)
	}
	return &d, nil
}

func (s *Server) createTransaction(c *gin.Context) {
	var req createTransactionRequest
	if !bind(c, &req) {
		return
	}
	date, err := parseOptionalDate("transaction_date", req.TransactionDate)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	recurrenceEnd, err := parseOptionalDate("recurrence_end_date", req.RecurrenceEndDate)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	in := ledger.NewTransaction{
		AccountID:            req.Account,
		DestinationAccountID: req.DestinationAccount,
		Title:                req.Title,
		Amount:               req.Amount,
		Type:                 req.Type,
		Status:               req.Status,
		Description:          req.Description,
		CategoryID:           req.Category,
		OrganizationID:       req.Organization,
		ProjectID:            req.Project,
		IsRecurring:          req.IsRecurring,
		RecurrenceType:       req.RecurrenceType,
		RecurrenceEndDate:    recurrenceEnd,
		ReferenceNumber:      req.ReferenceNumber,
		Tags:                 req.Tags,
	}
	if date != nil {
		in.TransactionDate = *date
	}

	t, err := s.c.GetLedger().RecordTransaction(c.Request.Context(), currentUser(c), in)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, http.StatusCreated, newTransactionView(t))
}

func (s *Server) updateTransaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateTransactionRequest
	if !bind(c, &req) {
		return
	}
	patch := ledger.TransactionPatch{
		Title:           req.Title,
		Description:     req.Description,
		CategoryID:      req.Category,
		IsRecurring:     req.IsRecurring,
		RecurrenceType:  req.RecurrenceType,
		ReferenceNumber: req.ReferenceNumber,
		Tags:            req.Tags,
	}
	var err error
	if req.TransactionDate != nil {
		if patch.TransactionDate, err = parseOptionalDate("transaction_date", *req.TransactionDate); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}
	if req.RecurrenceEndDate != nil {
		if patch.RecurrenceEndDate, err = parseOptionalDate("recurrence_end_date", *req.RecurrenceEndDate); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}

	t, err := s.c.GetLedger().UpdateTransaction(c.Request.Context(), currentUser(c), id, patch)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, http.StatusOK, newTransactionView(t))
}

func (s *Server) updateTransactionStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !bind(c, &req) {
		return
	}
	t, err := s.c.GetLedger().UpdateTransactionStatus(c.Request.Context(), currentUser(c), id, req.Status)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, http.StatusOK, newTransactionView(t))
}

func (s *Server) transactionSummary(c *gin.Context) {
	org, ok := queryID(c, "organization")
	if !ok {
		return
	}
	project, ok := queryID(c, "project")
	if !ok {
		return
	}
	summary, err := s.c.GetAggregate().TransactionSummary(c.Request.Context(), currentUser(c), aggregate.SummaryFilter{
		Period:         c.Query("period"),
		OrganizationID: org,
		ProjectID:      project,
	}, s.today())
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, http.StatusOK, summary)
}

// exportTransactions streams the export as an attachment rather than in the
// envelope.
func (s *Server) exportTransactions(c *gin.Context) {
	start, end, err := validation.ParseDateRange(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	format, err := export.ParseFormat(c.DefaultQuery("format", s.c.GetConfig().Export.DefaultFormat))
	if err != nil {
		Fail(c, err)
		return
	}

	exporter := s.c.GetExporter()
	rows, err := exporter.Rows(c.Request.Context(), currentUser(c), start, end)
	if err != nil {
		Fail(c, err)
		return
	}
	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.%s\"",
		s.today().Format("20060102"), format))
	c.Status(http.StatusOK)
	if err := exporter.Write(c.Writer, rows, format); err != nil {
		_ = c.Error(err)
	}
}
