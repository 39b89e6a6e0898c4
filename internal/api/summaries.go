package api

import (
	"net/http"

	"fjacquet/fintrack/internal/aggregate"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type contributeRequest struct {
	Amount              decimal.Decimal `json:"amount"`
	UpdateLinkedAccount bool            `json:"update_linked_account"`
}

func (s *Server) contribute(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req contributeRequest
	if !bind(c, &req) {
		return
	}
	goal, err := s.c.GetLedger().Contribute(c.Request.Context(), currentUser(c), id, req.Amount, req.UpdateLinkedAccount)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, http.StatusOK, newGoalView(goal))
}

func (s *Server) goalSummary(c *gin.Context) {
	summary, err := s.c.GetAggregate().GoalSummary(c.Request.Context(), currentUser(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, http.StatusOK, summary)
}

func (s *Server) budgetSummary(c *gin.Context) {
	org, ok := queryID(c, "organization")
	if !ok {
		return
	}
	project, ok := queryID(c, "project")
	if !ok {
		return
	}
	summary, err := s.c.GetAggregate().BudgetSummary(c.Request.Context(), currentUser(c),
		aggregate.BudgetFilter{OrganizationID: org, ProjectID: project}, s.today())
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, http.StatusOK, summary)
}

func (s *Server) dashboard(c *gin.Context) {
	d, err := s.c.GetAggregate().Dashboard(c.Request.Context(), currentUser(c), s.today())
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, http.StatusOK, d)
}

func (s *Server) financialSummary(c *gin.Context) {
	summary, err := s.c.GetAggregate().FinancialSummary(c.Request.Context(), currentUser(c),
		c.DefaultQuery("period", "month"), s.today())
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, http.StatusOK, summary)
}

func (s *Server) generateReport(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := s.c.GetReports().Generate(c.Request.Context(), currentUser(c), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, http.StatusOK, gin.H{
		"id":          result.Report.ID,
		"title":       result.Report.Title,
		"report_type": result.Report.ReportType,
		"data":        result.Data,
	})
}
