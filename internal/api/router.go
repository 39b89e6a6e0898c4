// Package api exposes the ledger services over HTTP with gin.
//
// Authentication happens upstream: the proxy in front of the service sets
// X-User-ID to the authenticated user. Responses use a small envelope,
// {"code":0,"data":...} on success and {"code":n,"kind":...,"message":...}
// on failure.
package api

import (
	"strings"
	"time"

	"fjacquet/fintrack/internal/container"
	"fjacquet/fintrack/internal/dateutils"
	"fjacquet/fintrack/internal/validation"

	"github.com/gin-gonic/gin"
)

// Server holds the services the handlers call.
type Server struct {
	c *container.Container
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(c *container.Container) *gin.Engine {
	if mode := c.GetConfig().Server.Mode; mode != "" {
		gin.SetMode(mode)
	}
	s := &Server{c: c}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(c.GetLogger()))

	api := r.Group("/api", Identity(c.GetStore()))
	{
		api.GET("/accounts/total-balance", s.totalBalance)
		api.POST("/accounts/:id/deposit", s.deposit)
		api.POST("/accounts/:id/withdraw", s.withdraw)

		api.POST("/transactions", s.createTransaction)
		api.GET("/transactions/summary", s.transactionSummary)
		api.GET("/transactions/export", s.exportTransactions)
		api.PATCH("/transactions/:id", s.updateTransaction)
		api.PATCH("/transactions/:id/status", s.updateTransactionStatus)

		api.GET("/goals/summary", s.goalSummary)
		api.POST("/goals/:id/contribute", s.contribute)

		api.GET("/budgets/summary", s.budgetSummary)

		api.GET("/dashboard", s.dashboard)
		api.GET("/dashboard/summary", s.financialSummary)

		api.POST("/reports/:id/generate", s.generateReport)

		api.POST("/organizations/:id/members", s.addMember)
		api.PATCH("/organizations/:id/members/:userID", s.updateMemberRole)
		api.DELETE("/organizations/:id/members/:userID", s.removeMember)

		api.POST("/projects/:id/team", s.addTeamMember)
		api.DELETE("/projects/:id/team/:userID", s.removeTeamMember)
	}
	return r
}

func (s *Server) today() time.Time {
	return dateutils.Day(s.c.Today())
}

// pathID reads a numeric path parameter, writing a 400 when it is invalid.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := validation.ParseID(name, c.Param(name))
	if err != nil {
		BadRequest(c, err.Error())
		return 0, false
	}
	return id, true
}

// queryID reads an optional numeric query parameter.
func queryID(c *gin.Context, name string) (*uint, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := validation.ParseID(name, raw)
	if err != nil {
		BadRequest(c, err.Error())
		return nil, false
	}
	return &id, true
}

// bind decodes a JSON body, writing a 400 when it is malformed.
func bind(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}
