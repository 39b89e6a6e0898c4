package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) deposit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req amountRequest
	if !bind(c, &req) {
		return
	}
	acc, err := s.c.GetLedger().Deposit(c.Request.Context(), currentUser(c), id, req.Amount)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, http.StatusOK, newAccountView(acc))
}

func (s *Server) withdraw(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req amountRequest
	if !bind(c, &req) {
		return
	}
	acc, err := s.c.GetLedger().Withdraw(c.Request.Context(), currentUser(c), id, req.Amount)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, http.StatusOK, newAccountView(acc))
}

func (s *Server) totalBalance(c *gin.Context) {
	total, err := s.c.GetAggregate().TotalBalance(c.Request.Context(), currentUser(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, http.StatusOK, gin.H{"total_balance": total})
}
