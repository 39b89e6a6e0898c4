package api

import (
	"net/http"

	"fjacquet/fintrack/internal/ledgererror"

	"github.com/gin-gonic/gin"
)

// Business codes carried in the response envelope.
const (
	CodeOK            = 0
	CodeInvalidParam  = 40001
	CodeAuth          = 40101
	CodeForbidden     = 40301
	CodeNotFound      = 40401
	CodeConflict      = 40901
	CodeUnprocessable = 42201
	CodeServerErr     = 50001
)

// ErrorBody is the envelope of a failed request.
type ErrorBody struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Success writes data in the success envelope.
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error writes a failure envelope with an explicit kind.
func Error(c *gin.Context, httpStatus, code int, kind ledgererror.Kind, msg string) {
	c.AbortWithStatusJSON(httpStatus, ErrorBody{Code: code, Kind: string(kind), Message: msg})
}

// Fail renders err by kind. Underlying causes never reach the client.
func Fail(c *gin.Context, err error) {
	kind := ledgererror.KindOf(err)
	status, code := statusFor(kind)
	msg := ledgererror.Message(err)
	if kind == ledgererror.KindPersistence {
		c.Error(err)
		msg = "internal error"
	}
	Error(c, status, code, kind, msg)
}

// BadRequest reports a malformed request.
func BadRequest(c *gin.Context, msg string) {
	Error(c, http.StatusBadRequest, CodeInvalidParam, ledgererror.KindValidation, msg)
}

func statusFor(kind ledgererror.Kind) (int, int) {
	switch kind {
	case ledgererror.KindInvalidAmount, ledgererror.KindMissingDestination, ledgererror.KindValidation,
		ledgererror.KindInvalidRole, ledgererror.KindMissingParameter, ledgererror.KindCannotRemoveOwner:
		return http.StatusBadRequest, CodeInvalidParam
	case ledgererror.KindInsufficientFunds:
		return http.StatusUnprocessableEntity, CodeUnprocessable
	case ledgererror.KindAlreadyMember:
		return http.StatusConflict, CodeConflict
	case ledgererror.KindNotFound:
		return http.StatusNotFound, CodeNotFound
	case ledgererror.KindForbidden:
		return http.StatusForbidden, CodeForbidden
	default:
		return http.StatusInternalServerError, CodeServerErr
	}
}
