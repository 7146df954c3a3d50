package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/blix057/afdver-Bot/internal/domain"
)

// internalError builds the 500 envelope with a safe message. The
// underlying error is attached as detail only in debug mode; production
// responses never carry internal error strings.
func internalError(message string, err error) domain.ErrorResponse {
	resp := domain.NewErrorResponse(domain.ErrCodeInternal, message)
	if gin.IsDebugging() {
		resp = resp.WithDetail(err.Error())
	}
	return resp
}
