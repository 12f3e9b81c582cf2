// Package handlers implements the gin handlers of the resolver API.
package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cgsmiles/internal/interfaces/http/middleware"
	"github.com/turtacn/cgsmiles/pkg/errors"
	"github.com/turtacn/cgsmiles/pkg/types/common"
)

// respondOK writes data in the success envelope.
func respondOK[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, common.NewSuccessResponse(data, middleware.GetRequestID(c)))
}

// respondError maps err to its HTTP status and writes the error envelope.
// Server-side failures are masked behind the code's default message.
func respondError(c *gin.Context, err error) {
	code := errors.ErrCodeInternal
	message := errors.DefaultMessageForCode(code)
	detail := ""

	var ae *errors.AppError
	if stderrors.As(err, &ae) {
		code = ae.Code
		message, detail = ae.Message, ae.Detail
	}
	status := errors.HTTPStatusForCode(code)
	if status >= http.StatusInternalServerError {
		message, detail = errors.DefaultMessageForCode(code), ""
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, common.NewErrorResponse(string(code), message, detail, middleware.GetRequestID(c)))
}

// bindJSON decodes the body into dest and validates its binding tags.
func bindJSON(c *gin.Context, dest interface{}) error {
	err := c.ShouldBindJSON(dest)
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.Newf(errors.ErrCodeNotationTooLarge, "request body exceeds %d bytes", tooLarge.Limit)
	}
	return errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body").WithDetail(err.Error())
}

// NotFound answers unmatched routes in the error envelope.
func NotFound(c *gin.Context) {
	respondError(c, errors.NotFound("route not found").WithDetail(c.Request.Method+" "+c.Request.URL.Path))
}
