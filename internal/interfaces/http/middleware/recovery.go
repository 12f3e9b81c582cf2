package middleware

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cgsmiles/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cgsmiles/pkg/errors"
	"github.com/turtacn/cgsmiles/pkg/types/common"
)

// Recovery turns a handler panic into a 500 response in the standard error
// envelope.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		id := GetRequestID(c)
		logger.Error("panic recovered",
			logging.Any("panic", recovered),
			logging.String("path", c.Request.URL.Path),
			logging.String(logging.FieldRequestID, id),
		)
		code := errors.ErrCodeInternal
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			common.NewErrorResponse(string(code), errors.DefaultMessageForCode(code), "", id))
	})
}

// BodyLimit caps request bodies at limit bytes. Reads past the cap fail with
// *http.MaxBytesError. A non-positive limit disables the cap.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
