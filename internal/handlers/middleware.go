package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceID assigns every request a trace id, stored in the context and echoed
// in the X-Trace-ID header for log correlation.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := uuid.New().String()
		c.Set("trace_id", traceID)
		c.Writer.Header().Set("X-Trace-ID", traceID)
		c.Next()
	}
}
