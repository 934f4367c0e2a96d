package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/MAximeXX/AIEval/internal/pkg/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// AttachTraceContext gives every request a trace id and a request id, echoes
// both as response headers and stores them for the request logger. A live
// span wins over a client supplied X-Trace-Id.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		td := &ctxutil.TraceData{
			TraceID:   traceIDFor(span, c.GetHeader(headerTraceID)),
			RequestID: headerOrNew(c.GetHeader(headerRequestID)),
		}
		if span.IsRecording() {
			span.SetAttributes(attribute.String("bf.request_id", td.RequestID))
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		h := c.Writer.Header()
		h.Set(headerTraceID, td.TraceID)
		h.Set(headerRequestID, td.RequestID)
		c.Next()
	}
}

func traceIDFor(span trace.Span, header string) string {
	if sc := span.SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return headerOrNew(header)
}

func headerOrNew(v string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return uuid.NewString()
}
