package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MAximeXX/AIEval/internal/platform/apierr"
)

// CodeKey is the gin context key under which the last error code is kept.
const CodeKey = "api_error_code"

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.Set(CodeKey, code)
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// RespondServiceError maps a service/domain error onto its HTTP status and
// records it on the gin context for the request logger.
func RespondServiceError(c *gin.Context, err error) {
	ae := apierr.FromError(err)
	_ = c.Error(err)
	c.Set(CodeKey, ae.Code)
	body := APIError{Message: ae.PublicMessage(), Code: ae.Code}
	var fe interface{ FieldName() string }
	if errors.As(err, &fe) {
		body.Field = fe.FieldName()
	}
	c.JSON(ae.Status, ErrorEnvelope{Error: body})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
