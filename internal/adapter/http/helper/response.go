package helper

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"userapp/internal/core/domain"
	"userapp/internal/core/model/response"
)

const (
	ErrorTemplate = "error.html"

	// ErrorBoundaryMessage is the static apology shown above any unhandled failure.
	ErrorBoundaryMessage = "Oops ! Une erreur est survenue."

	maxFormMemory = 1 << 20
)

// WantsHTML reports whether the client prefers a rendered page over JSON.
func WantsHTML(c *gin.Context) bool {
	return c.NegotiateFormat(binding.MIMEHTML, binding.MIMEJSON) == binding.MIMEHTML
}

// Render writes the payload as JSON or renders template with page for HTML clients.
func Render(c *gin.Context, statusCode int, template string, page any, payload any) {
	c.Negotiate(statusCode, gin.Negotiate{
		Offered:  []string{binding.MIMEHTML, binding.MIMEJSON},
		HTMLName: template,
		HTMLData: page,
		JSONData: payload,
	})
}

// FormValues flattens a submitted form; the last value wins for repeated keys.
func FormValues(c *gin.Context) (map[string]string, error) {
	err := c.Request.ParseMultipartForm(maxFormMemory)

	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}

	values := make(map[string]string, len(c.Request.PostForm))

	for key, vs := range c.Request.PostForm {
		if len(vs) > 0 {
			values[key] = vs[len(vs)-1]
		}
	}

	return values, nil
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func NewErrorResponse(err error) (int, response.ErrorResponse) {
	statusCode, code := errorStatus(err)

	body := response.ErrorResponse{
		Error: response.ResponseError{
			Code:    code,
			Message: err.Error(),
		},
	}

	var verr *domain.ValidationError

	if errors.As(err, &verr) {
		for _, field := range verr.Fields {
			body.Error.Errors = append(body.Error.Errors, response.ValidationError{
				Field:   field.Field,
				Message: field.Message,
			})
		}
	}

	return statusCode, body
}

// SendAppError renders the error boundary for err.
func SendAppError(c *gin.Context, err error) {
	statusCode, body := NewErrorResponse(err)

	if statusCode >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "Unhandled request error", "path", c.Request.URL.Path, "error", err)
	}

	Render(c, statusCode, ErrorTemplate, gin.H{
		"Title":   ErrorBoundaryMessage,
		"Apology": ErrorBoundaryMessage,
		"Message": err.Error(),
		"Errors":  body.Error.Errors,
	}, body)
}

// ErrorBoundary renders the last error a handler attached with c.Error
// when the handler did not write a response itself.
func ErrorBoundary() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		SendAppError(c, c.Errors.Last().Err)
	}
}
