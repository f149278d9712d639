package response

import (
	"net/http"

	"boxoffice/internal/shared/apperr"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError maps a classified error to its HTTP status and envelope.
func RespondError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		code = http.StatusNotFound
	case apperr.KindConflict:
		code = http.StatusConflict
	case apperr.KindBadRequest:
		code = http.StatusBadRequest
	case apperr.KindUnauthorized:
		code = http.StatusUnauthorized
	}
	RespondJSON(c, "error", code, err.Error(), nil, nil)
}
