package httpapi

import (
	"net/http"

	"boardhub/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// writeError maps a service error onto the HTTP status taxonomy: validation
// 400, authorization 403, not found 404, invalid operation 409, anything
// else 500 with the detail logged rather than leaked.
func writeError(c *gin.Context, log *logrus.Logger, err error) {
	if e := apperr.As(err); e != nil {
		status := http.StatusInternalServerError
		switch e.Kind {
		case apperr.KindValidation:
			status = http.StatusBadRequest
		case apperr.KindAuthorization:
			status = http.StatusForbidden
		case apperr.KindNotFound:
			status = http.StatusNotFound
		case apperr.KindInvalidOperation:
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": e.Message})
		return
	}

	log.WithError(err).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
