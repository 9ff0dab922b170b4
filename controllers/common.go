package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cutmap/smo-backend/services"
	"github.com/cutmap/smo-backend/utils"
)

func parseUint(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	return uint(v), err
}

// ErrNoPermission is returned on role check failures.
var ErrNoPermission = &CustomError{"You do not have permission"}

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

// respondServiceError maps a service error kind to its HTTP status. The
// cause (store driver detail) is logged, never sent to the client.
func respondServiceError(c *gin.Context, err error) {
	if services.IsKind(err, services.KindTransient) {
		utils.ErrorLogger.Printf("Transient store error on %s: %v", c.Request.URL.Path, err)
	}
	utils.RespondError(c, services.StatusCode(err), err)
}
