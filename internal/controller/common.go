package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sistira/sistira/internal/apperr"
	"github.com/sistira/sistira/internal/dto"
)

// statusForKind maps service error kinds to HTTP statuses. Unknown
// kinds always collapse to 500 so internals never pick a status by
// accident.
func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(ctx *gin.Context, err error) {
	kind := apperr.KindOf(err)
	ctx.JSON(statusForKind(kind), dto.ErrorResponse{
		Error:   kind.String(),
		Message: apperr.MessageOf(err),
	})
}

func writeBindError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   apperr.KindValidation.String(),
		Message: "invalid request body",
		Details: []string{err.Error()},
	})
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	raw, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   apperr.KindValidation.String(),
			Message: "invalid " + name + " format",
		})
		return 0, false
	}
	return uint(raw), true
}

// requireUserID reads the acting user from the user_id query param.
// Authentication lives at the gateway; this service only needs the
// identity it forwards.
func requireUserID(ctx *gin.Context) (uint, bool) {
	raw := ctx.Query("user_id")
	if raw == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   apperr.KindValidation.String(),
			Message: "user_id query parameter is required",
		})
		return 0, false
	}
	val, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   apperr.KindValidation.String(),
			Message: "invalid user_id format",
		})
		return 0, false
	}
	return uint(val), true
}
