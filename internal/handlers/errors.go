package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/ledgerbook/internal/apperrors"
	"github.com/SscSPs/ledgerbook/internal/core/domain"
	"github.com/SscSPs/ledgerbook/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Kind    apperrors.Kind    `json:"kind"`
	Details map[string]string `json:"details,omitempty"` // Field name to failed rule
}

var kindStatus = map[apperrors.Kind]int{
	apperrors.KindValidation: http.StatusBadRequest,
	apperrors.KindNotFound:   http.StatusNotFound,
	apperrors.KindConflict:   http.StatusConflict,
	apperrors.KindIntegrity:  http.StatusUnprocessableEntity,
	apperrors.KindForbidden:  http.StatusForbidden,
	apperrors.KindInternal:   http.StatusInternalServerError,
}

// StatusForError maps an error kind to its HTTP status.
func StatusForError(err error) int {
	if status, ok := kindStatus[apperrors.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError writes err as an ErrorResponse. Internal errors are logged and their detail hidden.
func respondError(c *gin.Context, err error, action string) {
	logger := middleware.GetLoggerFromContext(c)
	kind := apperrors.KindOf(err)
	status := StatusForError(err)
	message := err.Error()

	if kind == apperrors.KindInternal {
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		message = "Failed to " + action
	} else {
		logger.Warn("Rejected request to "+action,
			slog.String("code", apperrors.CodeOf(err)),
			slog.String("error", err.Error()))
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
	}
	c.JSON(status, ErrorResponse{Error: message, Code: apperrors.CodeOf(err), Kind: kind})
}

// respondBindError reports a request that failed to bind or validate.
func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromContext(c).Warn("Failed to bind request", slog.String("error", err.Error()))
	res := ErrorResponse{
		Error: "Invalid request format: " + err.Error(),
		Code:  apperrors.CodeInvalidInput,
		Kind:  apperrors.KindValidation,
	}

	var fieldErrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &fieldErrs):
		res.Details = make(map[string]string, len(fieldErrs))
		names := make([]string, 0, len(fieldErrs))
		for _, fieldErr := range fieldErrs {
			res.Details[fieldErr.Field()] = fieldErr.Tag()
			names = append(names, fieldErr.Field())
		}
		res.Error = "Invalid fields: " + strings.Join(names, ", ")
	case errors.As(err, &syntaxErr):
		res.Error = fmt.Sprintf("Malformed JSON at offset %d", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		res.Error = fmt.Sprintf("Field '%s' has the wrong type", typeErr.Field)
	}
	c.JSON(http.StatusBadRequest, res)
}

// actorOrAbort fetches the authenticated actor, writing a 401 when there is none.
func actorOrAbort(c *gin.Context) (domain.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		middleware.GetLoggerFromContext(c).Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized", Code: "UNAUTHORIZED", Kind: apperrors.KindForbidden})
		return domain.Actor{}, false
	}
	return actor, true
}
