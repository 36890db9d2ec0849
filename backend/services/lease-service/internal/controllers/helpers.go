package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	internal_utils "github.com/keystonepm/mono-repo/backend/services/lease-service/internal/utils"
	shared_dtos "github.com/keystonepm/mono-repo/backend/shared/go-dtos"
	"github.com/keystonepm/mono-repo/backend/shared/go-middleware"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
	"github.com/keystonepm/mono-repo/backend/shared/go-utils"
)

var validate = validator.New()

// formatValidationErrors converts validator errors into the API's detail list.
func formatValidationErrors(errs validator.ValidationErrors) []shared_dtos.ValidationErrorDetail {
	var details []shared_dtos.ValidationErrorDetail
	for _, err := range errs {
		var message string
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("Field '%s' is required", err.Field())
		case "min":
			message = fmt.Sprintf("Field '%s' must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("Field '%s' must not exceed %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("Field '%s' must be greater than %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("Field '%s' must be at least %s", err.Field(), err.Param())
		case "datetime":
			message = fmt.Sprintf("Field '%s' must be a date formatted %s", err.Field(), err.Param())
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", err.Field(), err.Tag())
		}
		details = append(details, shared_dtos.ValidationErrorDetail{
			Field:   err.Field(),
			Message: message,
			Code:    "validation_" + err.Tag(),
		})
	}
	return details
}

// decodeAndValidate writes the 400 itself and returns false on bad input.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return false
	}
	if err := validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation,
				"Request failed validation", formatValidationErrors(validationErrs), err)
		} else {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
		}
		return false
	}
	return true
}

// requestContext fetches the caller set by AuthMiddleware, writing a 401 if absent.
func requestContext(w http.ResponseWriter, r *http.Request) (models.RequestContext, bool) {
	rc, ok := middleware.RequestContextFrom(r.Context())
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing session", nil)
		return models.RequestContext{}, false
	}
	return rc, true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid id in path", nil, err)
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps domain errors onto status codes.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, internal_utils.ErrLeaseNotFound):
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Lease not found", nil, err)
	case errors.Is(err, internal_utils.ErrNotificationNotFound):
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Notification not found", nil, err)
	case errors.Is(err, internal_utils.ErrNotLeaseParty):
		utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeUnauthorized, "You are not a party to this lease", nil, err)
	case errors.Is(err, internal_utils.ErrWrongStatus):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeWrongStatus, "Lease is not in a status that allows this action", nil, err)
	case errors.Is(err, internal_utils.ErrInvalidLeaseTerms):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil, err)
	case errors.Is(err, utils.ErrRowVersionConflict):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeRowVersionConflict, "Lease was modified concurrently, please retry", nil, err)
	default:
		utils.HandleAppError(w, err)
	}
}
