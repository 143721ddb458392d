package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/unipay/unipay/internal/auth"
	"github.com/unipay/unipay/internal/models"
)

// errorBody is the JSON error envelope. Kind is a stable machine-readable
// string, one per rejection sentinel; clients branch on it instead of
// parsing messages.
type errorBody struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, kind := classify(err)
	var body errorBody
	body.Error.Kind = kind
	body.Error.Message = err.Error()
	if status >= 500 {
		slog.Error("request error", "kind", kind, "error", err)
		body.Error.Message = "internal error"
	}
	writeJSON(w, status, body)
}

// classify maps each rejection sentinel to an HTTP status and kind
// string. No sentinel collapses into a generic failure.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidSignature):
		return http.StatusUnprocessableEntity, "invalid_signature"
	case errors.Is(err, models.ErrDuplicateFeeRequest):
		return http.StatusConflict, "duplicate_fee_request"
	case errors.Is(err, models.ErrWrongOrganization):
		return http.StatusForbidden, "wrong_organization"
	case errors.Is(err, models.ErrAlreadyProcessed):
		return http.StatusConflict, "already_processed"
	case errors.Is(err, models.ErrExpired):
		return http.StatusGone, "expired"
	case errors.Is(err, models.ErrInsufficientAmount):
		return http.StatusBadRequest, "insufficient_amount"
	case errors.Is(err, models.ErrPrivilegeCeiling):
		return http.StatusForbidden, "privilege_ceiling"
	case errors.Is(err, models.ErrAlreadyOfficer):
		return http.StatusConflict, "already_officer"
	case errors.Is(err, models.ErrNotAnOfficer):
		return http.StatusNotFound, "not_an_officer"
	case errors.Is(err, models.ErrNotVoidable):
		return http.StatusConflict, "not_voidable"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrNotPermitted):
		return http.StatusForbidden, "not_permitted"
	case errors.Is(err, models.ErrNoCurrentPeriod):
		return http.StatusConflict, "no_current_period"
	case errors.Is(err, models.ErrProgramAffiliationRequired):
		return http.StatusBadRequest, "program_affiliation_required"
	case errors.Is(err, models.ErrCollegeNodeHasParent):
		return http.StatusBadRequest, "college_node_has_parent"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, auth.ErrAccountDisabled):
		return http.StatusForbidden, "account_disabled"
	case errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest, "weak_password"
	case errors.Is(err, auth.ErrUsernameExists):
		return http.StatusConflict, "username_exists"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	var body errorBody
	body.Error.Kind = "bad_request"
	body.Error.Message = msg
	writeJSON(w, http.StatusBadRequest, body)
}

// decode reads a JSON request body into dst.
func decode(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
