// Package render writes JSON bodies and maps domain errors to HTTP responses.
package render

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
)

// JSON writes a JSON response.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// StatusFor maps an error kind to an HTTP status code.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindSameWallet:
		return http.StatusBadRequest
	case domain.KindNotActive, domain.KindInsufficientBalance:
		return http.StatusUnprocessableEntity
	case domain.KindOwnership:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as {"error", "code", "details"}. Internal errors are
// logged and their message is not exposed.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status := StatusFor(kind)

	resp := dto.ErrorResponse{Error: err.Error(), Code: string(kind)}

	var verr *dto.ValidationError
	if errors.As(err, &verr) {
		resp.Details = verr.Fields
	}

	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		resp.Error = "internal server error"
	}

	JSON(w, status, resp)
}

// Fail writes an error that has no domain counterpart, such as a malformed
// body or a missing credential.
func Fail(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, dto.ErrorResponse{Error: message, Code: code})
}
