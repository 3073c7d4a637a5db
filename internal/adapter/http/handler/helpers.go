package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/mymoolah/walletcore/internal/adapter/http/dto"
	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/auth"
	"github.com/mymoolah/walletcore/internal/infrastructure/logger"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindInsufficient:
		return http.StatusUnprocessableEntity
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindExternal:
		return http.StatusBadGateway
	case domain.KindUnauthorized:
		if errors.Is(err, domain.ErrNotMovementOwner) {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError logs err and writes the mapped response. Internal
// details are not echoed to callers.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapDomainError(err)
	kind := domain.KindOf(err)

	log := logger.FromContext(r.Context())
	switch {
	case kind == domain.KindInvariant:
		logger.Critical(r.Context()).Err(err).Str("path", r.URL.Path).Msg("invariant violation")
	case status >= http.StatusInternalServerError:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	default:
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected")
	}

	resp := dto.ErrorResponse{Error: http.StatusText(status), Kind: string(kind)}
	if status < http.StatusInternalServerError || kind == domain.KindExternal {
		resp.Message = err.Error()
	}
	writeJSON(w, status, resp)
}

// decodeRequest decodes and validates a JSON body into dst. It writes a 400
// and returns false on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	if err := dto.Validate(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation failed",
			Kind:    string(domain.KindValidation),
			Message: err.Error(),
		})
		return false
	}
	return true
}

// callerID returns the authenticated user id, writing a 401 when absent.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := domain.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
		return "", false
	}
	return id, true
}

// ownerScope returns the user id movements must belong to. Operators see
// every movement.
func ownerScope(r *http.Request) string {
	if auth.RoleFromContext(r.Context()).Satisfies(auth.RoleOperator) {
		return ""
	}
	id, _ := domain.UserIDFromContext(r.Context())
	return id
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultValue
	}
	return i
}
