package server

import (
	"encoding/json"
	"net/http"
)

// JSON error codes of the tenant-scoped API
const (
	errorMissingContext      = "missing_context"
	errorNeedsConnect        = "needs_connect"
	errorProviderUnavailable = "provider_unavailable"
	errorInvalidRequest      = "invalid_request"
	errorNotFound            = "not_found"
	errorUnauthorized        = "unauthorized"
	errorForbidden           = "forbidden"
	errorInternal            = "internal_error"
)

// NeedsConnectResponse is the 409 body for a tenant without an installation
type NeedsConnectResponse struct {
	Error      string `json:"error"`
	TenantID   string `json:"tenantId"`
	ConnectURL string `json:"connectUrl"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}

func (s *Server) writeNeedsConnect(w http.ResponseWriter, tenantID string) {
	writeJSON(w, http.StatusConflict, NeedsConnectResponse{
		Error:      errorNeedsConnect,
		TenantID:   tenantID,
		ConnectURL: s.connectURL(tenantID),
	})
}
