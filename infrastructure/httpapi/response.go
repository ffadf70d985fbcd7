package httpapi

import (
	"encoding/json"
	"net/http"

	"chat-sync/contract"
	"chat-sync/errors"
)

var statusByKind = map[errors.Kind]int{
	errors.KindInvalidInput:        http.StatusBadRequest,
	errors.KindUnauthorized:        http.StatusUnauthorized,
	errors.KindInvalidCredentials:  http.StatusUnauthorized,
	errors.KindUnknownReceiver:     http.StatusNotFound,
	errors.KindMissingPeer:         http.StatusBadRequest,
	errors.KindNotFoundOrForbidden: http.StatusNotFound,
	errors.KindStoreUnavailable:    http.StatusServiceUnavailable,
}

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// Error writes the stable kind and coarse message of err. The error text
// itself is never sent to the client.
func Error(w http.ResponseWriter, err error) {
	kind, message := errors.Classify(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	JSON(w, status, contract.ErrorResponse{Error: contract.ErrorBody{Code: string(kind), Message: message}})
}
