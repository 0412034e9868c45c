package api

import (
	"encoding/json"
	"net/http"
)

type ErrorCode string

const (
	EmptyBody        ErrorCode = "EmptyBody"
	InvalidBody      ErrorCode = "InvalidBody"
	LimitOutOfBounds ErrorCode = "LimitOutOfBounds"
	InvalidCursor    ErrorCode = "InvalidCursor"
	AlreadyExists    ErrorCode = "AlreadyExists"
	NotFound         ErrorCode = "NotFound"
	AuthError        ErrorCode = "AuthError"
	InternalError    ErrorCode = "InternalError"
)

type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Status is already on the wire, nothing left to do but note it.
		return
	}
}

func writeError(w http.ResponseWriter, statusCode int, code ErrorCode, message string) {
	writeJSON(w, statusCode, Error{Code: code, Message: message})
}
