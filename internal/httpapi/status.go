// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package httpapi

import (
	"net/http"

	"github.com/samber/oops"
)

// codeStatus maps domain error codes to HTTP statuses. Codes absent from the
// map are treated as internal errors.
var codeStatus = map[string]int{
	"AUTH_UNAUTHORIZED":        http.StatusUnauthorized,
	"AUTH_INVALID_CREDENTIALS": http.StatusForbidden,
	"AUTH_FORBIDDEN":           http.StatusForbidden,
	"ACCOUNT_NAME_TAKEN":       http.StatusConflict,
	"ACCOUNT_EMAIL_TAKEN":      http.StatusConflict,
	"ACCOUNT_CONFLICT":         http.StatusConflict,
	"ACCOUNT_NOT_FOUND":        http.StatusNotFound,
	"POST_NOT_FOUND":           http.StatusNotFound,
	"VALIDATION_FAILED":        http.StatusBadRequest,
}

// errorStatus resolves the HTTP status for a domain error by its oops code.
func errorStatus(err error) (code string, status int) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return "INTERNAL", http.StatusInternalServerError
	}
	code, _ = oopsErr.Code().(string)
	if code == "" {
		return "INTERNAL", http.StatusInternalServerError
	}
	status, ok = codeStatus[code]
	if !ok {
		return code, http.StatusInternalServerError
	}
	return code, status
}
