// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package engine

import "fmt"

// APIError is a rejection reported by the licensing API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("status: %d, message: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("status: %d, code: %s, message: %s", e.Status, e.Code, e.Message)
}

// NewAPIError builds an APIError.
func NewAPIError(status int, code, format string, args ...any) *APIError {
	return &APIError{Status: status, Code: code, Message: fmt.Sprintf(format, args...)}
}

// SDKError reports a violated engine precondition, such as refreshing a lease
// that was never granted.
type SDKError struct {
	Message string
}

func (e *SDKError) Error() string { return e.Message }

// NewSDKError builds an SDKError.
func NewSDKError(format string, args ...any) *SDKError {
	return &SDKError{Message: fmt.Sprintf(format, args...)}
}
