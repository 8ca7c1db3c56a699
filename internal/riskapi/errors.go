// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package riskapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// HTTPError is returned when the server answers with a status other than
// 200 OK. Message holds the error text returned by the server, or the
// standard status text when the body was empty.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Message)
}

// ClientError reports a failure on the client side: bad arguments, an
// invalid scheme, or a transport error before any response was read.
type ClientError struct {
	Op  string
	Err error
}

func (e *ClientError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// mapHTTPError converts a non-200 response into an *HTTPError.
func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() == http.StatusOK {
		return nil
	}
	return &HTTPError{Code: resp.StatusCode(), Message: errorMessage(resp.StatusCode(), resp.Body())}
}

// errorMessage extracts a readable message from an error body. JSON bodies
// carrying an "error" or "message" string are unwrapped.
func errorMessage(code int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return http.StatusText(code)
	}
	var obj map[string]any
	if json.Unmarshal(body, &obj) == nil {
		for _, key := range []string{"error", "message", "detail"} {
			if s, ok := obj[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return text
}
