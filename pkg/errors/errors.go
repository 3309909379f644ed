// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	// Upstream failure codes. Every error that crosses the client boundary
	// belongs to exactly one of the three `upstream.*` families: network
	// (unreachable, timed out, or self-throttled), api (server answered with
	// a non-success status), validation (body does not match the endpoint's
	// expected shape).
	CodeUpstreamNetworkFailure    Code = "upstream.network.failure"
	CodeUpstreamNetworkTimeout    Code = "upstream.network.timeout"
	CodeUpstreamNetworkThrottled  Code = "upstream.network.throttled"
	CodeUpstreamAPIFailure        Code = "upstream.api.failure"
	CodeUpstreamValidationFailure Code = "upstream.validation.failure"
	CodeUpstreamRequestInvalid    Code = "upstream.request.invalid"

	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"

	CodeAggregateCriticalAllFailed Code = "aggregate.critical.all_failed"
	CodeAggregateRequestInvalid    Code = "aggregate.request.invalid"

	CodeServerConfigInvalid  Code = "server.config.invalid"
	CodeServerStartFailure   Code = "server.start.failure"
	CodeServerRequestInvalid Code = "server.request.invalid"

	CodeCLISetupFailure Code = "cli.setup.failure"
	CodeCLIInputInvalid Code = "cli.input.invalid"
)

// Kind is one of the three disjoint upstream failure categories. Every layer
// above the transport translates foreign failures into one of these before
// propagating; callers can switch on Kind exhaustively.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindAPI        Kind = "api"
	KindValidation Kind = "validation"

	// KindNone marks errors that did not originate from an upstream call
	// (config, CLI, server plumbing).
	KindNone Kind = ""
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldEndpoint(value string) Attr {
	return Field("endpoint", value)
}

func FieldPath(value string) Attr {
	return Field("path", value)
}

func FieldStatusCode(value int) Attr {
	return Field("status_code", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

// Network reports an upstream call that never produced a server response:
// DNS failures, refused connections, resets. cause may be nil.
func Network(cause error, msg string, fields ...Attr) error {
	if cause == nil {
		return New(CodeUpstreamNetworkFailure, msg, fields...)
	}
	return Wrap(cause, CodeUpstreamNetworkFailure, msg, fields...)
}

// NetworkTimeout reports an upstream call cancelled by the transport deadline.
func NetworkTimeout(cause error, path string) error {
	return Wrap(cause, CodeUpstreamNetworkTimeout, "request timed out", FieldPath(path))
}

// Throttled reports a request denied by the client-side rate limiter before
// any network activity. It is a network-kind failure on purpose: callers
// handle self-throttling through the same path as a genuine outage.
func Throttled(retryAfter time.Duration) error {
	return New(CodeUpstreamNetworkThrottled, "client rate limit exceeded",
		Field("retry_after_ms", retryAfter.Milliseconds()))
}

// API reports a response with a status code outside the success range.
func API(status int, path string) error {
	return New(CodeUpstreamAPIFailure,
		fmt.Sprintf("upstream returned status %d", status),
		FieldStatusCode(status), FieldPath(path))
}

// Validation reports a successful response whose decoded body does not match
// the endpoint's expected shape. raw carries the offending payload for
// diagnostics.
func Validation(raw []byte, msg string, fields ...Attr) error {
	fields = append(fields, Field("raw", string(raw)))
	return New(CodeUpstreamValidationFailure, msg, fields...)
}

func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}

	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}

	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

// KindOf classifies err into one of the three upstream failure kinds, or
// KindNone for anything that is not an upstream failure.
func KindOf(err error) Kind {
	code := string(CodeOf(err))
	switch {
	case strings.HasPrefix(code, "upstream.network."):
		return KindNetwork
	case strings.HasPrefix(code, "upstream.api."):
		return KindAPI
	case strings.HasPrefix(code, "upstream.validation."):
		return KindValidation
	default:
		return KindNone
	}
}

func IsNetwork(err error) bool {
	return KindOf(err) == KindNetwork
}

func IsAPI(err error) bool {
	return KindOf(err) == KindAPI
}

func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

func IsTimeout(err error) bool {
	return CodeOf(err) == CodeUpstreamNetworkTimeout
}

func IsThrottled(err error) bool {
	return CodeOf(err) == CodeUpstreamNetworkThrottled
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// FieldsOf returns the structured context attached to err, or nil.
func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	return oopsErr.Context()
}

// StatusCodeOf returns the upstream HTTP status carried by an api-kind error,
// or 0 when err carries none.
func StatusCodeOf(err error) int {
	if v, ok := FieldsOf(err)["status_code"]; ok {
		if status, ok := v.(int); ok {
			return status
		}
	}
	return 0
}

// PathOf returns the upstream path carried by err, or "".
func PathOf(err error) string {
	if v, ok := FieldsOf(err)["path"]; ok {
		if path, ok := v.(string); ok {
			return path
		}
	}
	return ""
}

// RawPayloadOf returns the offending body carried by a validation-kind error.
func RawPayloadOf(err error) string {
	if v, ok := FieldsOf(err)["raw"]; ok {
		if raw, ok := v.(string); ok {
			return raw
		}
	}
	return ""
}

// RetryAfterOf returns the limiter's retry hint carried by a throttled error.
func RetryAfterOf(err error) (time.Duration, bool) {
	if v, ok := FieldsOf(err)["retry_after_ms"]; ok {
		if ms, ok := v.(int64); ok {
			return time.Duration(ms) * time.Millisecond, true
		}
	}
	return 0, false
}

// HTTPStatus maps err to the status the tool server should answer with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsThrottled(err):
		return http.StatusTooManyRequests
	case IsTimeout(err):
		return http.StatusGatewayTimeout
	case IsNetwork(err), IsAPI(err), IsValidation(err):
		return http.StatusBadGateway
	case HasCode(err, CodeAggregateCriticalAllFailed):
		return http.StatusServiceUnavailable
	case HasCode(err, CodeServerRequestInvalid), HasCode(err, CodeAggregateRequestInvalid),
		HasCode(err, CodeUpstreamRequestInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func Join(errs ...error) error {
	return oops.Code(CodeServerStartFailure).Wrap(stderrors.Join(errs...))
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}
