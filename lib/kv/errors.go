package kv

import "fmt"

// ErrCode classifies what part of the wrapper produced an Error.
type ErrCode int

const (
	// ErrCodeDriver wraps a failure surfaced by the backing driver.Driver
	// (I/O, schema, or a failed bulk transaction).
	ErrCodeDriver ErrCode = iota
	// ErrCodeDecode means a value could not be handled as JSON: a value
	// read from the driver was not valid JSON even though Settings.JSON is
	// true, SetJSON/GetJSON failed to marshal or unmarshal, or SetSub
	// failed to write its path into the stored value.
	ErrCodeDecode
	// ErrCodePath means a GetSub/SetSub path walk hit an absent or
	// non-container intermediate node.
	ErrCodePath
	// ErrCodeConfig means Open was called with an invalid driver or
	// Settings combination.
	ErrCodeConfig
)

func (c ErrCode) String() string {
	switch c {
	case ErrCodeDriver:
		return "driver"
	case ErrCodeDecode:
		return "decode"
	case ErrCodePath:
		return "path"
	case ErrCodeConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Error is bufkv's error type: a classified code plus an optional wrapped
// cause, so callers can use errors.Is/errors.As against the underlying
// driver error while still switching on Code for coarse handling.
type Error struct {
	Code ErrCode
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bufkv (%s): %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("bufkv (%s): %s", e.Code, e.Msg)
}

// Unwrap exposes Err so errors.Is/errors.As can see through to the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrCode, msg string, cause error) *Error {
	return &Error{Code: code, Msg: msg, Err: cause}
}

// pathNotFoundError builds the ErrCodePath error for GetSub/SetSub,
// carrying the joined path that could not be resolved.
func pathNotFoundError(path []string) *Error {
	return newError(ErrCodePath, fmt.Sprintf("subvalue not found at path %q", joinPath(path)), nil)
}
