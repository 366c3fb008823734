package api

import "errors"

var (
	errInvalidCredential = errors.New("invalid credential")
	errAuthThrottled      = errors.New("too many failed authentication attempts")
)
