package server

import "errors"

var (
	errStreamingUnsupported = errors.New("streaming not supported")
	errMissingFields        = errors.New("missing required fields")
)
