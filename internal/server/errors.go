package server

import "errors"

var (
	errNoListenAddress = errors.New("no HTTP listen address is configured")
)
