//go:build !linux

package terminal

import "errors"

var errUnsupported = errors.New("terminal control not supported on this platform")

func winsize(int) (int, int, error) {
	return 0, 0, errUnsupported
}

func makeRaw(int) (func(), error) {
	return nil, errUnsupported
}
