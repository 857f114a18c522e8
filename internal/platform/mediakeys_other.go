//go:build !linux

package platform

import (
	"github.com/rs/zerolog"

	"sleeptimer/internal/core/session"
)

// MediaKeys is unavailable on this platform.
type MediaKeys struct{}

// ListenMediaKeys always fails with ErrMediaKeysUnsupported.
func ListenMediaKeys(string, ButtonHandler, func(), zerolog.Logger) (*MediaKeys, error) {
	return nil, ErrMediaKeysUnsupported
}

// Follow drains stream.
func (keys *MediaKeys) Follow(stream <-chan session.Snapshot) {
	for range stream {
	}
}

// Close is a no-op.
func (keys *MediaKeys) Close() error { return nil }
