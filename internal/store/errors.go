package store

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRemoteUnavailable covers network failures, timeouts, rate limiting
	// and 5xx responses. It is transient and may trigger a cache fallback.
	ErrRemoteUnavailable = errors.New("remote unavailable")
	// ErrRemoteRejected covers 4xx responses: bad input, bad credentials,
	// unknown table. It never triggers a silent fallback.
	ErrRemoteRejected = errors.New("remote rejected request")
	// ErrLocalCorrupt marks cached content that could not be decoded.
	ErrLocalCorrupt = errors.New("local cache corrupt")
	// ErrInvalidRecord marks remote records skipped by the validity check.
	ErrInvalidRecord = errors.New("invalid remote record")
	ErrNotFound      = errors.New("event not found")
)

// RemoteError is returned by every failing CloudStore call. It unwraps to
// ErrRemoteUnavailable or ErrRemoteRejected.
type RemoteError struct {
	Op      string
	Status  int // 0 when no response was received
	Message string
	Kind    error
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Message)
	}
	if e.Message == "" {
		return fmt.Sprintf("%s: %v (HTTP %d)", e.Op, e.Kind, e.Status)
	}
	return fmt.Sprintf("%s: %v (HTTP %d): %s", e.Op, e.Kind, e.Status, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.Kind
}

// classifyStatus maps a failing HTTP status to its error kind.
func classifyStatus(status int) error {
	if status == http.StatusTooManyRequests || status >= 500 {
		return ErrRemoteUnavailable
	}
	return ErrRemoteRejected
}
