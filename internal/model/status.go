package model

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Statuses lists every status in declaration order. The first entry is the
// fallback used when decoding unknown values.
var Statuses = []Status{StatusPending, StatusActive, StatusCompleted}

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, bool) {
	norm := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Statuses {
		if norm == v {
			return v, true
		}
	}
	return "", false
}

func ValidateStatus(s Status) error {
	switch s {
	case StatusPending, StatusActive, StatusCompleted:
		return nil
	}
	return fmt.Errorf("invalid status %q: must be one of pending, active, completed", s)
}
