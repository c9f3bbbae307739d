package model

import (
	"fmt"
	"strings"
)

type EventType string

const (
	TypeOrder     EventType = "order"
	TypeInventory EventType = "inventory"
	TypeMarketing EventType = "marketing"
	TypePromotion EventType = "promotion"
)

// EventTypes lists every type in declaration order. The first entry is the
// fallback used when decoding unknown values.
var EventTypes = []EventType{TypeOrder, TypeInventory, TypeMarketing, TypePromotion}

// ParseEventType matches s case-insensitively against the known types.
func ParseEventType(s string) (EventType, bool) {
	norm := EventType(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range EventTypes {
		if norm == v {
			return v, true
		}
	}
	return "", false
}

func ValidateEventType(t EventType) error {
	switch t {
	case TypeOrder, TypeInventory, TypeMarketing, TypePromotion:
		return nil
	}
	return fmt.Errorf("invalid type %q: must be one of order, inventory, marketing, promotion", t)
}
