package types

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the approval lifecycle state shared by deviations and leave requests.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusReturned Status = "returned"

	// StatusPaused only exists for leave requests.
	StatusPaused Status = "paused"
)

// RecordKind selects which lifecycle table applies.
type RecordKind string

const (
	KindDeviation RecordKind = "deviation"
	KindLeave     RecordKind = "leave"
)

var (
	ErrUnknownStatus     = errors.New("unknown status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

var deviationTransitions = map[Status][]Status{
	StatusDraft:    {StatusPending},
	StatusPending:  {StatusApproved, StatusRejected, StatusReturned},
	StatusReturned: {StatusPending},
}

var leaveTransitions = map[Status][]Status{
	StatusDraft:    {StatusPending},
	StatusPending:  {StatusApproved, StatusRejected, StatusReturned},
	StatusReturned: {StatusPending},
	StatusApproved: {StatusPaused},
	StatusPaused:   {StatusApproved},
}

// ParseStatus converts free text into a Status. Matching ignores case and
// surrounding whitespace; an empty string is treated as draft.
func ParseStatus(raw string) (Status, error) {
	value := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch value {
	case "":
		return StatusDraft, nil
	case StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusReturned, StatusPaused:
		return value, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// ValidFor reports whether the status exists for the given record kind.
func (s Status) ValidFor(kind RecordKind) bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusReturned:
		return true
	case StatusPaused:
		return kind == KindLeave
	}
	return false
}

// CanTransition reports whether from -> to is allowed for kind.
func CanTransition(kind RecordKind, from, to Status) bool {
	table := deviationTransitions
	if kind == KindLeave {
		table = leaveTransitions
	}
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates from -> to and returns the new status.
func Transition(kind RecordKind, from, to Status) (Status, error) {
	if !to.ValidFor(kind) {
		return from, fmt.Errorf("%w: %s is not a %s status", ErrInvalidTransition, to, kind)
	}
	if !CanTransition(kind, from, to) {
		return from, fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, kind, from, to)
	}
	return to, nil
}
