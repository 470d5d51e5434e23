// ABOUTME: Generic lifecycle transition tables shared by all managed entities
// ABOUTME: A Machine answers which actions are available from a status and where they lead

package model

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when an action is not allowed from the current status.
var ErrInvalidTransition = errors.New("transition not allowed")

// Action names a lifecycle move an operator can request.
type Action string

const (
	ActionApprove   Action = "approve"
	ActionReject    Action = "reject"
	ActionDisable   Action = "disable"
	ActionEnable    Action = "enable"
	ActionDelete    Action = "delete"
	ActionSend      Action = "send"
	ActionClose     Action = "close"
	ActionPublish   Action = "publish"
	ActionUnpublish Action = "unpublish"
)

// Transition is one row of a lifecycle table.
type Transition[S ~string] struct {
	From        S
	Action      Action
	To          S
	Destructive bool
}

// Machine is an ordered transition table for one entity type.
type Machine[S ~string] struct {
	entity string
	rows   []Transition[S]
}

// NewMachine builds a transition table. Row order is the order actions are offered in the UI.
func NewMachine[S ~string](entity string, rows ...Transition[S]) Machine[S] {
	return Machine[S]{entity: entity, rows: rows}
}

// Next returns the status reached by applying action from the given status.
func (m Machine[S]) Next(from S, action Action) (S, error) {
	for _, r := range m.rows {
		if r.From == from && r.Action == action {
			return r.To, nil
		}
	}
	var zero S
	return zero, fmt.Errorf("%s: %s from %q: %w", m.entity, action, from, ErrInvalidTransition)
}

// Allowed reports whether action may be applied from the given status.
func (m Machine[S]) Allowed(from S, action Action) bool {
	_, err := m.Next(from, action)
	return err == nil
}

// Available lists the transitions that start at the given status.
func (m Machine[S]) Available(from S) []Transition[S] {
	var out []Transition[S]
	for _, r := range m.rows {
		if r.From == from {
			out = append(out, r)
		}
	}
	return out
}

// Destructive reports whether the action is marked destructive anywhere in the table.
func (m Machine[S]) Destructive(action Action) bool {
	for _, r := range m.rows {
		if r.Action == action {
			return r.Destructive
		}
	}
	return false
}
