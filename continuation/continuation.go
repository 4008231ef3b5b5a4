// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package continuation implements the token persisted by the host between
// invocations of a goal that is waiting for approval.
//
// On the wire the token is a JSON string of the form:
//
//	{"state":"planned","log":"<plan log url>"}
//
// An absent (empty) token means nothing was planned yet.
package continuation

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
)

// ErrInvalidState indicates a malformed continuation token.
const ErrInvalidState errors.Kind = "invalid continuation state"

// State of a goal across invocations.
type State int

const (
	// NotPlanned is the initial state: no successful plan exists.
	NotPlanned State = iota
	// Planned means a plan succeeded and the goal waits for approval.
	Planned
)

const plannedWire = "planned"

// String returns the state name.
func (s State) String() string {
	switch s {
	case NotPlanned:
		return "not_planned"
	case Planned:
		return plannedWire
	default:
		return "unknown"
	}
}

// Token is the continuation token.
// The zero value is the NotPlanned token.
type Token struct {
	State State

	// PlanLogURL is the log of the plan run. Only meaningful when Planned,
	// and may be empty if the host provided no log URL.
	PlanLogURL string
}

type wireToken struct {
	State *string `json:"state"`
	Log   string  `json:"log,omitempty"`
}

// NewPlanned returns a Planned token referencing the plan log.
func NewPlanned(planLogURL string) Token {
	return Token{State: Planned, PlanLogURL: planLogURL}
}

// IsPlanned tells if the token allows proceeding to apply.
func (t Token) IsPlanned() bool {
	return t.State == Planned
}

// Parse parses the wire representation of a token. An empty (or blank)
// string and the JSON null value parse as the NotPlanned token.
// Anything else that is not a well formed planned token returns an error of
// kind ErrInvalidState.
func Parse(raw string) (Token, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return Token{}, nil
	}

	var wire wireToken
	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&wire); err != nil {
		return Token{}, errors.E(ErrInvalidState, err, "decoding token")
	}
	if _, err := dec.Token(); err != io.EOF {
		return Token{}, errors.E(ErrInvalidState, "unexpected data after token")
	}
	if wire.State == nil {
		return Token{}, errors.E(ErrInvalidState, "token has no state")
	}
	if *wire.State != plannedWire {
		return Token{}, errors.E(ErrInvalidState, "unknown state %q", *wire.State)
	}
	return NewPlanned(wire.Log), nil
}

// Encode returns the wire representation of the token.
// The NotPlanned token encodes as an empty string.
func (t Token) Encode() (string, error) {
	switch t.State {
	case NotPlanned:
		return "", nil
	case Planned:
		state := plannedWire
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(wireToken{State: &state, Log: t.PlanLogURL}); err != nil {
			return "", errors.E(ErrInvalidState, err)
		}
		return strings.TrimSuffix(buf.String(), "\n"), nil
	default:
		return "", errors.E(ErrInvalidState, "cannot encode state %d", int(t.State))
	}
}

// MarshalJSON implements the json.Marshaler interface.
// The NotPlanned token is marshaled as null.
func (t Token) MarshalJSON() ([]byte, error) {
	encoded, err := t.Encode()
	if err != nil {
		return nil, err
	}
	if encoded == "" {
		return []byte("null"), nil
	}
	return []byte(encoded), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *Token) UnmarshalJSON(b []byte) error {
	tok, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = tok
	return nil
}

// String returns a log friendly representation of the token.
func (t Token) String() string {
	if t.State == Planned {
		return t.State.String() + " (log: " + t.PlanLogURL + ")"
	}
	return t.State.String()
}
