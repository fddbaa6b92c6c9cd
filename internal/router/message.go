// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package router

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

// ErrInvalidEnvelope is returned when an envelope's message field is neither
// a string nor an object.
var ErrInvalidEnvelope = errors.New("envelope message is neither string nor object")

// Event is a decoded inbound frame.
type Event struct {
	Type    string          `json:"type"`
	RawID   json.RawMessage `json:"poll_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// envelope is the outer wrapper some broadcasters use: {"message": ..., "payload": ...}.
type envelope struct {
	Message json.RawMessage `json:"message"`
}

// Decode parses a raw frame. Two shapes are accepted: a flat event
// {"type", "poll_id", "payload"}, and an envelope whose "message" field holds
// the real event either as an object or as a JSON-encoded string. Exactly one
// level of string encoding is unwrapped.
func Decode(raw []byte) (*Event, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	if top == nil {
		return nil, errors.New("decode frame: not an object")
	}

	msg, wrapped := top["message"]
	if !wrapped {
		return decodeEvent(raw)
	}

	inner := bytes.TrimSpace(msg)
	switch {
	case len(inner) > 0 && inner[0] == '"':
		var encoded string
		if err := json.Unmarshal(inner, &encoded); err != nil {
			return nil, fmt.Errorf("decode envelope: %w", err)
		}
		return decodeEvent([]byte(encoded))
	case len(inner) > 0 && inner[0] == '{':
		return decodeEvent(inner)
	default:
		return nil, ErrInvalidEnvelope
	}
}

func decodeEvent(data []byte) (*Event, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, errors.New("decode event: not an object")
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &ev, nil
}

// PollID resolves the poll the event refers to: the top-level poll_id first,
// then payload.poll_id. Only JSON numbers with an integral value resolve.
func (e *Event) PollID() (int64, bool) {
	if id, ok := parseID(e.RawID); ok {
		return id, true
	}

	payload := bytes.TrimSpace(e.Payload)
	if len(payload) == 0 || payload[0] != '{' {
		return 0, false
	}
	var nested struct {
		PollID json.RawMessage `json:"poll_id"`
	}
	if err := json.Unmarshal(payload, &nested); err != nil {
		return 0, false
	}
	return parseID(nested.PollID)
}

func parseID(raw json.RawMessage) (int64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	// Strings, booleans, null, objects and arrays are not ids.
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return 0, false
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	if id, err := n.Int64(); err == nil {
		return id, true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
