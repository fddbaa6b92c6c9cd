// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package models

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// naiveLayout is an ISO 8601 timestamp without a zone offset, as emitted for
// DateTime columns that carry no timezone.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// Timestamp is a server time that decodes both RFC 3339 values and
// offset-less ISO 8601 values. Offset-less values are taken as UTC.
// Encoding is inherited from time.Time (RFC 3339 with offset).
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler. JSON null leaves the value unchanged.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}

	t, err := parseTimestamp(s)
	if err != nil {
		return err
	}
	ts.Time = t
	return nil
}

// parseTimestamp parses s as RFC 3339, falling back to an offset-less
// ISO 8601 layout interpreted as UTC.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(naiveLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp: cannot parse %q", s)
	}
	return t, nil
}
