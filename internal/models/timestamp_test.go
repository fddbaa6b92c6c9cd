// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"rfc3339 utc", `"2026-03-01T10:00:00Z"`, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), false},
		{"rfc3339 offset", `"2026-03-01T12:00:00+02:00"`, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), false},
		{"rfc3339 fraction", `"2026-03-01T10:00:00.25Z"`, time.Date(2026, 3, 1, 10, 0, 0, 250000000, time.UTC), false},
		{"naive microseconds", `"2025-01-02T03:04:05.123456"`, time.Date(2025, 1, 2, 3, 4, 5, 123456000, time.UTC), false},
		{"naive seconds", `"2025-01-02T03:04:05"`, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), false},
		{"date only", `"2025-01-02"`, time.Time{}, true},
		{"garbage", `"yesterday"`, time.Time{}, true},
		{"number", `1735787045`, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			err := json.Unmarshal([]byte(tt.input), &ts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !ts.Equal(tt.want) {
				t.Errorf("Unmarshal() = %v, want %v", ts.Time, tt.want)
			}
		})
	}
}

func TestTimestamp_Null(t *testing.T) {
	var holder struct {
		At  Timestamp  `json:"at"`
		Ptr *Timestamp `json:"ptr"`
	}
	if err := json.Unmarshal([]byte(`{"at": null, "ptr": null}`), &holder); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !holder.At.IsZero() || holder.Ptr != nil {
		t.Errorf("null should decode to zero values: %+v", holder)
	}
}

func TestTimestamp_MarshalRoundTrip(t *testing.T) {
	ts := Timestamp{Time: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"2025-01-02T03:04:05Z"` {
		t.Errorf("Marshal() = %s", data)
	}
}
