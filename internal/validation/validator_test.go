// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package validation

import (
	"strings"
	"testing"

	"github.com/tomtom215/pollsync/internal/models"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func validPayload() models.PollCreatePayload {
	return models.PollCreatePayload{
		Title:   "Lunch?",
		Options: []string{"Pizza", "Sushi"},
	}
}

func TestValidatePollCreate_Valid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *models.PollCreatePayload)
	}{
		{"minimal", func(p *models.PollCreatePayload) {}},
		{"with description", func(p *models.PollCreatePayload) { p.Description = strPtr("pick one") }},
		{"with duration", func(p *models.PollCreatePayload) { p.DurationMinutes = intPtr(30) }},
		{"twenty options", func(p *models.PollCreatePayload) {
			p.Options = make([]string, 20)
			for i := range p.Options {
				p.Options[i] = "option"
			}
		}},
		{"title at max length", func(p *models.PollCreatePayload) { p.Title = strings.Repeat("a", 200) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			tt.modify(&p)
			if err := ValidatePollCreate(&p); err != nil {
				t.Errorf("ValidatePollCreate() unexpected error: %v", err)
			}
		})
	}
}

func TestValidatePollCreate_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(p *models.PollCreatePayload)
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{
			name:      "missing title",
			modify:    func(p *models.PollCreatePayload) { p.Title = "" },
			wantField: "title",
			wantTag:   "required",
			wantMsg:   "title is required",
		},
		{
			name:      "blank title",
			modify:    func(p *models.PollCreatePayload) { p.Title = "   " },
			wantField: "title",
			wantTag:   "notblank",
			wantMsg:   "title must not be blank",
		},
		{
			name:      "title too long",
			modify:    func(p *models.PollCreatePayload) { p.Title = strings.Repeat("a", 201) },
			wantField: "title",
			wantTag:   "max",
			wantMsg:   "title must be at most 200 characters",
		},
		{
			name:      "one option",
			modify:    func(p *models.PollCreatePayload) { p.Options = []string{"only"} },
			wantField: "options",
			wantTag:   "min",
			wantMsg:   "options must be at least 2 items",
		},
		{
			name:      "blank option",
			modify:    func(p *models.PollCreatePayload) { p.Options = []string{"Pizza", " "} },
			wantField: "options[1]",
			wantTag:   "notblank",
			wantMsg:   "options[1] must not be blank",
		},
		{
			name:      "description too long",
			modify:    func(p *models.PollCreatePayload) { p.Description = strPtr(strings.Repeat("d", 1001)) },
			wantField: "description",
			wantTag:   "max",
			wantMsg:   "description must be at most 1000 characters",
		},
		{
			name:      "zero duration",
			modify:    func(p *models.PollCreatePayload) { p.DurationMinutes = intPtr(0) },
			wantField: "duration_minutes",
			wantTag:   "min",
			wantMsg:   "duration_minutes must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			tt.modify(&p)

			err := ValidatePollCreate(&p)
			if err == nil {
				t.Fatal("ValidatePollCreate() expected error, got nil")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidatePollCreate_Nil(t *testing.T) {
	err := ValidatePollCreate(nil)
	if err == nil {
		t.Fatal("ValidatePollCreate(nil) expected error")
	}
	if err.Error() != "payload is required" {
		t.Errorf("Error() = %q", err.Error())
	}
}
