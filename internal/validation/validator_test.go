// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package validation

import (
	"strings"
	"testing"
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

type filePayload struct {
	SessionID string `json:"sessionId" validate:"sessionid"`
	Name      string `json:"name" validate:"filename"`
	Language  string `json:"language" validate:"max=64"`
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input filePayload
	}{
		{"plain", filePayload{SessionID: "abc123", Name: "main.js", Language: "javascript"}},
		{"dotted name", filePayload{SessionID: "room-1", Name: ".env.local"}},
		{"unicode id", filePayload{SessionID: "café", Name: "notes.md"}},
		{"slash in name", filePayload{SessionID: "r", Name: "src/main.js"}},
		{"backslash in name", filePayload{SessionID: "r", Name: `src\main.js`}},
		{"max length name", filePayload{SessionID: "r", Name: strings.Repeat("a", MaxFileNameLength)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(&tt.input); err != nil {
				t.Errorf("ValidateStruct() unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     filePayload
		wantField string
		wantTag   string
	}{
		{"empty session", filePayload{Name: "a.js"}, "sessionId", "sessionid"},
		{"session with space", filePayload{SessionID: "a b", Name: "a.js"}, "sessionId", "sessionid"},
		{"long session", filePayload{SessionID: strings.Repeat("x", MaxSessionIDLength+1), Name: "a.js"}, "sessionId", "sessionid"},
		{"empty name", filePayload{SessionID: "r"}, "name", "filename"},
		{"blank name", filePayload{SessionID: "r", Name: "   "}, "name", "filename"},
		{"NUL in name", filePayload{SessionID: "r", Name: "main\x00.js"}, "name", "filename"},
		{"long name", filePayload{SessionID: "r", Name: strings.Repeat("a", MaxFileNameLength+1)}, "name", "filename"},
		{"long language", filePayload{SessionID: "r", Name: "a", Language: strings.Repeat("l", 65)}, "language", "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}

			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
		})
	}
}

func TestValidateStruct_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&filePayload{})
	if err == nil {
		t.Fatal("expected errors for zero payload")
	}

	fields := err.Fields()
	if len(fields) != 2 {
		t.Fatalf("Fields() = %v, want 2 entries", fields)
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("combined message should join errors, got %q", err.Error())
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	err := ValidateStruct("not a struct")
	if err == nil {
		t.Fatal("expected error for non-struct input")
	}
	if err.Errors()[0].Field() != "unknown" {
		t.Errorf("Field() = %q, want unknown", err.Errors()[0].Field())
	}
}

func TestValidSessionID(t *testing.T) {
	tests := map[string]bool{
		"abc123":    true,
		"room:team": true,
		"":          false,
		"tab\there": false,
		"new\nline": false,
		"bell\a":    false,
	}

	for id, want := range tests {
		if got := ValidSessionID(id); got != want {
			t.Errorf("ValidSessionID(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		input    filePayload
		contains string
	}{
		{"filename", filePayload{SessionID: "r", Name: " "}, "name must be a non-blank file name"},
		{"sessionid", filePayload{Name: "a"}, "sessionId must be a non-empty identifier"},
		{"max string", filePayload{SessionID: "r", Name: "a", Language: strings.Repeat("l", 65)}, "language must be at most 64 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("Error() = %q, want substring %q", err.Error(), tt.contains)
			}
		})
	}
}
