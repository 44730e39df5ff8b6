package mediatool

import (
	"errors"
	"strings"
	"testing"
)

func TestParseProbeDuration(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    float64
		wantErr bool
	}{
		{"wav", `{"streams":[],"format":{"duration":"4.250000"}}`, 4.25, false},
		{"padded", `{"format":{"duration":" 12.5 "}}`, 12.5, false},
		{"missing", `{"format":{}}`, 0, true},
		{"na", `{"format":{"duration":"N/A"}}`, 0, true},
		{"zero", `{"format":{"duration":"0.000"}}`, 0, true},
		{"garbage", `not json`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProbeDuration([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExternalToolError(t *testing.T) {
	base := errors.New("exit status 1")
	err := error(&ExternalToolError{Tool: "ffmpeg", ExitCode: 1, Stderr: "Invalid argument", Err: base})

	var toolErr *ExternalToolError
	if !errors.As(err, &toolErr) {
		t.Fatal("errors.As failed")
	}
	if !errors.Is(err, base) {
		t.Error("Unwrap does not reach the cause")
	}
	msg := err.Error()
	for _, want := range []string{"ffmpeg failed", "exit 1", "Invalid argument"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestTail(t *testing.T) {
	if got := tail("  abcdef \n", 3); got != "def" {
		t.Errorf("tail = %q, want def", got)
	}
	if got := tail("ab", 3); got != "ab" {
		t.Errorf("tail = %q, want ab", got)
	}
}
