package agenda

import (
	"errors"
	"testing"
	"time"

	"github.com/franklab/frank/internal/core"
)

// lundi 1 septembre 2025
var ref = time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"idempotent on normalized form", "2025-03-01", "2025-03-01"},
		{"aujourd'hui", "aujourd'hui", "2025-09-01"},
		{"demain", "demain", "2025-09-02"},
		{"après-demain", "après-demain", "2025-09-03"},
		{"dans N jours", "dans 3 jours", "2025-09-04"},
		{"dans 1 jour", "dans 1 jour", "2025-09-02"},
		{"weekday resolves to next occurrence", "vendredi", "2025-09-05"},
		{"same weekday pushes a week out", "lundi", "2025-09-08"},
		{"prochain keeps the literal delta", "lundi prochain", "2025-09-01"},
		{"embedded expression", "rdv demain matin", "2025-09-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDate(tt.input, ref)
			if err != nil {
				t.Fatalf("NormalizeDate(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeDate_Invalid(t *testing.T) {
	for _, input := range []string{"", "bientôt", "2025-13-99"} {
		if _, err := NormalizeDate(input, ref); !errors.Is(err, core.ErrInvalidDate) {
			t.Errorf("NormalizeDate(%q) error = %v, want ErrInvalidDate", input, err)
		}
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "09:00"},
		{"14:30", "14:30"},
		{"9:05", "09:05"},
		{"17h30", "17:30"},
		{"17h", "17:00"},
		{"8H", "08:00"},
	}

	for _, tt := range tests {
		got, err := NormalizeTime(tt.input)
		if err != nil {
			t.Fatalf("NormalizeTime(%q) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("NormalizeTime(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeTime_Invalid(t *testing.T) {
	for _, input := range []string{"25h", "12:75", "midi"} {
		if _, err := NormalizeTime(input); !errors.Is(err, core.ErrInvalidTime) {
			t.Errorf("NormalizeTime(%q) error = %v, want ErrInvalidTime", input, err)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := formatDate("2025-09-05"); got != "vendredi 5 septembre 2025" {
		t.Errorf("formatDate() = %q", got)
	}
	// unparseable dates render verbatim
	if got := formatDate("n'importe quoi"); got != "n'importe quoi" {
		t.Errorf("formatDate(garbage) = %q", got)
	}
}
