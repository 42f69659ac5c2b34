package ident

import (
	"errors"
	"testing"

	"github.com/lunalabs/intakeflow/internal/domain"
)

func TestDerive_Deterministic(t *testing.T) {
	first, err := Derive("1XOGW5EBVA5CgAEA4CbBJfql8vrLio3Aq")
	if err != nil {
		t.Fatalf("Derive() error: %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := Derive("1XOGW5EBVA5CgAEA4CbBJfql8vrLio3Aq")
		if err != nil {
			t.Fatalf("Derive() error on repeat: %v", err)
		}
		if again != first {
			t.Errorf("Derive() not deterministic: %q vs %q", again, first)
		}
	}
}

func TestDerive_Width(t *testing.T) {
	tests := []struct {
		name string
		ref  string
	}{
		{"single char", "a"},
		{"short handle", "abc123"},
		{"long handle", "1XOGW5EBVA5CgAEA4CbBJfql8vrLio3Aq"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Derive(tt.ref)
			if err != nil {
				t.Fatalf("Derive() error: %v", err)
			}
			if len(id) < 8 || len(id) > 9 {
				t.Errorf("Derive(%q) = %q, want 8 or 9 digits", tt.ref, id)
			}
			for _, c := range id {
				if c < '0' || c > '9' {
					t.Errorf("Derive(%q) = %q, contains non-digit %q", tt.ref, id, c)
				}
			}
		})
	}
}

func TestDerive_KnownValue(t *testing.T) {
	// n accumulates 'a' (97) then 'b' (98): 97*37+98 = 3687.
	id, err := Derive("ab")
	if err != nil {
		t.Fatalf("Derive() error: %v", err)
	}
	if id != "00003687" {
		t.Errorf("Derive(\"ab\") = %q, want %q", id, "00003687")
	}
}

func TestDerive_DistinctInputs(t *testing.T) {
	a, _ := Derive("fileA")
	b, _ := Derive("fileB")
	if a == b {
		// Collisions are accepted in general, but these two short inputs
		// must not collide under the polynomial hash.
		t.Errorf("Derive produced identical ids %q for distinct short inputs", a)
	}
}

func TestDerive_EmptyReference(t *testing.T) {
	_, err := Derive("")
	if !errors.Is(err, domain.ErrInvalidReference) {
		t.Errorf("Derive(\"\") error = %v, want ErrInvalidReference", err)
	}
}

func TestParseLink(t *testing.T) {
	tests := []struct {
		name    string
		link    string
		want    string
		wantErr bool
	}{
		{"plain link", "https://drive.google.com/open?id=1XOGW5EB", "1XOGW5EB", false},
		{"trailing params", "https://drive.google.com/open?id=abc123&usp=sharing", "abc123", false},
		{"no marker", "https://drive.google.com/open?file=abc", "", true},
		{"empty handle", "https://drive.google.com/open?id=&usp=sharing", "", true},
		{"empty link", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLink(tt.link)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidReference) {
					t.Errorf("ParseLink(%q) error = %v, want ErrInvalidReference", tt.link, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLink(%q) error: %v", tt.link, err)
			}
			if got != tt.want {
				t.Errorf("ParseLink(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}
