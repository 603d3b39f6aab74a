package main

import (
	"errors"
	"testing"

	"dotglobe/internal/marker"
)

func TestParseMarker(t *testing.T) {
	m, err := parseMarker([]string{"-8.61", "41.15", "Porto,", "PT"}, true)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Name != "Porto, PT" || m.Lon != -8.61 || m.Lat != 41.15 || !m.Featured {
		t.Fatalf("got %+v", m)
	}
}

func TestParseMarkerErrors(t *testing.T) {
	cases := [][]string{
		{"1", "2"},
		{"x", "2", "A"},
		{"1", "y", "A"},
	}
	for _, c := range cases {
		if _, err := parseMarker(c, false); err == nil {
			t.Fatalf("expected error for %v", c)
		}
	}
	if _, err := parseMarker([]string{"200", "0", "Far"}, false); !errors.Is(err, marker.ErrInvalid) {
		t.Fatalf("out of range: %v", err)
	}
}

func TestFormatMarker(t *testing.T) {
	s := formatMarker(marker.Marker{Name: "Lisbon", Lon: -9.14, Lat: 38.72})
	if s[0] != ' ' {
		t.Fatalf("plain marker should not be starred: %q", s)
	}
	s = formatMarker(marker.Porto)
	if s[0] != '*' {
		t.Fatalf("featured marker should be starred: %q", s)
	}
}
