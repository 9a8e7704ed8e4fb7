package title_test

import (
	"testing"

	"aliasarr/internal/title"
)

func TestKeySeries(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace passthrough", "   ", "   "},
		{"all digits passthrough", "1984", "1984"},
		{"plain title", "Breaking Bad", "breakingbad"},
		{"percent spelled out", "100% Wolf", "100percentwolf"},
		{"interior stop word", "Man of Steel", "mansteel"},
		{"leading article kept", "The Wire", "thewire"},
		{"trailing stop word kept", "Best of", "bestof"},
		{"whole string stop word kept", "A", "a"},
		{"multiple interior stop words", "Of Mice and Men", "ofmicemen"},
		{"stop word case insensitive", "Game AND Watch", "gamewatch"},
		{"underscore boundaries", "the_man_of_steel", "themansteel"},
		{"accented stop word", "Shadow à Paris", "shadowparis"},
		{"stop word inside word kept", "Android Sandman", "androidsandman"},
		{"punctuation removed", "Mr. Robot", "mrrobot"},
		{"symbol bounded stop word stripped", "M*A*S*H", "msh"},
		{"diacritics folded", "Amélie", "amelie"},
		{"umlaut folded without expansion", "Müller's Law", "mullerslaw"},
		{"sharp s kept", "Straße 7", "straße7"},
		{"exotic symbols", "★ Lodge ★", "lodge"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := title.Key(tc.input, title.Series); got != tc.expected {
				t.Fatalf("Key(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestKeyMovie(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"umlaut expanded", "Müller's Law", "muellerslaw"},
		{"uppercase umlaut expanded", "Über Goober", "uebergoober"},
		{"o umlaut expanded", "Die Möbius Affäre", "diemoebiusaffaere"},
		{"sharp s expanded", "Straße 7", "strasse7"},
		{"interior stop word still stripped", "Man of Steel", "mansteel"},
		{"digits passthrough", "2012", "2012"},
		{"non german diacritics folded", "Amélie", "amelie"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := title.Key(tc.input, title.Movie); got != tc.expected {
				t.Fatalf("Key(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestKeyVariantsDiverge(t *testing.T) {
	input := "Müller's Law"
	series := title.Key(input, title.Series)
	movie := title.Key(input, title.Movie)
	if series == movie {
		t.Fatalf("expected variants to diverge for %q, both produced %q", input, series)
	}
}

func TestKeyIsFixedPointOnCanonicalInput(t *testing.T) {
	inputs := []string{"Breaking Bad", "Man of Steel", "Müller's Law", "The Wire", "100% Wolf"}
	for _, input := range inputs {
		for _, v := range []title.Variant{title.Series, title.Movie} {
			once := title.Key(input, v)
			twice := title.Key(once, v)
			if once != twice {
				t.Fatalf("Key not stable for %q: first %q, second %q", input, once, twice)
			}
		}
	}
}
