package search_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"aliasarr/internal/alias"
	"aliasarr/internal/logging"
	"aliasarr/internal/search"
)

type stubSource struct {
	label string
	items []alias.MediaItem
	err   error
}

func (s *stubSource) Label() string { return s.label }

func (s *stubSource) Search(ctx context.Context, term string) ([]alias.MediaItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func TestSearchEmptyTermReturnsNothing(t *testing.T) {
	agg := search.New(logging.Discard(), &stubSource{label: "series"})
	items, err := agg.Search(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty result, got %d items", len(items))
	}
}

func TestSearchMergesAndSortsCaseInsensitively(t *testing.T) {
	seriesSrc := &stubSource{label: "series", items: []alias.MediaItem{
		{MediaRef: 1, Title: "the wire"},
		{MediaRef: 2, Title: "Zodiac Files"},
	}}
	movieSrc := &stubSource{label: "movies", items: []alias.MediaItem{
		{MediaRef: 3, Title: "Arrival"},
	}}

	agg := search.New(logging.Discard(), seriesSrc, movieSrc)
	items, err := agg.Search(context.Background(), "a")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	got := make([]string, len(items))
	for i, item := range items {
		got[i] = item.Title
	}
	want := []string{"Arrival", "the wire", "Zodiac Files"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("unexpected order: got %v, want %v", got, want)
	}
}

func TestSearchDegradesWhenOneSourceFails(t *testing.T) {
	healthy := &stubSource{label: "series", items: []alias.MediaItem{{MediaRef: 1, Title: "Severance"}}}
	broken := &stubSource{label: "movies", err: fmt.Errorf("%w: radarr.db gone", alias.ErrStorageUnavailable)}

	agg := search.New(logging.Discard(), healthy, broken)
	items, err := agg.Search(context.Background(), "sev")
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if len(items) != 1 || items[0].Title != "Severance" {
		t.Fatalf("unexpected items: %#v", items)
	}
}

func TestSearchFailsWhenAllSourcesFail(t *testing.T) {
	broken := &stubSource{label: "movies", err: fmt.Errorf("%w: radarr.db gone", alias.ErrStorageUnavailable)}
	agg := search.New(logging.Discard(), broken)
	if _, err := agg.Search(context.Background(), "x"); !errors.Is(err, alias.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestSearchFoldsNetworkPairs(t *testing.T) {
	src := &stubSource{label: "series", items: []alias.MediaItem{
		{
			MediaRef: 100,
			Title:    "The Wire",
			Aliases: []alias.Entry{
				{ID: 1, Title: "Wired", Provenance: alias.ProvenanceNative},
				{ID: 2, Title: "The Corner", Provenance: alias.ProvenanceManual, Network: "HBO", LinkTag: "thecorner"},
				{ID: 3, Title: "The Corner HBO", Provenance: alias.ProvenanceManual, Network: "HBO", LinkTag: "thecorner"},
			},
		},
	}}

	agg := search.New(logging.Discard(), src)
	items, err := agg.Search(context.Background(), "wire")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	aliases := items[0].Aliases
	if len(aliases) != 2 {
		t.Fatalf("expected pair folded into one entry, got %d aliases", len(aliases))
	}
	folded := aliases[1]
	if folded.Title != "The Corner" {
		t.Fatalf("expected shorter title kept, got %q", folded.Title)
	}
	if folded.Network != "HBO" {
		t.Fatalf("expected network exposed, got %q", folded.Network)
	}
}

func TestFoldPairsComparesTitleLengthInRunes(t *testing.T) {
	// "Härön SVT" is longer in bytes than "Haroen ARD" but shorter in
	// characters, and character count decides which row is displayed.
	src := &stubSource{label: "series", items: []alias.MediaItem{
		{
			MediaRef: 100,
			Title:    "The Island",
			Aliases: []alias.Entry{
				{ID: 1, Title: "Haroen ARD", Provenance: alias.ProvenanceManual, Network: "ARD", LinkTag: "haroen"},
				{ID: 2, Title: "Härön SVT", Provenance: alias.ProvenanceManual, Network: "SVT", LinkTag: "haroen"},
			},
		},
	}}

	agg := search.New(logging.Discard(), src)
	items, err := agg.Search(context.Background(), "island")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	aliases := items[0].Aliases
	if len(aliases) != 1 {
		t.Fatalf("expected folded pair, got %d aliases", len(aliases))
	}
	if aliases[0].Title != "Härön SVT" {
		t.Fatalf("expected rune-shorter title kept, got %q", aliases[0].Title)
	}
}
