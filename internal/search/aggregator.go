package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"aliasarr/internal/alias"
)

// Source is one tracker repository the aggregator can query.
type Source interface {
	Label() string
	Search(ctx context.Context, term string) ([]alias.MediaItem, error)
}

// Aggregator merges search results from every configured tracker.
type Aggregator struct {
	sources []Source
	log     *slog.Logger
}

// New builds an aggregator over the given sources. Nil sources are skipped
// so callers can pass unconfigured trackers directly.
func New(logger *slog.Logger, sources ...Source) *Aggregator {
	agg := &Aggregator{log: logger}
	for _, src := range sources {
		if src == nil {
			continue
		}
		agg.sources = append(agg.sources, src)
	}
	return agg
}

// Search queries every source and returns the merged items sorted
// case-insensitively by display title. An empty term returns an empty
// result. A failing source degrades the result instead of failing the
// whole search, as long as at least one source answered.
func (a *Aggregator) Search(ctx context.Context, term string) ([]alias.MediaItem, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}

	var (
		merged    []alias.MediaItem
		firstErr  error
		succeeded int
	)
	for _, src := range a.sources {
		items, err := src.Search(ctx, term)
		if err != nil {
			a.log.Warn("tracker search failed", "source", src.Label(), "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", src.Label(), err)
			}
			continue
		}
		succeeded++
		merged = append(merged, items...)
	}
	if succeeded == 0 && firstErr != nil {
		return nil, firstErr
	}

	for i := range merged {
		merged[i].Aliases = foldPairs(merged[i].Aliases)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return strings.ToLower(merged[i].Title) < strings.ToLower(merged[j].Title)
	})
	return merged, nil
}

// foldPairs collapses the two rows of a network pair into one entry,
// keeping whichever row has the shorter display title.
func foldPairs(entries []alias.Entry) []alias.Entry {
	out := make([]alias.Entry, 0, len(entries))
	byTag := make(map[string]int)
	for _, entry := range entries {
		if entry.LinkTag == "" {
			out = append(out, entry)
			continue
		}
		idx, ok := byTag[entry.LinkTag]
		if !ok {
			byTag[entry.LinkTag] = len(out)
			out = append(out, entry)
			continue
		}
		if utf8.RuneCountInString(entry.Title) < utf8.RuneCountInString(out[idx].Title) {
			out[idx] = entry
		}
	}
	return out
}
