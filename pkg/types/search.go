// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the litter-getter client.
// Search and fetch results, citation records, change sets, identification
// settings and the configuration structs all live here so that the pubmed,
// store and format packages agree on one shape.
package types

import (
	"sort"
	"time"
)

// SearchResult is the outcome of a fully paginated esearch run.
type SearchResult struct {
	// Term is the PubMed query string exactly as sent.
	Term string `json:"term" yaml:"term"`

	// TotalCount is the number of matches reported by the count request.
	TotalCount int `json:"total_count" yaml:"total_count"`

	// IDs lists the PMIDs in server order. The client never sorts or
	// deduplicates them.
	IDs []string `json:"ids" yaml:"ids"`

	// RequestCount is the number of paginated esearch calls issued. The
	// initial count request is not included.
	RequestCount int `json:"request_count" yaml:"request_count"`

	// PageSize is the retmax used for each paginated call.
	PageSize int `json:"page_size" yaml:"page_size"`
}

// SearchSnapshot is a SearchResult recorded at a point in time. Snapshots
// are the "previous id list" that change detection diffs against.
type SearchSnapshot struct {
	// ID is a random UUID assigned when the snapshot is saved.
	ID string `json:"id" yaml:"id"`

	// TakenAt is when the search completed, in UTC.
	TakenAt time.Time `json:"taken_at" yaml:"taken_at"`

	SearchResult `yaml:",inline"`
}

// FetchResult is the outcome of a fully paginated efetch run.
type FetchResult struct {
	// RequestedIDs lists the PMIDs in the order the caller asked for them.
	RequestedIDs []string `json:"requested_ids" yaml:"requested_ids"`

	// Content holds one record per requested id, in the same order.
	Content []CitationRecord `json:"content" yaml:"content"`

	// RequestCount is the number of efetch calls issued (one per chunk).
	RequestCount int `json:"request_count" yaml:"request_count"`

	// PageSize is the maximum number of ids sent per efetch call.
	PageSize int `json:"page_size" yaml:"page_size"`
}

// ChangeSet holds the ids added and removed between two searches.
type ChangeSet struct {
	Added   map[string]struct{} `json:"-" yaml:"-"`
	Removed map[string]struct{} `json:"-" yaml:"-"`
}

// SortedAdded returns the added ids in lexical order.
func (c ChangeSet) SortedAdded() []string { return sortedKeys(c.Added) }

// SortedRemoved returns the removed ids in lexical order.
func (c ChangeSet) SortedRemoved() []string { return sortedKeys(c.Removed) }

// IsEmpty reports whether nothing was added or removed.
func (c ChangeSet) IsEmpty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
