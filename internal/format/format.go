// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package format renders search results, records and change sets for the
// CLI, and reads and writes search snapshot files.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/litter-getter/pkg/types"
)

// WriteIDs writes one PMID per line.
func WriteIDs(ids []string, w io.Writer) error {
	for _, id := range ids {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return err
		}
	}
	return nil
}

// SearchSummary writes the one-line summary printed after a search.
func SearchSummary(res *types.SearchResult, w io.Writer) {
	fmt.Fprintf(w, "%d ids for %q (%d requests, page size %d)\n",
		res.TotalCount, res.Term, res.RequestCount, res.PageSize)
}

// FormatTable writes records as a human-readable table to w.
func FormatTable(records []types.CitationRecord, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records.")
		return
	}

	fmt.Fprintf(w, "%-9s  %-12s  %-50s  %-22s  %-4s  %s\n",
		"PMID", "Type", "Title", "Authors", "Year", "Citation")
	fmt.Fprintln(w, strings.Repeat("-", 130))

	for _, r := range records {
		year := ""
		if r.Year > 0 {
			year = fmt.Sprintf("%d", r.Year)
		}
		fmt.Fprintf(w, "%-9s  %-12s  %-50s  %-22s  %-4s  %s\n",
			r.PMID, r.Type, truncate(r.Title, 50), truncate(r.AuthorsShort, 22), year, r.Citation)
	}

	fmt.Fprintf(w, "\n%d records\n", len(records))
}

// FormatJSON writes records as indented JSON to w. The verbatim XML of each
// record is dropped unless withXML is set.
func FormatJSON(records []types.CitationRecord, withXML bool, w io.Writer) error {
	out := records
	if !withXML {
		out = make([]types.CitationRecord, len(records))
		for i, r := range records {
			r.XML = ""
			out[i] = r
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

// FormatChanges writes added ids prefixed "+" and removed ids prefixed
// "-", each group in lexical order, then a count line.
func FormatChanges(cs types.ChangeSet, w io.Writer) {
	added, removed := cs.SortedAdded(), cs.SortedRemoved()
	for _, id := range added {
		fmt.Fprintf(w, "+ %s\n", id)
	}
	for _, id := range removed {
		fmt.Fprintf(w, "- %s\n", id)
	}
	if cs.IsEmpty() {
		fmt.Fprintln(w, "No changes.")
		return
	}
	fmt.Fprintf(w, "\nadded: %d, removed: %d\n", len(added), len(removed))
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}
