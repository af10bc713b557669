// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DocumentType identifies which PubMed export shape produced a record.
type DocumentType string

const (
	DocumentJournalArticle DocumentType = "journal-article"
	DocumentBook           DocumentType = "book"
	DocumentBookChapter    DocumentType = "book-chapter"
)

// CitationRecord is one parsed PubMed record.
type CitationRecord struct {
	// PMID is the PubMed identifier.
	PMID string `json:"PMID" yaml:"pmid"`

	// Type is the document shape the record was parsed from.
	Type DocumentType `json:"type" yaml:"type"`

	// Title is the article, chapter or book title with inline markup stripped.
	Title string `json:"title" yaml:"title"`

	// Citation is the short citation string, e.g. "Science 2008; 322 (5908):1695-9".
	Citation string `json:"citation" yaml:"citation"`

	// Source is the journal a journal article appeared in, or the book
	// containing a chapter. Whole books leave it empty.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// AuthorsList holds "LastName Initials" entries or collective names in source order.
	AuthorsList []string `json:"authors_list" yaml:"authors_list"`

	// AuthorsShort is the abbreviated author string, e.g. "Varambally S et al.".
	AuthorsShort string `json:"authors_short" yaml:"authors_short"`

	// Year is the publication year, or 0 when no date field is present.
	Year int `json:"year" yaml:"year"`

	// DOI is empty when the record carries none.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Abstract may contain <span class="abstract_label"> and <br> markup
	// for structured abstracts.
	Abstract string `json:"abstract" yaml:"abstract"`

	// XML is the verbatim source fragment.
	XML string `json:"xml,omitempty" yaml:"-"`
}

// HasDOI reports whether the record carries a DOI.
func (r CitationRecord) HasDOI() bool { return r.DOI != "" }
