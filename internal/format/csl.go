// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"io"
	"strings"
	"unicode"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litter-getter/pkg/types"
)

// CSLItem is a bibliographic entry in CSL-YAML, consumable by Pandoc and
// reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Author         []CSLName `yaml:"author,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	PMID           string    `yaml:"PMID"`
	Note           string    `yaml:"note,omitempty"`
}

// CSLName is a person or organization name.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate is a CSL date using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

var cslTypes = map[types.DocumentType]string{
	types.DocumentJournalArticle: "article-journal",
	types.DocumentBook:           "book",
	types.DocumentBookChapter:    "chapter",
}

// FormatCSL writes records as a CSL-YAML list to w.
func FormatCSL(records []types.CitationRecord, w io.Writer) error {
	items := make([]CSLItem, len(records))
	for i, r := range records {
		items[i] = ToCSLItem(r)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// ToCSLItem converts a record. The short citation string is kept in note.
func ToCSLItem(r types.CitationRecord) CSLItem {
	item := CSLItem{
		ID:             "pmid:" + r.PMID,
		Type:           cslTypes[r.Type],
		Title:          r.Title,
		ContainerTitle: r.Source,
		Abstract:       r.Abstract,
		DOI:            r.DOI,
		PMID:           r.PMID,
		Note:           r.Citation,
	}
	if item.Type == "" {
		item.Type = "article"
	}

	for _, a := range r.AuthorsList {
		item.Author = append(item.Author, parseAuthorName(a))
	}

	if r.Year > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{r.Year}}}
	}
	return item
}

// surnameParticles are the lowercase words allowed inside a family name.
var surnameParticles = map[string]bool{
	"van": true, "von": true, "der": true, "den": true, "de": true, "del": true,
	"della": true, "di": true, "da": true, "dos": true, "du": true, "la": true,
	"le": true, "ten": true, "ter": true, "y": true,
}

// collectiveWords mark a group author even when it ends in an acronym.
var collectiveWords = map[string]bool{
	"association": true, "board": true, "collaboration": true, "collaborative": true,
	"committee": true, "consortium": true, "council": true, "group": true,
	"institute": true, "investigators": true, "network": true, "program": true,
	"society": true, "study": true, "task": true, "team": true, "working": true,
}

// parseAuthorName splits "LastName Initials" into CSL family and given
// parts. Names whose last token is not an initials block, and collective
// authors such as "Committee on AIDS", use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 || !isInitials(name[idx+1:]) || !isFamilyName(name[:idx]) {
		return CSLName{Literal: name}
	}
	return CSLName{
		Family: name[:idx],
		Given:  name[idx+1:],
	}
}

func isFamilyName(s string) bool {
	for _, word := range strings.Fields(s) {
		lower := strings.ToLower(word)
		if collectiveWords[lower] {
			return false
		}
		if strings.ContainsRune(word, '\'') {
			continue
		}
		if first := []rune(word)[0]; !unicode.IsUpper(first) && !surnameParticles[lower] {
			return false
		}
	}
	return true
}

func isInitials(s string) bool {
	if s == "" || len([]rune(s)) > 4 {
		return false
	}
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
