// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"regexp"
	"strconv"
	"strings"
)

type authorList struct {
	Type    string   `xml:"Type,attr"`
	Authors []author `xml:"Author"`
}

type author struct {
	ValidYN        string `xml:"ValidYN,attr"`
	LastName       string `xml:"LastName"`
	Initials       string `xml:"Initials"`
	CollectiveName text   `xml:"CollectiveName"`
}

// name renders "LastName Initials", or the collective name for
// organizational authors.
func (a author) name() string {
	last := strings.TrimSpace(a.LastName)
	if last == "" {
		return a.CollectiveName.String()
	}
	if initials := strings.TrimSpace(a.Initials); initials != "" {
		return last + " " + initials
	}
	return last
}

func (l authorList) names() []string {
	var names []string
	for _, a := range l.Authors {
		if a.ValidYN == "N" {
			continue
		}
		if n := a.name(); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// shortAuthors is the journal and book form: the sole author verbatim,
// otherwise the first author followed by "et al.".
func shortAuthors(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return names[0] + " et al."
	}
}

// shortChapterAuthors names both authors of a two-author chapter.
func shortChapterAuthors(names []string) string {
	if len(names) == 2 {
		return names[0] + " and " + names[1]
	}
	return shortAuthors(names)
}

var yearPattern = regexp.MustCompile(`\b\d{4}\b`)

// firstYear returns the first four-digit year found in candidates, in order.
func firstYear(candidates ...string) int {
	for _, c := range candidates {
		if m := yearPattern.FindString(c); m != "" {
			if y, err := strconv.Atoi(m); err == nil && y > 0 {
				return y
			}
		}
	}
	return 0
}
