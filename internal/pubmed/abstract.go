// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	abstractLabelFormat = `<span class="abstract_label">%s: </span>`
	abstractBreak       = "<br>"
)

type abstract struct {
	Sections  []abstractText `xml:"AbstractText"`
	Copyright text           `xml:"CopyrightInformation"`
}

// abstractText is one AbstractText element. Structured abstracts carry a
// Label attribute per section (BACKGROUND, METHODS, ...).
type abstractText struct {
	Label string
	Text  string
}

func (a *abstractText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Local == "Label" {
			a.Label = strings.TrimSpace(attr.Value)
		}
	}
	s, err := collectText(d)
	if err != nil {
		return err
	}
	a.Text = strings.TrimSpace(s)
	return nil
}

// renderAbstract joins the abstract sections with <br>. When any section
// is labeled, each labeled section is prefixed with an abstract_label span.
func renderAbstract(a *abstract) string {
	if a == nil {
		return ""
	}

	structured := false
	for _, s := range a.Sections {
		if s.Label != "" {
			structured = true
			break
		}
	}

	parts := make([]string, 0, len(a.Sections))
	for _, s := range a.Sections {
		if s.Text == "" && s.Label == "" {
			continue
		}
		if structured && s.Label != "" {
			parts = append(parts, fmt.Sprintf(abstractLabelFormat, s.Label)+s.Text)
			continue
		}
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, abstractBreak)
}
