// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/litter-getter/pkg/types"
)

const (
	articleSetElement  = "PubmedArticleSet"
	articleElement     = "PubmedArticle"
	bookArticleElement = "PubmedBookArticle"
)

// document is one recognized PubMed export shape. Each variant carries
// only the fields its shape can produce.
type document interface {
	record() types.CitationRecord
}

// ParseRecord turns one PubmedArticle or PubmedBookArticle fragment into
// a CitationRecord. The fragment is kept verbatim in the record's XML
// field. Unknown root elements and records without a PMID are ParseErrors.
func ParseRecord(fragment []byte) (types.CitationRecord, error) {
	root, err := rootElement(fragment)
	if err != nil {
		return types.CitationRecord{}, &ParseError{Reason: err.Error()}
	}

	var doc document
	switch root {
	case articleElement:
		var a journalArticle
		if err := newDecoder(fragment).Decode(&a); err != nil {
			return types.CitationRecord{}, &ParseError{Element: root, Reason: err.Error()}
		}
		doc = &a
	case bookArticleElement:
		var b bookArticle
		if err := newDecoder(fragment).Decode(&b); err != nil {
			return types.CitationRecord{}, &ParseError{Element: root, Reason: err.Error()}
		}
		if b.Document.ArticleTitle != nil {
			doc = &bookChapter{b}
		} else {
			doc = &book{b}
		}
	default:
		return types.CitationRecord{}, &ParseError{Element: root, Reason: "unrecognized document shape"}
	}

	rec := doc.record()
	if rec.PMID == "" {
		return types.CitationRecord{}, &ParseError{Element: root, Reason: "missing PMID"}
	}
	rec.XML = string(fragment)
	return rec, nil
}

// SplitArticleSet slices an efetch PubmedArticleSet document into the
// verbatim bytes of each child element, in document order.
func SplitArticleSet(body []byte) ([][]byte, error) {
	dec := newDecoder(body)

	var fragments [][]byte
	sawRoot := false
	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding efetch response: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !sawRoot {
			if start.Name.Local != articleSetElement {
				return nil, fmt.Errorf("unexpected efetch root element <%s>", start.Name.Local)
			}
			sawRoot = true
			continue
		}

		// Every other start element seen here is a direct child of the
		// root: Skip consumes its whole subtree.
		if err := dec.Skip(); err != nil {
			return nil, fmt.Errorf("decoding <%s>: %w", start.Name.Local, err)
		}
		fragments = append(fragments, bytes.TrimSpace(body[offset:dec.InputOffset()]))
	}

	if !sawRoot {
		return nil, fmt.Errorf("efetch response has no <%s> element", articleSetElement)
	}
	return fragments, nil
}

// rootElement returns the local name of the first element in fragment.
func rootElement(fragment []byte) (string, error) {
	dec := newDecoder(fragment)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return "", errors.New("fragment has no root element")
		}
		if err != nil {
			return "", err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

func newDecoder(data []byte) *xml.Decoder {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = xml.HTMLEntity
	return dec
}

// --- shared XML pieces ---

// text collects all character data below an element, dropping inline
// markup such as <i> or <sup> but keeping its text.
type text string

func (t *text) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	s, err := collectText(d)
	if err != nil {
		return err
	}
	*t = text(s)
	return nil
}

func (t text) String() string { return strings.TrimSpace(string(t)) }

// collectText reads tokens up to the end of the current element.
func collectText(d *xml.Decoder) (string, error) {
	var b strings.Builder
	for depth := 1; depth > 0; {
		tok, err := d.Token()
		if err != nil {
			return "", err
		}
		switch v := tok.(type) {
		case xml.CharData:
			b.Write(v)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return b.String(), nil
}

type articleID struct {
	IDType string `xml:"IdType,attr"`
	Value  string `xml:",chardata"`
}

type eLocationID struct {
	EIDType string `xml:"EIdType,attr"`
	ValidYN string `xml:"ValidYN,attr"`
	Value   string `xml:",chardata"`
}

type pubDate struct {
	Year        string `xml:"Year"`
	MedlineDate string `xml:"MedlineDate"`
}

type simpleDate struct {
	Year string `xml:"Year"`
}

type historyDate struct {
	PubStatus string `xml:"PubStatus,attr"`
	Year      string `xml:"Year"`
}

func doiFrom(lists ...[]articleID) string {
	for _, ids := range lists {
		for _, id := range ids {
			if strings.EqualFold(id.IDType, "doi") {
				if v := strings.TrimSpace(id.Value); v != "" {
					return v
				}
			}
		}
	}
	return ""
}

// --- journal article ---

type journalArticle struct {
	XMLName  xml.Name        `xml:"PubmedArticle"`
	Citation medlineCitation `xml:"MedlineCitation"`
	Data     pubmedData      `xml:"PubmedData"`
}

type medlineCitation struct {
	PMID        string      `xml:"PMID"`
	Article     article     `xml:"Article"`
	JournalInfo journalInfo `xml:"MedlineJournalInfo"`
}

type article struct {
	Journal      journal       `xml:"Journal"`
	ArticleTitle text          `xml:"ArticleTitle"`
	Pagination   pagination    `xml:"Pagination"`
	ELocationIDs []eLocationID `xml:"ELocationID"`
	Abstract     *abstract     `xml:"Abstract"`
	AuthorList   authorList    `xml:"AuthorList"`
	ArticleDates []simpleDate  `xml:"ArticleDate"`
}

type journal struct {
	Title           string       `xml:"Title"`
	ISOAbbreviation string       `xml:"ISOAbbreviation"`
	Issue           journalIssue `xml:"JournalIssue"`
}

type journalIssue struct {
	Volume  string  `xml:"Volume"`
	Issue   string  `xml:"Issue"`
	PubDate pubDate `xml:"PubDate"`
}

type journalInfo struct {
	MedlineTA string `xml:"MedlineTA"`
}

type pagination struct {
	MedlinePgn string `xml:"MedlinePgn"`
	StartPage  string `xml:"StartPage"`
	EndPage    string `xml:"EndPage"`
}

type pubmedData struct {
	History    []historyDate `xml:"History>PubMedPubDate"`
	ArticleIDs []articleID   `xml:"ArticleIdList>ArticleId"`
}

func (a *journalArticle) record() types.CitationRecord {
	art := a.Citation.Article
	authors := art.AuthorList.names()
	year := a.year()

	return types.CitationRecord{
		PMID:         strings.TrimSpace(a.Citation.PMID),
		Type:         types.DocumentJournalArticle,
		Title:        art.ArticleTitle.String(),
		Citation:     journalCitation(a.journalName(), year, art.Journal.Issue.Volume, art.Journal.Issue.Issue, art.Pagination.pages()),
		Source:       a.journalName(),
		AuthorsList:  authors,
		AuthorsShort: shortAuthors(authors),
		Year:         year,
		DOI:          a.doi(),
		Abstract:     renderAbstract(art.Abstract),
	}
}

func (a *journalArticle) journalName() string {
	j := a.Citation.Article.Journal
	for _, name := range []string{j.ISOAbbreviation, a.Citation.JournalInfo.MedlineTA, j.Title} {
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	return ""
}

// year prefers the print date, then MedlineDate, then the electronic
// date, then the PubMed history.
func (a *journalArticle) year() int {
	art := a.Citation.Article
	candidates := []string{art.Journal.Issue.PubDate.Year, art.Journal.Issue.PubDate.MedlineDate}
	for _, d := range art.ArticleDates {
		candidates = append(candidates, d.Year)
	}
	for _, status := range []string{"pubmed", "entrez"} {
		for _, h := range a.Data.History {
			if h.PubStatus == status {
				candidates = append(candidates, h.Year)
			}
		}
	}
	return firstYear(candidates...)
}

func (a *journalArticle) doi() string {
	for _, loc := range a.Citation.Article.ELocationIDs {
		if strings.EqualFold(loc.EIDType, "doi") && loc.ValidYN != "N" {
			if v := strings.TrimSpace(loc.Value); v != "" {
				return v
			}
		}
	}
	return doiFrom(a.Data.ArticleIDs)
}

func (p pagination) pages() string {
	if v := strings.TrimSpace(p.MedlinePgn); v != "" {
		return v
	}
	start, end := strings.TrimSpace(p.StartPage), strings.TrimSpace(p.EndPage)
	if start != "" && end != "" && end != start {
		return start + "-" + end
	}
	return start
}

// journalCitation renders "{Journal} {Year}; {Volume} ({Issue}):{Pages}",
// leaving out the segments that are empty.
func journalCitation(name string, year int, volume, issue, pages string) string {
	volume, issue, pages = strings.TrimSpace(volume), strings.TrimSpace(issue), strings.TrimSpace(pages)

	var b strings.Builder
	b.WriteString(name)
	if year > 0 {
		fmt.Fprintf(&b, " %d", year)
	}
	if volume != "" || issue != "" || pages != "" {
		b.WriteString(";")
		if volume != "" {
			b.WriteString(" " + volume)
		}
		if issue != "" {
			b.WriteString(" (" + issue + ")")
		}
		if pages != "" {
			b.WriteString(":" + pages)
		}
	}
	return strings.TrimSpace(b.String())
}

// --- books and book chapters ---

type bookArticle struct {
	XMLName  xml.Name     `xml:"PubmedBookArticle"`
	Document bookDocument `xml:"BookDocument"`
	Data     bookData     `xml:"PubmedBookData"`
}

type bookDocument struct {
	PMID             string       `xml:"PMID"`
	ArticleIDs       []articleID  `xml:"ArticleIdList>ArticleId"`
	Book             bookInfo     `xml:"Book"`
	ArticleTitle     *text        `xml:"ArticleTitle"`
	AuthorLists      []authorList `xml:"AuthorList"`
	Abstract         *abstract    `xml:"Abstract"`
	ContributionDate simpleDate   `xml:"ContributionDate"`
	DateRevised      simpleDate   `xml:"DateRevised"`
}

type bookInfo struct {
	Publisher     publisher    `xml:"Publisher"`
	BookTitle     text         `xml:"BookTitle"`
	PubDate       pubDate      `xml:"PubDate"`
	BeginningDate simpleDate   `xml:"BeginningDate"`
	AuthorLists   []authorList `xml:"AuthorList"`
}

type publisher struct {
	Name     text `xml:"PublisherName"`
	Location text `xml:"PublisherLocation"`
}

type bookData struct {
	ArticleIDs []articleID `xml:"ArticleIdList>ArticleId"`
}

// year prefers the book's publication date, then the date ranges of the
// document, then a year named in the copyright statement.
func (b *bookArticle) year() int {
	doc := b.Document
	candidates := []string{
		doc.Book.PubDate.Year,
		doc.Book.PubDate.MedlineDate,
		doc.Book.BeginningDate.Year,
		doc.ContributionDate.Year,
		doc.DateRevised.Year,
	}
	if doc.Abstract != nil {
		candidates = append(candidates, doc.Abstract.Copyright.String())
	}
	return firstYear(candidates...)
}

func (b *bookArticle) doi() string {
	return doiFrom(b.Document.ArticleIDs, b.Data.ArticleIDs)
}

// contributors returns the document-level authors, skipping editor lists.
func (b *bookArticle) contributors() []string {
	var names []string
	for _, list := range b.Document.AuthorLists {
		if strings.EqualFold(list.Type, "editors") {
			continue
		}
		names = append(names, list.names()...)
	}
	return names
}

func (b *bookArticle) base(t types.DocumentType, title string, authors []string) types.CitationRecord {
	return types.CitationRecord{
		PMID:        strings.TrimSpace(b.Document.PMID),
		Type:        t,
		Title:       title,
		AuthorsList: authors,
		Year:        b.year(),
		DOI:         b.doi(),
		Abstract:    renderAbstract(b.Document.Abstract),
	}
}

// book is a whole-book record: no ArticleTitle below BookDocument.
type book struct{ bookArticle }

func (b *book) record() types.CitationRecord {
	authors := b.contributors()
	if len(authors) == 0 {
		for _, list := range b.Document.AuthorLists {
			authors = append(authors, list.names()...)
		}
	}
	if len(authors) == 0 {
		for _, list := range b.Document.Book.AuthorLists {
			authors = append(authors, list.names()...)
		}
	}

	rec := b.base(types.DocumentBook, b.Document.Book.BookTitle.String(), authors)
	rec.AuthorsShort = shortAuthors(authors)
	rec.Citation = bookCitation("", rec.Year, b.Document.Book.Publisher)
	return rec
}

// bookChapter is a chapter record inside a book.
type bookChapter struct{ bookArticle }

func (c *bookChapter) record() types.CitationRecord {
	authors := c.contributors()

	rec := c.base(types.DocumentBookChapter, c.Document.ArticleTitle.String(), authors)
	rec.AuthorsShort = shortChapterAuthors(authors)
	rec.Source = c.Document.Book.BookTitle.String()
	rec.Citation = bookCitation(rec.Source, rec.Year, c.Document.Book.Publisher)
	return rec
}

// bookCitation renders "{Title} ({Year}). {Location}: {Publisher}.".
// The title prefix is used for chapters only.
func bookCitation(title string, year int, p publisher) string {
	var parts []string
	if title != "" {
		parts = append(parts, title)
	}
	if year > 0 {
		parts = append(parts, fmt.Sprintf("(%d).", year))
	}

	location, name := p.Location.String(), p.Name.String()
	switch {
	case location != "" && name != "":
		parts = append(parts, location+": "+name+".")
	case name != "":
		parts = append(parts, name+".")
	case location != "":
		parts = append(parts, location+".")
	}
	return strings.Join(parts, " ")
}
