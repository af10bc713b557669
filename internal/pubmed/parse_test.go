// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litter-getter/pkg/types"
)

func parseFixture(t *testing.T, pmid string) types.CitationRecord {
	t.Helper()
	rec, err := ParseRecord(readRecord(t, pmid))
	require.NoError(t, err)
	return rec
}

// --- journal articles ---

func TestParseJournalArticle(t *testing.T) {
	rec := parseFixture(t, "19008416")

	assert.Equal(t, "19008416", rec.PMID)
	assert.Equal(t, types.DocumentJournalArticle, rec.Type)
	assert.Equal(t, "Genomic loss of microRNA-101 leads to overexpression of histone methyltransferase EZH2 in cancer.", rec.Title)
	assert.Equal(t, "Science 2008; 322 (5908):1695-9", rec.Citation)
	assert.Equal(t, "Science", rec.Source)
	assert.Equal(t, []string{"Varambally S", "Cao Q", "Mani RS", "Chinnaiyan AM"}, rec.AuthorsList)
	assert.Equal(t, "Varambally S et al.", rec.AuthorsShort)
	assert.Equal(t, 2008, rec.Year)
	assert.Equal(t, "10.1126/science.1165395", rec.DOI)
	assert.True(t, rec.HasDOI())
	assert.True(t, strings.HasPrefix(rec.Abstract, "Cancer is a disease"))
	assert.Equal(t, string(readRecord(t, "19008416")), rec.XML)
}

func TestParseSingleAuthor(t *testing.T) {
	rec := parseFixture(t, "18927361")
	assert.Equal(t, []string{"Couzin J"}, rec.AuthorsList)
	assert.Equal(t, "Couzin J", rec.AuthorsShort)
	assert.Equal(t, "Science 2008; 322 (5900):357", rec.Citation)
	assert.Empty(t, rec.Abstract)
}

func TestParseCollectiveAuthor(t *testing.T) {
	rec := parseFixture(t, "21860499")
	assert.Equal(t, []string{"National Toxicology Program"}, rec.AuthorsList)
	assert.Equal(t, "National Toxicology Program", rec.AuthorsShort)
	assert.Equal(t, "Rep Carcinog 2011; (12):195-205", rec.Citation)
	assert.False(t, rec.HasDOI())
}

func TestParseDOIFromArticleIDList(t *testing.T) {
	rec := parseFixture(t, "21813142")
	assert.Equal(t, "10.1016/j.medcli.2011.05.017", rec.DOI)
	assert.Equal(t, 2012, rec.Year, "year comes from MedlineDate")
	assert.Equal(t, "Med Clin (Barc) 2012; 138 (11):486-8", rec.Citation)
	assert.Equal(t, "Med Clin (Barc)", rec.Source, "MedlineTA stands in for a missing ISOAbbreviation")
	assert.Equal(t, []string{"García A", "López P"}, rec.AuthorsList, "invalid authors are skipped")
	assert.Equal(t, "García A et al.", rec.AuthorsShort, "two-author articles keep the et al. form")
}

func TestParseUTF8Abstract(t *testing.T) {
	rec := parseFixture(t, "23878845")
	assert.Contains(t, rec.Abstract, "α")
	assert.Equal(t, "TNF-α signaling in hepatic stellate cells.", rec.Title)
	assert.Equal(t, "Müller J", rec.AuthorsShort)
}

func TestParseStructuredAbstract(t *testing.T) {
	rec := parseFixture(t, "21813367")

	want := `<span class="abstract_label">BACKGROUND: </span>People living or working in eastern Ohio and western West Virginia have been exposed to perfluorooctanoic acid (PFOA) released by DuPont Washington Works facilities.` +
		`<br><span class="abstract_label">OBJECTIVES: </span>Our objective was to estimate historical PFOA exposures and serum concentrations experienced by 45,276 non-occupationally exposed participants in the C8 Health Project who consented to share their residential histories and a 2005-2006 serum PFOA measurement.` +
		`<br><span class="abstract_label">METHODS: </span>We estimated annual PFOA exposure rates for each individual based on predicted calibrated water concentrations and predicted air concentrations using an environmental fate and transport model, individual residential histories, and maps of public water supply networks. We coupled individual exposure estimates with a one-compartment absorption, distribution, metabolism, and excretion (ADME) model to estimate time-dependent serum concentrations.` +
		`<br><span class="abstract_label">RESULTS: </span>For all participants (n = 45,276), predicted and observed median serum concentrations in 2005-2006 are 14.2 and 24.3 ppb, respectively [Spearman's rank correlation coefficient (r(s)) = 0.67]. For participants who provided daily public well water consumption rate and who had the same residence and workplace in one of six municipal water districts for 5 years before the serum sample (n = 1,074), predicted and observed median serum concentrations in 2005-2006 are 32.2 and 40.0 ppb, respectively (r(s) = 0.82).` +
		`<br><span class="abstract_label">CONCLUSIONS: </span>Serum PFOA concentrations predicted by linked exposure and ADME models correlated well with observed 2005-2006 human serum concentrations for C8 Health Project participants. These individualized retrospective exposure and serum estimates are being used in a variety of epidemiologic studies being conducted in this region.`

	assert.Equal(t, want, rec.Abstract)
	assert.Equal(t, "Environ Health Perspect 2011; 119 (12):1760-5", rec.Citation)
}

// --- books and chapters ---

func TestParseBook(t *testing.T) {
	rec := parseFixture(t, "26468569")
	rec.XML = ""
	rec.Abstract = ""

	want := types.CitationRecord{
		PMID:     "26468569",
		Type:     types.DocumentBook,
		Title:    "Application of Modern Toxicology Approaches for Predicting Acute Toxicity for Chemical Defense",
		Citation: "(2015). Washington (DC): National Academies Press (US).",
		AuthorsList: []string{
			"Committee on Predictive-Toxicology Approaches for Military Assessments of Acute Exposures",
			"Committee on Toxicology",
			"Board on Environmental Studies and Toxicology",
			"Board on Life Sciences",
			"Division on Earth and Life Studies",
			"The National Academies of Sciences, Engineering, and Medicine",
		},
		AuthorsShort: "Committee on Predictive-Toxicology Approaches for Military Assessments of Acute Exposures et al.",
		Year:         2015,
		DOI:          "10.17226/21775",
	}
	assert.Equal(t, want, rec)
}

func TestParseBookChapter(t *testing.T) {
	rec := parseFixture(t, "20301382")

	assert.Equal(t, types.DocumentBookChapter, rec.Type)
	assert.Equal(t, "20301382", rec.PMID)
	assert.Equal(t, "Mitochondrial DNA Deletion Syndromes", rec.Title)
	assert.Equal(t, []string{"DiMauro S", "Hirano M"}, rec.AuthorsList, "editors are not authors")
	assert.Equal(t, "DiMauro S and Hirano M", rec.AuthorsShort)
	assert.Equal(t, "GeneReviews(®) (1993). Seattle (WA): University of Washington, Seattle.", rec.Citation)
	assert.Equal(t, "GeneReviews(®)", rec.Source)
	assert.Equal(t, 1993, rec.Year)
	assert.Empty(t, rec.DOI)
	assert.False(t, rec.HasDOI())
	assert.True(t, strings.HasPrefix(rec.Abstract, `<span class="abstract_label">CLINICAL CHARACTERISTICS: </span>`))
	assert.Contains(t, rec.Abstract, `<br><span class="abstract_label">DIAGNOSIS/TESTING: </span>`)
}

func TestParseBookYearFromCopyright(t *testing.T) {
	fragment := `<PubmedBookArticle><BookDocument>
<PMID>1</PMID>
<Book><Publisher><PublisherName>Acme</PublisherName></Publisher><BookTitle>Handbook</BookTitle></Book>
<Abstract><AbstractText>Text.</AbstractText><CopyrightInformation>Copyright 2019, Acme.</CopyrightInformation></Abstract>
</BookDocument></PubmedBookArticle>`

	rec, err := ParseRecord([]byte(fragment))
	require.NoError(t, err)
	assert.Equal(t, types.DocumentBook, rec.Type)
	assert.Equal(t, 2019, rec.Year)
	assert.Equal(t, "(2019). Acme.", rec.Citation)
	assert.Empty(t, rec.AuthorsList)
	assert.Empty(t, rec.AuthorsShort)
}

func TestParseBookFallsBackToBookAuthors(t *testing.T) {
	fragment := `<PubmedBookArticle><BookDocument>
<PMID>2</PMID>
<Book>
  <Publisher><PublisherName>Acme</PublisherName><PublisherLocation>Springfield</PublisherLocation></Publisher>
  <BookTitle>Field Guide</BookTitle>
  <PubDate><Year>2001</Year></PubDate>
  <AuthorList Type="authors"><Author><LastName>Smith</LastName><Initials>J</Initials></Author></AuthorList>
</Book>
</BookDocument></PubmedBookArticle>`

	rec, err := ParseRecord([]byte(fragment))
	require.NoError(t, err)
	assert.Equal(t, []string{"Smith J"}, rec.AuthorsList)
	assert.Equal(t, "Smith J", rec.AuthorsShort)
	assert.Equal(t, "Field Guide", rec.Title)
	assert.Equal(t, "(2001). Springfield: Acme.", rec.Citation)
}

// --- failures ---

func TestParseRecordErrors(t *testing.T) {
	tests := []struct {
		name        string
		fragment    string
		wantElement string
	}{
		{"unknown root", `<DeleteCitation><PMID>1</PMID></DeleteCitation>`, "DeleteCitation"},
		{"missing journal PMID", `<PubmedArticle><MedlineCitation><Article><ArticleTitle>x</ArticleTitle></Article></MedlineCitation></PubmedArticle>`, "PubmedArticle"},
		{"missing book PMID", `<PubmedBookArticle><BookDocument><Book><BookTitle>x</BookTitle></Book></BookDocument></PubmedBookArticle>`, "PubmedBookArticle"},
		{"malformed", `<PubmedArticle><MedlineCitation>`, "PubmedArticle"},
		{"empty", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecord([]byte(tt.fragment))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse))

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.wantElement, pe.Element)
		})
	}
}

// --- SplitArticleSet ---

func TestSplitArticleSet(t *testing.T) {
	article := readRecord(t, "18927361")
	chapter := readRecord(t, "20301382")

	body := `<?xml version="1.0" ?>
<!DOCTYPE PubmedArticleSet PUBLIC "-//NLM//DTD PubMedArticle, 1st January 2019//EN" "pubmed_190101.dtd">
<PubmedArticleSet>
` + string(article) + "\n" + string(chapter) + `
</PubmedArticleSet>`

	fragments, err := SplitArticleSet([]byte(body))
	require.NoError(t, err)
	require.Len(t, fragments, 2)
	assert.Equal(t, strings.TrimSpace(string(article)), string(fragments[0]))
	assert.Equal(t, strings.TrimSpace(string(chapter)), string(fragments[1]))

	rec, err := ParseRecord(fragments[1])
	require.NoError(t, err)
	assert.Equal(t, "20301382", rec.PMID)
}

func TestSplitArticleSetEmpty(t *testing.T) {
	fragments, err := SplitArticleSet([]byte(`<PubmedArticleSet></PubmedArticleSet>`))
	require.NoError(t, err)
	assert.Empty(t, fragments)
}

func TestSplitArticleSetRejectsOtherRoots(t *testing.T) {
	_, err := SplitArticleSet([]byte(`<eFetchResult><ERROR>Empty id list</ERROR></eFetchResult>`))
	assert.Error(t, err)

	_, err = SplitArticleSet([]byte(``))
	assert.Error(t, err)
}

// --- authors ---

func TestShortAuthorForms(t *testing.T) {
	tests := []struct {
		names   []string
		article string
		chapter string
	}{
		{nil, "", ""},
		{[]string{"Couzin J"}, "Couzin J", "Couzin J"},
		{[]string{"DiMauro S", "Hirano M"}, "DiMauro S et al.", "DiMauro S and Hirano M"},
		{[]string{"A B", "C D", "E F"}, "A B et al.", "A B et al."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.article, shortAuthors(tt.names))
		assert.Equal(t, tt.chapter, shortChapterAuthors(tt.names))
	}
}

func TestFirstYear(t *testing.T) {
	assert.Equal(t, 2012, firstYear("", "2012 Apr-May"))
	assert.Equal(t, 1998, firstYear("Winter 1998-1999"))
	assert.Equal(t, 0, firstYear("", "no year here", "12345"))
	assert.Equal(t, 2001, firstYear("2001", "2005"))
}
