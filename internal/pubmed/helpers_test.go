// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litter-getter/internal/observability"
	"github.com/pdiddy/litter-getter/pkg/types"
)

var scienceIDs = []string{"19008416", "18927361", "18787170", "18487186", "18239126", "18239125"}

// fakeEutils serves esearch and efetch from an in-memory id list and the
// XML fixtures under testdata/records.
type fakeEutils struct {
	t *testing.T

	ids     []string
	count   string // overrides the reported count when set
	records map[string][]byte

	maxPage      int             // caps the ids per esearch page; 0 disables
	reverse      bool            // efetch answers in reverse id order
	omit         map[string]bool // ids efetch silently drops
	failEfetchAt int             // 1-based efetch call that returns 500; 0 disables
	status       map[string]int  // endpoint -> forced HTTP status

	mu    sync.Mutex
	forms []url.Values
	calls map[string]int
}

func newFakeEutils(t *testing.T, ids []string) *fakeEutils {
	t.Helper()
	return &fakeEutils{
		t:       t,
		ids:     ids,
		records: loadRecords(t),
		omit:    map[string]bool{},
		status:  map[string]int{},
		calls:   map[string]int{},
	}
}

func loadRecords(t *testing.T) map[string][]byte {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join("testdata", "records", "*.xml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	records := make(map[string][]byte, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		records[strings.TrimSuffix(filepath.Base(p), ".xml")] = data
	}
	return records
}

func readRecord(t *testing.T, pmid string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "records", pmid+".xml"))
	require.NoError(t, err)
	return data
}

func (f *fakeEutils) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	endpoint := strings.TrimPrefix(r.URL.Path, "/")

	f.mu.Lock()
	f.forms = append(f.forms, r.PostForm)
	f.calls[endpoint]++
	call := f.calls[endpoint]
	f.mu.Unlock()

	if code := f.status[endpoint]; code != 0 {
		http.Error(w, "forced failure", code)
		return
	}

	switch endpoint {
	case esearchEndpoint:
		f.esearch(w, r.PostForm)
	case efetchEndpoint:
		if f.failEfetchAt == call {
			http.Error(w, "backend unavailable", http.StatusInternalServerError)
			return
		}
		f.efetch(w, r.PostForm)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeEutils) esearch(w http.ResponseWriter, form url.Values) {
	count := f.count
	if count == "" {
		count = strconv.Itoa(len(f.ids))
	}

	w.Header().Set("Content-Type", "text/xml")
	if form.Get("rettype") == "count" {
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8" ?>
<!DOCTYPE eSearchResult PUBLIC "-//NLM//DTD esearch 20060628//EN" "https://eutils.ncbi.nlm.nih.gov/eutils/dtd/20060628/esearch.dtd">
<eSearchResult><Count>%s</Count></eSearchResult>`, count)
		return
	}

	start, _ := strconv.Atoi(form.Get("retstart"))
	size, _ := strconv.Atoi(form.Get("retmax"))
	if f.maxPage > 0 {
		size = min(size, f.maxPage)
	}
	end := min(start+size, len(f.ids))
	if start > end {
		start = end
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8" ?>
<eSearchResult><Count>%s</Count><RetMax>%d</RetMax><RetStart>%d</RetStart><IdList>`, count, end-start, start)
	for _, id := range f.ids[start:end] {
		fmt.Fprintf(&b, "<Id>%s</Id>", id)
	}
	b.WriteString(`</IdList><TranslationSet/><TranslationStack><TermSet><Term>science[journal]</Term><Field>journal</Field><Count>99999</Count><Explode>N</Explode></TermSet></TranslationStack></eSearchResult>`)
	fmt.Fprint(w, b.String())
}

func (f *fakeEutils) efetch(w http.ResponseWriter, form url.Values) {
	ids := strings.Split(form.Get("id"), ",")
	if f.reverse {
		for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
			ids[i], ids[j] = ids[j], ids[i]
		}
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" ?>
<!DOCTYPE PubmedArticleSet PUBLIC "-//NLM//DTD PubMedArticle, 1st January 2019//EN" "https://dtd.nlm.nih.gov/ncbi/pubmed/out/pubmed_190101.dtd">
<PubmedArticleSet>
`)
	for _, id := range ids {
		if f.omit[id] {
			continue
		}
		rec, ok := f.records[id]
		if !ok {
			continue
		}
		b.Write(rec)
		b.WriteString("\n")
	}
	b.WriteString("</PubmedArticleSet>\n")

	w.Header().Set("Content-Type", "text/xml")
	fmt.Fprint(w, b.String())
}

func (f *fakeEutils) callCount(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[endpoint]
}

func (f *fakeEutils) lastForm() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.forms) == 0 {
		return nil
	}
	return f.forms[len(f.forms)-1]
}

// newTestClient starts srv and returns a connected client pointed at it.
func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]Option{WithHTTPClient(srv.Client())}, opts...)
	c := New(types.PubMedConfig{BaseURL: srv.URL}, opts...)
	require.NoError(t, c.Connect("litter-getter-test", "tests@example.org"))
	return c
}

func newTestClientWithMetrics(t *testing.T, handler http.Handler) (*Client, *observability.Metrics) {
	t.Helper()
	m := observability.NewMetrics()
	return newTestClient(t, handler, WithMetrics(m)), m
}
