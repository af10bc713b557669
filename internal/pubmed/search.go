// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/litter-getter/internal/observability"
	"github.com/pdiddy/litter-getter/pkg/types"
)

// esearchResult is the subset of an eSearchResult document the client reads.
// Count is kept as text so a non-numeric value is reported, not zeroed.
type esearchResult struct {
	XMLName   xml.Name          `xml:"eSearchResult"`
	Count     string            `xml:"Count"`
	IDs       []string          `xml:"IdList>Id"`
	Error     string            `xml:"ERROR"`
	ErrorList *esearchErrorList `xml:"ErrorList"`
}

type esearchErrorList struct {
	PhraseNotFound []string `xml:"PhraseNotFound"`
	FieldNotFound  []string `xml:"FieldNotFound"`
}

// Search runs a complete paginated search: one count request, then
// ceil(count/pageSize) id requests. A pageSize of zero or less uses the
// configured default; one above MaxSearchPageSize is clamped. On any
// failure the ids collected so far are discarded.
func (c *Client) Search(ctx context.Context, term string, pageSize int) (*types.SearchResult, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("search term is empty")
	}
	pageSize = c.searchPageSize(pageSize)

	total, err := c.CountIDs(ctx, term)
	if err != nil {
		return nil, err
	}

	ids, requests, err := c.CollectIDs(ctx, term, total, pageSize)
	if err != nil {
		return nil, err
	}

	log := observability.WithSearchContext(c.log, term)
	log.Info().Int("count", total).Int("requests", requests).Int("page_size", pageSize).Msg("search complete")

	return &types.SearchResult{
		Term:         term,
		TotalCount:   total,
		IDs:          ids,
		RequestCount: requests,
		PageSize:     pageSize,
	}, nil
}

// CountIDs asks esearch for the number of matches without transferring ids.
func (c *Client) CountIDs(ctx context.Context, term string) (int, error) {
	form := url.Values{}
	form.Set("term", term)
	form.Set("rettype", "count")

	res, err := c.esearch(ctx, form)
	if err != nil {
		return 0, &RetrievalError{Op: "esearch count", Chunk: -1, Err: err}
	}

	count, err := strconv.Atoi(strings.TrimSpace(res.Count))
	if err != nil || count < 0 {
		return 0, &RetrievalError{Op: "esearch count", Chunk: -1, Err: fmt.Errorf("non-numeric count %q", res.Count)}
	}
	return count, nil
}

// CollectIDs pages through the result set and returns the ids in server
// order together with the number of requests issued. A page holding fewer
// ids than requested, or a final list whose length differs from total,
// fails the collection.
func (c *Client) CollectIDs(ctx context.Context, term string, total, pageSize int) ([]string, int, error) {
	pageSize = c.searchPageSize(pageSize)

	log := observability.WithSearchContext(c.log, term)
	pages := pageCount(total, pageSize)
	ids := make([]string, 0, total)
	requests := 0

	for page := 0; page < pages; page++ {
		retstart := page * pageSize

		form := url.Values{}
		form.Set("term", term)
		form.Set("retstart", strconv.Itoa(retstart))
		form.Set("retmax", strconv.Itoa(pageSize))

		log.Debug().Int("page", page).Int("retstart", retstart).Int("retmax", pageSize).Msg("requesting ids")

		res, err := c.esearch(ctx, form)
		requests++
		if err != nil {
			return nil, requests, &RetrievalError{Op: "esearch", Chunk: page, Err: err}
		}
		if want := min(pageSize, total-retstart); len(res.IDs) < want {
			return nil, requests, &RetrievalError{
				Op:    "esearch",
				Chunk: page,
				Err:   fmt.Errorf("short page: got %d of %d ids at retstart %d", len(res.IDs), want, retstart),
			}
		}
		for _, id := range res.IDs {
			ids = append(ids, strings.TrimSpace(id))
		}
	}

	if len(ids) != total {
		return nil, requests, &RetrievalError{
			Op:    "esearch",
			Chunk: pages - 1,
			Err:   fmt.Errorf("collected %d ids, count reported %d", len(ids), total),
		}
	}
	return ids, requests, nil
}

func (c *Client) searchPageSize(pageSize int) int {
	if pageSize <= 0 {
		pageSize = c.cfg.SearchPageSize
	}
	return min(pageSize, MaxSearchPageSize)
}

// esearch posts one esearch request and decodes the response.
func (c *Client) esearch(ctx context.Context, form url.Values) (*esearchResult, error) {
	body, err := c.post(ctx, esearchEndpoint, form)
	if err != nil {
		return nil, err
	}

	var res esearchResult
	if err := newDecoder(body).Decode(&res); err != nil {
		return nil, fmt.Errorf("parsing esearch response: %w", err)
	}
	if msg := strings.TrimSpace(res.Error); msg != "" {
		return nil, errors.New("esearch: " + msg)
	}
	return &res, nil
}
