// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/litter-getter/internal/observability"
	"github.com/pdiddy/litter-getter/pkg/types"
)

// Fetch retrieves and parses the records for ids, pageSize ids per
// efetch call. A pageSize of zero or less uses the configured default.
// Content is returned in the order of ids. Any chunk failure aborts the
// whole fetch and no records are returned.
func (c *Client) Fetch(ctx context.Context, ids []string, pageSize int) (*types.FetchResult, error) {
	if pageSize <= 0 {
		pageSize = c.cfg.FetchPageSize
	}

	requested := make([]string, len(ids))
	for i, id := range ids {
		requested[i] = strings.TrimSpace(id)
	}

	result := &types.FetchResult{
		RequestedIDs: requested,
		Content:      make([]types.CitationRecord, 0, len(requested)),
		PageSize:     pageSize,
	}

	log := observability.WithFetchContext(c.log, len(requested))

	for chunk, start := 0, 0; start < len(requested); chunk, start = chunk+1, start+pageSize {
		end := min(start+pageSize, len(requested))
		batch := requested[start:end]

		log.Debug().Int("chunk", chunk).Int("size", len(batch)).Msg("fetching records")

		records, err := c.fetchChunk(ctx, batch)
		result.RequestCount++
		if err != nil {
			return nil, &RetrievalError{Op: "efetch", Chunk: chunk, IDs: batch, Err: err}
		}
		result.Content = append(result.Content, records...)
	}

	log.Info().Int("records", len(result.Content)).Int("requests", result.RequestCount).Int("page_size", pageSize).Msg("fetch complete")
	return result, nil
}

// fetchChunk issues one efetch call and returns the records ordered like batch.
func (c *Client) fetchChunk(ctx context.Context, batch []string) ([]types.CitationRecord, error) {
	form := url.Values{}
	form.Set("id", strings.Join(batch, ","))
	form.Set("retmode", "xml")

	body, err := c.post(ctx, efetchEndpoint, form)
	if err != nil {
		return nil, err
	}

	fragments, err := SplitArticleSet(body)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]types.CitationRecord, len(fragments))
	for _, frag := range fragments {
		rec, err := ParseRecord(frag)
		if err != nil {
			return nil, err
		}
		c.metrics.ObserveRecord(rec.Type)
		byID[rec.PMID] = rec
	}

	records := make([]types.CitationRecord, 0, len(batch))
	var missing []string
	for _, id := range batch {
		rec, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		records = append(records, rec)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("response has no record for %d of %d ids: %s", len(missing), len(batch), summarizeIDs(missing))
	}
	return records, nil
}
