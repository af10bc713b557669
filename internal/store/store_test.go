// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litter-getter/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "db", "test.db")}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// fixedClock returns a clock that advances one second per call.
func fixedClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Second)
		return now
	}
}

func scienceResult(ids ...string) *types.SearchResult {
	return &types.SearchResult{
		Term:         "science[journal] AND breast cancer AND 2008[pdat]",
		TotalCount:   len(ids),
		IDs:          ids,
		RequestCount: 1,
		PageSize:     5000,
	}
}

// --- searches ---

func TestSaveAndLoadSearch(t *testing.T) {
	s := testStore(t)
	s.now = fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	res := scienceResult("19008416", "18927361", "18787170")
	snap, err := s.SaveSearch(ctx, res)
	require.NoError(t, err)

	_, err = uuid.Parse(snap.ID)
	assert.NoError(t, err, "snapshot ids are UUIDs")

	got, err := s.LatestSearch(ctx, res.Term)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, *res, got.SearchResult)
	assert.True(t, got.TakenAt.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))

	byID, err := s.Search(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, got, byID)
}

func TestLatestSearchPicksNewest(t *testing.T) {
	s := testStore(t)
	s.now = fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := s.SaveSearch(ctx, scienceResult("999999", "19008416"))
	require.NoError(t, err)
	second, err := s.SaveSearch(ctx, scienceResult("19008416", "18239126"))
	require.NoError(t, err)

	other := &types.SearchResult{Term: "other", IDs: []string{"1"}, TotalCount: 1, RequestCount: 1, PageSize: 10}
	_, err = s.SaveSearch(ctx, other)
	require.NoError(t, err)

	got, err := s.LatestSearch(ctx, second.Term)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, []string{"19008416", "18239126"}, got.IDs)

	list, err := s.Searches(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "other", list[0].Term)
	assert.Nil(t, list[0].IDs, "headers only")
}

func TestSaveEmptySearch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	snap, err := s.SaveSearch(ctx, &types.SearchResult{Term: "nothing", PageSize: 5000})
	require.NoError(t, err)

	got, err := s.LatestSearch(ctx, "nothing")
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.Empty(t, got.IDs)
	assert.Equal(t, 0, got.RequestCount)
}

func TestSearchNotFound(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.LatestSearch(ctx, "never searched")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.Search(ctx, uuid.NewString())
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.SaveSearch(ctx, nil)
	assert.Error(t, err)
}

// --- records ---

func TestSaveRecordsUpserts(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	chapter := types.CitationRecord{
		PMID:         "20301382",
		Type:         types.DocumentBookChapter,
		Title:        "Mitochondrial DNA Deletion Syndromes",
		Citation:     "GeneReviews(®) (1993). Seattle (WA): University of Washington, Seattle.",
		Source:       "GeneReviews(®)",
		AuthorsList:  []string{"DiMauro S", "Hirano M"},
		AuthorsShort: "DiMauro S and Hirano M",
		Year:         1993,
		XML:          "<PubmedBookArticle/>",
	}
	article := types.CitationRecord{
		PMID:         "18927361",
		Type:         types.DocumentJournalArticle,
		Title:        "Genetics. DNA test for breast cancer risk draws criticism.",
		Citation:     "Science 2008; 322 (5900):357",
		AuthorsList:  []string{"Couzin J"},
		AuthorsShort: "Couzin J",
		Year:         2008,
		DOI:          "10.1126/science.322.5900.357",
	}

	n, err := s.SaveRecords(ctx, []types.CitationRecord{chapter, article})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.Record(ctx, "20301382")
	require.NoError(t, err)
	assert.Equal(t, chapter, *got)
	assert.False(t, got.HasDOI())

	article.Title = "Revised title"
	_, err = s.SaveRecords(ctx, []types.CitationRecord{article})
	require.NoError(t, err)

	got, err = s.Record(ctx, "18927361")
	require.NoError(t, err)
	assert.Equal(t, "Revised title", got.Title)
	assert.Equal(t, "10.1126/science.322.5900.357", got.DOI)

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM records`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestSaveRecordsEmpty(t *testing.T) {
	s := testStore(t)
	n, err := s.SaveRecords(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRecordNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.Record(context.Background(), "1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestOpenReusesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(types.StoreConfig{Path: path}, zerolog.Nop())
	require.NoError(t, err)
	snap, err := s.SaveSearch(ctx, scienceResult("1", "2"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(types.StoreConfig{Path: path}, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	got, err := s.LatestSearch(ctx, snap.Term)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, got.IDs)
}
