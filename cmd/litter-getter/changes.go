// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litter-getter/internal/format"
	"github.com/pdiddy/litter-getter/internal/pubmed"
	"github.com/pdiddy/litter-getter/internal/store"
	"github.com/pdiddy/litter-getter/pkg/types"
)

var changesCmd = &cobra.Command{
	Use:   "changes [term]",
	Short: "Re-run a search and report PMIDs added or removed since last time",
	Long: `Changes runs the search again and compares its ids with a previous
result: the file given by --previous, or else the latest snapshot of the
same term in the snapshot database. Added ids are printed with "+",
removed ids with "-".

With --fetch the added records are fetched and printed after the diff.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChanges,
}

func runChanges(cmd *cobra.Command, args []string) error {
	term := strings.Join(args, " ")
	previousFile, _ := cmd.Flags().GetString("previous")
	pageSize, _ := cmd.Flags().GetInt("search-page-size")
	save, _ := cmd.Flags().GetBool("save")
	outFile, _ := cmd.Flags().GetString("out")
	fetchAdded, _ := cmd.Flags().GetBool("fetch")
	fetchPageSize, _ := cmd.Flags().GetInt("page-size")

	ctx := context.Background()

	previous, err := previousIDs(ctx, term, previousFile)
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	res, err := c.Search(ctx, term, pageSize)
	if err != nil {
		return err
	}

	cs := pubmed.ChangesFrom(res, previous)
	w := cmd.OutOrStdout()
	format.FormatChanges(cs, w)

	if _, err := recordSearch(ctx, res, save, outFile); err != nil {
		return err
	}

	if !fetchAdded || len(cs.Added) == 0 {
		return nil
	}

	fetched, err := c.Fetch(ctx, cs.SortedAdded(), fetchPageSize)
	if err != nil {
		return err
	}
	if save {
		if err := saveRecords(ctx, fetched.Content); err != nil {
			return err
		}
	}
	fmt.Fprintln(w)
	return writeRecords(cmd, fetched.Content)
}

// previousIDs loads the id list to diff against. A term never searched
// before diffs against an empty list.
func previousIDs(ctx context.Context, term, previousFile string) ([]string, error) {
	var snap *types.SearchSnapshot
	if previousFile != "" {
		s, err := format.ReadSearchFile(previousFile)
		if err != nil {
			return nil, err
		}
		if s.Term != term {
			logger.Warn().Str("file_term", s.Term).Str("term", term).Msg("previous search used a different term")
		}
		snap = s
	} else {
		st, err := openStore()
		if err != nil {
			return nil, err
		}
		defer st.Close()

		s, err := st.LatestSearch(ctx, term)
		if errors.Is(err, store.ErrNotFound) {
			logger.Info().Str("term", term).Msg("no previous search; every id counts as added")
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		snap = s
	}

	logger.Debug().Str("snapshot", snap.ID).Time("taken_at", snap.TakenAt).Int("ids", len(snap.IDs)).Msg("diffing against previous search")
	return snap.IDs, nil
}

func init() {
	addRecordFlags(changesCmd)
	changesCmd.Flags().String("previous", "", "search file written by --out to diff against (default: latest stored search)")
	changesCmd.Flags().Int("search-page-size", 0, "ids per esearch request (default: pubmed.search_page_size)")
	changesCmd.Flags().Bool("save", true, "record the new search in the snapshot database")
	changesCmd.Flags().String("out", "", "also write the new search snapshot to this YAML file")
	changesCmd.Flags().Bool("fetch", false, "fetch and print the added records")

	rootCmd.AddCommand(changesCmd)
}
