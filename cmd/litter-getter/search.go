// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litter-getter/internal/format"
	"github.com/pdiddy/litter-getter/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Run a paginated PubMed search and print the matching PMIDs",
	Long: `Search sends the term to esearch, first asking for the total count and
then collecting every id page by page. PMIDs are printed one per line in
server order. The completed search is recorded in the snapshot database
so that "changes" can diff against it later.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	term := strings.Join(args, " ")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	save, _ := cmd.Flags().GetBool("save")
	outFile, _ := cmd.Flags().GetString("out")

	c, err := newClient()
	if err != nil {
		return err
	}

	ctx := context.Background()
	res, err := c.Search(ctx, term, pageSize)
	if err != nil {
		return err
	}

	snap, err := recordSearch(ctx, res, save, outFile)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	format.SearchSummary(res, cmd.ErrOrStderr())
	return format.WriteIDs(res.IDs, w)
}

// recordSearch wraps res in a snapshot, saving it to the store when save
// is set and to outFile when one is given.
func recordSearch(ctx context.Context, res *types.SearchResult, save bool, outFile string) (*types.SearchSnapshot, error) {
	snap := &types.SearchSnapshot{TakenAt: time.Now().UTC(), SearchResult: *res}

	if save {
		st, err := openStore()
		if err != nil {
			return nil, err
		}
		defer st.Close()

		if snap, err = st.SaveSearch(ctx, res); err != nil {
			return nil, err
		}
	}

	if outFile != "" {
		if err := format.WriteSearchFile(outFile, snap); err != nil {
			return nil, err
		}
		logger.Info().Str("file", outFile).Msg("search written")
	}
	return snap, nil
}

func init() {
	searchCmd.Flags().Int("page-size", 0, "ids per esearch request (default: pubmed.search_page_size)")
	searchCmd.Flags().Bool("json", false, "print the search snapshot as JSON")
	searchCmd.Flags().Bool("save", true, "record the search in the snapshot database")
	searchCmd.Flags().String("out", "", "also write the search snapshot to this YAML file")

	rootCmd.AddCommand(searchCmd)
}
