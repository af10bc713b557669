// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litter-getter/internal/format"
	"github.com/pdiddy/litter-getter/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [pmid...]",
	Short: "Fetch and parse PubMed records",
	Long: `Fetch retrieves the records for the given PMIDs with paginated efetch
calls and parses each one into a citation record: journal articles, books
and book chapters. Records are printed in the order the ids were given.

Ids can be passed as arguments, read from a file with --ids-file, or read
from stdin with --ids-file -, so "litter-getter search ... | litter-getter
fetch --ids-file -" fetches a whole result set.`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	idsFile, _ := cmd.Flags().GetString("ids-file")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	save, _ := cmd.Flags().GetBool("save")

	ids, err := readIDs(args, idsFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("no PMIDs given: pass ids as arguments or use --ids-file")
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	ctx := context.Background()
	res, err := c.Fetch(ctx, ids, pageSize)
	if err != nil {
		return err
	}

	if save {
		if err := saveRecords(ctx, res.Content); err != nil {
			return err
		}
	}

	return writeRecords(cmd, res.Content)
}

func saveRecords(ctx context.Context, records []types.CitationRecord) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.SaveRecords(ctx, records)
	if err != nil {
		return err
	}
	logger.Debug().Int("records", n).Msg("records stored")
	return nil
}

// writeRecords renders records in the format chosen by --format.
func writeRecords(cmd *cobra.Command, records []types.CitationRecord) error {
	outFormat, _ := cmd.Flags().GetString("format")
	withXML, _ := cmd.Flags().GetBool("xml")
	return renderRecords(cmd.OutOrStdout(), outFormat, withXML, records)
}

func renderRecords(w io.Writer, outFormat string, withXML bool, records []types.CitationRecord) error {
	switch outFormat {
	case "", "table":
		format.FormatTable(records, w)
		return nil
	case "json":
		return format.FormatJSON(records, withXML, w)
	case "csl":
		return format.FormatCSL(records, w)
	case "ids":
		ids := make([]string, len(records))
		for i, r := range records {
			ids[i] = r.PMID
		}
		return format.WriteIDs(ids, w)
	default:
		return fmt.Errorf("unknown format %q: use table, json, csl or ids", outFormat)
	}
}

func addRecordFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page-size", 0, "ids per efetch request (default: pubmed.fetch_page_size)")
	cmd.Flags().String("format", "table", "output format: table, json, csl, ids")
	cmd.Flags().Bool("xml", false, "include the source XML in JSON output")
}

func init() {
	addRecordFlags(fetchCmd)
	fetchCmd.Flags().String("ids-file", "", "read PMIDs from this file (- for stdin)")
	fetchCmd.Flags().Bool("save", true, "store the fetched records in the snapshot database")

	rootCmd.AddCommand(fetchCmd)
}
