// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/litter-getter/internal/pubmed"
	"github.com/pdiddy/litter-getter/internal/secrets"
	"github.com/pdiddy/litter-getter/internal/store"
	"github.com/pdiddy/litter-getter/pkg/types"
)

// resolveIdentification picks the tool and email from configuration,
// falling back to the secrets directory for each value independently.
func resolveIdentification(pc types.PubMedConfig, s map[string]string) (tool, email string) {
	secretTool, secretEmail := secrets.Identification(s)
	tool, email = strings.TrimSpace(pc.Tool), strings.TrimSpace(pc.Email)
	if tool == "" {
		tool = secretTool
	}
	if email == "" {
		email = secretEmail
	}
	return tool, email
}

// newClient builds a pubmed client from the loaded configuration. When no
// identification is available the client keeps its placeholder and every
// request fails with pubmed.ErrNotConnected.
func newClient() (*pubmed.Client, error) {
	c := pubmed.New(cfg.PubMed, pubmed.WithLogger(logger), pubmed.WithMetrics(metrics))

	tool, email := resolveIdentification(cfg.PubMed, loadedSecrets)
	if tool == "" && email == "" {
		logger.Warn().Msg(`no NCBI identification configured; run "litter-getter connect"`)
		return c, nil
	}
	if err := c.Connect(tool, email); err != nil {
		return nil, err
	}
	return c, nil
}

func openStore() (*store.Store, error) {
	return store.Open(cfg.Store, logger)
}

// readIDs collects PMIDs from args and, when path is set, from a file
// ("-" reads stdin). Ids may be separated by whitespace or commas.
func readIDs(args []string, path string, stdin io.Reader) ([]string, error) {
	var ids []string
	for _, a := range args {
		ids = append(ids, splitIDs(a)...)
	}
	if path == "" {
		return ids, nil
	}

	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening id file: %w", err)
		}
		defer f.Close()
		r = f
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		ids = append(ids, splitIDs(sc.Text())...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading ids: %w", err)
	}
	return ids, nil
}

func splitIDs(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\r' || r == '\n'
	})
}
