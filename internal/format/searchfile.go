// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"errors"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litter-getter/pkg/types"
)

// WriteSearchFile saves a search snapshot to a YAML file so that a later
// run can diff against it without a database.
func WriteSearchFile(path string, snap *types.SearchSnapshot) error {
	if snap == nil {
		return errors.New("writing search file: nil snapshot")
	}
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling search file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSearchFile loads a snapshot written by WriteSearchFile.
func ReadSearchFile(path string) (*types.SearchSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading search file: %w", err)
	}
	var snap types.SearchSnapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing search file %s: %w", path, err)
	}
	if snap.Term == "" {
		return nil, fmt.Errorf("parsing search file %s: no term", path)
	}
	return &snap, nil
}
