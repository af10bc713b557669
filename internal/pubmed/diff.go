// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import "github.com/pdiddy/litter-getter/pkg/types"

// Diff compares two id lists as sets. Added holds ids only in newIDs,
// Removed holds ids only in oldIDs; ids present in both appear in neither.
func Diff(oldIDs, newIDs []string) types.ChangeSet {
	oldSet := toSet(oldIDs)
	newSet := toSet(newIDs)

	cs := types.ChangeSet{
		Added:   make(map[string]struct{}),
		Removed: make(map[string]struct{}),
	}
	for id := range newSet {
		if _, ok := oldSet[id]; !ok {
			cs.Added[id] = struct{}{}
		}
	}
	for id := range oldSet {
		if _, ok := newSet[id]; !ok {
			cs.Removed[id] = struct{}{}
		}
	}
	return cs
}

// ChangesFrom diffs a completed search against a previous id list.
func ChangesFrom(result *types.SearchResult, oldIDs []string) types.ChangeSet {
	var ids []string
	if result != nil {
		ids = result.IDs
	}
	return Diff(oldIDs, ids)
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
