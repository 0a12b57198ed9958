// Package typecache persists each column's reconciled type across runs,
// so parsing the same (or a same-shaped) CSV file repeatedly doesn't
// re-pay the cost of a column flipping from INT64 to DOUBLE the moment a
// later file happens to contain one fractional value a previous run
// never saw.
//
// Adapted from the teacher's internal/schema.Schema: same
// load-mutate-save shape and the same "_<suffix>.json" sidecar file next
// to the CSV, but caching a column's reconciled column.Type instead of a
// set of virtual column names.
package typecache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/csvquery/colcsv/internal/column"
)

// Cache implements reconcile.TypeNarrower: NarrowType widens a column's
// type to the supremum of what this run inferred and what a previous run
// saw, then remembers the result for next time. A column never narrows
// across runs, matching the monotone-promotion invariant the single-run
// pipeline already guarantees within one call to Parse.
type Cache struct {
	mu    sync.Mutex
	path  string
	Types map[int]column.Type `json:"types"`
}

// Load reads the cache sitting next to csvPath, or returns an empty one
// if it doesn't exist yet.
func Load(csvPath string) (*Cache, error) {
	c := &Cache{
		path:  sidecarPath(csvPath),
		Types: make(map[int]column.Type),
	}

	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, err
	}
	if c.Types == nil {
		c.Types = make(map[int]column.Type)
	}
	return c, nil
}

// Save writes the cache back to its sidecar file.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0644)
}

// NarrowType satisfies reconcile.TypeNarrower (via colcsv.TypeNarrower).
func (c *Cache) NarrowType(col int, inferred column.Type) column.Type {
	c.mu.Lock()
	defer c.mu.Unlock()

	typ := inferred
	if prev, ok := c.Types[col]; ok {
		typ = column.Sup(prev, inferred)
	}
	c.Types[col] = typ
	return typ
}

func sidecarPath(csvPath string) string {
	dir := filepath.Dir(csvPath)
	base := filepath.Base(csvPath)
	return filepath.Join(dir, base+"_typecache.json")
}
