// Package snapshot persists the append-only history of catalog price rows
// and recovers the most recent one at startup.
package snapshot

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"PaperTrader/internal/model"
)

var (
	// ErrNotFound is returned by LoadLatest when no row was ever appended.
	ErrNotFound = errors.New("no price snapshot recorded")
	// ErrSchemaMismatch is returned by Append under PolicyReject when the
	// row's columns differ from the established schema.
	ErrSchemaMismatch = errors.New("snapshot columns do not match store schema")
)

// Store is an append-only log of price rows keyed by instrument name.
type Store interface {
	Append(row model.Row) error
	// LoadLatest returns the known prices of the last row, or ErrNotFound.
	LoadLatest() (map[string]decimal.Decimal, error)
	// History returns every row in append order.
	History() ([]model.Row, error)
	// Schema returns the established columns, nil before the first append.
	Schema() []string
	Close() error
}

// Policy decides what Append does with a row whose column set differs from
// the established schema.
type Policy string

const (
	// PolicyPad writes schema columns missing from the row as unknown and
	// drops columns the schema does not have.
	PolicyPad Policy = "pad"
	// PolicyReject refuses the row.
	PolicyReject Policy = "reject"
)

// ParsePolicy parses a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyPad, PolicyReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown reconciliation policy: %q", s)
	}
}

// reconcile projects row onto schema under policy. An empty schema means the
// store has none yet and the row's own columns become it.
func reconcile(schema []string, row model.Row, policy Policy) (model.Row, error) {
	if err := checkNames(row.Names()); err != nil {
		return nil, err
	}
	if len(schema) == 0 {
		return slices.Clone(row), nil
	}

	byName := make(map[string]model.Cell, len(row))
	for _, c := range row {
		byName[c.Name] = c
	}
	var missing, extra []string
	out := make(model.Row, len(schema))
	for i, name := range schema {
		c, ok := byName[name]
		if !ok {
			missing = append(missing, name)
			c = model.Cell{Name: name}
		}
		out[i] = c
		delete(byName, name)
	}
	for _, c := range row {
		if _, ok := byName[c.Name]; ok {
			extra = append(extra, c.Name)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return out, nil
	}

	if policy == PolicyReject {
		return nil, fmt.Errorf("%w: missing %v, extra %v", ErrSchemaMismatch, missing, extra)
	}
	if len(out.Known()) == 0 {
		return nil, fmt.Errorf("%w: no column of the row is in the schema", ErrSchemaMismatch)
	}
	if len(missing) > 0 {
		log.Printf("[WARN] snapshot: padding unknown prices for %v", missing)
	}
	if len(extra) > 0 {
		log.Printf("[WARN] snapshot: dropping columns not in schema: %v", extra)
	}
	return out, nil
}

func checkNames(names []string) error {
	if len(names) == 0 {
		return errors.New("snapshot row has no columns")
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" {
			return errors.New("snapshot column with empty name")
		}
		if seen[n] {
			return fmt.Errorf("duplicate snapshot column %q", n)
		}
		seen[n] = true
	}
	return nil
}

// Open opens the store for backend ("csv", "sqlite" or "memory").
func Open(backend, path string, policy Policy) (Store, error) {
	switch backend {
	case "csv":
		return OpenCSVStore(path, policy)
	case "sqlite":
		return OpenSQLiteStore(path, policy)
	case "memory":
		return NewMemoryStore(policy), nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend: %q", backend)
	}
}
