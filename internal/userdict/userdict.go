// Package userdict holds user-supplied splits that override the analyzer's
// own A and B units for specific surfaces.
package userdict

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"GoSplit/internal/analysis"
)

var (
	// ErrMalformedEntry signals parts that do not spell out their surface.
	ErrMalformedEntry = errors.New("userdict: malformed entry")
	// ErrUnsupportedMode signals an entry for a mode that cannot hold splits.
	ErrUnsupportedMode = errors.New("userdict: only A and B splits can be stored")
)

// Source looks up the user split of surface for mode. ok is false when the
// source has no entry.
type Source interface {
	Lookup(ctx context.Context, surface string, mode analysis.SplitMode) (parts []string, ok bool, err error)
}

// Entry holds the A and B splits of one surface. A nil slice means no entry.
type Entry struct {
	A []string `json:"a,omitempty"`
	B []string `json:"b,omitempty"`
}

func (e Entry) parts(mode analysis.SplitMode) []string {
	switch mode {
	case analysis.SplitA:
		return e.A
	case analysis.SplitB:
		return e.B
	}
	return nil
}

// Validate checks that parts concatenate to surface and that mode can hold
// a split.
func Validate(surface string, mode analysis.SplitMode, parts []string) error {
	if mode != analysis.SplitA && mode != analysis.SplitB {
		return fmt.Errorf("%w: %v", ErrUnsupportedMode, mode)
	}
	if surface == "" || len(parts) == 0 {
		return fmt.Errorf("%w: empty surface or parts", ErrMalformedEntry)
	}
	for _, p := range parts {
		if p == "" {
			return fmt.Errorf("%w: empty part in %q", ErrMalformedEntry, surface)
		}
	}
	if joined := strings.Join(parts, ""); joined != surface {
		return fmt.Errorf("%w: parts %q spell %q, not %q", ErrMalformedEntry, parts, joined, surface)
	}
	return nil
}

// Fold returns surface and parts in NFKC form, the form a normalizing
// tokenizer looks surfaces up by.
func Fold(surface string, parts []string) (string, []string) {
	folded := make([]string, len(parts))
	for i, p := range parts {
		folded[i] = norm.NFKC.String(p)
	}
	return norm.NFKC.String(surface), folded
}

// Dict is an in-memory Source. It is safe for concurrent use.
type Dict struct {
	mu      sync.RWMutex
	entries map[string]Entry
	fold    bool
}

// NewDict creates an empty Dict that stores entries as written.
func NewDict() *Dict {
	return &Dict{entries: make(map[string]Entry)}
}

// NewFoldedDict creates an empty Dict that stores entries in NFKC form.
func NewFoldedDict() *Dict {
	d := NewDict()
	d.fold = true
	return d
}

// Add stores parts as the split of surface for mode.
func (d *Dict) Add(surface string, mode analysis.SplitMode, parts ...string) error {
	if d.fold {
		surface, parts = Fold(surface, parts)
	}
	if err := Validate(surface, mode, parts); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	e := d.entries[surface]
	if mode == analysis.SplitA {
		e.A = parts
	} else {
		e.B = parts
	}
	d.entries[surface] = e
	return nil
}

// Lookup implements Source.
func (d *Dict) Lookup(_ context.Context, surface string, mode analysis.SplitMode) ([]string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	parts := d.entries[surface].parts(mode)
	return parts, parts != nil, nil
}

// Len returns the number of surfaces with at least one split.
func (d *Dict) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Chain consults sources in order and returns the first hit.
type Chain []Source

// Lookup implements Source. The first error stops the lookup.
func (c Chain) Lookup(ctx context.Context, surface string, mode analysis.SplitMode) ([]string, bool, error) {
	for _, s := range c {
		parts, ok, err := s.Lookup(ctx, surface, mode)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return parts, true, nil
		}
	}
	return nil, false, nil
}
