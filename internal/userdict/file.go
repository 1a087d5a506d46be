package userdict

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/edsrzf/mmap-go"

	"GoSplit/internal/analysis"
)

// LoadFile maps a TSV dictionary into memory and parses it.
//
// Each line is "surface<TAB>A parts<TAB>B parts" with parts separated by
// spaces. The B column is optional and an empty column means no entry.
// Blank lines and lines starting with '#' are skipped. With fold set,
// entries are stored in NFKC form.
func LoadFile(path string, fold bool) (*Dict, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open user dictionary %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat user dictionary %s: %w", path, err)
	}
	if info.Size() == 0 {
		return newDict(fold), nil
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap user dictionary %s: %w", path, err)
	}
	defer data.Unmap()

	d, err := Parse(data, fold)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse reads a TSV dictionary. Strings are copied out of data.
func Parse(data []byte, fold bool) (*Dict, error) {
	d := newDict(fold)
	lineNo := 0
	for len(data) > 0 {
		lineNo++
		var line []byte
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			line, data = data, nil
		}
		line = bytes.TrimRight(line, "\r")
		if len(bytes.TrimSpace(line)) == 0 || line[0] == '#' {
			continue
		}

		cols := strings.Split(string(line), "\t")
		if len(cols) < 2 || len(cols) > 3 {
			return nil, fmt.Errorf("%w: line %d: want 2 or 3 columns, got %d", ErrMalformedEntry, lineNo, len(cols))
		}
		surface := strings.TrimSpace(cols[0])
		for i, col := range cols[1:] {
			parts := strings.Fields(col)
			if len(parts) == 0 {
				continue
			}
			mode := analysis.SplitA
			if i == 1 {
				mode = analysis.SplitB
			}
			if err := d.Add(surface, mode, parts...); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
	}
	return d, nil
}

func newDict(fold bool) *Dict {
	if fold {
		return NewFoldedDict()
	}
	return NewDict()
}
