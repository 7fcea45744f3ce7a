package ml

import (
	"fmt"
	"sort"
)

// OneHotEncoder encodes categorical columns against the categories seen in
// training. Categories are sorted per column and the first one is the
// baseline: it encodes as all zeros, as does any category not seen in
// training.
type OneHotEncoder struct {
	Columns    []string   `json:"columns"`
	Categories [][]string `json:"categories"`

	index []map[string]int
}

// FitOneHotEncoder learns the category list of each column
func FitOneHotEncoder(columns []string, rows [][]string) (*OneHotEncoder, error) {
	sets := make([]map[string]struct{}, len(columns))
	for i := range sets {
		sets[i] = make(map[string]struct{})
	}
	for r, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d categorical values, want %d", r, len(row), len(columns))
		}
		for i, v := range row {
			sets[i][v] = struct{}{}
		}
	}

	e := &OneHotEncoder{
		Columns:    append([]string(nil), columns...),
		Categories: make([][]string, len(columns)),
	}
	for i, set := range sets {
		cats := make([]string, 0, len(set))
		for v := range set {
			cats = append(cats, v)
		}
		sort.Strings(cats)
		e.Categories[i] = cats
	}
	e.buildIndex()
	return e, nil
}

func (e *OneHotEncoder) buildIndex() {
	e.index = make([]map[string]int, len(e.Categories))
	for i, cats := range e.Categories {
		m := make(map[string]int, len(cats))
		for j, c := range cats {
			m[c] = j
		}
		e.index[i] = m
	}
}

// Width is the number of encoded features
func (e *OneHotEncoder) Width() int {
	n := 0
	for _, cats := range e.Categories {
		if len(cats) > 1 {
			n += len(cats) - 1
		}
	}
	return n
}

// Encode writes the encoding of values into dst, which must hold Width()
// elements. It returns the number of elements written.
func (e *OneHotEncoder) Encode(values []string, dst []float64) int {
	if e.index == nil {
		e.buildIndex()
	}
	offset := 0
	for i, cats := range e.Categories {
		block := len(cats) - 1
		if block <= 0 {
			continue
		}
		for j := 0; j < block; j++ {
			dst[offset+j] = 0
		}
		if i < len(values) {
			if pos, ok := e.index[i][values[i]]; ok && pos > 0 {
				dst[offset+pos-1] = 1
			}
		}
		offset += block
	}
	return offset
}

func (e *OneHotEncoder) validate() error {
	if len(e.Categories) != len(e.Columns) {
		return fmt.Errorf("encoder has %d category lists for %d columns", len(e.Categories), len(e.Columns))
	}
	for i, cats := range e.Categories {
		if len(cats) == 0 {
			return fmt.Errorf("encoder column %s has no categories", e.Columns[i])
		}
		for j := 1; j < len(cats); j++ {
			if cats[j-1] >= cats[j] {
				return fmt.Errorf("encoder column %s categories are not sorted and unique", e.Columns[i])
			}
		}
	}
	return nil
}
