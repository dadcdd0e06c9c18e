package model

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// Frame is a date-indexed table of named float64 columns. NaN marks an undefined value.
// Every column has exactly Len() values.
type Frame struct {
	Dates   []time.Time
	columns map[string][]float64
	order   []string
}

// NewFrame creates an empty frame over the given date index.
func NewFrame(dates []time.Time) *Frame {
	return &Frame{
		Dates:   dates,
		columns: make(map[string][]float64),
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Dates)
}

// Names returns the column names in insertion order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Has reports whether the frame contains a column.
func (f *Frame) Has(name string) bool {
	_, ok := f.columns[name]
	return ok
}

// Column returns the values of a column. The slice is shared with the frame and must not be modified.
func (f *Frame) Column(name string) ([]float64, bool) {
	v, ok := f.columns[name]
	return v, ok
}

// MustColumn returns a column or an error naming the missing column.
func (f *Frame) MustColumn(name string) ([]float64, error) {
	v, ok := f.columns[name]
	if !ok {
		return nil, NewError(KindFormat, "frame.column", fmt.Errorf("%w: %s", ErrMissingColumn, name))
	}
	return v, nil
}

// Set adds or replaces a column. The frame takes ownership of values.
func (f *Frame) Set(name string, values []float64) error {
	if len(values) != len(f.Dates) {
		return NewError(KindInvariant, "frame.set",
			fmt.Errorf("%w: column %s has %d values, index has %d", ErrShapeMismatch, name, len(values), len(f.Dates)))
	}
	f.put(name, values)
	return nil
}

func (f *Frame) put(name string, values []float64) {
	if _, ok := f.columns[name]; !ok {
		f.order = append(f.order, name)
	}
	f.columns[name] = values
}

// Copy returns a deep copy of the frame.
func (f *Frame) Copy() *Frame {
	dates := make([]time.Time, len(f.Dates))
	copy(dates, f.Dates)
	out := NewFrame(dates)
	for _, name := range f.order {
		src := f.columns[name]
		dst := make([]float64, len(src))
		copy(dst, src)
		out.put(name, dst)
	}
	return out
}

// Select returns a copy holding only the named columns, in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	dates := make([]time.Time, len(f.Dates))
	copy(dates, f.Dates)
	out := NewFrame(dates)
	for _, name := range names {
		src, err := f.MustColumn(name)
		if err != nil {
			return nil, err
		}
		dst := make([]float64, len(src))
		copy(dst, src)
		out.put(name, dst)
	}
	return out, nil
}

// Rows returns a copy holding only the rows at the given indices.
func (f *Frame) Rows(idx []int) *Frame {
	dates := make([]time.Time, len(idx))
	for i, r := range idx {
		dates[i] = f.Dates[r]
	}
	out := NewFrame(dates)
	for _, name := range f.order {
		src := f.columns[name]
		dst := make([]float64, len(idx))
		for i, r := range idx {
			dst[i] = src[r]
		}
		out.put(name, dst)
	}
	return out
}

// Tail returns a copy of the last n rows. n <= 0 or n >= Len() copies the whole frame.
func (f *Frame) Tail(n int) *Frame {
	if n <= 0 || n >= f.Len() {
		return f.Copy()
	}
	idx := make([]int, n)
	start := f.Len() - n
	for i := range idx {
		idx[i] = start + i
	}
	return f.Rows(idx)
}

// SortByDate returns a copy with rows ordered by ascending date. Equal dates keep their order.
func (f *Frame) SortByDate() *Frame {
	idx := make([]int, f.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return f.Dates[idx[a]].Before(f.Dates[idx[b]]) })
	return f.Rows(idx)
}

// DropNaN returns a copy without any row that has a NaN in one of the named columns.
// With no names every column is checked.
func (f *Frame) DropNaN(names ...string) *Frame {
	if len(names) == 0 {
		names = f.order
	}
	idx := make([]int, 0, f.Len())
	for r := 0; r < f.Len(); r++ {
		keep := true
		for _, name := range names {
			if col, ok := f.columns[name]; ok && math.IsNaN(col[r]) {
				keep = false
				break
			}
		}
		if keep {
			idx = append(idx, r)
		}
	}
	return f.Rows(idx)
}

// Bars converts the OHLCV columns back into bars.
func (f *Frame) Bars() ([]OHLCV, error) {
	cols := make([][]float64, len(OHLCVColumns))
	for i, name := range OHLCVColumns {
		c, err := f.MustColumn(name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	bars := make([]OHLCV, f.Len())
	for r := range bars {
		bars[r] = OHLCV{
			Time:   f.Dates[r],
			Open:   cols[0][r],
			High:   cols[1][r],
			Low:    cols[2][r],
			Close:  cols[3][r],
			Volume: cols[4][r],
		}
	}
	return bars, nil
}

// frameJSON is the wire shape of a frame: one record per row.
type frameJSON struct {
	Columns []string       `json:"columns"`
	Rows    []frameRowJSON `json:"rows"`
}

type frameRowJSON struct {
	Date   string         `json:"date"`
	Values NullableFloats `json:"values"`
}

// MarshalJSON encodes the frame row-wise with NaN as null.
func (f *Frame) MarshalJSON() ([]byte, error) {
	out := frameJSON{Columns: f.Names(), Rows: make([]frameRowJSON, f.Len())}
	for r := 0; r < f.Len(); r++ {
		vals := make(NullableFloats, len(f.order))
		for c, name := range f.order {
			vals[c] = f.columns[name][r]
		}
		out.Rows[r] = frameRowJSON{Date: f.Dates[r].Format("2006-01-02"), Values: vals}
	}
	return json.Marshal(out)
}

// NullableFloats encodes NaN and infinities as JSON null.
type NullableFloats []float64

// MarshalJSON implements json.Marshaler.
func (n NullableFloats) MarshalJSON() ([]byte, error) {
	out := make([]*float64, len(n))
	for i := range n {
		if math.IsNaN(n[i]) || math.IsInf(n[i], 0) {
			continue
		}
		v := n[i]
		out[i] = &v
	}
	return json.Marshal(out)
}
