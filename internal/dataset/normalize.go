package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"StockLens/internal/model"
)

var dateHeaders = []string{"date", "datetime", "timestamp"}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
	"01/02/2006",
}

// Normalize maps a raw table onto OHLCV bars.
//
// The date column is located by name. When any of Open, High, Low, Close or Volume
// is missing by name, the first five non-date columns are taken in that order.
// Rows with an unparsable date or a missing or non-finite OHLCV value are dropped.
// The result is sorted by date; when a date repeats, the row appearing last in the
// file wins.
func Normalize(t *Table) ([]model.OHLCV, error) {
	dateIdx := -1
	for i, h := range t.Header {
		for _, want := range dateHeaders {
			if strings.EqualFold(h, want) {
				dateIdx = i
				break
			}
		}
		if dateIdx >= 0 {
			break
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("date column (one of %v): %w", dateHeaders, model.ErrMissingColumn)
	}

	cols, err := ohlcvIndexes(t.Header, dateIdx)
	if err != nil {
		return nil, err
	}

	bars := make([]model.OHLCV, 0, len(t.Records))
	for _, rec := range t.Records {
		if dateIdx >= len(rec) {
			continue
		}
		ts, ok := parseDate(rec[dateIdx])
		if !ok {
			continue
		}
		var vals [5]float64
		valid := true
		for j, idx := range cols {
			if idx >= len(rec) {
				valid = false
				break
			}
			v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(rec[idx]), ",", ""), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				valid = false
				break
			}
			vals[j] = v
		}
		if !valid {
			continue
		}
		bars = append(bars, model.OHLCV{
			Time: ts, Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3], Volume: vals[4],
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no valid rows: %w", model.ErrNoData)
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return dedupe(bars), nil
}

// dedupe collapses runs of equal dates in sorted bars, keeping the last of each run.
func dedupe(bars []model.OHLCV) []model.OHLCV {
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func ohlcvIndexes(header []string, dateIdx int) ([5]int, error) {
	var cols [5]int
	byName := true
	for j, name := range model.OHLCVColumns {
		cols[j] = -1
		for i, h := range header {
			if i != dateIdx && strings.EqualFold(h, name) {
				cols[j] = i
				break
			}
		}
		if cols[j] < 0 {
			byName = false
		}
	}
	if byName {
		return cols, nil
	}

	j := 0
	for i := range header {
		if i == dateIdx {
			continue
		}
		if j == len(cols) {
			break
		}
		cols[j] = i
		j++
	}
	if j < len(cols) {
		return cols, fmt.Errorf("need %d value columns besides the date, got %d: %w",
			len(cols), j, model.ErrMissingColumn)
	}
	return cols, nil
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), true
	}
	return time.Time{}, false
}
