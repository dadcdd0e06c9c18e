package dataset

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"StockLens/internal/model"
)

// WriteCSV writes bars with a Date,Open,High,Low,Close,Volume header.
func WriteCSV(w io.Writer, bars []model.OHLCV) error {
	cw := csv.NewWriter(w)
	header := append([]string{"Date"}, model.OHLCVColumns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, b := range bars {
		rec := []string{
			b.Time.Format(time.DateOnly),
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			formatFloat(b.Volume),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
