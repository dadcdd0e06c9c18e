package calculator

import "math"

// BollingerBands returns the period moving average and the bands k sample standard deviations away.
func BollingerBands(closes []float64, period int, k float64) (upper, middle, lower []float64, err error) {
	middle, err = SMA(closes, period)
	if err != nil {
		return nil, nil, nil, err
	}
	std, err := RollingStd(closes, period)
	if err != nil {
		return nil, nil, nil, err
	}
	upper = make([]float64, len(closes))
	lower = make([]float64, len(closes))
	for i := range closes {
		if math.IsNaN(middle[i]) || math.IsNaN(std[i]) {
			upper[i], lower[i] = math.NaN(), math.NaN()
			continue
		}
		upper[i] = middle[i] + k*std[i]
		lower[i] = middle[i] - k*std[i]
	}
	return upper, middle, lower, nil
}
