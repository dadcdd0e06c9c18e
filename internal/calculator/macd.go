package calculator

// MACD returns EMA(fast) - EMA(slow) of closes and the EMA(signal) of that line.
func MACD(closes []float64, fast, slow, signal int) (macd, signalLine []float64, err error) {
	emaFast, err := EMA(closes, fast)
	if err != nil {
		return nil, nil, err
	}
	emaSlow, err := EMA(closes, slow)
	if err != nil {
		return nil, nil, err
	}
	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	signalLine, err = EMA(macd, signal)
	if err != nil {
		return nil, nil, err
	}
	return macd, signalLine, nil
}
