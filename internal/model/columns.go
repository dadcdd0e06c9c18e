package model

// Column names shared by the pipeline, the upload reader and the API.
const (
	ColOpen   = "Open"
	ColHigh   = "High"
	ColLow    = "Low"
	ColClose  = "Close"
	ColVolume = "Volume"

	ColSMA20      = "SMA_20"
	ColSMA50      = "SMA_50"
	ColEMA20      = "EMA_20"
	ColEMA50      = "EMA_50"
	ColRSI        = "RSI"
	ColMACD       = "MACD"
	ColSignalLine = "Signal_Line"
	ColBBUpper    = "BB_Upper"
	ColBBMiddle   = "BB_Middle"
	ColBBLower    = "BB_Lower"
	ColATR        = "ATR"
	ColOBV        = "OBV"

	ColDailyReturn      = "Daily_Return"
	ColCumulativeReturn = "Cumulative_Return"
	ColVolatility       = "Volatility"
	ColVolumeMA         = "Volume_MA"
	ColMomentum         = "Momentum"
	ColDailyRange       = "Daily_Range"
)

// OHLCVColumns lists the raw price columns in canonical order.
var OHLCVColumns = []string{ColOpen, ColHigh, ColLow, ColClose, ColVolume}

// IndicatorColumns lists the technical indicator columns in the order they are appended.
var IndicatorColumns = []string{
	ColSMA20, ColSMA50, ColEMA20, ColEMA50, ColRSI, ColMACD, ColSignalLine,
	ColBBUpper, ColBBMiddle, ColBBLower, ColATR, ColOBV,
}

// ReturnColumns lists the return statistics added for visualization.
var ReturnColumns = []string{
	ColDailyReturn, ColCumulativeReturn, ColVolatility, ColVolumeMA, ColMomentum, ColDailyRange,
}
