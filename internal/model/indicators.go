package model

// PriceSummary holds the statistics computed over one instrument's
// snapshot history.
type PriceSummary struct {
	Name      string
	Samples   int
	First     float64
	Last      float64
	High      float64
	Low       float64
	ChangePct float64
	SMA       float64 // 0 when there are fewer samples than the window
	RSI       float64
}
