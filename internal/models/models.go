package models

// PredictionRequest is the payload posted to the prediction service
type PredictionRequest struct {
	Symbol   string `json:"symbol"`
	Days     int    `json:"days"`
	Interval string `json:"interval"`
}

// PricePoint is one dated observation. Predicted is nil for points the
// service did not forecast; Actual is nil for forecast-only points.
type PricePoint struct {
	Date      string   `json:"date"`
	Actual    *float64 `json:"actual"`
	Predicted *float64 `json:"predicted,omitempty"`
}

// HasPredicted reports whether the point carries a predicted value
func (p PricePoint) HasPredicted() bool {
	return p.Predicted != nil
}

// Price returns a pointer to v, for building points in code
func Price(v float64) *float64 {
	return &v
}
