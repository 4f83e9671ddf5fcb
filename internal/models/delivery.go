package models

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DeliveryQuote is a derived value, recomputed on every request. The fee the
// assembler captures into an order is a snapshot and is never recomputed.
type DeliveryQuote struct {
	DistanceKm  float64 `json:"distance_km"`
	Fee         float64 `json:"fee"`
	Message     string  `json:"message"`
	Deliverable bool    `json:"deliverable"`
}
