package models

// Demand directions.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// DemandConfig declares an industry's recurring need for cars: every
// Frequency sessions it wants CarsPerSession cars of a compatible type,
// either receiving goods (inbound) or shipping them (outbound).
type DemandConfig struct {
	GoodsID            string   `json:"goodsId"`
	Direction          string   `json:"direction"`
	CompatibleCarTypes []string `json:"compatibleCarTypes"`
	CarsPerSession     int      `json:"carsPerSession"`
	Frequency          int      `json:"frequency"`
}

// Industry is a destination on the layout. Yards (IsYard) anchor routes
// and serve as home bases for cars.
type Industry struct {
	ID              string         `json:"id,omitempty"`
	Name            string         `json:"name"`
	StationID       string         `json:"stationId"`
	IsYard          bool           `json:"isYard"`
	CarDemandConfig []DemandConfig `json:"carDemandConfig"`
}
