package models

// Route is an origin yard, an ordered station sequence, and a termination
// yard. Trains run routes; the planner walks
// [originYard, stationSequence..., terminationYard].
type Route struct {
	ID              string   `json:"id,omitempty"`
	Name            string   `json:"name"`
	OriginYard      string   `json:"originYard"`
	TerminationYard string   `json:"terminationYard"`
	StationSequence []string `json:"stationSequence"`
}
