package models

// Train statuses.
const (
	TrainPlanned    = "Planned"
	TrainInProgress = "In Progress"
	TrainCompleted  = "Completed"
	TrainCancelled  = "Cancelled"
)

// SwitchListMove is one pickup or setout on a switch list. CarOrderID is
// nil for home-yard routing moves, which serve no order.
type SwitchListMove struct {
	CarID                 string  `json:"carId"`
	ReportingMarks        string  `json:"reportingMarks"`
	ReportingNumber       string  `json:"reportingNumber"`
	CarType               string  `json:"carType"`
	DestinationIndustryID string  `json:"destinationIndustryId"`
	CarOrderID            *string `json:"carOrderId"`
}

// SwitchListStation is the plan for one station visit.
type SwitchListStation struct {
	StationID   string           `json:"stationId"`
	StationName string           `json:"stationName"`
	Pickups     []SwitchListMove `json:"pickups"`
	Setouts     []SwitchListMove `json:"setouts"`
}

// SwitchList is the per-station pickup/setout plan a train executes.
type SwitchList struct {
	Stations      []SwitchListStation `json:"stations"`
	TotalPickups  int                 `json:"totalPickups"`
	TotalSetouts  int                 `json:"totalSetouts"`
	FinalCarCount int                 `json:"finalCarCount"`
	GeneratedAt   string              `json:"generatedAt"`
}

// Train moves cars along a route in a single operating session. Only
// Planned trains are editable; Completed and Cancelled are terminal.
type Train struct {
	ID             string      `json:"id,omitempty"`
	Name           string      `json:"name"`
	RouteID        string      `json:"routeId"`
	SessionNumber  int         `json:"sessionNumber"`
	Status         string      `json:"status"`
	LocomotiveIDs  []string    `json:"locomotiveIds"`
	MaxCapacity    int         `json:"maxCapacity"`
	AssignedCarIDs []string    `json:"assignedCarIds"`
	SwitchList     *SwitchList `json:"switchList"`
	CreatedAt      string      `json:"createdAt"`
	UpdatedAt      string      `json:"updatedAt"`
}
