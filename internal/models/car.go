package models

// Car is unpowered rolling stock. CurrentIndustry changes when a train
// completes or the car is moved explicitly; SessionsAtCurrentLocation
// increments on every session advance and resets to zero on a move.
type Car struct {
	ID                        string `json:"id,omitempty"`
	ReportingMarks            string `json:"reportingMarks"`
	ReportingNumber           string `json:"reportingNumber"`
	CarType                   string `json:"carType"`
	Color                     string `json:"color,omitempty"`
	HomeYard                  string `json:"homeYard"`
	CurrentIndustry           string `json:"currentIndustry"`
	IsInService               bool   `json:"isInService"`
	SessionsAtCurrentLocation int    `json:"sessionsAtCurrentLocation"`
	LastMoved                 string `json:"lastMoved,omitempty"`
}
