package models

// Manufacturers is the fixed set of accepted locomotive manufacturers.
var Manufacturers = []string{
	"Athearn",
	"Atlas",
	"Bachmann",
	"Broadway Limited",
	"Kato",
	"Rapido",
	"ScaleTrains",
	"Walthers",
	"Other",
}

// Locomotive is powered rolling stock. A locomotive may be assigned to at
// most one train whose status is Planned or In Progress.
type Locomotive struct {
	ID              string `json:"id,omitempty"`
	ReportingMarks  string `json:"reportingMarks"`
	ReportingNumber string `json:"reportingNumber"`
	Model           string `json:"model"`
	Manufacturer    string `json:"manufacturer"`
	IsDCC           bool   `json:"isDcc"`
	DCCAddress      int    `json:"dccAddress,omitempty"`
	HomeYard        string `json:"homeYard"`
	IsInService     bool   `json:"isInService"`
}
