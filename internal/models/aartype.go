package models

// AarType classifies a freight car by physical design (boxcar, flatcar).
// The code is unique reference data; orders and cars point at it by id.
type AarType struct {
	ID          string `json:"id,omitempty"`
	Code        string `json:"code"`
	Description string `json:"description"`
}
