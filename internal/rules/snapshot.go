package rules

import (
	"fmt"

	"github.com/zulandar/waybill/internal/fault"
	"github.com/zulandar/waybill/internal/models"
)

// ValidateSnapshot checks the structural shape a stored or captured
// snapshot must have before it is trusted for advance or rollback.
func ValidateSnapshot(snap *models.Snapshot) error {
	if snap == nil {
		return fault.New(fault.SnapshotInvalid, "snapshot is missing")
	}
	var details []string
	if snap.SessionNumber < 1 {
		details = append(details, fmt.Sprintf("sessionNumber %d, must be >= 1", snap.SessionNumber))
	}
	if snap.Cars == nil {
		details = append(details, "cars list is missing")
	}
	for i, c := range snap.Cars {
		if c.ID == "" {
			details = append(details, fmt.Sprintf("cars[%d]: missing id", i))
		}
		if c.SessionsAtCurrentLocation < 0 {
			details = append(details, fmt.Sprintf("cars[%d]: sessionsAtCurrentLocation %d, must be >= 0", i, c.SessionsAtCurrentLocation))
		}
	}
	if snap.Trains == nil {
		details = append(details, "trains list is missing")
	}
	if snap.CarOrders == nil {
		details = append(details, "carOrders list is missing")
	}
	if len(details) > 0 {
		return fault.New(fault.SnapshotInvalid, "snapshot failed validation").WithDetails(details...)
	}
	return nil
}
