package rules

import (
	"fmt"

	"github.com/zulandar/waybill/internal/models"
)

// TrainNameAvailable reports whether name is unused among trains of the
// same session. excludeID skips the train being edited.
func TrainNameAvailable(trains []models.Train, name string, sessionNumber int, excludeID string) bool {
	for _, t := range trains {
		if t.ID == excludeID {
			continue
		}
		if t.Name == name && t.SessionNumber == sessionNumber {
			return false
		}
	}
	return true
}

// LocomotiveConflicts returns the requested locomotive ids that are
// already assigned to a train with status Planned or In Progress.
// excludeID skips the train being edited.
func LocomotiveConflicts(trains []models.Train, locomotiveIDs []string, excludeID string) []string {
	active := make(map[string]bool)
	for _, t := range trains {
		if t.ID == excludeID {
			continue
		}
		if t.Status != models.TrainPlanned && t.Status != models.TrainInProgress {
			continue
		}
		for _, id := range t.LocomotiveIDs {
			active[id] = true
		}
	}
	var conflicts []string
	for _, id := range locomotiveIDs {
		if active[id] {
			conflicts = append(conflicts, id)
		}
	}
	return conflicts
}

// LocomotiveIdentityAvailable reports whether no other locomotive carries
// the same reporting marks and number. excludeID skips the locomotive
// being edited.
func LocomotiveIdentityAvailable(locos []models.Locomotive, marks, number, excludeID string) bool {
	for _, l := range locos {
		if l.ID == excludeID {
			continue
		}
		if l.ReportingMarks == marks && l.ReportingNumber == number {
			return false
		}
	}
	return true
}

// DCCAddressAvailable reports whether no other DCC-equipped locomotive
// uses address. Non-DCC locomotives never hold an address. excludeID
// skips the locomotive being edited.
func DCCAddressAvailable(locos []models.Locomotive, address int, excludeID string) bool {
	for _, l := range locos {
		if l.ID == excludeID || !l.IsDCC {
			continue
		}
		if l.DCCAddress == address {
			return false
		}
	}
	return true
}

// CarIdentityAvailable reports whether no other car carries the same
// reporting marks and number. excludeID skips the car being edited.
func CarIdentityAvailable(cars []models.Car, marks, number, excludeID string) bool {
	for _, c := range cars {
		if c.ID == excludeID {
			continue
		}
		if c.ReportingMarks == marks && c.ReportingNumber == number {
			return false
		}
	}
	return true
}

// RouteNameAvailable reports whether name is unused among routes.
// excludeID skips the route being edited.
func RouteNameAvailable(routes []models.Route, name, excludeID string) bool {
	for _, r := range routes {
		if r.ID == excludeID {
			continue
		}
		if r.Name == name {
			return false
		}
	}
	return true
}

// IsDuplicateOrder reports whether a pending order for the same industry,
// AAR type, and session already exists.
func IsDuplicateOrder(existing []models.CarOrder, industryID, aarTypeID string, sessionNumber int) bool {
	for _, o := range existing {
		if o.Status != models.OrderPending {
			continue
		}
		if o.IndustryID == industryID && o.AarTypeID == aarTypeID && o.SessionNumber == sessionNumber {
			return true
		}
	}
	return false
}

// AssignmentErrors returns every reason car cannot be assigned to order.
// An empty result means the pairing is valid. car may be nil (not found).
func AssignmentErrors(car *models.Car, order *models.CarOrder) []string {
	var errs []string
	if car == nil {
		errs = append(errs, "car does not exist")
		// Remaining checks need the car.
		if order != nil && order.Status != models.OrderPending {
			errs = append(errs, fmt.Sprintf("order status is %q, must be pending", order.Status))
		}
		return errs
	}
	if !car.IsInService {
		errs = append(errs, fmt.Sprintf("car %s is out of service", car.ID))
	}
	if order != nil {
		if car.CarType != order.AarTypeID {
			errs = append(errs, fmt.Sprintf("car type %q does not match order type %q", car.CarType, order.AarTypeID))
		}
		if order.Status != models.OrderPending {
			errs = append(errs, fmt.Sprintf("order status is %q, must be pending", order.Status))
		}
	}
	return errs
}
