package rules

import (
	"fmt"
	"regexp"

	"github.com/zulandar/waybill/internal/fault"
	"github.com/zulandar/waybill/internal/models"
)

// MaxDescriptionLen caps session descriptions.
const MaxDescriptionLen = 500

var reportingNumberRe = regexp.MustCompile(`^[0-9]{1,6}$`)

func invalid(entity string, details []string) error {
	if len(details) == 0 {
		return nil
	}
	return fault.Newf(fault.InvalidArgument, "%s failed validation", entity).WithDetails(details...)
}

// ValidateStation checks a station's schema.
func ValidateStation(s *models.Station) error {
	var details []string
	if s.Name == "" {
		details = append(details, "name is required")
	}
	return invalid("station", details)
}

// ValidateAarType checks an AAR type's schema. Code uniqueness is checked
// against the store by the caller.
func ValidateAarType(a *models.AarType) error {
	var details []string
	if a.Code == "" {
		details = append(details, "code is required")
	}
	return invalid("aarType", details)
}

// ValidateIndustry checks an industry's schema, including its demand
// configs. Reference resolution (stationId) is the caller's job.
func ValidateIndustry(ind *models.Industry) error {
	var details []string
	if ind.Name == "" {
		details = append(details, "name is required")
	}
	if ind.StationID == "" {
		details = append(details, "stationId is required")
	}
	seen := make(map[string]bool)
	for i, dc := range ind.CarDemandConfig {
		if dc.GoodsID == "" {
			details = append(details, fmt.Sprintf("carDemandConfig[%d]: goodsId is required", i))
		}
		if dc.Direction != models.DirectionInbound && dc.Direction != models.DirectionOutbound {
			details = append(details, fmt.Sprintf("carDemandConfig[%d]: direction %q must be inbound or outbound", i, dc.Direction))
		}
		if len(dc.CompatibleCarTypes) < 1 {
			details = append(details, fmt.Sprintf("carDemandConfig[%d]: at least one compatible car type is required", i))
		}
		if dc.CarsPerSession < 1 {
			details = append(details, fmt.Sprintf("carDemandConfig[%d]: carsPerSession must be >= 1", i))
		}
		if dc.Frequency < 1 {
			details = append(details, fmt.Sprintf("carDemandConfig[%d]: frequency must be >= 1", i))
		}
		key := dc.GoodsID + "/" + dc.Direction
		if seen[key] {
			details = append(details, fmt.Sprintf("carDemandConfig[%d]: duplicate config for goods %q direction %q", i, dc.GoodsID, dc.Direction))
		}
		seen[key] = true
	}
	return invalid("industry", details)
}

// ValidateRoute checks a route's schema. Yard flags and station
// resolution need the store and are checked by the caller.
func ValidateRoute(r *models.Route) error {
	var details []string
	if r.Name == "" {
		details = append(details, "name is required")
	}
	if r.OriginYard == "" {
		details = append(details, "originYard is required")
	}
	if r.TerminationYard == "" {
		details = append(details, "terminationYard is required")
	}
	for i, id := range r.StationSequence {
		if id == "" {
			details = append(details, fmt.Sprintf("stationSequence[%d]: empty station id", i))
		}
	}
	return invalid("route", details)
}

// ValidateLocomotive checks a locomotive's schema: reporting number of
// 1-6 digits, a known manufacturer, and a DCC address of 1-9999 present
// exactly when the locomotive is DCC-equipped.
func ValidateLocomotive(l *models.Locomotive) error {
	var details []string
	if l.ReportingMarks == "" {
		details = append(details, "reportingMarks is required")
	}
	if !reportingNumberRe.MatchString(l.ReportingNumber) {
		details = append(details, fmt.Sprintf("reportingNumber %q must be 1-6 digits", l.ReportingNumber))
	}
	if !validManufacturer(l.Manufacturer) {
		details = append(details, fmt.Sprintf("manufacturer %q is not recognized", l.Manufacturer))
	}
	if l.IsDCC {
		if l.DCCAddress < 1 || l.DCCAddress > 9999 {
			details = append(details, fmt.Sprintf("dccAddress %d must be 1-9999 for a DCC locomotive", l.DCCAddress))
		}
	} else if l.DCCAddress != 0 {
		details = append(details, "dccAddress is only valid for DCC locomotives")
	}
	if l.HomeYard == "" {
		details = append(details, "homeYard is required")
	}
	return invalid("locomotive", details)
}

func validManufacturer(m string) bool {
	for _, known := range models.Manufacturers {
		if m == known {
			return true
		}
	}
	return false
}

// ValidateCar checks a car's schema.
func ValidateCar(c *models.Car) error {
	var details []string
	if c.ReportingMarks == "" {
		details = append(details, "reportingMarks is required")
	}
	if c.ReportingNumber == "" {
		details = append(details, "reportingNumber is required")
	}
	if c.CarType == "" {
		details = append(details, "carType is required")
	}
	if c.HomeYard == "" {
		details = append(details, "homeYard is required")
	}
	if c.SessionsAtCurrentLocation < 0 {
		details = append(details, "sessionsAtCurrentLocation must be >= 0")
	}
	return invalid("car", details)
}

// ValidateCarOrder checks a car order's schema.
func ValidateCarOrder(o *models.CarOrder) error {
	var details []string
	if o.IndustryID == "" {
		details = append(details, "industryId is required")
	}
	if o.AarTypeID == "" {
		details = append(details, "aarTypeId is required")
	}
	if len(o.CompatibleCarTypes) < 1 {
		details = append(details, "at least one compatible car type is required")
	}
	if o.SessionNumber < 1 {
		details = append(details, "sessionNumber must be >= 1")
	}
	if o.Status != "" && !ValidOrderStatus(o.Status) {
		details = append(details, fmt.Sprintf("status %q is not a car-order status", o.Status))
	}
	if o.Direction != "" && o.Direction != models.DirectionInbound && o.Direction != models.DirectionOutbound {
		details = append(details, fmt.Sprintf("direction %q must be inbound or outbound", o.Direction))
	}
	return invalid("carOrder", details)
}

// ValidateTrain checks a train's schema. Route/locomotive resolution and
// uniqueness are the caller's job.
func ValidateTrain(t *models.Train) error {
	var details []string
	if t.Name == "" {
		details = append(details, "name is required")
	}
	if t.RouteID == "" {
		details = append(details, "routeId is required")
	}
	if t.SessionNumber < 1 {
		details = append(details, "sessionNumber must be >= 1")
	}
	if len(t.LocomotiveIDs) < 1 {
		details = append(details, "at least one locomotive is required")
	}
	if t.MaxCapacity < 1 || t.MaxCapacity > 100 {
		details = append(details, fmt.Sprintf("maxCapacity %d must be 1-100", t.MaxCapacity))
	}
	return invalid("train", details)
}

// ValidateDescription checks a session description.
func ValidateDescription(desc string) error {
	if desc == "" {
		return fault.New(fault.InvalidArgument, "description is required")
	}
	if len(desc) > MaxDescriptionLen {
		return fault.Newf(fault.InvalidArgument, "description exceeds %d characters", MaxDescriptionLen)
	}
	return nil
}
