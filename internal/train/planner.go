package train

import (
	"context"
	"fmt"

	"github.com/zulandar/waybill/internal/fault"
	"github.com/zulandar/waybill/internal/models"
	"github.com/zulandar/waybill/internal/store"
)

// orderUpdate pairs an order with the car the planner chose for it.
type orderUpdate struct {
	orderID string
	carID   string
}

// stop is a resolved station visit on a route.
type stop struct {
	station models.Station
}

// GenerateSwitchList plans a Planned train's work and moves it to
// In Progress.
//
// The planner walks [originYard, stationSequence..., terminationYard].
// At each station it fills pending orders with compatible in-service cars
// standing at that station (pickup pass), immediately reclassifies
// same-station deliveries as setouts, and then routes leftover capacity
// toward sending off-home cars back to their home yards. inTransit never
// exceeds the train's capacity.
func GenerateSwitchList(ctx context.Context, st store.Store, id string) (*models.Train, error) {
	t, err := Get(ctx, st, id)
	if err != nil {
		return nil, err
	}

	// Preconditions are accumulated so the caller sees every problem.
	var problems []string
	if t.Status != models.TrainPlanned {
		problems = append(problems, fmt.Sprintf("train is %s, must be Planned", t.Status))
	}
	var route *models.Route
	routeRec, err := st.FindByID(ctx, store.Routes, t.RouteID)
	if err != nil {
		return nil, fault.Store(err, "read route")
	}
	if routeRec == nil {
		problems = append(problems, fmt.Sprintf("route %s does not exist", t.RouteID))
	} else if route, err = models.FromRecord[models.Route](routeRec); err != nil {
		return nil, err
	}
	for _, locoID := range t.LocomotiveIDs {
		rec, err := st.FindByID(ctx, store.Locomotives, locoID)
		if err != nil {
			return nil, fault.Store(err, "read locomotive")
		}
		if rec == nil {
			problems = append(problems, fmt.Sprintf("locomotive %s does not exist", locoID))
			continue
		}
		loco, err := models.FromRecord[models.Locomotive](rec)
		if err != nil {
			return nil, err
		}
		if !loco.IsInService {
			problems = append(problems, fmt.Sprintf("locomotive %s %s is out of service", loco.ReportingMarks, loco.ReportingNumber))
		}
	}
	if len(problems) > 0 {
		return nil, fault.New(fault.PreconditionFailed,
			"switch list preconditions failed").WithIDs(id).WithDetails(problems...)
	}

	stops, err := resolveStops(ctx, st, route)
	if err != nil {
		return nil, err
	}
	if len(stops) == 0 {
		return nil, fault.New(fault.PreconditionFailed,
			"no station on the route could be resolved").WithIDs(t.RouteID)
	}

	inTransit := 0
	var assigned []string
	assignedSet := make(map[string]bool)
	var updates []orderUpdate
	claimedOrders := make(map[string]bool)

	list := models.SwitchList{
		Stations:    make([]models.SwitchListStation, 0, len(stops)),
		GeneratedAt: models.Timestamp(),
	}

	for _, s := range stops {
		industries, err := stationIndustries(ctx, st, s.station.ID)
		if err != nil {
			return nil, err
		}
		here := make(map[string]bool, len(industries))
		for _, ind := range industries {
			here[ind.ID] = true
		}

		orders, err := stationPendingOrders(ctx, st, t.SessionNumber, here)
		if err != nil {
			return nil, err
		}
		cars, err := stationCars(ctx, st, here)
		if err != nil {
			return nil, err
		}

		var pickups, setouts []models.SwitchListMove

		// Pickup pass: first-fit car per order, capacity permitting.
		for _, order := range orders {
			if inTransit >= t.MaxCapacity {
				break
			}
			if claimedOrders[order.ID] {
				continue
			}
			car := firstFit(cars, order.AarTypeID, assignedSet)
			if car == nil {
				continue
			}
			orderID := order.ID
			pickups = append(pickups, models.SwitchListMove{
				CarID:                 car.ID,
				ReportingMarks:        car.ReportingMarks,
				ReportingNumber:       car.ReportingNumber,
				CarType:               car.CarType,
				DestinationIndustryID: order.IndustryID,
				CarOrderID:            &orderID,
			})
			assigned = append(assigned, car.ID)
			assignedSet[car.ID] = true
			updates = append(updates, orderUpdate{orderID: order.ID, carID: car.ID})
			claimedOrders[order.ID] = true
			inTransit++
			list.TotalPickups++
		}

		// Setout pass: a pickup delivered to this very station never
		// leaves on the train; it becomes a setout here.
		kept := pickups[:0]
		for _, p := range pickups {
			if here[p.DestinationIndustryID] {
				setouts = append(setouts, p)
				inTransit--
				list.TotalPickups--
				list.TotalSetouts++
				continue
			}
			kept = append(kept, p)
		}
		pickups = kept

		// Home-yard routing: leftover capacity carries stray cars home.
		for i := range cars {
			if inTransit >= t.MaxCapacity {
				break
			}
			car := &cars[i]
			if assignedSet[car.ID] || car.HomeYard == car.CurrentIndustry {
				continue
			}
			pickups = append(pickups, models.SwitchListMove{
				CarID:                 car.ID,
				ReportingMarks:        car.ReportingMarks,
				ReportingNumber:       car.ReportingNumber,
				CarType:               car.CarType,
				DestinationIndustryID: car.HomeYard,
				CarOrderID:            nil,
			})
			assigned = append(assigned, car.ID)
			assignedSet[car.ID] = true
			inTransit++
			list.TotalPickups++
		}

		list.Stations = append(list.Stations, models.SwitchListStation{
			StationID:   s.station.ID,
			StationName: s.station.Name,
			Pickups:     pickups,
			Setouts:     setouts,
		})
	}

	list.FinalCarCount = inTransit

	// Orders first, the train's status transition last.
	for _, u := range updates {
		_, err := st.Update(ctx, store.CarOrders, u.orderID, store.Record{
			"status":          models.OrderAssigned,
			"assignedCarId":   u.carID,
			"assignedTrainId": t.ID,
			"updatedAt":       models.Timestamp(),
		})
		if err != nil {
			return nil, fault.Store(err, "assign order").WithIDs(u.orderID)
		}
	}

	listRec, err := models.ToRecord(list)
	if err != nil {
		return nil, err
	}
	updated, err := st.Update(ctx, store.Trains, t.ID, store.Record{
		"switchList":     listRec,
		"assignedCarIds": assigned,
		"status":         models.TrainInProgress,
		"updatedAt":      models.Timestamp(),
	})
	if err != nil {
		return nil, fault.Store(err, "write switch list")
	}
	return models.FromRecord[models.Train](updated)
}

// resolveStops maps the route's yards and station sequence to station
// records. The yards are industries; they stop at their industry's
// station. Unresolvable entries are skipped.
func resolveStops(ctx context.Context, st store.Store, route *models.Route) ([]stop, error) {
	var stops []stop

	appendStation := func(stationID string) error {
		if stationID == "" {
			return nil
		}
		rec, err := st.FindByID(ctx, store.Stations, stationID)
		if err != nil {
			return fault.Store(err, "read station")
		}
		if rec == nil {
			return nil
		}
		station, err := models.FromRecord[models.Station](rec)
		if err != nil {
			return err
		}
		stops = append(stops, stop{station: *station})
		return nil
	}
	appendYard := func(industryID string) error {
		rec, err := st.FindByID(ctx, store.Industries, industryID)
		if err != nil {
			return fault.Store(err, "read yard")
		}
		if rec == nil {
			return nil
		}
		yard, err := models.FromRecord[models.Industry](rec)
		if err != nil {
			return err
		}
		return appendStation(yard.StationID)
	}

	if err := appendYard(route.OriginYard); err != nil {
		return nil, err
	}
	for _, stationID := range route.StationSequence {
		if err := appendStation(stationID); err != nil {
			return nil, err
		}
	}
	if err := appendYard(route.TerminationYard); err != nil {
		return nil, err
	}
	return stops, nil
}

func stationIndustries(ctx context.Context, st store.Store, stationID string) ([]models.Industry, error) {
	recs, err := st.FindByQuery(ctx, store.Industries, store.Record{"stationId": stationID})
	if err != nil {
		return nil, fault.Store(err, "read station industries")
	}
	return models.FromRecords[models.Industry](recs)
}

// stationPendingOrders returns this session's pending orders whose
// industry sits at the station, in store order.
func stationPendingOrders(ctx context.Context, st store.Store, sessionNumber int, industries map[string]bool) ([]models.CarOrder, error) {
	recs, err := st.FindByQuery(ctx, store.CarOrders, store.Record{
		"sessionNumber": sessionNumber,
		"status":        models.OrderPending,
	})
	if err != nil {
		return nil, fault.Store(err, "read pending orders")
	}
	orders, err := models.FromRecords[models.CarOrder](recs)
	if err != nil {
		return nil, err
	}
	var out []models.CarOrder
	for _, o := range orders {
		if industries[o.IndustryID] {
			out = append(out, o)
		}
	}
	return out, nil
}

// stationCars returns in-service cars standing at the station, in store
// order.
func stationCars(ctx context.Context, st store.Store, industries map[string]bool) ([]models.Car, error) {
	recs, err := st.FindByQuery(ctx, store.Cars, store.Record{"isInService": true})
	if err != nil {
		return nil, fault.Store(err, "read cars")
	}
	cars, err := models.FromRecords[models.Car](recs)
	if err != nil {
		return nil, err
	}
	var out []models.Car
	for _, c := range cars {
		if industries[c.CurrentIndustry] {
			out = append(out, c)
		}
	}
	return out, nil
}

// firstFit picks the first unassigned car of the wanted type.
func firstFit(cars []models.Car, aarTypeID string, assigned map[string]bool) *models.Car {
	for i := range cars {
		if assigned[cars[i].ID] {
			continue
		}
		if cars[i].CarType == aarTypeID {
			return &cars[i]
		}
	}
	return nil
}
