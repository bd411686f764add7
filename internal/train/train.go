// Package train owns the train lifecycle: status-guarded CRUD, the
// switch-list planner, and completion/cancellation with their
// cross-entity updates.
package train

import (
	"context"

	"github.com/zulandar/waybill/internal/fault"
	"github.com/zulandar/waybill/internal/models"
	"github.com/zulandar/waybill/internal/rules"
	"github.com/zulandar/waybill/internal/session"
	"github.com/zulandar/waybill/internal/store"
)

// Enriched is a train joined with its route and locomotives for
// read-side display.
type Enriched struct {
	models.Train
	Route       *models.Route       `json:"route"`
	Locomotives []models.Locomotive `json:"locomotives"`
}

// Get returns a train by id.
func Get(ctx context.Context, st store.Store, id string) (*models.Train, error) {
	rec, err := st.FindByID(ctx, store.Trains, id)
	if err != nil {
		return nil, fault.Store(err, "read train")
	}
	if rec == nil {
		return nil, fault.New(fault.NotFound, "train not found").WithIDs(id)
	}
	return models.FromRecord[models.Train](rec)
}

// List returns all trains in insertion order.
func List(ctx context.Context, st store.Store) ([]models.Train, error) {
	recs, err := st.FindAll(ctx, store.Trains)
	if err != nil {
		return nil, fault.Store(err, "list trains")
	}
	return models.FromRecords[models.Train](recs)
}

// GetEnriched returns a train joined with its route and locomotive
// records.
func GetEnriched(ctx context.Context, st store.Store, id string) (*Enriched, error) {
	t, err := Get(ctx, st, id)
	if err != nil {
		return nil, err
	}
	out := &Enriched{Train: *t}
	if rec, err := st.FindByID(ctx, store.Routes, t.RouteID); err != nil {
		return nil, fault.Store(err, "read route")
	} else if rec != nil {
		if out.Route, err = models.FromRecord[models.Route](rec); err != nil {
			return nil, err
		}
	}
	for _, locoID := range t.LocomotiveIDs {
		rec, err := st.FindByID(ctx, store.Locomotives, locoID)
		if err != nil {
			return nil, fault.Store(err, "read locomotive")
		}
		if rec == nil {
			continue
		}
		loco, err := models.FromRecord[models.Locomotive](rec)
		if err != nil {
			return nil, err
		}
		out.Locomotives = append(out.Locomotives, *loco)
	}
	return out, nil
}

// Create validates and persists a new train in Planned status.
func Create(ctx context.Context, st store.Store, t models.Train) (*models.Train, error) {
	if t.SessionNumber == 0 {
		sess, err := session.Current(ctx, st)
		if err != nil {
			return nil, err
		}
		t.SessionNumber = sess.CurrentSessionNumber
	}
	if err := rules.ValidateTrain(&t); err != nil {
		return nil, err
	}
	if err := checkReferences(ctx, st, &t); err != nil {
		return nil, err
	}
	if err := checkUniqueness(ctx, st, &t, ""); err != nil {
		return nil, err
	}

	now := models.Timestamp()
	t.Status = models.TrainPlanned
	t.AssignedCarIDs = []string{}
	t.SwitchList = nil
	t.CreatedAt = now
	t.UpdatedAt = now

	rec, err := models.ToRecord(t)
	if err != nil {
		return nil, err
	}
	created, err := st.Create(ctx, store.Trains, rec)
	if err != nil {
		return nil, fault.Store(err, "create train")
	}
	return models.FromRecord[models.Train](created)
}

// Update applies a patch to a Planned train and revalidates it. Status,
// switch list, and car assignments are owned by the planner and the
// complete/cancel operations, so patches to them are ignored.
func Update(ctx context.Context, st store.Store, id string, patch store.Record) (*models.Train, error) {
	existing, err := Get(ctx, st, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != models.TrainPlanned {
		return nil, fault.Newf(fault.ImmutableInState,
			"train is %s and cannot be edited", existing.Status).WithIDs(id)
	}

	merged, err := models.ToRecord(*existing)
	if err != nil {
		return nil, err
	}
	cleaned := store.Record{}
	for k, v := range patch {
		switch k {
		case "id", "status", "switchList", "assignedCarIds", "createdAt", "updatedAt":
			continue
		}
		cleaned[k] = v
		merged[k] = v
	}
	next, err := models.FromRecord[models.Train](merged)
	if err != nil {
		return nil, fault.New(fault.InvalidArgument, "train patch does not decode").WithIDs(id)
	}
	if err := rules.ValidateTrain(next); err != nil {
		return nil, err
	}
	if err := checkReferences(ctx, st, next); err != nil {
		return nil, err
	}
	if err := checkUniqueness(ctx, st, next, id); err != nil {
		return nil, err
	}

	cleaned["updatedAt"] = models.Timestamp()
	updated, err := st.Update(ctx, store.Trains, id, cleaned)
	if err != nil {
		return nil, fault.Store(err, "update train")
	}
	if updated == nil {
		return nil, fault.New(fault.NotFound, "train not found").WithIDs(id)
	}
	return models.FromRecord[models.Train](updated)
}

// Delete removes a Planned train.
func Delete(ctx context.Context, st store.Store, id string) error {
	existing, err := Get(ctx, st, id)
	if err != nil {
		return err
	}
	if existing.Status != models.TrainPlanned {
		return fault.Newf(fault.ImmutableInState,
			"train is %s and cannot be deleted", existing.Status).WithIDs(id)
	}
	if _, err := st.Delete(ctx, store.Trains, id); err != nil {
		return fault.Store(err, "delete train")
	}
	return nil
}

// Complete executes a train's switch list: setout cars move to their
// destinations with reset counters, the train's orders become delivered,
// and the train itself becomes Completed. The status write is last so a
// torn failure never strands a Completed train with unmoved cars.
func Complete(ctx context.Context, st store.Store, id string) (*models.Train, error) {
	t, err := Get(ctx, st, id)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TrainInProgress {
		return nil, fault.Newf(fault.PreconditionFailed,
			"train is %s, must be In Progress to complete", t.Status).WithIDs(id)
	}

	now := models.Timestamp()
	if t.SwitchList != nil {
		for _, station := range t.SwitchList.Stations {
			for _, setout := range station.Setouts {
				_, err := st.Update(ctx, store.Cars, setout.CarID, store.Record{
					"currentIndustry":           setout.DestinationIndustryID,
					"sessionsAtCurrentLocation": 0,
					"lastMoved":                 now,
				})
				if err != nil {
					return nil, fault.Store(err, "move setout car").WithIDs(setout.CarID)
				}
			}
		}
	}

	orders, err := trainOrders(ctx, st, id)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		if o.Status != models.OrderAssigned && o.Status != models.OrderInTransit {
			continue
		}
		_, err := st.Update(ctx, store.CarOrders, o.ID, store.Record{
			"status":    models.OrderDelivered,
			"updatedAt": now,
		})
		if err != nil {
			return nil, fault.Store(err, "deliver order").WithIDs(o.ID)
		}
	}

	updated, err := st.Update(ctx, store.Trains, id, store.Record{
		"status":    models.TrainCompleted,
		"updatedAt": now,
	})
	if err != nil {
		return nil, fault.Store(err, "complete train")
	}
	return models.FromRecord[models.Train](updated)
}

// Cancel aborts a train. An In Progress train's orders revert to pending
// with their assignments cleared; the status write is last.
func Cancel(ctx context.Context, st store.Store, id string) (*models.Train, error) {
	t, err := Get(ctx, st, id)
	if err != nil {
		return nil, err
	}
	if t.Status == models.TrainCompleted {
		return nil, fault.New(fault.PreconditionFailed,
			"completed train cannot be cancelled").WithIDs(id)
	}
	if t.Status == models.TrainCancelled {
		return nil, fault.New(fault.PreconditionFailed,
			"train is already Cancelled").WithIDs(id)
	}

	now := models.Timestamp()
	if t.Status == models.TrainInProgress {
		orders, err := trainOrders(ctx, st, id)
		if err != nil {
			return nil, err
		}
		for _, o := range orders {
			if o.Status != models.OrderAssigned && o.Status != models.OrderInTransit {
				continue
			}
			_, err := st.Update(ctx, store.CarOrders, o.ID, store.Record{
				"status":          models.OrderPending,
				"assignedCarId":   nil,
				"assignedTrainId": nil,
				"updatedAt":       now,
			})
			if err != nil {
				return nil, fault.Store(err, "revert order").WithIDs(o.ID)
			}
		}
	}

	updated, err := st.Update(ctx, store.Trains, id, store.Record{
		"status":    models.TrainCancelled,
		"updatedAt": now,
	})
	if err != nil {
		return nil, fault.Store(err, "cancel train")
	}
	return models.FromRecord[models.Train](updated)
}

// checkReferences resolves the route and every locomotive, requiring the
// locomotives to be in service.
func checkReferences(ctx context.Context, st store.Store, t *models.Train) error {
	rec, err := st.FindByID(ctx, store.Routes, t.RouteID)
	if err != nil {
		return fault.Store(err, "read route")
	}
	if rec == nil {
		return fault.New(fault.NotFound, "route not found").WithIDs(t.RouteID)
	}
	for _, locoID := range t.LocomotiveIDs {
		rec, err := st.FindByID(ctx, store.Locomotives, locoID)
		if err != nil {
			return fault.Store(err, "read locomotive")
		}
		if rec == nil {
			return fault.New(fault.NotFound, "locomotive not found").WithIDs(locoID)
		}
		loco, err := models.FromRecord[models.Locomotive](rec)
		if err != nil {
			return err
		}
		if !loco.IsInService {
			return fault.Newf(fault.PreconditionFailed,
				"locomotive %s %s is out of service", loco.ReportingMarks, loco.ReportingNumber).WithIDs(locoID)
		}
	}
	return nil
}

// checkUniqueness enforces the per-session name rule and the
// one-active-train-per-locomotive rule, excluding the train being edited.
func checkUniqueness(ctx context.Context, st store.Store, t *models.Train, excludeID string) error {
	all, err := List(ctx, st)
	if err != nil {
		return err
	}
	if !rules.TrainNameAvailable(all, t.Name, t.SessionNumber, excludeID) {
		return fault.Newf(fault.Conflict,
			"train name %q already used in session %d", t.Name, t.SessionNumber)
	}
	if conflicts := rules.LocomotiveConflicts(all, t.LocomotiveIDs, excludeID); len(conflicts) > 0 {
		return fault.New(fault.Conflict,
			"locomotive already assigned to an active train").WithIDs(conflicts...)
	}
	return nil
}

func trainOrders(ctx context.Context, st store.Store, trainID string) ([]models.CarOrder, error) {
	recs, err := st.FindByQuery(ctx, store.CarOrders, store.Record{"assignedTrainId": trainID})
	if err != nil {
		return nil, fault.Store(err, "read train orders")
	}
	return models.FromRecords[models.CarOrder](recs)
}
