// Package session owns the operating-session singleton: the layout's
// clock, and the atomic advance/rollback of world state around it.
package session

import (
	"context"
	"fmt"

	"github.com/zulandar/waybill/internal/fault"
	"github.com/zulandar/waybill/internal/models"
	"github.com/zulandar/waybill/internal/rules"
	"github.com/zulandar/waybill/internal/store"
)

// AdvanceStats reports what an advance touched.
type AdvanceStats struct {
	CarsUpdated       int `json:"carsUpdated"`
	TrainsDeleted     int `json:"trainsDeleted"`
	CarsReverted      int `json:"carsReverted"`
	AdvancedToSession int `json:"advancedToSession"`
}

// RollbackStats reports what a rollback restored.
type RollbackStats struct {
	CarsRestored        int `json:"carsRestored"`
	TrainsRestored      int `json:"trainsRestored"`
	OrdersRestored      int `json:"ordersRestored"`
	RolledBackToSession int `json:"rolledBackToSession"`
}

// Current returns the session singleton, creating it at session 1 on
// first read.
func Current(ctx context.Context, st store.Store) (*models.OperatingSession, error) {
	recs, err := st.FindAll(ctx, store.OperatingSessions)
	if err != nil {
		return nil, fault.Store(err, "read operating session")
	}
	if len(recs) > 0 {
		return models.FromRecord[models.OperatingSession](recs[0])
	}

	fresh := models.OperatingSession{
		CurrentSessionNumber:    1,
		SessionDate:             models.Timestamp(),
		Description:             "",
		PreviousSessionSnapshot: nil,
	}
	rec, err := models.ToRecord(fresh)
	if err != nil {
		return nil, err
	}
	created, err := st.Create(ctx, store.OperatingSessions, rec)
	if err != nil {
		return nil, fault.Store(err, "create operating session")
	}
	return models.FromRecord[models.OperatingSession](created)
}

// Advance moves the layout to the next operating session.
//
// It captures a snapshot of the pre-advance world (car locations and
// counters, all trains, all car orders), increments every car's
// sessions-at-location counter, deletes Completed trains, reverts cars on
// In Progress trains to their pre-advance location, and finally writes
// the session singleton with the incremented number and the snapshot.
// The snapshot is validated before anything is written.
func Advance(ctx context.Context, st store.Store, description string) (*models.OperatingSession, *AdvanceStats, error) {
	sess, err := Current(ctx, st)
	if err != nil {
		return nil, nil, err
	}

	carRecs, err := st.FindAll(ctx, store.Cars)
	if err != nil {
		return nil, nil, fault.Store(err, "read cars")
	}
	cars, err := models.FromRecords[models.Car](carRecs)
	if err != nil {
		return nil, nil, err
	}
	trainRecs, err := st.FindAll(ctx, store.Trains)
	if err != nil {
		return nil, nil, fault.Store(err, "read trains")
	}
	orderRecs, err := st.FindAll(ctx, store.CarOrders)
	if err != nil {
		return nil, nil, fault.Store(err, "read car orders")
	}

	snap := &models.Snapshot{
		SessionNumber: sess.CurrentSessionNumber,
		Cars:          make([]models.SnapshotCar, 0, len(cars)),
		Trains:        trainRecs,
		CarOrders:     orderRecs,
	}
	for _, c := range cars {
		snap.Cars = append(snap.Cars, models.SnapshotCar{
			ID:                        c.ID,
			CurrentIndustry:           c.CurrentIndustry,
			SessionsAtCurrentLocation: c.SessionsAtCurrentLocation,
		})
	}
	if err := rules.ValidateSnapshot(snap); err != nil {
		return nil, nil, err
	}

	stats := &AdvanceStats{AdvancedToSession: sess.CurrentSessionNumber + 1}

	// Every car spends one more session wherever it sits.
	for _, c := range cars {
		_, err := st.Update(ctx, store.Cars, c.ID, store.Record{
			"sessionsAtCurrentLocation": c.SessionsAtCurrentLocation + 1,
		})
		if err != nil {
			return nil, nil, fault.Store(err, "advance car counter").WithIDs(c.ID)
		}
		stats.CarsUpdated++
	}

	trains, err := models.FromRecords[models.Train](trainRecs)
	if err != nil {
		return nil, nil, err
	}

	// Completed trains have done their work; they do not cross sessions.
	for _, t := range trains {
		if t.Status != models.TrainCompleted {
			continue
		}
		if _, err := st.Delete(ctx, store.Trains, t.ID); err != nil {
			return nil, nil, fault.Store(err, "delete completed train").WithIDs(t.ID)
		}
		stats.TrainsDeleted++
	}

	// In Progress trains are unwound: their cars go back to where they
	// stood before the advance, with a fresh counter. The train record
	// itself, switch list included, stays as-is.
	preAdvance := make(map[string]models.SnapshotCar, len(snap.Cars))
	for _, sc := range snap.Cars {
		preAdvance[sc.ID] = sc
	}
	for _, t := range trains {
		if t.Status != models.TrainInProgress {
			continue
		}
		for _, carID := range t.AssignedCarIDs {
			sc, ok := preAdvance[carID]
			if !ok {
				continue
			}
			_, err := st.Update(ctx, store.Cars, carID, store.Record{
				"currentIndustry":           sc.CurrentIndustry,
				"sessionsAtCurrentLocation": 0,
			})
			if err != nil {
				return nil, nil, fault.Store(err, "revert in-flight car").WithIDs(carID)
			}
			stats.CarsReverted++
		}
	}

	if description == "" {
		description = fmt.Sprintf("Operating session %d", stats.AdvancedToSession)
	}
	snapRec, err := models.ToRecord(snap)
	if err != nil {
		return nil, nil, err
	}
	updated, err := st.Update(ctx, store.OperatingSessions, sess.ID, store.Record{
		"currentSessionNumber":    stats.AdvancedToSession,
		"sessionDate":             models.Timestamp(),
		"description":             description,
		"previousSessionSnapshot": snapRec,
	})
	if err != nil {
		return nil, nil, fault.Store(err, "write session")
	}
	if updated == nil {
		return nil, nil, fault.New(fault.NotFound, "operating session vanished during advance")
	}
	out, err := models.FromRecord[models.OperatingSession](updated)
	if err != nil {
		return nil, nil, err
	}
	return out, stats, nil
}

// Rollback restores the world captured by the last advance and steps the
// session number back by one. Fails if the layout is at session 1 or the
// last advance has already been rolled back.
func Rollback(ctx context.Context, st store.Store, description string) (*models.OperatingSession, *RollbackStats, error) {
	sess, err := Current(ctx, st)
	if err != nil {
		return nil, nil, err
	}
	if sess.CurrentSessionNumber <= 1 {
		return nil, nil, fault.New(fault.CannotRollback, "already at session 1")
	}
	if sess.PreviousSessionSnapshot == nil {
		return nil, nil, fault.New(fault.CannotRollback, "no snapshot to roll back to")
	}
	snap := sess.PreviousSessionSnapshot
	if err := rules.ValidateSnapshot(snap); err != nil {
		return nil, nil, err
	}

	stats := &RollbackStats{RolledBackToSession: sess.CurrentSessionNumber - 1}

	for _, sc := range snap.Cars {
		updated, err := st.Update(ctx, store.Cars, sc.ID, store.Record{
			"currentIndustry":           sc.CurrentIndustry,
			"sessionsAtCurrentLocation": sc.SessionsAtCurrentLocation,
		})
		if err != nil {
			return nil, nil, fault.Store(err, "restore car").WithIDs(sc.ID)
		}
		if updated != nil {
			stats.CarsRestored++
		}
	}

	// Trains and car orders are replaced wholesale from the snapshot,
	// original ids preserved.
	if _, err := st.ClearCollection(ctx, store.Trains); err != nil {
		return nil, nil, fault.Store(err, "clear trains")
	}
	for _, rec := range snap.Trains {
		if _, err := st.Create(ctx, store.Trains, rec); err != nil {
			return nil, nil, fault.Store(err, "restore train")
		}
		stats.TrainsRestored++
	}
	if _, err := st.ClearCollection(ctx, store.CarOrders); err != nil {
		return nil, nil, fault.Store(err, "clear car orders")
	}
	for _, rec := range snap.CarOrders {
		if _, err := st.Create(ctx, store.CarOrders, rec); err != nil {
			return nil, nil, fault.Store(err, "restore car order")
		}
		stats.OrdersRestored++
	}

	if description == "" {
		description = fmt.Sprintf("Rolled back to session %d", stats.RolledBackToSession)
	}
	updated, err := st.Update(ctx, store.OperatingSessions, sess.ID, store.Record{
		"currentSessionNumber":    stats.RolledBackToSession,
		"sessionDate":             models.Timestamp(),
		"description":             description,
		"previousSessionSnapshot": nil,
	})
	if err != nil {
		return nil, nil, fault.Store(err, "write session")
	}
	if updated == nil {
		return nil, nil, fault.New(fault.NotFound, "operating session vanished during rollback")
	}
	out, err := models.FromRecord[models.OperatingSession](updated)
	if err != nil {
		return nil, nil, err
	}
	return out, stats, nil
}

// UpdateDescription replaces the current session's description.
func UpdateDescription(ctx context.Context, st store.Store, description string) (*models.OperatingSession, error) {
	if err := rules.ValidateDescription(description); err != nil {
		return nil, err
	}
	sess, err := Current(ctx, st)
	if err != nil {
		return nil, err
	}
	updated, err := st.Update(ctx, store.OperatingSessions, sess.ID, store.Record{
		"description": description,
	})
	if err != nil {
		return nil, fault.Store(err, "write session description")
	}
	if updated == nil {
		return nil, fault.New(fault.NotFound, "operating session not found")
	}
	return models.FromRecord[models.OperatingSession](updated)
}
