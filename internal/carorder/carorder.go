// Package carorder manages car-transport demand records: CRUD with
// status and duplicate rules, enrichment joins, and demand-driven
// generation.
package carorder

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/zulandar/waybill/internal/fault"
	"github.com/zulandar/waybill/internal/models"
	"github.com/zulandar/waybill/internal/rules"
	"github.com/zulandar/waybill/internal/store"
)

// Filters holds optional filters for listing orders. Zero values are
// ignored; Search matches case-insensitively against the referenced
// industry's name and the order's aarTypeId.
type Filters struct {
	IndustryID    string
	Status        string
	SessionNumber int
	AarTypeID     string
	Search        string
}

// Enriched is an order joined with the records it references.
type Enriched struct {
	models.CarOrder
	Industry      *models.Industry `json:"industry"`
	AssignedCar   *models.Car      `json:"assignedCar"`
	AssignedTrain *models.Train    `json:"assignedTrain"`
}

// List returns orders matching the filters, newest first.
func List(ctx context.Context, st store.Store, f Filters) ([]models.CarOrder, error) {
	query := store.Record{}
	if f.IndustryID != "" {
		query["industryId"] = f.IndustryID
	}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.SessionNumber > 0 {
		query["sessionNumber"] = f.SessionNumber
	}
	if f.AarTypeID != "" {
		query["aarTypeId"] = f.AarTypeID
	}
	recs, err := st.FindByQuery(ctx, store.CarOrders, query)
	if err != nil {
		return nil, fault.Store(err, "list car orders")
	}
	orders, err := models.FromRecords[models.CarOrder](recs)
	if err != nil {
		return nil, err
	}

	if f.Search != "" {
		orders, err = searchFilter(ctx, st, orders, f.Search)
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return laterTimestamp(orders[i].CreatedAt, orders[j].CreatedAt)
	})
	return orders, nil
}

// searchFilter keeps orders whose industry name or aarTypeId contains the
// search term, case-insensitively.
func searchFilter(ctx context.Context, st store.Store, orders []models.CarOrder, term string) ([]models.CarOrder, error) {
	recs, err := st.FindAll(ctx, store.Industries)
	if err != nil {
		return nil, fault.Store(err, "read industries")
	}
	industries, err := models.FromRecords[models.Industry](recs)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(industries))
	for _, ind := range industries {
		names[ind.ID] = strings.ToLower(ind.Name)
	}

	needle := strings.ToLower(term)
	var out []models.CarOrder
	for _, o := range orders {
		if strings.Contains(strings.ToLower(o.AarTypeID), needle) ||
			strings.Contains(names[o.IndustryID], needle) {
			out = append(out, o)
		}
	}
	return out, nil
}

// laterTimestamp reports whether a sorts after b (descending createdAt).
// Timestamps are RFC 3339 strings; unparseable values sort by string.
func laterTimestamp(a, b string) bool {
	ta, errA := time.Parse(time.RFC3339Nano, a)
	tb, errB := time.Parse(time.RFC3339Nano, b)
	if errA != nil || errB != nil {
		return a > b
	}
	return ta.After(tb)
}

// Get returns an order by id.
func Get(ctx context.Context, st store.Store, id string) (*models.CarOrder, error) {
	rec, err := st.FindByID(ctx, store.CarOrders, id)
	if err != nil {
		return nil, fault.Store(err, "read car order")
	}
	if rec == nil {
		return nil, fault.New(fault.NotFound, "car order not found").WithIDs(id)
	}
	return models.FromRecord[models.CarOrder](rec)
}

// GetEnriched returns an order joined with its industry, assigned car,
// and assigned train. The joins are read-side only.
func GetEnriched(ctx context.Context, st store.Store, id string) (*Enriched, error) {
	order, err := Get(ctx, st, id)
	if err != nil {
		return nil, err
	}
	out := &Enriched{CarOrder: *order}

	if rec, err := st.FindByID(ctx, store.Industries, order.IndustryID); err != nil {
		return nil, fault.Store(err, "read industry")
	} else if rec != nil {
		if out.Industry, err = models.FromRecord[models.Industry](rec); err != nil {
			return nil, err
		}
	}
	if order.AssignedCarID != nil {
		if rec, err := st.FindByID(ctx, store.Cars, *order.AssignedCarID); err != nil {
			return nil, fault.Store(err, "read assigned car")
		} else if rec != nil {
			if out.AssignedCar, err = models.FromRecord[models.Car](rec); err != nil {
				return nil, err
			}
		}
	}
	if order.AssignedTrainID != nil {
		if rec, err := st.FindByID(ctx, store.Trains, *order.AssignedTrainID); err != nil {
			return nil, fault.Store(err, "read assigned train")
		} else if rec != nil {
			if out.AssignedTrain, err = models.FromRecord[models.Train](rec); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Create validates and persists a new order. A pending order for the same
// industry, AAR type, and session is a conflict.
func Create(ctx context.Context, st store.Store, order models.CarOrder) (*models.CarOrder, error) {
	if order.Status == "" {
		order.Status = models.OrderPending
	}
	if err := rules.ValidateCarOrder(&order); err != nil {
		return nil, err
	}
	if rec, err := st.FindByID(ctx, store.Industries, order.IndustryID); err != nil {
		return nil, fault.Store(err, "read industry")
	} else if rec == nil {
		return nil, fault.New(fault.NotFound, "industry not found").WithIDs(order.IndustryID)
	}
	if rec, err := st.FindByID(ctx, store.AarTypes, order.AarTypeID); err != nil {
		return nil, fault.Store(err, "read aar type")
	} else if rec == nil {
		return nil, fault.New(fault.NotFound, "aar type not found").WithIDs(order.AarTypeID)
	}

	existing, err := pendingOrders(ctx, st, order.IndustryID, order.SessionNumber)
	if err != nil {
		return nil, err
	}
	if rules.IsDuplicateOrder(existing, order.IndustryID, order.AarTypeID, order.SessionNumber) {
		return nil, fault.Newf(fault.Conflict,
			"pending order for industry %s, type %s, session %d already exists",
			order.IndustryID, order.AarTypeID, order.SessionNumber)
	}

	order.CreatedAt = models.Timestamp()
	rec, err := models.ToRecord(order)
	if err != nil {
		return nil, err
	}
	created, err := st.Create(ctx, store.CarOrders, rec)
	if err != nil {
		return nil, fault.Store(err, "create car order")
	}
	return models.FromRecord[models.CarOrder](created)
}

// Update applies a patch to an order. Status changes must follow the
// transition table; a changed assignedCarId is validated against the
// car-assignment predicate with every failure reported.
func Update(ctx context.Context, st store.Store, id string, patch store.Record) (*models.CarOrder, error) {
	existing, err := Get(ctx, st, id)
	if err != nil {
		return nil, err
	}

	if raw, ok := patch["status"]; ok {
		newStatus, _ := raw.(string)
		if !rules.ValidOrderStatus(newStatus) {
			return nil, fault.Newf(fault.InvalidArgument, "status %q is not a car-order status", newStatus)
		}
		if newStatus != existing.Status && !rules.CanTransitionOrder(existing.Status, newStatus) {
			return nil, fault.Newf(fault.PreconditionFailed,
				"order cannot move from %q to %q", existing.Status, newStatus).WithIDs(id)
		}
	}

	if raw, ok := patch["assignedCarId"]; ok && raw != nil {
		carID, _ := raw.(string)
		if existing.AssignedCarID == nil || *existing.AssignedCarID != carID {
			carRec, err := st.FindByID(ctx, store.Cars, carID)
			if err != nil {
				return nil, fault.Store(err, "read car")
			}
			var car *models.Car
			if carRec != nil {
				if car, err = models.FromRecord[models.Car](carRec); err != nil {
					return nil, err
				}
			}
			if errs := rules.AssignmentErrors(car, existing); len(errs) > 0 {
				return nil, fault.New(fault.InvalidArgument, "car is not assignable to order").
					WithIDs(carID, id).WithDetails(errs...)
			}
		}
	}

	patch["updatedAt"] = models.Timestamp()
	updated, err := st.Update(ctx, store.CarOrders, id, patch)
	if err != nil {
		return nil, fault.Store(err, "update car order")
	}
	if updated == nil {
		return nil, fault.New(fault.NotFound, "car order not found").WithIDs(id)
	}
	return models.FromRecord[models.CarOrder](updated)
}

// Delete removes an order unless it is assigned or in transit.
func Delete(ctx context.Context, st store.Store, id string) error {
	order, err := Get(ctx, st, id)
	if err != nil {
		return err
	}
	if order.Status == models.OrderAssigned || order.Status == models.OrderInTransit {
		return fault.Newf(fault.CannotDelete, "order is %s and cannot be deleted", order.Status).WithIDs(id)
	}
	if _, err := st.Delete(ctx, store.CarOrders, id); err != nil {
		return fault.Store(err, "delete car order")
	}
	return nil
}

func pendingOrders(ctx context.Context, st store.Store, industryID string, sessionNumber int) ([]models.CarOrder, error) {
	recs, err := st.FindByQuery(ctx, store.CarOrders, store.Record{
		"industryId":    industryID,
		"sessionNumber": sessionNumber,
		"status":        models.OrderPending,
	})
	if err != nil {
		return nil, fault.Store(err, "read pending orders")
	}
	return models.FromRecords[models.CarOrder](recs)
}
