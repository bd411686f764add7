package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/waybill/internal/fault"
	"github.com/zulandar/waybill/internal/models"
	"github.com/zulandar/waybill/internal/rules"
	"github.com/zulandar/waybill/internal/store"
)

// refEntity describes one reference-data collection: its route path, its
// store collection, a schema check, and a delete guard that blocks
// removal while other records point at it.
type refEntity struct {
	path        string
	coll        string
	validate    func(rec store.Record) error
	beforeWrite func(ctx context.Context, st store.Store, rec store.Record, excludeID string) error
	deleteGuard func(ctx context.Context, st store.Store, id string) error
}

func refEntities() []refEntity {
	return []refEntity{
		{
			path: "stations",
			coll: store.Stations,
			validate: func(rec store.Record) error {
				return validateAs(rec, rules.ValidateStation)
			},
			deleteGuard: stationDeleteGuard,
		},
		{
			path: "aar-types",
			coll: store.AarTypes,
			validate: func(rec store.Record) error {
				return validateAs(rec, rules.ValidateAarType)
			},
			beforeWrite: aarTypeCodeUnique,
			deleteGuard: aarTypeDeleteGuard,
		},
		{
			path: "industries",
			coll: store.Industries,
			validate: func(rec store.Record) error {
				return validateAs(rec, rules.ValidateIndustry)
			},
			beforeWrite: industryStationExists,
			deleteGuard: industryDeleteGuard,
		},
		{
			path: "routes",
			coll: store.Routes,
			validate: func(rec store.Record) error {
				return validateAs(rec, rules.ValidateRoute)
			},
			beforeWrite: routeBeforeWrite,
			deleteGuard: routeDeleteGuard,
		},
		{
			path: "locomotives",
			coll: store.Locomotives,
			validate: func(rec store.Record) error {
				return validateAs(rec, rules.ValidateLocomotive)
			},
			beforeWrite: locomotiveUnique,
			deleteGuard: locomotiveDeleteGuard,
		},
		{
			path: "cars",
			coll: store.Cars,
			validate: func(rec store.Record) error {
				return validateAs(rec, rules.ValidateCar)
			},
			beforeWrite: carIdentityUnique,
			deleteGuard: carDeleteGuard,
		},
	}
}

// validateAs decodes the record through its typed model and runs the
// schema check.
func validateAs[T any](rec store.Record, check func(*T) error) error {
	v, err := models.FromRecord[T](rec)
	if err != nil {
		return fault.New(fault.InvalidArgument, "record does not decode")
	}
	return check(v)
}

func registerRefDataRoutes(api *gin.RouterGroup, st store.Store) {
	for _, e := range refEntities() {
		e := e
		group := api.Group("/" + e.path)

		group.GET("", func(c *gin.Context) {
			recs, err := st.FindAll(c.Request.Context(), e.coll)
			if err != nil {
				writeError(c, fault.Store(err, "list "+e.coll))
				return
			}
			c.JSON(http.StatusOK, recs)
		})

		group.GET("/:id", func(c *gin.Context) {
			rec, err := st.FindByID(c.Request.Context(), e.coll, c.Param("id"))
			if err != nil {
				writeError(c, fault.Store(err, "read "+e.coll))
				return
			}
			if rec == nil {
				writeError(c, fault.New(fault.NotFound, e.coll+" record not found").WithIDs(c.Param("id")))
				return
			}
			c.JSON(http.StatusOK, rec)
		})

		group.POST("", func(c *gin.Context) {
			ctx := c.Request.Context()
			var rec store.Record
			if err := c.ShouldBindJSON(&rec); err != nil {
				badRequest(c, err)
				return
			}
			if err := e.validate(rec); err != nil {
				writeError(c, err)
				return
			}
			if e.beforeWrite != nil {
				if err := e.beforeWrite(ctx, st, rec, ""); err != nil {
					writeError(c, err)
					return
				}
			}
			if id, _ := rec["id"].(string); id == "" {
				rec["id"] = store.GenerateID()
			}
			created, err := st.Create(ctx, e.coll, rec)
			if err != nil {
				writeError(c, fault.Store(err, "create "+e.coll))
				return
			}
			c.JSON(http.StatusCreated, created)
		})

		group.PUT("/:id", func(c *gin.Context) {
			ctx := c.Request.Context()
			id := c.Param("id")
			var patch store.Record
			if err := c.ShouldBindJSON(&patch); err != nil {
				badRequest(c, err)
				return
			}
			delete(patch, "id")

			existing, err := st.FindByID(ctx, e.coll, id)
			if err != nil {
				writeError(c, fault.Store(err, "read "+e.coll))
				return
			}
			if existing == nil {
				writeError(c, fault.New(fault.NotFound, e.coll+" record not found").WithIDs(id))
				return
			}
			merged := store.Record{}
			for k, v := range existing {
				merged[k] = v
			}
			for k, v := range patch {
				merged[k] = v
			}
			if err := e.validate(merged); err != nil {
				writeError(c, err)
				return
			}
			if e.beforeWrite != nil {
				if err := e.beforeWrite(ctx, st, merged, id); err != nil {
					writeError(c, err)
					return
				}
			}
			updated, err := st.Update(ctx, e.coll, id, patch)
			if err != nil {
				writeError(c, fault.Store(err, "update "+e.coll))
				return
			}
			c.JSON(http.StatusOK, updated)
		})

		group.DELETE("/:id", func(c *gin.Context) {
			ctx := c.Request.Context()
			id := c.Param("id")
			rec, err := st.FindByID(ctx, e.coll, id)
			if err != nil {
				writeError(c, fault.Store(err, "read "+e.coll))
				return
			}
			if rec == nil {
				writeError(c, fault.New(fault.NotFound, e.coll+" record not found").WithIDs(id))
				return
			}
			if err := e.deleteGuard(ctx, st, id); err != nil {
				writeError(c, err)
				return
			}
			if _, err := st.Delete(ctx, e.coll, id); err != nil {
				writeError(c, fault.Store(err, "delete "+e.coll))
				return
			}
			c.Status(http.StatusNoContent)
		})
	}
}

// queryExists reports whether any record in coll matches the query.
func queryExists(ctx context.Context, st store.Store, coll string, query store.Record) (bool, error) {
	recs, err := st.FindByQuery(ctx, coll, query)
	if err != nil {
		return false, fault.Store(err, "query "+coll)
	}
	return len(recs) > 0, nil
}

func cannotDelete(entity, referrer, id string) error {
	return fault.Newf(fault.CannotDelete,
		"%s is referenced by at least one %s", entity, referrer).WithIDs(id)
}

func stationDeleteGuard(ctx context.Context, st store.Store, id string) error {
	if used, err := queryExists(ctx, st, store.Industries, store.Record{"stationId": id}); err != nil {
		return err
	} else if used {
		return cannotDelete("station", "industry", id)
	}
	routes, err := st.FindAll(ctx, store.Routes)
	if err != nil {
		return fault.Store(err, "list routes")
	}
	decoded, err := models.FromRecords[models.Route](routes)
	if err != nil {
		return err
	}
	for _, r := range decoded {
		for _, sid := range r.StationSequence {
			if sid == id {
				return cannotDelete("station", "route", id)
			}
		}
	}
	return nil
}

func aarTypeDeleteGuard(ctx context.Context, st store.Store, id string) error {
	if used, err := queryExists(ctx, st, store.Cars, store.Record{"carType": id}); err != nil {
		return err
	} else if used {
		return cannotDelete("aarType", "car", id)
	}
	if used, err := queryExists(ctx, st, store.CarOrders, store.Record{"aarTypeId": id}); err != nil {
		return err
	} else if used {
		return cannotDelete("aarType", "car order", id)
	}
	return nil
}

func industryDeleteGuard(ctx context.Context, st store.Store, id string) error {
	for _, q := range []store.Record{{"currentIndustry": id}, {"homeYard": id}} {
		if used, err := queryExists(ctx, st, store.Cars, q); err != nil {
			return err
		} else if used {
			return cannotDelete("industry", "car", id)
		}
	}
	if used, err := queryExists(ctx, st, store.Locomotives, store.Record{"homeYard": id}); err != nil {
		return err
	} else if used {
		return cannotDelete("industry", "locomotive", id)
	}
	for _, q := range []store.Record{{"originYard": id}, {"terminationYard": id}} {
		if used, err := queryExists(ctx, st, store.Routes, q); err != nil {
			return err
		} else if used {
			return cannotDelete("industry", "route", id)
		}
	}
	if used, err := queryExists(ctx, st, store.CarOrders, store.Record{"industryId": id}); err != nil {
		return err
	} else if used {
		return cannotDelete("industry", "car order", id)
	}
	return nil
}

func routeDeleteGuard(ctx context.Context, st store.Store, id string) error {
	if used, err := queryExists(ctx, st, store.Trains, store.Record{"routeId": id}); err != nil {
		return err
	} else if used {
		return cannotDelete("route", "train", id)
	}
	return nil
}

func locomotiveDeleteGuard(ctx context.Context, st store.Store, id string) error {
	trains, err := activeTrains(ctx, st)
	if err != nil {
		return err
	}
	for _, t := range trains {
		for _, locoID := range t.LocomotiveIDs {
			if locoID == id {
				return cannotDelete("locomotive", "active train", id)
			}
		}
	}
	return nil
}

func carDeleteGuard(ctx context.Context, st store.Store, id string) error {
	for _, status := range []string{models.OrderAssigned, models.OrderInTransit} {
		if used, err := queryExists(ctx, st, store.CarOrders, store.Record{
			"assignedCarId": id, "status": status,
		}); err != nil {
			return err
		} else if used {
			return cannotDelete("car", "active car order", id)
		}
	}
	trains, err := activeTrains(ctx, st)
	if err != nil {
		return err
	}
	for _, t := range trains {
		for _, carID := range t.AssignedCarIDs {
			if carID == id {
				return cannotDelete("car", "active train", id)
			}
		}
	}
	return nil
}

// activeTrains returns trains whose status is Planned or In Progress.
func activeTrains(ctx context.Context, st store.Store) ([]models.Train, error) {
	recs, err := st.FindAll(ctx, store.Trains)
	if err != nil {
		return nil, fault.Store(err, "list trains")
	}
	trains, err := models.FromRecords[models.Train](recs)
	if err != nil {
		return nil, err
	}
	var out []models.Train
	for _, t := range trains {
		if t.Status == models.TrainPlanned || t.Status == models.TrainInProgress {
			out = append(out, t)
		}
	}
	return out, nil
}

// aarTypeCodeUnique rejects a second AAR type with the same code.
func aarTypeCodeUnique(ctx context.Context, st store.Store, rec store.Record, excludeID string) error {
	code, _ := rec["code"].(string)
	matches, err := st.FindByQuery(ctx, store.AarTypes, store.Record{"code": code})
	if err != nil {
		return fault.Store(err, "query aarTypes")
	}
	for _, m := range matches {
		if id, _ := m["id"].(string); id != excludeID {
			return fault.Newf(fault.Conflict, "aarType code %q already exists", code)
		}
	}
	return nil
}

// industryStationExists resolves the industry's station.
func industryStationExists(ctx context.Context, st store.Store, rec store.Record, _ string) error {
	stationID, _ := rec["stationId"].(string)
	found, err := st.FindByID(ctx, store.Stations, stationID)
	if err != nil {
		return fault.Store(err, "read station")
	}
	if found == nil {
		return fault.New(fault.NotFound, "station not found").WithIDs(stationID)
	}
	return nil
}

// locomotiveUnique rejects a second locomotive with the same reporting
// identity, or a second DCC locomotive on the same address.
func locomotiveUnique(ctx context.Context, st store.Store, rec store.Record, excludeID string) error {
	l, err := models.FromRecord[models.Locomotive](rec)
	if err != nil {
		return fault.New(fault.InvalidArgument, "record does not decode")
	}
	recs, err := st.FindAll(ctx, store.Locomotives)
	if err != nil {
		return fault.Store(err, "list locomotives")
	}
	locos, err := models.FromRecords[models.Locomotive](recs)
	if err != nil {
		return err
	}
	if !rules.LocomotiveIdentityAvailable(locos, l.ReportingMarks, l.ReportingNumber, excludeID) {
		return fault.Newf(fault.Conflict, "locomotive %s %s already exists", l.ReportingMarks, l.ReportingNumber)
	}
	if l.IsDCC && !rules.DCCAddressAvailable(locos, l.DCCAddress, excludeID) {
		return fault.Newf(fault.Conflict, "dccAddress %d is already in use", l.DCCAddress)
	}
	return nil
}

// carIdentityUnique rejects a second car with the same reporting identity.
func carIdentityUnique(ctx context.Context, st store.Store, rec store.Record, excludeID string) error {
	c, err := models.FromRecord[models.Car](rec)
	if err != nil {
		return fault.New(fault.InvalidArgument, "record does not decode")
	}
	recs, err := st.FindAll(ctx, store.Cars)
	if err != nil {
		return fault.Store(err, "list cars")
	}
	cars, err := models.FromRecords[models.Car](recs)
	if err != nil {
		return err
	}
	if !rules.CarIdentityAvailable(cars, c.ReportingMarks, c.ReportingNumber, excludeID) {
		return fault.Newf(fault.Conflict, "car %s %s already exists", c.ReportingMarks, c.ReportingNumber)
	}
	return nil
}

func routeBeforeWrite(ctx context.Context, st store.Store, rec store.Record, excludeID string) error {
	if err := routeNameUnique(ctx, st, rec, excludeID); err != nil {
		return err
	}
	return routeYardsExist(ctx, st, rec, excludeID)
}

// routeNameUnique rejects a second route with the same name.
func routeNameUnique(ctx context.Context, st store.Store, rec store.Record, excludeID string) error {
	r, err := models.FromRecord[models.Route](rec)
	if err != nil {
		return fault.New(fault.InvalidArgument, "record does not decode")
	}
	recs, err := st.FindAll(ctx, store.Routes)
	if err != nil {
		return fault.Store(err, "list routes")
	}
	routes, err := models.FromRecords[models.Route](recs)
	if err != nil {
		return err
	}
	if !rules.RouteNameAvailable(routes, r.Name, excludeID) {
		return fault.Newf(fault.Conflict, "route name %q already exists", r.Name)
	}
	return nil
}

// routeYardsExist resolves the route's yards to industries flagged as
// yards and its sequence entries to stations.
func routeYardsExist(ctx context.Context, st store.Store, rec store.Record, _ string) error {
	r, err := models.FromRecord[models.Route](rec)
	if err != nil {
		return fault.New(fault.InvalidArgument, "record does not decode")
	}
	for _, yardID := range []string{r.OriginYard, r.TerminationYard} {
		found, err := st.FindByID(ctx, store.Industries, yardID)
		if err != nil {
			return fault.Store(err, "read industry")
		}
		if found == nil {
			return fault.New(fault.NotFound, "yard industry not found").WithIDs(yardID)
		}
		yard, err := models.FromRecord[models.Industry](found)
		if err != nil {
			return err
		}
		if !yard.IsYard {
			return fault.Newf(fault.InvalidArgument, "industry %q is not a yard", yard.Name).WithIDs(yardID)
		}
	}
	for _, stationID := range r.StationSequence {
		found, err := st.FindByID(ctx, store.Stations, stationID)
		if err != nil {
			return fault.Store(err, "read station")
		}
		if found == nil {
			return fault.New(fault.NotFound, "station not found").WithIDs(stationID)
		}
	}
	return nil
}
