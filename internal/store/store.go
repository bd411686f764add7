// Package store provides the document store the waybill services run on.
//
// Records are opaque JSON objects keyed by a stable string id and grouped
// into named collections. The services never see the persistence engine;
// they program against Store, and the gorm-backed implementation in this
// package maps every collection onto a single documents table.
package store

import "context"

// Collection names used by the services.
const (
	Cars              = "cars"
	Locomotives       = "locomotives"
	Industries        = "industries"
	Stations          = "stations"
	AarTypes          = "aarTypes"
	Routes            = "routes"
	Trains            = "trains"
	CarOrders         = "carOrders"
	OperatingSessions = "operatingSessions"
)

// Record is an opaque document. Values are what encoding/json produces:
// string, float64, bool, nil, []interface{}, map[string]interface{}.
type Record = map[string]interface{}

// Store is the persistence contract the services depend on.
//
// Single-record operations are atomic; multi-record sequences composed by
// the services are not, and the services order their writes accordingly.
type Store interface {
	// FindAll returns every record in the collection, in insertion order.
	FindAll(ctx context.Context, coll string) ([]Record, error)

	// FindByID returns the record with the given id, or nil if absent.
	FindByID(ctx context.Context, coll, id string) (Record, error)

	// FindByQuery returns records whose fields equal every key in query,
	// in insertion order.
	FindByQuery(ctx context.Context, coll string, query Record) ([]Record, error)

	// Create persists a record, assigning an id if the record has none.
	// A caller-supplied id is preserved; a duplicate id is an error.
	Create(ctx context.Context, coll string, rec Record) (Record, error)

	// Update merges patch fields into the record and returns the
	// post-write record, or nil if the id is absent.
	Update(ctx context.Context, coll, id string, patch Record) (Record, error)

	// Delete removes the record, returning 1 if it existed and 0 if not.
	Delete(ctx context.Context, coll, id string) (int64, error)

	// ClearCollection removes every record in the collection and returns
	// how many were removed.
	ClearCollection(ctx context.Context, coll string) (int64, error)
}
