// Package models defines the waybill entities and their record codec.
//
// Entities are stored as opaque JSON documents; the structs here are the
// typed view the services work with. Field names in the json tags are the
// wire and storage names.
package models

// Station groups industries along a route.
type Station struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}
