package models

import "github.com/zulandar/waybill/internal/store"

// SnapshotCar is a car's restorable state inside a snapshot.
type SnapshotCar struct {
	ID                        string `json:"id"`
	CurrentIndustry           string `json:"currentIndustry"`
	SessionsAtCurrentLocation int    `json:"sessionsAtCurrentLocation"`
}

// Snapshot captures the world state immediately before a session advance:
// every car's location and counter, plus every train and car-order record
// verbatim. Trains and CarOrders stay as raw records so rollback restores
// them bit-for-bit.
type Snapshot struct {
	SessionNumber int            `json:"sessionNumber"`
	Cars          []SnapshotCar  `json:"cars"`
	Trains        []store.Record `json:"trains"`
	CarOrders     []store.Record `json:"carOrders"`
}

// OperatingSession is the singleton clock of the layout. Exactly one
// record exists after the first read. PreviousSessionSnapshot is non-nil
// iff the last operation was an advance that has not been rolled back.
type OperatingSession struct {
	ID                      string    `json:"id,omitempty"`
	CurrentSessionNumber    int       `json:"currentSessionNumber"`
	SessionDate             string    `json:"sessionDate"`
	Description             string    `json:"description"`
	PreviousSessionSnapshot *Snapshot `json:"previousSessionSnapshot"`
}
