package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zulandar/waybill/internal/store"
)

// Timestamp returns the current time as the ISO-8601 string every
// createdAt/updatedAt/sessionDate field carries.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// ToRecord converts a typed entity into an opaque store record.
func ToRecord(v interface{}) (store.Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("models: encode %T: %w", v, err)
	}
	var rec store.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("models: encode %T: %w", v, err)
	}
	return rec, nil
}

// FromRecord converts an opaque store record into a typed entity.
func FromRecord[T any](rec store.Record) (*T, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("models: decode record: %w", err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("models: decode record into %T: %w", v, err)
	}
	return &v, nil
}

// FromRecords converts a slice of records, preserving order.
func FromRecords[T any](recs []store.Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := FromRecord[T](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}
