package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"gorm.io/gorm"
)

// Document is the single GORM model backing every collection. Seq is the
// insertion-order anchor that FindAll and FindByQuery sort on.
type Document struct {
	Seq        int64  `gorm:"primaryKey;autoIncrement"`
	Collection string `gorm:"size:64;uniqueIndex:idx_coll_doc;index"`
	DocID      string `gorm:"size:64;uniqueIndex:idx_coll_doc"`
	Data       string `gorm:"type:json"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Gorm is the gorm-backed Store implementation.
type Gorm struct {
	db *gorm.DB
}

// New wraps a GORM connection in a Store. The documents table must exist
// (see AutoMigrate).
func New(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func decodeDocument(doc *Document) (Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(doc.Data), &rec); err != nil {
		return nil, fmt.Errorf("store: decode %s/%s: %w", doc.Collection, doc.DocID, err)
	}
	rec["id"] = doc.DocID
	return rec, nil
}

func encodeRecord(rec Record) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("store: encode record: %w", err)
	}
	return string(data), nil
}

// FindAll returns every record in the collection in insertion order.
func (g *Gorm) FindAll(ctx context.Context, coll string) ([]Record, error) {
	var docs []Document
	err := g.db.WithContext(ctx).
		Where("collection = ?", coll).
		Order("seq asc").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("store: find all %s: %w", coll, err)
	}
	recs := make([]Record, 0, len(docs))
	for i := range docs {
		rec, err := decodeDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// FindByID returns the record with the given id, or nil if absent.
func (g *Gorm) FindByID(ctx context.Context, coll, id string) (Record, error) {
	var doc Document
	err := g.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", coll, id).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: find %s/%s: %w", coll, id, err)
	}
	return decodeDocument(&doc)
}

// FindByQuery returns records matching every key in query by equality,
// in insertion order. Query values are normalized through JSON so typed
// callers and stored documents compare consistently.
func (g *Gorm) FindByQuery(ctx context.Context, coll string, query Record) ([]Record, error) {
	all, err := g.FindAll(ctx, coll)
	if err != nil {
		return nil, err
	}
	normalized, err := normalizeQuery(query)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, rec := range all {
		if matches(rec, normalized) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Create persists a record, assigning an id if absent.
func (g *Gorm) Create(ctx context.Context, coll string, rec Record) (Record, error) {
	stored := make(Record, len(rec))
	for k, v := range rec {
		stored[k] = v
	}
	id, _ := stored["id"].(string)
	if id == "" {
		id = GenerateID()
	}
	stored["id"] = id

	data, err := encodeRecord(stored)
	if err != nil {
		return nil, err
	}
	doc := Document{Collection: coll, DocID: id, Data: data}
	if err := g.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return nil, fmt.Errorf("store: create %s/%s: %w", coll, id, err)
	}
	return stored, nil
}

// Update merges patch fields into the stored record. Returns nil if the
// record does not exist. The id field cannot be changed by a patch.
func (g *Gorm) Update(ctx context.Context, coll, id string, patch Record) (Record, error) {
	var doc Document
	err := g.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", coll, id).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: update %s/%s: %w", coll, id, err)
	}

	rec, err := decodeDocument(&doc)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		rec[k] = v
	}
	data, err := encodeRecord(rec)
	if err != nil {
		return nil, err
	}
	err = g.db.WithContext(ctx).
		Model(&Document{}).
		Where("collection = ? AND doc_id = ?", coll, id).
		Update("data", data).Error
	if err != nil {
		return nil, fmt.Errorf("store: update %s/%s: %w", coll, id, err)
	}
	// Normalize through JSON so the returned record matches a re-read.
	var out Record
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("store: decode %s/%s: %w", coll, id, err)
	}
	out["id"] = id
	return out, nil
}

// Delete removes a record, returning how many rows were deleted (0 or 1).
func (g *Gorm) Delete(ctx context.Context, coll, id string) (int64, error) {
	res := g.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", coll, id).
		Delete(&Document{})
	if res.Error != nil {
		return 0, fmt.Errorf("store: delete %s/%s: %w", coll, id, res.Error)
	}
	return res.RowsAffected, nil
}

// ClearCollection removes every record in the collection.
func (g *Gorm) ClearCollection(ctx context.Context, coll string) (int64, error) {
	res := g.db.WithContext(ctx).
		Where("collection = ?", coll).
		Delete(&Document{})
	if res.Error != nil {
		return 0, fmt.Errorf("store: clear %s: %w", coll, res.Error)
	}
	return res.RowsAffected, nil
}

// normalizeQuery round-trips query values through JSON so an int query
// value compares equal to the float64 a decoded document carries.
func normalizeQuery(query Record) (Record, error) {
	data, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("store: normalize query: %w", err)
	}
	var out Record
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("store: normalize query: %w", err)
	}
	return out, nil
}

func matches(rec, query Record) bool {
	for k, want := range query {
		got, ok := rec[k]
		if !ok {
			return false
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}
