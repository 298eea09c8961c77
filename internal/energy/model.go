// Package energy implements the energy record store adapter backed by
// the "energy" collection.
package energy

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecordType classifies a reading as produced or consumed energy.
type RecordType string

const (
	TypeGeneration  RecordType = "generation"
	TypeConsumption RecordType = "consumption"
)

// Valid reports whether t is a known record type.
func (t RecordType) Valid() bool {
	return t == TypeGeneration || t == TypeConsumption
}

// Record is a single energy reading. The identifier is assigned by the
// store on insert and never changes afterwards.
type Record struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Country  string             `bson:"country" json:"country"`
	Type     RecordType         `bson:"type" json:"type"`
	Source   string             `bson:"source" json:"source"`
	ValueKWh float64            `bson:"value_kwh" json:"value_kwh"`
	Date     time.Time          `bson:"date" json:"date"`
}

// ListFilter holds the optional filters for List. All string fields are
// raw user input; empty means "not set".
type ListFilter struct {
	Country string
	Type    string
	Source  string
	// Date is an exact calendar date (2006-01-02). Records within that
	// 24-hour window match. A malformed value is ignored, not rejected.
	Date string
}

// ListResult is one page of records plus the unpaginated match count.
type ListResult struct {
	Total   int64    `json:"total"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
	Records []Record `json:"records"`
}

// ErrNotFound is returned when an identifier does not resolve to a
// stored record. A malformed identifier is reported the same way.
var ErrNotFound = errors.New("energy: record not found")

// normalizeDate truncates a timestamp to midnight UTC of its calendar
// date, so date-only input always lands on a stable instant.
func normalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
