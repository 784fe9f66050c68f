package models

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the calendar-day format used for labels and range bounds
const DayLayout = "2006-01-02"

// Collection names one of the two record collections served by the API
type Collection string

const (
	Consumption Collection = "consumption"
	Generation  Collection = "generation"
)

// Collections lists every collection in display order
var Collections = []Collection{Consumption, Generation}

// ParseCollection validates a collection name
func ParseCollection(s string) (Collection, error) {
	switch c := Collection(strings.ToLower(strings.TrimSpace(s))); c {
	case Consumption, Generation:
		return c, nil
	default:
		return "", fmt.Errorf("unknown collection: %s (available: consumption, generation)", s)
	}
}

// Label returns the human readable series name
func (c Collection) Label() string {
	switch c {
	case Consumption:
		return "Energy Consumption (kWh)"
	case Generation:
		return "Energy Generation (kWh)"
	default:
		return string(c)
	}
}

// Field names a categorical attribute of a record
type Field string

const (
	FieldLocation Field = "location"
	FieldSector   Field = "sector"
	FieldSource   Field = "source"
)

// EnergyRecord is a single energy observation as returned by the API.
// The timestamp is kept as sent (ISO, often without a zone offset).
type EnergyRecord struct {
	ID         string  `json:"id,omitempty"`
	Timestamp  string  `json:"timestamp"`
	EnergyKWh  float64 `json:"energy_kwh"`
	Location   string  `json:"location,omitempty"`
	Sector     string  `json:"sector,omitempty"`
	Source     string  `json:"source,omitempty"`
	ConsumerID string  `json:"consumer_id,omitempty"`
	SystemID   string  `json:"system_id,omitempty"`
	Price      float64 `json:"price,omitempty"`
	Total      float64 `json:"total,omitempty"`
}

// Day returns the calendar-day portion of the timestamp, discarding time of day
func (r EnergyRecord) Day() string {
	ts := r.Timestamp
	if i := strings.IndexAny(ts, "T "); i >= 0 {
		return ts[:i]
	}
	return ts
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	DayLayout,
}

// Time parses the timestamp; zone-less timestamps are read as UTC
func (r EnergyRecord) Time() (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, r.Timestamp); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp: %q", r.Timestamp)
}

// Value returns the record's value for a categorical field
func (r EnergyRecord) Value(f Field) string {
	switch f {
	case FieldLocation:
		return r.Location
	case FieldSector:
		return r.Sector
	case FieldSource:
		return r.Source
	default:
		return ""
	}
}

// Distinct returns the distinct values of a field in first-seen order
func Distinct(records []EnergyRecord, f Field) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, r := range records {
		v := r.Value(f)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values
}
