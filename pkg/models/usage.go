package models

import "time"

// DailyUsage represents one collection's energy total for a single day
type DailyUsage struct {
	Date       time.Time  `json:"date"` // Just the date (midnight UTC)
	KWh        float64    `json:"kwh"`
	Collection Collection `json:"collection"`
}

// DateString returns the day formatted as YYYY-MM-DD
func (d DailyUsage) DateString() string {
	return d.Date.Format(DayLayout)
}
