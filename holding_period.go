package taxlots

import "time"

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02"

const Day = 24 * time.Hour

// LongTermThreshold is the holding period a lot must strictly exceed to be
// taxed as a long-term gain.
const LongTermThreshold = 365 * Day

// IsLongTerm reports whether a lot acquired on acquired and sold on sold was
// held for more than LongTermThreshold. A lot held exactly 365 days is still
// short-term.
func IsLongTerm(acquired, sold time.Time) bool {
	return sold.Sub(acquired) > LongTermThreshold
}
