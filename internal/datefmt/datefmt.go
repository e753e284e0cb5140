// Package datefmt renders dates for display and export in one fixed locale.
package datefmt

import "time"

const (
	dateLayout     = "02 Jan 2006"
	dateTimeLayout = "02 Jan 2006 15:04"
	clockLayout    = "15:04"
)

func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func DateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTimeLayout)
}

func TimeOfDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(clockLayout)
}
