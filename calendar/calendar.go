package calendar

import (
	"strings"
	"time"

	"github.com/meenmo/rmbs/errs"
)

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	// USD is the US government securities calendar.
	USD CalendarID = "USD"
	// NullCalendar treats every day as a business day.
	NullCalendar CalendarID = "NULL"
)

// Convention is a business-day adjustment rule.
type Convention string

const (
	Unadjusted        Convention = "Unadjusted"
	Following         Convention = "Following"
	ModifiedFollowing Convention = "ModifiedFollowing"
	Preceding         Convention = "Preceding"
)

func isHoliday(cal CalendarID, t time.Time) bool {
	switch cal {
	case USD:
		return isUSDHoliday(t)
	default:
		return false
	}
}

// IsBusinessDay checks weekends and holiday sets.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	if cal == NullCalendar {
		return true
	}
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(cal, t)
}

// Adjust applies the given business-day convention.
func Adjust(cal CalendarID, conv Convention, t time.Time) time.Time {
	switch conv {
	case Following:
		return AdjustFollowing(cal, t)
	case ModifiedFollowing:
		return AdjustModifiedFollowing(cal, t)
	case Preceding:
		for !IsBusinessDay(cal, t) {
			t = t.AddDate(0, 0, -1)
		}
		return t
	default:
		return t
	}
}

// AdjustModifiedFollowing applies Modified Following.
func AdjustModifiedFollowing(cal CalendarID, t time.Time) time.Time {
	origMonth := t.Month()
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	if t.Month() != origMonth {
		t = t.AddDate(0, 0, -1)
		for !IsBusinessDay(cal, t) {
			t = t.AddDate(0, 0, -1)
		}
	}
	return t
}

// AdjustFollowing applies a simple Following convention (no month preservation).
func AdjustFollowing(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// ParseCalendar resolves a calendar name. An empty name is the USD calendar.
func ParseCalendar(name string) (CalendarID, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", string(USD), "US":
		return USD, nil
	case string(NullCalendar), "NONE":
		return NullCalendar, nil
	default:
		return "", errs.Input("calendar: unknown calendar %q", name)
	}
}

// ParseConvention resolves a business-day convention name, case and separator insensitive.
// An empty name is Unadjusted.
func ParseConvention(name string) (Convention, error) {
	key := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(name)))
	switch key {
	case "", "unadjusted":
		return Unadjusted, nil
	case "following":
		return Following, nil
	case "modifiedfollowing":
		return ModifiedFollowing, nil
	case "preceding":
		return Preceding, nil
	default:
		return "", errs.Input("calendar: unknown business-day convention %q", name)
	}
}
