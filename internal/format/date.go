package format

import (
	"fmt"
	"math"
	"time"

	"github.com/ngmaloney/sunshine-terminal/internal/models"
)

// weekdayHorizon is how many days ahead a weekday name is still unambiguous
const weekdayHorizon = 7

// DaysFrom returns the number of calendar days from now to date,
// evaluated in date's time zone. DST shifts do not change the result.
func DaysFrom(now, date time.Time) int {
	today := models.MidnightOf(now.In(date.Location()))
	d := models.MidnightOf(date)
	return int(math.Round(d.Sub(today).Hours() / 24))
}

// FriendlyDay renders the day label shown in a forecast row.
//
//   - today: "Today", or "Today, June 24" when todayContext is set
//   - tomorrow: "Tomorrow"
//   - within the week: the weekday name ("Saturday")
//   - otherwise: a short date ("Wed Jul 01")
func FriendlyDay(date, now time.Time, todayContext bool, loc Locale) string {
	days := DaysFrom(now, date)
	switch {
	case days == 0:
		if todayContext {
			return fmt.Sprintf("%s, %s", loc.Today(), MonthDay(date, loc))
		}
		return loc.Today()
	case days == 1:
		return loc.Tomorrow()
	case days > 1 && days < weekdayHorizon:
		return Weekday(date, loc)
	default:
		return ShortDate(date, loc)
	}
}

// Weekday returns the localized weekday name
func Weekday(date time.Time, loc Locale) string {
	return loc.names.weekdays[date.Weekday()]
}

// MonthDay returns the localized "June 24" form
func MonthDay(date time.Time, loc Locale) string {
	return fmt.Sprintf("%s %d", loc.names.months[date.Month()-1], date.Day())
}

// ShortDate returns the localized "Wed Jul 01" form
func ShortDate(date time.Time, loc Locale) string {
	return fmt.Sprintf("%s %s %02d",
		loc.names.shortWeekdays[date.Weekday()],
		loc.names.shortMonths[date.Month()-1],
		date.Day())
}
