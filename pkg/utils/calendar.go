// pkg/utils/calendar.go

package utils

import "time"

// Holiday - выходной день биржи (день и месяц без привязки к году)
type Holiday struct {
	Day   int
	Month time.Month
}

// DefaultHolidays - праздники, в которые торги не проводятся
var DefaultHolidays = []Holiday{
	{Day: 1, Month: time.January},
	{Day: 25, Month: time.December},
}

// Matches проверяет, приходится ли дата на праздник
func (h Holiday) Matches(t time.Time) bool {
	return t.Day() == h.Day && t.Month() == h.Month
}

// ExcludeWeekendAndHolidays считает количество нерабочих дней между двумя датами
func ExcludeWeekendAndHolidays(start, end time.Time, holidays []Holiday) int {
	daysToExclude := 0

	for current := start; current.Before(end); current = current.AddDate(0, 0, 1) {
		switch current.Weekday() {
		case time.Saturday, time.Sunday:
			daysToExclude++
		default:
			for _, holiday := range holidays {
				if holiday.Matches(current) {
					daysToExclude++
				}
			}
		}
	}

	return daysToExclude
}
