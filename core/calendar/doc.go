// Package calendar provides business-day arithmetic on calendar dates.
// A business day is Monday through Friday; there is no holiday calendar.
package calendar
