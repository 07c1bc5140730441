package domain

import (
	"fmt"
	"strconv"
)

// NoDateLabel is shown in place of a missing date.
const NoDateLabel = "Sin fecha"

var (
	monthsLong = [...]string{
		"enero", "febrero", "marzo", "abril", "mayo", "junio",
		"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
	}
	monthsShort = [...]string{
		"ene", "feb", "mar", "abr", "may", "jun",
		"jul", "ago", "sept", "oct", "nov", "dic",
	}
)

// FormatLongDate renders d as "1 de marzo".
func FormatLongDate(d Date) string {
	if d.IsZero() {
		return NoDateLabel
	}
	return fmt.Sprintf("%d de %s", d.Day, monthsLong[d.Month-1])
}

// FormatShortDate renders d as "1 mar".
func FormatShortDate(d Date) string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d %s", d.Day, monthsShort[d.Month-1])
}

// FormatDueDate renders d as "1 mar 2025".
func FormatDueDate(d Date) string {
	if d.IsZero() {
		return NoDateLabel
	}
	return fmt.Sprintf("%d %s %d", d.Day, monthsShort[d.Month-1], d.Year)
}

// FormatHours renders h with one decimal, e.g. "1.5h".
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', 1, 64) + "h"
}

// FormatHoursLong renders h as "1 Hour" or "2.5 Hours".
func FormatHoursLong(h float64) string {
	unit := "Hours"
	if h == 1 {
		unit = "Hour"
	}
	return strconv.FormatFloat(h, 'f', -1, 64) + " " + unit
}
