// Package tradingdays answers business-day questions for an exchange.
package tradingdays

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// Calendar wraps an exchange calendar. When the exchange is unknown it falls
// back to plain Monday to Friday weeks.
type Calendar struct {
	cal *calendar.Calendar
	loc *time.Location
}

var suffixMIC = map[string]string{
	".L":  "xlon",
	".PA": "xpar",
	".DE": "xfra",
	".AS": "xams",
	".MI": "xmil",
	".TO": "xtse",
	".T":  "xtks",
	".HK": "xhkg",
	".AX": "xasx",
}

// ForSymbol picks the listing exchange from the ticker suffix, NYSE by default.
func ForSymbol(symbol string) *Calendar {
	mic := "xnys"
	if i := strings.LastIndexByte(symbol, '.'); i > 0 {
		if m, ok := suffixMIC[strings.ToUpper(symbol[i:])]; ok {
			mic = m
		}
	}
	return New(mic)
}

func New(mic string) *Calendar {
	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}
	if cal == nil {
		return &Calendar{loc: time.UTC}
	}
	loc := cal.Loc
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{cal: cal, loc: loc}
}

func (c *Calendar) IsTradingDay(t time.Time) bool {
	t = t.In(c.loc)
	if c.cal == nil {
		wd := t.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return c.cal.IsBusinessDay(t)
}

// Back returns the n trading days on or before from, most recent first.
func (c *Calendar) Back(from time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	d := midday(from, c.loc)
	for len(out) < n {
		if c.IsTradingDay(d) {
			out = append(out, d)
		}
		d = d.AddDate(0, 0, -1)
	}
	return out
}

// Forward returns the date n trading days after from.
func (c *Calendar) Forward(from time.Time, n int) time.Time {
	d := midday(from, c.loc)
	for n > 0 {
		d = d.AddDate(0, 0, 1)
		if c.IsTradingDay(d) {
			n--
		}
	}
	return d
}

// Between counts trading days in (from, to]. It is negative when to is before from.
func (c *Calendar) Between(from, to time.Time) int {
	a, b := midday(from, c.loc), midday(to, c.loc)
	sign := 1
	if b.Before(a) {
		a, b, sign = b, a, -1
	}
	n := 0
	for d := a.AddDate(0, 0, 1); !d.After(b); d = d.AddDate(0, 0, 1) {
		if c.IsTradingDay(d) {
			n++
		}
	}
	return sign * n
}

// midday pins t to noon local time so DST shifts never change the date.
func midday(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, loc)
}
