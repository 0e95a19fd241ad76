package hours

import (
	"net/url"
	"regexp"

	"github.com/tendant/simple-admin-console/pkg/domain"
)

var clock = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ApplyHoursForm returns prev updated with the submitted form. Only days
// already in prev are read. A closed day keeps its previous times; an open
// day takes the submitted times, falling back to the previous ones when a
// field is empty or not a HH:MM clock time.
func ApplyHoursForm(prev domain.OpeningHours, form url.Values) domain.OpeningHours {
	next := make(domain.OpeningHours, len(prev))
	for day, old := range prev {
		d := DayHoursField(day)
		h := domain.DayHours{
			IsOpen: form.Get(d.IsOpen) != "",
			Open:   old.Open,
			Close:  old.Close,
		}
		if h.IsOpen {
			if v := form.Get(d.Open); clock.MatchString(v) {
				h.Open = v
			}
			if v := form.Get(d.Close); clock.MatchString(v) {
				h.Close = v
			}
		}
		next[day] = h
	}
	return next
}

// DayFields are the form field names of one day.
type DayFields struct {
	IsOpen string
	Open   string
	Close  string
}

// DayHoursField returns the form field names used for day.
func DayHoursField(day string) DayFields {
	return DayFields{
		IsOpen: day + ".isOpen",
		Open:   day + ".open",
		Close:  day + ".close",
	}
}
