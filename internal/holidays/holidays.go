// Package holidays answers public-holiday lookups for the countries the
// workbench supports, backed by the rickar/cal holiday definitions.
package holidays

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/au"
	"github.com/rickar/cal/v2/br"
	"github.com/rickar/cal/v2/ca"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/es"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/it"
	"github.com/rickar/cal/v2/jp"
	"github.com/rickar/cal/v2/mx"
	"github.com/rickar/cal/v2/nl"
	"github.com/rickar/cal/v2/us"

	"forecastwb/internal/errors"
)

// Holiday is one public holiday inside a queried range.
type Holiday struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// The au package ships per-state lists only; NSW stands in for the
// national set.
var countryHolidays = map[string][]*cal.Holiday{
	"AU": au.HolidaysNSW,
	"BR": br.Holidays,
	"CA": ca.Holidays,
	"DE": de.Holidays,
	"ES": es.Holidays,
	"FR": fr.Holidays,
	"GB": gb.Holidays,
	"IT": it.Holidays,
	"JP": jp.Holidays,
	"MX": mx.Holidays,
	"NL": nl.Holidays,
	"US": us.Holidays,
}

// SupportedCountries lists the accepted ISO country codes in sorted order.
func SupportedCountries() []string {
	codes := make([]string, 0, len(countryHolidays))
	for code := range countryHolidays {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Between returns the public holidays of a country falling inside the
// inclusive [start, end] range, in date order.
func Between(country string, start, end time.Time) ([]Holiday, error) {
	code := strings.ToUpper(strings.TrimSpace(country))
	if code == "" {
		return nil, errors.NewValidationError("country is required")
	}
	definitions, ok := countryHolidays[code]
	if !ok {
		return nil, errors.NewValidationError(
			fmt.Sprintf("unsupported country %q, provide an ISO code such as US, GB, or DE", country))
	}
	if start.After(end) {
		return nil, errors.NewValidationError("start_date must be before or equal to end_date")
	}

	calendar := &cal.Calendar{}
	calendar.AddHoliday(definitions...)

	var results []Holiday
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		actual, _, holiday := calendar.IsHoliday(d)
		if actual && holiday != nil {
			results = append(results, Holiday{
				Date: d.Format("2006-01-02"),
				Name: holiday.Name,
			})
		}
	}
	return results, nil
}
