package domain

import (
	"encoding/json"
	"sort"
	"strings"
)

// OpeningHoursKey is the well-known config key holding the weekly schedule.
const OpeningHoursKey = "openingHours"

// Config is a free-form JSON configuration entry pinned to one tenant.
type Config struct {
	ID          string          `json:"_id"`
	ConfigKey   string          `json:"config_key"`
	TenantID    string          `json:"tenantId"`
	ConfigValue json.RawMessage `json:"config_value"`
}

// ConfigInput is the JSON body for creating or updating a config entry.
type ConfigInput struct {
	ConfigKey   string          `json:"config_key"`
	TenantID    string          `json:"tenantId"`
	ConfigValue json.RawMessage `json:"config_value"`
}

// DayHours is one weekday's schedule. Open and Close are "HH:MM".
type DayHours struct {
	IsOpen bool   `json:"isOpen"`
	Open   string `json:"open"`
	Close  string `json:"close"`
}

// OpeningHours maps a weekday name to its schedule.
type OpeningHours map[string]DayHours

var weekdayOrder = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Days returns the schedule's keys with weekdays first in calendar order,
// followed by any other keys sorted alphabetically.
func (h OpeningHours) Days() []string {
	days := make([]string, 0, len(h))
	seen := make(map[string]bool, len(h))
	for _, wd := range weekdayOrder {
		for key := range h {
			if strings.EqualFold(key, wd) && !seen[key] {
				days = append(days, key)
				seen[key] = true
			}
		}
	}

	var rest []string
	for key := range h {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(days, rest...)
}
