package services

import (
	"strings"
	"time"
)

// birthdateLayouts are tried in order. Profiles come from several upstream
// systems, so both ISO and Chinese date notations show up.
var birthdateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"2006-1-2",
	"2006/1/2",
	"20060102",
	"2006年01月02日",
	"2006年1月2日",
	"2006-01-02T15:04:05Z07:00",
}

// CalculateAge computes a candidate's age in whole years at the reference
// time. The second return value is false when the birthdate cannot be parsed
// by any supported layout; no error is ever raised.
func CalculateAge(birthdate string, now time.Time) (int, bool) {
	birth, ok := parseBirthdate(birthdate)
	if !ok {
		return 0, false
	}

	age := now.Year() - birth.Year()
	// Birthday not reached yet this year.
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age, true
}

func parseBirthdate(birthdate string) (time.Time, bool) {
	s := strings.TrimSpace(birthdate)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range birthdateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
