package builtin

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Users phrase dates however they like ("tomorrow", "next Friday",
// "February 15th") and the model is instructed to pass them through
// untouched, so the parsing burden lands here.

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var monthDayPattern = regexp.MustCompile(`^([a-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?$`)

// parseDate resolves a natural-language date relative to now. An empty input
// means today.
func parseDate(input string, now time.Time) (time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	s := strings.ToLower(strings.TrimSpace(input))

	switch s {
	case "", "today", "tonight", "this evening":
		return today, nil
	case "tomorrow", "tomorrow evening", "tomorrow night":
		return today.AddDate(0, 0, 1), nil
	}

	// ISO dates pass straight through
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t, nil
	}

	// "friday", "this friday", "next friday"
	next := strings.HasPrefix(s, "next ")
	day := strings.TrimPrefix(strings.TrimPrefix(s, "next "), "this ")
	day = strings.TrimSuffix(day, " evening")
	day = strings.TrimSuffix(day, " night")
	if wd, ok := weekdays[day]; ok {
		delta := (int(wd) - int(today.Weekday()) + 7) % 7
		if delta == 0 && next {
			delta = 7
		}
		if delta == 0 {
			return today, nil
		}
		return today.AddDate(0, 0, delta), nil
	}

	// "february 15th", "feb 15"
	if m := monthDayPattern.FindStringSubmatch(s); m != nil {
		if month, ok := parseMonth(m[1]); ok {
			dayNum, _ := strconv.Atoi(m[2])
			candidate := time.Date(now.Year(), month, dayNum, 0, 0, 0, 0, now.Location())
			if candidate.Before(today) {
				candidate = candidate.AddDate(1, 0, 0)
			}
			if candidate.Day() != dayNum {
				return time.Time{}, fmt.Errorf("invalid day of month: %q", input)
			}
			return candidate, nil
		}
	}

	return time.Time{}, fmt.Errorf("could not understand date: %q", input)
}

func parseMonth(s string) (time.Month, bool) {
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if s == name || s == name[:3] {
			return m, true
		}
	}
	return 0, false
}

var clockPattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)

// parseTime normalizes "7pm", "6:30", "19:00", or a daypart word to HH:MM.
// An empty input defaults to 19:00, the most common booking time.
func parseTime(input string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(input))

	switch s {
	case "":
		return "19:00", nil
	case "morning":
		return "10:00", nil
	case "noon", "lunch", "lunchtime", "midday":
		return "12:00", nil
	case "afternoon":
		return "15:00", nil
	case "evening", "dinner", "dinnertime", "tonight":
		return "19:00", nil
	case "night", "late":
		return "21:00", nil
	}

	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("could not understand time: %q", input)
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	switch m[3] {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	default:
		// bare "6:30" at a restaurant almost always means evening
		if hour >= 1 && hour <= 7 {
			hour += 12
		}
	}
	if hour > 23 || minute > 59 {
		return "", fmt.Errorf("invalid time: %q", input)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}
