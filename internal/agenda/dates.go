package agenda

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/franklab/frank/internal/core"
)

// French calendar tables used for parsing and rendering.
var (
	weekdays = map[string]time.Weekday{
		"lundi":    time.Monday,
		"mardi":    time.Tuesday,
		"mercredi": time.Wednesday,
		"jeudi":    time.Thursday,
		"vendredi": time.Friday,
		"samedi":   time.Saturday,
		"dimanche": time.Sunday,
	}

	dayNames = [7]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}

	monthNames = [12]string{
		"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre",
	}
)

var (
	isoDate  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	inDays   = regexp.MustCompile(`dans\s+(\d+)\s+jours?`)
	clockHM  = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	frenchHM = regexp.MustCompile(`^(\d{1,2})h(\d{2})?$`)
)

// NormalizeDate resolves a natural-language French date expression to
// "YYYY-MM-DD" relative to now. Already-normalized dates pass through
// unchanged, so normalization is idempotent.
func NormalizeDate(raw string, now time.Time) (string, error) {
	expr := strings.ToLower(strings.TrimSpace(raw))
	if expr == "" {
		return "", core.ErrInvalidDate
	}

	if isoDate.MatchString(expr) {
		if _, err := time.Parse("2006-01-02", expr); err != nil {
			return "", core.ErrInvalidDate
		}
		return expr, nil
	}

	switch {
	case strings.Contains(expr, "aujourd'hui") || strings.Contains(expr, "aujourdhui"):
		return now.Format("2006-01-02"), nil
	case strings.Contains(expr, "après-demain") || strings.Contains(expr, "apres-demain") || strings.Contains(expr, "après demain"):
		return now.AddDate(0, 0, 2).Format("2006-01-02"), nil
	case strings.Contains(expr, "demain"):
		return now.AddDate(0, 0, 1).Format("2006-01-02"), nil
	}

	if m := inDays.FindStringSubmatch(expr); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return "", core.ErrInvalidDate
		}
		return now.AddDate(0, 0, n).Format("2006-01-02"), nil
	}

	for name, wd := range weekdays {
		if !strings.Contains(expr, name) {
			continue
		}
		delta := (int(wd) - int(now.Weekday()) + 7) % 7
		// a bare weekday name landing on today means next week;
		// "prochain" keeps the literal computation
		if delta == 0 && !strings.Contains(expr, "prochain") {
			delta = 7
		}
		return now.AddDate(0, 0, delta).Format("2006-01-02"), nil
	}

	return "", core.ErrInvalidDate
}

// NormalizeTime resolves "17h30", "17h" and "17:30" style expressions
// to "HH:MM". An empty expression defaults to 09:00.
func NormalizeTime(raw string) (string, error) {
	expr := strings.ToLower(strings.TrimSpace(raw))
	if expr == "" {
		return "09:00", nil
	}

	var hour, minute int
	if m := clockHM.FindStringSubmatch(expr); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
	} else if m := frenchHM.FindStringSubmatch(expr); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
	} else {
		return "", core.ErrInvalidTime
	}

	if hour > 23 || minute > 59 {
		return "", core.ErrInvalidTime
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// formatDate renders "2025-09-05" as "vendredi 5 septembre 2025".
func formatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s %d %s %d", dayNames[t.Weekday()], t.Day(), monthNames[t.Month()-1], t.Year())
}
