package duration

import (
	"regexp"
	"strconv"
	"strings"
)

// Infinite marks a time span with no known end, e.g. a finished project.
const Infinite int64 = -1

const (
	minute int64 = 60
	hour         = minute * 60
	day          = hour * 24
	week         = day * 7
)

var groupRe = regexp.MustCompile(`(\d+)([wdhm])`)

// Parse converts a compact span like "2d6h" or "1w 3d 30m" to seconds.
// Unknown characters are skipped, empty or fully invalid input gives 0.
func Parse(text string) int64 {
	s := strings.ToLower(strings.Join(strings.Fields(text), ""))

	var total int64

	for _, m := range groupRe.FindAllStringSubmatch(s, -1) {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}

		switch m[2] {
		case "w":
			total += n * week
		case "d":
			total += n * day
		case "h":
			total += n * hour
		case "m":
			total += n * minute
		}
	}

	return total
}

// Format renders seconds as "1w 2d 3h 4m", omitting zero components.
// Sub-minute remainders are dropped, so Parse(Format(x)) floors x to
// whole minutes.
func Format(seconds int64) string {
	if seconds <= 0 {
		return "0m"
	}

	parts := make([]string, 0, 4)

	for _, u := range []struct {
		size int64
		suff string
	}{{week, "w"}, {day, "d"}, {hour, "h"}, {minute, "m"}} {
		if n := seconds / u.size; n > 0 {
			parts = append(parts, strconv.FormatInt(n, 10)+u.suff)
			seconds -= n * u.size
		}
	}

	if len(parts) == 0 {
		return "0m"
	}

	return strings.Join(parts, " ")
}

// HumanLeft is Format with a placeholder for the Infinite sentinel.
func HumanLeft(seconds int64) string {
	if seconds == Infinite {
		return "--"
	}

	return Format(seconds)
}
