package metadata

import "math"

// Duration decomposes a bare decimal-seconds value. Unlike Extract, text that
// does not parse is not defaulted: every numeric field becomes NaN and the
// formatted clock reads "NaN:NaN:NaN". Infinite values are treated the same.
func Duration(text string) DurationResult {
	seconds, ok := parseFloat(text)
	if !ok {
		seconds = math.NaN()
	}
	hours, minutes, secs := splitClock(seconds)
	return DurationResult{
		DurationSeconds:   seconds,
		DurationFormatted: formatClock(hours, minutes, secs),
		Hours:             hours,
		Minutes:           minutes,
		Seconds:           secs,
	}
}
