package metadata

import (
	"math"
	"strconv"
	"strings"

	"vidmeta/internal/media/ffprobe"
)

const (
	bytesPerMegabyte = 1024 * 1024
	notAvailable     = "N/A"
)

// parseFloat parses a finite decimal. Blank, malformed, and non-finite text
// report ok=false.
func parseFloat(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseInt parses an integer, truncating decimal text such as "128000.0".
func parseInt(text string) (int64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		return v, true
	}
	f, ok := parseFloat(text)
	if !ok || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(math.Trunc(f)), true
}

func floatOrZero(v ffprobe.Value) float64 {
	f, _ := parseFloat(v.String())
	return f
}

func intOrZero(v ffprobe.Value) int64 {
	i, _ := parseInt(v.String())
	return i
}

func optionalInt(v ffprobe.Value) *int64 {
	if !v.Present() {
		return nil
	}
	i, ok := parseInt(v.String())
	if !ok {
		return nil
	}
	return &i
}

func optionalText(v ffprobe.Value) *string {
	if !v.Present() {
		return nil
	}
	s := v.String()
	return &s
}

func textOr(v ffprobe.Value, fallback string) string {
	if !v.Present() {
		return fallback
	}
	return v.String()
}

// roundTo rounds half away from zero at the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	rounded := math.Round(v*scale) / scale
	if rounded == 0 {
		return 0
	}
	return rounded
}

// formatFixed renders v with exactly decimals digits after the point.
func formatFixed(v float64, decimals int) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	if math.IsInf(v, 0) {
		if v > 0 {
			return "Infinity"
		}
		return "-Infinity"
	}
	return strconv.FormatFloat(roundTo(v, decimals), 'f', decimals, 64)
}

func kbps(bitsPerSecond int64) string {
	return formatFixed(float64(bitsPerSecond)/1000, 0)
}

func megabytes(size int64) string {
	return formatFixed(float64(size)/bytesPerMegabyte, 2)
}

func kilohertz(rate int64) string {
	return formatFixed(float64(rate)/1000, 1)
}

// splitClock decomposes seconds into whole hours, minutes, and seconds. NaN
// input yields NaN components.
func splitClock(total float64) (hours, minutes, seconds float64) {
	hours = math.Floor(total / 3600)
	minutes = math.Floor(math.Mod(total, 3600) / 60)
	seconds = math.Floor(math.Mod(total, 60))
	return hours, minutes, seconds
}

// formatClock renders HH:MM:SS with a two digit minimum per component.
func formatClock(hours, minutes, seconds float64) string {
	return padClock(hours) + ":" + padClock(minutes) + ":" + padClock(seconds)
}

func padClock(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	text := strconv.FormatFloat(v, 'f', 0, 64)
	if len(text) < 2 {
		text = strings.Repeat("0", 2-len(text)) + text
	}
	return text
}

// frameRate converts "num/den" or a plain decimal to frames per second.
// Fractions are rounded to two decimals; a zero or missing denominator falls
// back to the numerator.
func frameRate(v ffprobe.Value) *float64 {
	if !v.Present() {
		return nil
	}
	num, den, fraction := strings.Cut(v.String(), "/")
	n, ok := parseFloat(num)
	if !ok {
		return nil
	}
	if !fraction {
		return &n
	}
	d, ok := parseFloat(den)
	if !ok || d == 0 {
		return &n
	}
	fps := roundTo(n/d, 2)
	return &fps
}

// aspectRatio renders width/height with two decimals.
func aspectRatio(width, height int64) string {
	if height == 0 {
		return notAvailable
	}
	return formatFixed(float64(width)/float64(height), 2)
}

// classifyQuality maps a height to its tier; the first matching threshold wins.
func classifyQuality(height int64) Quality {
	switch {
	case height >= 2160:
		return Quality4K
	case height >= 1440:
		return Quality2K
	case height >= 1080:
		return QualityFullHD
	case height >= 720:
		return QualityHD
	case height >= 480:
		return QualitySD
	default:
		return QualityLow
	}
}

func resolutionText(width, height int64) string {
	return strconv.FormatInt(width, 10) + "x" + strconv.FormatInt(height, 10)
}
