package metadata

import "strings"

// Resolution parses "WxH" text and classifies it. A half that does not parse
// counts as zero.
func Resolution(text string) ResolutionResult {
	w, h, _ := strings.Cut(strings.TrimSpace(text), "x")
	width, _ := parseInt(w)
	height, _ := parseInt(h)
	return ResolutionResult{
		Width:       width,
		Height:      height,
		Resolution:  resolutionText(width, height),
		Quality:     classifyQuality(height),
		AspectRatio: aspectRatio(width, height),
	}
}

// ClassifyQuality exposes the height tiers used by Resolution.
func ClassifyQuality(height int64) Quality {
	return classifyQuality(height)
}
