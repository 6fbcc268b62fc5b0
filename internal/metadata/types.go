package metadata

import (
	"encoding/json"
	"math"
)

// Quality is a coarse classification of vertical resolution.
type Quality string

const (
	Quality4K     Quality = "4K"
	Quality2K     Quality = "2K"
	QualityFullHD Quality = "Full HD"
	QualityHD     Quality = "HD"
	QualitySD     Quality = "SD"
	QualityLow    Quality = "Low"
)

// Options controls full extraction.
type Options struct {
	// IncludeRaw attaches the verbatim probe report under the "raw" key.
	IncludeRaw bool
}

// Metadata is the full derived record for one probe report.
type Metadata struct {
	Filename          *string         `json:"filename"`
	FormatName        *string         `json:"format_name"`
	FormatLongName    *string         `json:"format_long_name"`
	DurationSeconds   float64         `json:"duration_seconds"`
	DurationFormatted string          `json:"duration_formatted"`
	SizeBytes         int64           `json:"size_bytes"`
	SizeMB            string          `json:"size_mb"`
	Bitrate           int64           `json:"bitrate"`
	BitrateKbps       string          `json:"bitrate_kbps"`
	Video             *VideoInfo      `json:"video"`
	Audio             *AudioInfo      `json:"audio"`
	StreamsCount      StreamCounts    `json:"streams_count"`
	Raw               json.RawMessage `json:"raw,omitempty"`
}

// VideoInfo summarizes the first video stream.
type VideoInfo struct {
	Codec         *string  `json:"codec"`
	CodecLongName *string  `json:"codec_long_name"`
	Profile       *string  `json:"profile"`
	Width         int64    `json:"width"`
	Height        int64    `json:"height"`
	Resolution    string   `json:"resolution"`
	AspectRatio   string   `json:"aspect_ratio"`
	FPS           *float64 `json:"fps"`
	Bitrate       *int64   `json:"bitrate"`
	BitrateKbps   *string  `json:"bitrate_kbps"`
	PixelFormat   *string  `json:"pixel_format"`
	Level         *int64   `json:"level"`
	ColorSpace    *string  `json:"color_space"`
	ColorRange    *string  `json:"color_range"`
}

// AudioInfo summarizes the first audio stream.
type AudioInfo struct {
	Codec         *string `json:"codec"`
	CodecLongName *string `json:"codec_long_name"`
	SampleRate    *int64  `json:"sample_rate"`
	SampleRateKHz *string `json:"sample_rate_khz"`
	Channels      *int64  `json:"channels"`
	ChannelLayout *string `json:"channel_layout"`
	Bitrate       *int64  `json:"bitrate"`
	BitrateKbps   *string `json:"bitrate_kbps"`
}

// StreamCounts tallies streams by codec type.
type StreamCounts struct {
	Total    int `json:"total"`
	Video    int `json:"video"`
	Audio    int `json:"audio"`
	Subtitle int `json:"subtitle"`
}

// DurationResult is the duration-only output. The components are whole
// numbers stored as float64 so that an unparsable input carries NaN through
// every field.
type DurationResult struct {
	DurationSeconds   float64 `json:"duration_seconds"`
	DurationFormatted string  `json:"duration_formatted"`
	Hours             float64 `json:"hours"`
	Minutes           float64 `json:"minutes"`
	Seconds           float64 `json:"seconds"`
}

// MarshalJSON encodes non-finite numbers as null; encoding/json rejects them.
func (d DurationResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		DurationSeconds   *float64 `json:"duration_seconds"`
		DurationFormatted string   `json:"duration_formatted"`
		Hours             *float64 `json:"hours"`
		Minutes           *float64 `json:"minutes"`
		Seconds           *float64 `json:"seconds"`
	}{
		DurationSeconds:   finite(d.DurationSeconds),
		DurationFormatted: d.DurationFormatted,
		Hours:             finite(d.Hours),
		Minutes:           finite(d.Minutes),
		Seconds:           finite(d.Seconds),
	})
}

// ResolutionResult is the resolution-only output.
type ResolutionResult struct {
	Width       int64   `json:"width"`
	Height      int64   `json:"height"`
	Resolution  string  `json:"resolution"`
	Quality     Quality `json:"quality"`
	AspectRatio string  `json:"aspect_ratio"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
