package metadata

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"vidmeta/internal/media/ffprobe"
)

const sampleReport = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_long_name": "H.264 / AVC", "profile": "High",
     "codec_type": "video", "width": 1920, "height": 1080, "display_aspect_ratio": "16:9",
     "pix_fmt": "yuv420p", "level": 40, "color_space": "bt709", "color_range": "tv",
     "r_frame_rate": "30000/1001", "bit_rate": "4500000"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "sample_rate": "48000",
     "channels": 2, "channel_layout": "stereo", "bit_rate": "128000"},
    {"index": 2, "codec_name": "ac3", "codec_type": "audio", "sample_rate": "44100", "channels": 6},
    {"index": 3, "codec_name": "mov_text", "codec_type": "subtitle"},
    {"index": 4, "codec_name": "bin_data", "codec_type": "data"}
  ],
  "format": {
    "filename": "sample.mp4", "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
    "format_long_name": "QuickTime / MOV", "duration": "7325.500000",
    "size": "4123456789", "bit_rate": "4634000"
  }
}`

func mustReport(t *testing.T, payload string) ffprobe.Report {
	t.Helper()
	report, err := ffprobe.ParseReport([]byte(payload))
	if err != nil {
		t.Fatalf("ParseReport: %v", err)
	}
	return report
}

func deref[T any](t *testing.T, name string, v *T) T {
	t.Helper()
	if v == nil {
		t.Fatalf("%s is nil", name)
	}
	return *v
}

func TestExtractFullReport(t *testing.T) {
	md := Extract(mustReport(t, sampleReport), Options{})

	if got := deref(t, "filename", md.Filename); got != "sample.mp4" {
		t.Fatalf("filename = %q", got)
	}
	if md.DurationSeconds != 7325.5 || md.DurationFormatted != "02:02:05" {
		t.Fatalf("duration = %v %q", md.DurationSeconds, md.DurationFormatted)
	}
	if md.SizeBytes != 4123456789 || md.SizeMB != "3932.43" {
		t.Fatalf("size = %d %q", md.SizeBytes, md.SizeMB)
	}
	if md.Bitrate != 4634000 || md.BitrateKbps != "4634" {
		t.Fatalf("bitrate = %d %q", md.Bitrate, md.BitrateKbps)
	}
	if md.StreamsCount != (StreamCounts{Total: 5, Video: 1, Audio: 2, Subtitle: 1}) {
		t.Fatalf("streams_count = %+v", md.StreamsCount)
	}

	video := md.Video
	if video == nil {
		t.Fatal("expected video sub-record")
	}
	if video.Resolution != "1920x1080" || video.AspectRatio != "16:9" {
		t.Fatalf("video geometry = %q %q", video.Resolution, video.AspectRatio)
	}
	if fps := deref(t, "fps", video.FPS); fps != 29.97 {
		t.Fatalf("fps = %v, want 29.97", fps)
	}
	if got := deref(t, "video kbps", video.BitrateKbps); got != "4500" {
		t.Fatalf("video kbps = %q", got)
	}
	if got := deref(t, "level", video.Level); got != 40 {
		t.Fatalf("level = %d", got)
	}

	audio := md.Audio
	if audio == nil {
		t.Fatal("expected audio sub-record")
	}
	if got := deref(t, "codec", audio.Codec); got != "aac" {
		t.Fatalf("audio codec = %q, want first audio stream", got)
	}
	if got := deref(t, "sample_rate_khz", audio.SampleRateKHz); got != "48.0" {
		t.Fatalf("sample_rate_khz = %q", got)
	}
	if got := deref(t, "channels", audio.Channels); got != 2 {
		t.Fatalf("channels = %d", got)
	}
	if got := deref(t, "audio kbps", audio.BitrateKbps); got != "128" {
		t.Fatalf("audio kbps = %q", got)
	}
}

func TestExtractEmptyReport(t *testing.T) {
	md := Extract(mustReport(t, `{}`), Options{})
	if md.Video != nil || md.Audio != nil {
		t.Fatalf("expected nil sub-records, got video=%v audio=%v", md.Video, md.Audio)
	}
	if md.StreamsCount != (StreamCounts{}) {
		t.Fatalf("expected zero counts, got %+v", md.StreamsCount)
	}
	if md.DurationSeconds != 0 || md.DurationFormatted != "00:00:00" {
		t.Fatalf("duration = %v %q", md.DurationSeconds, md.DurationFormatted)
	}
	if md.SizeMB != "0.00" || md.BitrateKbps != "0" {
		t.Fatalf("size/bitrate = %q %q", md.SizeMB, md.BitrateKbps)
	}

	encoded, err := json.Marshal(md)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, fragment := range []string{`"video":null`, `"audio":null`, `"filename":null`} {
		if !strings.Contains(string(encoded), fragment) {
			t.Fatalf("expected %s in %s", fragment, encoded)
		}
	}
}

func TestExtractUnparsableFormatFieldsDefaultToZero(t *testing.T) {
	md := Extract(mustReport(t, `{"format":{"duration":"N/A","size":"","bit_rate":"abc"}}`), Options{})
	if md.DurationSeconds != 0 || md.SizeBytes != 0 || md.Bitrate != 0 {
		t.Fatalf("expected zero defaults, got %+v", md)
	}
	if md.DurationFormatted != "00:00:00" {
		t.Fatalf("formatted = %q", md.DurationFormatted)
	}
}

func TestExtractBitrateDefaultsDiffer(t *testing.T) {
	md := Extract(mustReport(t, `{
	  "streams": [{"codec_type": "video", "width": 640, "height": 360},
	              {"codec_type": "audio"}],
	  "format": {}
	}`), Options{})

	if md.Bitrate != 0 || md.BitrateKbps != "0" {
		t.Fatalf("container bitrate = %d %q", md.Bitrate, md.BitrateKbps)
	}
	if md.Video.Bitrate != nil || md.Video.BitrateKbps != nil {
		t.Fatalf("video bitrate should be null, got %v %v", md.Video.Bitrate, md.Video.BitrateKbps)
	}
	if md.Audio.Bitrate != nil || md.Audio.BitrateKbps != nil || md.Audio.SampleRateKHz != nil {
		t.Fatalf("audio numeric fields should be null, got %+v", md.Audio)
	}
	if md.Video.AspectRatio != "N/A" {
		t.Fatalf("aspect ratio fallback = %q", md.Video.AspectRatio)
	}
	if md.Video.FPS != nil {
		t.Fatalf("fps should be null without a frame rate, got %v", *md.Video.FPS)
	}
}

func TestExtractFrameRates(t *testing.T) {
	cases := []struct {
		rate string
		want float64
	}{
		{rate: "30000/1001", want: 29.97},
		{rate: "24000/1001", want: 23.98},
		{rate: "25/1", want: 25},
		{rate: "30", want: 30},
		{rate: "60/0", want: 60},
	}
	for _, tc := range cases {
		md := Extract(mustReport(t, `{"streams":[{"codec_type":"video","r_frame_rate":"`+tc.rate+`"}]}`), Options{})
		got := deref(t, "fps", md.Video.FPS)
		if got != tc.want {
			t.Fatalf("fps(%q) = %v, want %v", tc.rate, got, tc.want)
		}
	}
}

func TestExtractRawKey(t *testing.T) {
	report := mustReport(t, sampleReport)

	without, err := json.Marshal(Extract(report, Options{}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if bytes.Contains(without, []byte(`"raw"`)) {
		t.Fatalf("raw key present without IncludeRaw: %s", without)
	}

	md := Extract(report, Options{IncludeRaw: true})
	if !bytes.Equal(md.Raw, []byte(strings.TrimSpace(sampleReport))) {
		t.Fatalf("raw payload differs from input")
	}
	with, err := json.Marshal(md)
	if err != nil {
		t.Fatalf("marshal with raw: %v", err)
	}
	if !bytes.Contains(with, []byte(`"raw":{"streams":`)) {
		t.Fatalf("raw key missing: %s", with)
	}
}

func TestExtractDeterministic(t *testing.T) {
	report := mustReport(t, sampleReport)
	first, err := json.Marshal(Extract(report, Options{IncludeRaw: true}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i := 0; i < 5; i++ {
		next, err := json.Marshal(Extract(report, Options{IncludeRaw: true}))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !bytes.Equal(first, next) {
			t.Fatalf("output changed between runs:\n%s\n%s", first, next)
		}
	}
}
