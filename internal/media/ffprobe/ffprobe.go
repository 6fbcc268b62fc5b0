package ffprobe

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"vidmeta/internal/services"
)

const defaultBinary = "ffprobe"

// Report represents the parsed output from an ffprobe inspection. Either
// section may be missing from the payload.
type Report struct {
	Format  *Format  `json:"format,omitempty"`
	Streams []Stream `json:"streams,omitempty"`
	raw     []byte
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index              Value `json:"index"`
	CodecName          Value `json:"codec_name"`
	CodecLongName      Value `json:"codec_long_name"`
	Profile            Value `json:"profile"`
	CodecType          Value `json:"codec_type"`
	Width              Value `json:"width"`
	Height             Value `json:"height"`
	DisplayAspectRatio Value `json:"display_aspect_ratio"`
	PixFmt             Value `json:"pix_fmt"`
	Level              Value `json:"level"`
	ColorSpace         Value `json:"color_space"`
	ColorRange         Value `json:"color_range"`
	RFrameRate         Value `json:"r_frame_rate"`
	AvgFrameRate       Value `json:"avg_frame_rate"`
	BitRate            Value `json:"bit_rate"`
	SampleRate         Value `json:"sample_rate"`
	Channels           Value `json:"channels"`
	ChannelLayout      Value `json:"channel_layout"`
	Duration           Value `json:"duration"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename       Value `json:"filename"`
	NBStreams      Value `json:"nb_streams"`
	FormatName     Value `json:"format_name"`
	FormatLongName Value `json:"format_long_name"`
	Duration       Value `json:"duration"`
	Size           Value `json:"size"`
	BitRate        Value `json:"bit_rate"`
	ProbeScore     Value `json:"probe_score"`
}

// ParseReport decodes an ffprobe JSON dump and retains the verbatim payload.
func ParseReport(data []byte) (Report, error) {
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return Report{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	report.raw = append([]byte(nil), bytes.TrimSpace(data)...)
	return report, nil
}

// RawJSON returns the verbatim ffprobe payload. Reports built in code rather
// than decoded fall back to their re-encoded form.
func (r Report) RawJSON() json.RawMessage {
	if len(r.raw) > 0 {
		return append(json.RawMessage(nil), r.raw...)
	}
	encoded, err := json.Marshal(r)
	if err != nil {
		return json.RawMessage("{}")
	}
	return encoded
}

// FirstStream returns the first stream whose codec_type matches kind.
func (r Report) FirstStream(kind string) (Stream, bool) {
	for _, stream := range r.Streams {
		if stream.CodecType.String() == kind {
			return stream, true
		}
	}
	return Stream{}, false
}

// CountStreams returns the number of streams with the given codec_type.
func (r Report) CountStreams(kind string) int {
	count := 0
	for _, stream := range r.Streams {
		if stream.CodecType.String() == kind {
			count++
		}
	}
	return count
}

// Client executes ffprobe queries against local files.
type Client struct {
	Binary  string
	Timeout time.Duration
}

// New returns a client for the given binary. A zero timeout disables the
// per-call deadline.
func New(binary string, timeout time.Duration) *Client {
	return &Client{Binary: binary, Timeout: timeout}
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func (c *Client) Inspect(ctx context.Context, path string) (Report, error) {
	output, err := c.run(ctx, "inspect", path, "-show_format", "-show_streams", "-of", "json")
	if err != nil {
		return Report{}, err
	}
	report, err := ParseReport(output)
	if err != nil {
		return Report{}, services.Wrap(services.ErrExternalTool, "ffprobe", "inspect", "decode output", err)
	}
	return report, nil
}

// Duration returns the container duration exactly as ffprobe prints it.
func (c *Client) Duration(ctx context.Context, path string) (string, error) {
	output, err := c.run(ctx, "duration", path, "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1")
	if err != nil {
		return "", err
	}
	return firstLine(output), nil
}

// Resolution returns the first video stream's dimensions as "WxH", or an
// empty string when the file has no video stream.
func (c *Client) Resolution(ctx context.Context, path string) (string, error) {
	output, err := c.run(ctx, "resolution", path, "-select_streams", "v:0", "-show_entries", "stream=width,height", "-of", "csv=s=x:p=0")
	if err != nil {
		return "", err
	}
	return strings.TrimRight(firstLine(output), "x"), nil
}

func (c *Client) run(ctx context.Context, operation, path string, query ...string) ([]byte, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrValidation, "ffprobe", operation, "empty path", nil)
	}
	binary := defaultBinary
	if c != nil && strings.TrimSpace(c.Binary) != "" {
		binary = strings.TrimSpace(c.Binary)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if c != nil && c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	args := append([]string{"-v", "error", "-hide_banner"}, query...)
	args = append(args, "--", path)
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Join(err, ctxErr)
		}
		return nil, services.Wrap(services.ErrExternalTool, "ffprobe", operation, strings.TrimSpace(stderr.String()), err)
	}
	return output, nil
}

func firstLine(output []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line
		}
	}
	return ""
}
