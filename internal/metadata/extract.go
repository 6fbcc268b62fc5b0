package metadata

import "vidmeta/internal/media/ffprobe"

const (
	kindVideo    = "video"
	kindAudio    = "audio"
	kindSubtitle = "subtitle"
)

// Extract derives the full metadata record from a parsed probe report.
func Extract(report ffprobe.Report, opts Options) Metadata {
	format := ffprobe.Format{}
	if report.Format != nil {
		format = *report.Format
	}

	seconds := floatOrZero(format.Duration)
	size := intOrZero(format.Size)
	bitrate := intOrZero(format.BitRate)

	md := Metadata{
		Filename:          optionalText(format.Filename),
		FormatName:        optionalText(format.FormatName),
		FormatLongName:    optionalText(format.FormatLongName),
		DurationSeconds:   seconds,
		DurationFormatted: formatClock(splitClock(seconds)),
		SizeBytes:         size,
		SizeMB:            megabytes(size),
		Bitrate:           bitrate,
		BitrateKbps:       kbps(bitrate),
		StreamsCount: StreamCounts{
			Total:    len(report.Streams),
			Video:    report.CountStreams(kindVideo),
			Audio:    report.CountStreams(kindAudio),
			Subtitle: report.CountStreams(kindSubtitle),
		},
	}
	if stream, ok := report.FirstStream(kindVideo); ok {
		md.Video = videoInfo(stream)
	}
	if stream, ok := report.FirstStream(kindAudio); ok {
		md.Audio = audioInfo(stream)
	}
	if opts.IncludeRaw {
		md.Raw = report.RawJSON()
	}
	return md
}

func videoInfo(stream ffprobe.Stream) *VideoInfo {
	width := intOrZero(stream.Width)
	height := intOrZero(stream.Height)
	bitrate := optionalInt(stream.BitRate)
	return &VideoInfo{
		Codec:         optionalText(stream.CodecName),
		CodecLongName: optionalText(stream.CodecLongName),
		Profile:       optionalText(stream.Profile),
		Width:         width,
		Height:        height,
		Resolution:    resolutionText(width, height),
		AspectRatio:   textOr(stream.DisplayAspectRatio, notAvailable),
		FPS:           frameRate(stream.RFrameRate),
		Bitrate:       bitrate,
		BitrateKbps:   optionalKbps(bitrate),
		PixelFormat:   optionalText(stream.PixFmt),
		Level:         optionalInt(stream.Level),
		ColorSpace:    optionalText(stream.ColorSpace),
		ColorRange:    optionalText(stream.ColorRange),
	}
}

func audioInfo(stream ffprobe.Stream) *AudioInfo {
	bitrate := optionalInt(stream.BitRate)
	rate := optionalInt(stream.SampleRate)
	var khz *string
	if rate != nil {
		text := kilohertz(*rate)
		khz = &text
	}
	return &AudioInfo{
		Codec:         optionalText(stream.CodecName),
		CodecLongName: optionalText(stream.CodecLongName),
		SampleRate:    rate,
		SampleRateKHz: khz,
		Channels:      optionalInt(stream.Channels),
		ChannelLayout: optionalText(stream.ChannelLayout),
		Bitrate:       bitrate,
		BitrateKbps:   optionalKbps(bitrate),
	}
}

// optionalKbps keeps per-stream bitrates nullable, unlike the container
// bitrate which defaults to zero.
func optionalKbps(bitrate *int64) *string {
	if bitrate == nil {
		return nil
	}
	text := kbps(*bitrate)
	return &text
}
