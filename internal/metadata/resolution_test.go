package metadata

import (
	"errors"
	"testing"

	"vidmeta/internal/services"
)

func TestClassifyQualityBoundaries(t *testing.T) {
	cases := []struct {
		height int64
		want   Quality
	}{
		{2160, Quality4K},
		{2159, Quality2K},
		{1440, Quality2K},
		{1439, QualityFullHD},
		{1080, QualityFullHD},
		{1079, QualityHD},
		{720, QualityHD},
		{719, QualitySD},
		{480, QualitySD},
		{479, QualityLow},
		{0, QualityLow},
	}
	for _, tc := range cases {
		if got := ClassifyQuality(tc.height); got != tc.want {
			t.Fatalf("ClassifyQuality(%d) = %q, want %q", tc.height, got, tc.want)
		}
	}
}

func TestResolution(t *testing.T) {
	got := Resolution("1920x1080\n")
	want := ResolutionResult{Width: 1920, Height: 1080, Resolution: "1920x1080", Quality: QualityFullHD, AspectRatio: "1.78"}
	if got != want {
		t.Fatalf("Resolution = %+v, want %+v", got, want)
	}

	scope := Resolution("3840x1600")
	if scope.Quality != Quality2K || scope.AspectRatio != "2.40" {
		t.Fatalf("scope = %+v", scope)
	}
}

func TestResolutionMissingVideo(t *testing.T) {
	got := Resolution("")
	if got.Width != 0 || got.Height != 0 || got.Quality != QualityLow || got.AspectRatio != "N/A" {
		t.Fatalf("empty resolution = %+v", got)
	}
}

func TestParseOperation(t *testing.T) {
	op, err := ParseOperation("getduration")
	if err != nil || op != OperationDuration {
		t.Fatalf("ParseOperation = %q, %v", op, err)
	}
	if _, err := ParseOperation("transcode"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
