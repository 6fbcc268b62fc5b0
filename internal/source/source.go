package source

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"vidmeta/internal/config"
	"vidmeta/internal/fileutil"
	"vidmeta/internal/logging"
	"vidmeta/internal/services"
)

const (
	stageName     = "source"
	scratchPrefix = "vidmeta-"
)

// Kind identifies where a resolved input came from.
type Kind string

const (
	KindPath    Kind = "path"
	KindPayload Kind = "payload"
	KindURL     Kind = "url"
)

// Payload is a base64 encoded file attached to a pipeline item.
type Payload struct {
	Data     string `json:"data"`
	FileName string `json:"file_name,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

// Input names the media to probe. Payload wins over Location when both are set.
type Input struct {
	Location string
	Payload  *Payload
}

// Describe returns a short label for logs and history rows.
func (in Input) Describe() string {
	if in.Payload != nil {
		if name := strings.TrimSpace(in.Payload.FileName); name != "" {
			return "payload:" + name
		}
		return "payload"
	}
	return strings.TrimSpace(in.Location)
}

// Scratch is a resolved local file.
type Scratch struct {
	Path string
	Kind Kind
	// Size is the number of bytes written for payloads and downloads.
	Size int64

	temporary bool
	once      sync.Once
	err       error
}

// Release deletes temporary files. It is safe to call more than once.
func (s *Scratch) Release() error {
	if s == nil || !s.temporary {
		return nil
	}
	s.once.Do(func() {
		if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.err = err
		}
	})
	return s.err
}

// Options configures a Resolver.
type Options struct {
	ScratchDir   string
	Timeout      time.Duration
	MaxRedirects int
	MaxBytes     int64
	UserAgent    string
}

// Resolver materializes inputs.
type Resolver struct {
	opts   Options
	client *http.Client
	logger *slog.Logger
}

// NewResolver builds a resolver with its own HTTP client.
func NewResolver(opts Options, logger *slog.Logger) *Resolver {
	r := &Resolver{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "source"),
	}
	r.client = &http.Client{
		Timeout:       opts.Timeout,
		CheckRedirect: r.checkRedirect,
	}
	return r
}

// NewResolverFromConfig maps the [paths] and [fetch] sections onto Options.
func NewResolverFromConfig(cfg *config.Config, logger *slog.Logger) *Resolver {
	return NewResolver(Options{
		ScratchDir:   cfg.Paths.ScratchDir,
		Timeout:      cfg.FetchTimeout(),
		MaxRedirects: cfg.Fetch.MaxRedirects,
		MaxBytes:     cfg.Fetch.MaxBytes,
		UserAgent:    cfg.Fetch.UserAgent,
	}, logger)
}

// ScratchDir returns the directory used for temporary files.
func (r *Resolver) ScratchDir() string {
	return r.opts.ScratchDir
}

// Resolve returns a local file for in. Callers must Release the result.
func (r *Resolver) Resolve(ctx context.Context, in Input) (*Scratch, error) {
	if in.Payload != nil {
		return r.fromPayload(*in.Payload)
	}
	location := strings.TrimSpace(in.Location)
	if location == "" {
		return nil, services.Wrap(services.ErrValidation, stageName, "resolve", "item has no binary payload or source", nil)
	}
	if isRemote(location) {
		return r.fromURL(ctx, location)
	}
	return r.fromPath(location)
}

func (r *Resolver) fromPath(location string) (*Scratch, error) {
	expanded, err := config.ExpandPath(location)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, stageName, "path", "expand path", err)
	}
	if err := fileutil.Readable(expanded); err != nil {
		marker := services.ErrValidation
		if errors.Is(err, os.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return nil, services.Wrap(marker, stageName, "path", fmt.Sprintf("input %q is not readable", expanded), err)
	}
	return &Scratch{Path: expanded, Kind: KindPath}, nil
}

func (r *Resolver) fromPayload(p Payload) (*Scratch, error) {
	data := strings.Join(strings.Fields(p.Data), "")
	if data == "" {
		return nil, services.Wrap(services.ErrValidation, stageName, "payload", "binary payload is empty", nil)
	}
	decoded := base64.NewDecoder(base64.StdEncoding, strings.NewReader(data))
	ext := extensionFor(p.FileName, p.MimeType)

	scratch, err := r.writeScratch(decoded, ext)
	if err != nil {
		marker := services.ErrExternalTool
		var corrupt base64.CorruptInputError
		if errors.As(err, &corrupt) {
			marker = services.ErrValidation
		} else if errors.Is(err, fileutil.ErrTooLarge) {
			marker = services.ErrValidation
		}
		return nil, services.Wrap(marker, stageName, "payload", "decode binary payload", err)
	}
	scratch.Kind = KindPayload
	r.logger.Debug("payload written to scratch",
		logging.String("path", scratch.Path),
		logging.Int64("bytes", scratch.Size),
		logging.Bytes("size", scratch.Size),
	)
	return scratch, nil
}

func (r *Resolver) fromURL(ctx context.Context, location string) (*Scratch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, stageName, "fetch", "build request", err)
	}
	if ua := strings.TrimSpace(r.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	started := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, stageName, "fetch", "request "+redact(location), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		marker := services.ErrExternalTool
		switch {
		case resp.StatusCode == http.StatusNotFound:
			marker = services.ErrNotFound
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			marker = services.ErrTransient
		}
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, services.Wrap(marker, stageName, "fetch", fmt.Sprintf("%s returned %s", redact(location), resp.Status), nil)
	}

	ext := extensionFor(path.Base(resp.Request.URL.Path), resp.Header.Get("Content-Type"))
	scratch, err := r.writeScratch(resp.Body, ext)
	if err != nil {
		marker := services.ErrTransient
		if errors.Is(err, fileutil.ErrTooLarge) {
			marker = services.ErrValidation
		}
		return nil, services.Wrap(marker, stageName, "fetch", "download "+redact(location), err)
	}
	scratch.Kind = KindURL
	r.logger.Debug("remote input downloaded",
		logging.String("url", redact(location)),
		logging.String("path", scratch.Path),
		logging.Int64("bytes", scratch.Size),
		logging.Bytes("size", scratch.Size),
		logging.Duration("elapsed", time.Since(started)),
	)
	return scratch, nil
}

func (r *Resolver) writeScratch(src io.Reader, ext string) (*Scratch, error) {
	dir := strings.TrimSpace(r.opts.ScratchDir)
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	target := filepath.Join(dir, scratchPrefix+uuid.NewString()+ext)
	written, err := fileutil.WriteLimited(target, src, r.opts.MaxBytes)
	if err != nil {
		return nil, err
	}
	return &Scratch{Path: target, Size: written, temporary: true}, nil
}

func (r *Resolver) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) > r.opts.MaxRedirects {
		return fmt.Errorf("stopped after %d redirects", r.opts.MaxRedirects)
	}
	if ua := strings.TrimSpace(r.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	return nil
}

func isRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// containerExtensions covers video types missing from the mime package's
// built-in table.
var containerExtensions = map[string]string{
	"video/mp4":        ".mp4",
	"video/quicktime":  ".mov",
	"video/webm":       ".webm",
	"video/x-matroska": ".mkv",
	"video/x-msvideo":  ".avi",
	"video/mp2t":       ".ts",
	"audio/mpeg":       ".mp3",
	"audio/mp4":        ".m4a",
}

// extensionFor prefers the file name's extension, then the MIME type's.
func extensionFor(name, mimeType string) string {
	if ext := strings.ToLower(filepath.Ext(strings.TrimSpace(name))); isSafeExt(ext) {
		return ext
	}
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return ""
	}
	if ext, ok := containerExtensions[mediaType]; ok {
		return ext
	}
	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}

func isSafeExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 10 {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// redact drops credentials and query strings from URLs before logging.
func redact(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return location
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
