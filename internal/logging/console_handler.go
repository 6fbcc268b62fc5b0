package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	prefix    string
	addSource bool
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	kvs := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	for _, attr := range h.attrs {
		kvs = appendKVs(kvs, "", attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		kvs = appendKVs(kvs, h.prefix, attr)
		return true
	})

	var component, runID, itemIndex, operation string
	filtered := make([]kv, 0, len(kvs))
	for _, kv := range kvs {
		switch kv.key {
		case FieldComponent:
			if component == "" {
				component = attrString(kv.value)
			}
			continue
		case FieldRunID:
			if runID == "" {
				runID = attrString(kv.value)
			}
		case FieldItemIndex:
			if itemIndex == "" {
				itemIndex = attrString(kv.value)
			}
		case FieldOperation:
			if operation == "" {
				operation = attrString(kv.value)
			}
		}
		// Subject fields only repeat below the header at debug level.
		if record.Level >= slog.LevelInfo && isSubjectKey(kv.key) {
			continue
		}
		filtered = append(filtered, kv)
	}
	filtered = dedupeKVs(filtered)

	message := strings.TrimSpace(record.Message)
	if message == "" {
		message = "(no message)"
	}

	var buf bytes.Buffer
	buf.Grow(256 + len(filtered)*32)
	writeLogHeader(&buf, timestamp, record.Level, component, composeSubject(runID, itemIndex, operation), message, h.addSource, record.Source())
	buf.WriteByte('\n')
	for _, kv := range filtered {
		buf.WriteString("    - ")
		buf.WriteString(kv.key)
		buf.WriteString(": ")
		buf.WriteString(formatValue(kv.value))
		buf.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func isSubjectKey(key string) bool {
	return key == FieldRunID || key == FieldItemIndex || key == FieldOperation
}

func writeLogHeader(buf *bytes.Buffer, ts time.Time, level slog.Level, component, subject, message string, addSource bool, src *slog.Source) {
	buf.WriteString(formatTimestamp(ts))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(level))
	if component != "" {
		buf.WriteString(" [")
		buf.WriteString(component)
		buf.WriteByte(']')
	}
	if subject != "" {
		buf.WriteByte(' ')
		buf.WriteString(subject)
	}
	if message != "" {
		buf.WriteString(" – ")
		buf.WriteString(message)
	}
	if addSource && src != nil {
		buf.WriteString(" [")
		buf.WriteString(filepath.Base(src.File))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(src.Line))
		buf.WriteByte(']')
	}
}

// composeSubject renders "Run 1a2b3c4d · Item #3 (getDuration)" style subjects.
func composeSubject(runID, itemIndex, operation string) string {
	runID = strings.TrimSpace(runID)
	itemIndex = strings.TrimSpace(itemIndex)
	operation = strings.TrimSpace(operation)
	parts := make([]string, 0, 2)
	if runID != "" {
		if len(runID) > 8 {
			runID = runID[:8]
		}
		parts = append(parts, "Run "+runID)
	}
	switch {
	case itemIndex != "" && operation != "":
		parts = append(parts, "Item #"+itemIndex+" ("+operation+")")
	case itemIndex != "":
		parts = append(parts, "Item #"+itemIndex)
	case operation != "":
		parts = append(parts, operation)
	}
	return strings.Join(parts, " · ")
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = slices.Concat(h.attrs, qualify(h.prefix, attrs))
	return &clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

type kv struct {
	key   string
	value slog.Value
}

// qualify resolves attrs and applies the open group prefix, so stored handler
// attrs are independent of later WithGroup calls.
func qualify(prefix string, attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		attr.Value = attr.Value.Resolve()
		if attr.Key == "" && attr.Value.Kind() == slog.KindGroup {
			out = append(out, qualify(prefix, attr.Value.Group())...)
			continue
		}
		attr.Key = prefix + attr.Key
		out = append(out, attr)
	}
	return out
}

func appendKVs(dst []kv, prefix string, attr slog.Attr) []kv {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	value := attr.Value.Resolve()
	if value.Kind() != slog.KindGroup {
		return append(dst, kv{key: prefix + attr.Key, value: value})
	}
	if attr.Key != "" {
		prefix += attr.Key + "."
	}
	for _, member := range value.Group() {
		dst = appendKVs(dst, prefix, member)
	}
	return dst
}

// dedupeKVs keeps the first position of each key with its last value.
func dedupeKVs(kvs []kv) []kv {
	index := make(map[string]int, len(kvs))
	out := kvs[:0]
	for _, item := range kvs {
		if item.key == "" {
			continue
		}
		if i, ok := index[item.key]; ok {
			out[i].value = item.value
			continue
		}
		index[item.key] = len(out)
		out = append(out, item)
	}
	return out
}

var levelLabels = map[slog.Level]string{
	slog.LevelDebug: "DEBUG",
	slog.LevelInfo:  "INFO",
	slog.LevelWarn:  "WARN",
	slog.LevelError: "ERROR",
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		level = slog.LevelError
	case level >= slog.LevelWarn:
		level = slog.LevelWarn
	case level >= slog.LevelInfo:
		level = slog.LevelInfo
	default:
		level = slog.LevelDebug
	}
	return levelLabels[level]
}
