package pipeline

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"

	"vidmeta/internal/source"
)

// Item is one unit of batch input or output.
type Item struct {
	JSON   map[string]any  `json:"json"`
	Binary *source.Payload `json:"binary,omitempty"`
	Source string          `json:"source,omitempty"`
}

// Input returns the media reference carried by the item.
func (i Item) Input() source.Input {
	return source.Input{Location: i.Source, Payload: i.Binary}
}

// withField returns a copy of the item's JSON with key set to value. Binary
// payloads are never copied to output.
func (i Item) withField(key string, value any) Item {
	out := make(map[string]any, len(i.JSON)+1)
	maps.Copy(out, i.JSON)
	out[key] = value
	return Item{JSON: out, Source: i.Source}
}

// DecodeItems reads newline-delimited JSON items. Blank lines are skipped.
func DecodeItems(r io.Reader) ([]Item, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256<<20)

	var items []Item
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.UseNumber()
		var item Item
		if err := decoder.Decode(&item); err != nil {
			return nil, fmt.Errorf("line %d: decode item: %w", line, err)
		}
		if item.JSON == nil {
			item.JSON = map[string]any{}
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	if len(items) == 0 {
		return nil, errors.New("no items in input")
	}
	return items, nil
}

// EncodeItems writes one JSON object per line.
func EncodeItems(w io.Writer, items []Item) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	for idx, item := range items {
		if err := encoder.Encode(item); err != nil {
			return fmt.Errorf("encode item %d: %w", idx, err)
		}
	}
	return nil
}
