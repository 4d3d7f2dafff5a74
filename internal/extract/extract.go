// Package extract locates and unwraps tool responses inside the raw,
// possibly garbled output of a server under test. The output may interleave
// framed responses, bare JSON lines, notifications, and log noise, so every
// routine here is tolerant: a fragment that fails to parse is skipped, never
// fatal.
package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"mcpcheck/internal/wire"
)

// lookaheadWindow bounds how far past an id marker the fallback scan looks
// for an error object before assuming a success response.
const lookaheadWindow = 3000

// excerptLimit bounds the diagnostic excerpt attached to a Lookup.
const excerptLimit = 300

// Lookup is the outcome of searching raw output for a response envelope.
type Lookup struct {
	Found   bool
	IsError bool
	// Err carries the decoded error object when the structured pass found
	// one; the fallback substring pass leaves it nil.
	Err *wire.RPCError
	// Excerpt is a bounded slice of output near the response, for
	// diagnostics on failure.
	Excerpt string
}

// FindResponse scans raw output for the response matching the given request
// id and classifies it as success or error. It first decodes the output into
// candidate JSON objects and filters by id; when the response is buried in
// output too garbled to decode, it falls back to a bounded substring scan
// around the id marker.
func FindResponse(raw string, id int64) Lookup {
	msgs, _ := wire.DecodeAll([]byte(raw))
	for _, msg := range msgs {
		var resp wire.Response
		if err := json.Unmarshal(msg, &resp); err != nil {
			continue
		}
		if resp.ID != id {
			continue
		}
		if resp.Result == nil && resp.Error == nil {
			continue
		}
		return Lookup{
			Found:   true,
			IsError: resp.Error != nil,
			Err:     resp.Error,
			Excerpt: clip(string(msg), excerptLimit),
		}
	}
	return findResponseFallback(raw, id)
}

// findResponseFallback keeps the tolerant substring heuristic for output the
// structured pass could not decode at all.
func findResponseFallback(raw string, id int64) Lookup {
	marker := `"id":` + strconv.FormatInt(id, 10)
	idx := strings.Index(raw, marker)
	if idx < 0 {
		return Lookup{}
	}
	window := raw[idx:]
	if len(window) > lookaheadWindow {
		window = window[:lookaheadWindow]
	}
	isErr := strings.Contains(window, `,"error":{`) ||
		strings.Contains(window[:min(len(window), 100)], `"error":{`)
	return Lookup{
		Found:   true,
		IsError: isErr,
		Excerpt: clip(window, excerptLimit),
	}
}

// toolResponse is the slice of a response envelope the extractor needs.
type toolResponse struct {
	ID     int64 `json:"id"`
	Result *struct {
		Content []wire.ContentPart `json:"content"`
	} `json:"result"`
}

// Value scans raw output line by line for the first tool response carrying a
// content array, and returns the text of its first content part after an
// attempted second JSON decode. Tool responses have id >= 2; the handshake
// response and notifications are skipped. Returns (nil, false) when no line
// qualifies: a result without a content array and an empty content array
// both yield nothing, and malformed lines are skipped rather than fatal.
func Value(raw string) (any, bool) {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "{") {
			continue
		}
		var resp toolResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			continue
		}
		if resp.ID < 2 || resp.Result == nil || len(resp.Result.Content) == 0 {
			continue
		}
		text := resp.Result.Content[0].Text
		if text == "" {
			continue
		}
		var decoded any
		if err := json.Unmarshal([]byte(text), &decoded); err != nil {
			// Not JSON; the raw text is the value.
			return text, true
		}
		return decoded, true
	}
	return nil, false
}

// Kind tags the shape of an extraction result.
type Kind int

const (
	// NotFound means no qualifying tool response was present.
	NotFound Kind = iota
	// Scalar means the extracted value was a single object.
	Scalar
	// ListHead means the extracted value was a list and its first element
	// is the candidate.
	ListHead
)

// Extraction is a tagged extraction result. Discovery keys are resolved
// from it by DiscoveredID, which normalizes the object and list-head shapes
// to one value.
type Extraction struct {
	Kind  Kind
	Value any
}

// Discover runs Value over raw output and tags the result's shape.
func Discover(raw string) Extraction {
	v, ok := Value(raw)
	if !ok {
		return Extraction{Kind: NotFound}
	}
	if list, isList := v.([]any); isList {
		if len(list) == 0 {
			return Extraction{Kind: NotFound}
		}
		return Extraction{Kind: ListHead, Value: list[0]}
	}
	return Extraction{Kind: Scalar, Value: v}
}

// DiscoveredID returns the "id" field of the extracted object, if any.
// JSON numbers decode as float64; integral values are normalized to int64
// so discovered ids splice cleanly into later request arguments.
func (e Extraction) DiscoveredID() (any, bool) {
	if e.Kind == NotFound {
		return nil, false
	}
	obj, ok := e.Value.(map[string]any)
	if !ok {
		return nil, false
	}
	id, ok := obj["id"]
	if !ok {
		return nil, false
	}
	if f, isFloat := id.(float64); isFloat && f == float64(int64(f)) {
		return int64(f), true
	}
	return id, true
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
