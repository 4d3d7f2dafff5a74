package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformed reports a frame that could not be decoded. The decoder skips
// the offending bytes and resynchronizes, so callers can keep reading.
var ErrMalformed = errors.New("malformed frame")

const headerPrefix = "content-length:"

// Encode serializes v to compact JSON and prefixes it with the
// Content-Length header the stdio transport expects. No trailing delimiter
// is appended.
func Encode(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Content-Length: %d\r\n\r\n", len(body))
	buf.Write(body)
	return buf.Bytes(), nil
}

// Decoder incrementally splits a byte stream into complete JSON-RPC
// messages. It accepts both Content-Length framed messages and bare
// newline-delimited JSON objects, since servers under test are not
// consistent about which they emit. Partial trailing frames are held until
// more bytes arrive; malformed fragments are skipped, not fatal.
type Decoder struct {
	buf []byte
}

// NewDecoder returns an empty decoder. Feed it with Write, read frames with
// Next.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Write appends raw bytes to the decode buffer.
func (d *Decoder) Write(p []byte) {
	d.buf = append(d.buf, p...)
}

// Next returns the next complete message in the buffer. It returns io.EOF
// when no complete frame is available yet (more input may still arrive), and
// an error wrapping ErrMalformed when a fragment had to be skipped.
func (d *Decoder) Next() (json.RawMessage, error) {
	for {
		d.buf = bytes.TrimLeft(d.buf, " \t\r\n")
		if len(d.buf) == 0 {
			return nil, io.EOF
		}

		if d.buf[0] == '{' {
			return d.nextBareJSON()
		}

		if hasHeaderPrefix(d.buf) {
			return d.nextFramed()
		}

		// Neither a JSON object nor a length header. This is either noise
		// (log lines on the same stream) or a header split across reads.
		nl := bytes.IndexByte(d.buf, '\n')
		if nl < 0 {
			if isHeaderFragment(d.buf) {
				return nil, io.EOF
			}
			d.buf = nil
			return nil, io.EOF
		}
		d.buf = d.buf[nl+1:]
	}
}

// nextBareJSON decodes one JSON object from the front of the buffer.
func (d *Decoder) nextBareJSON() (json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(d.buf))
	var msg json.RawMessage
	err := dec.Decode(&msg)
	if err == nil {
		d.buf = d.buf[dec.InputOffset():]
		return msg, nil
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		// Truncated trailing object; wait for more bytes.
		return nil, io.EOF
	}
	// Syntax error. Skip the offending line and resynchronize.
	nl := bytes.IndexByte(d.buf, '\n')
	if nl < 0 {
		d.buf = nil
	} else {
		d.buf = d.buf[nl+1:]
	}
	return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
}

// nextFramed decodes one Content-Length framed message from the front of
// the buffer.
func (d *Decoder) nextFramed() (json.RawMessage, error) {
	sep, sepLen := headerSeparator(d.buf)
	if sep < 0 {
		// Header not fully received yet.
		return nil, io.EOF
	}

	header := string(d.buf[:sep])
	length := -1
	for _, line := range strings.Split(header, "\n") {
		line = strings.TrimRight(line, "\r")
		after, ok := strings.CutPrefix(strings.ToLower(line), headerPrefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(after))
		if err != nil || n < 0 {
			d.buf = d.buf[sep+sepLen:]
			return nil, fmt.Errorf("%w: bad content-length %q", ErrMalformed, strings.TrimSpace(after))
		}
		length = n
	}
	if length < 0 {
		d.buf = d.buf[sep+sepLen:]
		return nil, fmt.Errorf("%w: content-length header missing", ErrMalformed)
	}

	rest := d.buf[sep+sepLen:]
	if len(rest) < length {
		// Body not fully received yet.
		return nil, io.EOF
	}

	body := make(json.RawMessage, length)
	copy(body, rest[:length])
	d.buf = rest[length:]

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: frame body is not valid JSON", ErrMalformed)
	}
	return body, nil
}

// DecodeAll splits a complete buffer into messages, collecting per-frame
// decode errors instead of aborting. Running it twice on the same input
// yields the same messages.
func DecodeAll(data []byte) ([]json.RawMessage, []error) {
	dec := NewDecoder()
	dec.Write(data)

	var msgs []json.RawMessage
	var errs []error
	for {
		msg, err := dec.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return msgs, errs
			}
			errs = append(errs, err)
			continue
		}
		msgs = append(msgs, msg)
	}
}

func hasHeaderPrefix(buf []byte) bool {
	if len(buf) < len(headerPrefix) {
		return false
	}
	return strings.EqualFold(string(buf[:len(headerPrefix)]), headerPrefix)
}

// isHeaderFragment reports whether buf could still grow into a length
// header, so the decoder should wait rather than discard it.
func isHeaderFragment(buf []byte) bool {
	if len(buf) >= len(headerPrefix) {
		return false
	}
	return strings.EqualFold(string(buf), headerPrefix[:len(buf)])
}

// headerSeparator locates the blank line ending the frame header, accepting
// both CRLF and bare LF conventions. It returns the separator offset and
// length, or -1 if the header is incomplete.
func headerSeparator(buf []byte) (int, int) {
	crlf := bytes.Index(buf, []byte("\r\n\r\n"))
	lf := bytes.Index(buf, []byte("\n\n"))
	switch {
	case crlf >= 0 && (lf < 0 || crlf <= lf):
		return crlf, 4
	case lf >= 0:
		return lf, 2
	default:
		return -1, 0
	}
}
