package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"request envelope", ToolCall("onelogin_list_users", map[string]any{"limit": 5})},
		{"nested params", MethodCall("prompts/get", map[string]any{"name": "usage-guide"})},
		{"empty object", map[string]any{}},
		{"unicode text", map[string]any{"note": "Invitación ✓"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Encode(tt.in)
			require.NoError(t, err)

			msgs, errs := DecodeAll(encoded)
			require.Empty(t, errs)
			require.Len(t, msgs, 1)

			want, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, string(want), string(msgs[0]))
		})
	}
}

func TestDecodeAllIsIdempotent(t *testing.T) {
	var data []byte
	for i := 0; i < 3; i++ {
		frame, err := Encode(map[string]any{"id": i})
		require.NoError(t, err)
		data = append(data, frame...)
	}

	first, errs := DecodeAll(data)
	require.Empty(t, errs)
	second, errs := DecodeAll(data)
	require.Empty(t, errs)

	require.Len(t, first, 3)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, string(first[i]), string(second[i]))
	}
}

func TestDecoderSplitFrame(t *testing.T) {
	frame, err := Encode(map[string]any{"jsonrpc": "2.0", "id": 2, "result": "ok"})
	require.NoError(t, err)

	dec := NewDecoder()
	// Feed one byte at a time; a message must only surface once its declared
	// length is fully available.
	for i, b := range frame {
		dec.Write([]byte{b})
		msg, err := dec.Next()
		if i < len(frame)-1 {
			require.ErrorIs(t, err, io.EOF, "frame surfaced early at byte %d", i)
			require.Nil(t, msg)
		} else {
			require.NoError(t, err)
			assert.JSONEq(t, `{"jsonrpc":"2.0","id":2,"result":"ok"}`, string(msg))
		}
	}
}

func TestDecoderConcatenatedFrames(t *testing.T) {
	a, err := Encode(map[string]any{"id": 1})
	require.NoError(t, err)
	b, err := Encode(map[string]any{"id": 2})
	require.NoError(t, err)

	msgs, errs := DecodeAll(append(a, b...))
	require.Empty(t, errs)
	require.Len(t, msgs, 2)
	assert.JSONEq(t, `{"id":1}`, string(msgs[0]))
	assert.JSONEq(t, `{"id":2}`, string(msgs[1]))
}

func TestDecoderBareJSONLines(t *testing.T) {
	input := "{\"jsonrpc\":\"2.0\",\"id\":1,\"result\":{}}\n" +
		"{\"jsonrpc\":\"2.0\",\"id\":2,\"result\":{\"content\":[]}}\n"

	msgs, errs := DecodeAll([]byte(input))
	require.Empty(t, errs)
	require.Len(t, msgs, 2)
}

func TestDecoderMixedFramingAndNoise(t *testing.T) {
	framed, err := Encode(map[string]any{"id": 2})
	require.NoError(t, err)

	input := "starting server v1.4\n" // log noise on the same stream
	input += string(framed)
	input += "{\"id\":3,\"result\":null}\n"

	msgs, errs := DecodeAll([]byte(input))
	require.Empty(t, errs)
	require.Len(t, msgs, 2)
	assert.JSONEq(t, `{"id":2}`, string(msgs[0]))
	assert.JSONEq(t, `{"id":3,"result":null}`, string(msgs[1]))
}

func TestDecoderMalformedLengthResynchronizes(t *testing.T) {
	good, err := Encode(map[string]any{"id": 4})
	require.NoError(t, err)

	input := "Content-Length: banana\r\n\r\n" + string(good)

	msgs, errs := DecodeAll([]byte(input))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrMalformed)
	require.Len(t, msgs, 1)
	assert.JSONEq(t, `{"id":4}`, string(msgs[0]))
}

func TestDecoderMalformedBodySkipsFrameOnly(t *testing.T) {
	bad := "Content-Length: 9\r\n\r\nnot-json!"
	good, err := Encode(map[string]any{"id": 5})
	require.NoError(t, err)

	msgs, errs := DecodeAll([]byte(bad + string(good)))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrMalformed)
	require.Len(t, msgs, 1)
	assert.JSONEq(t, `{"id":5}`, string(msgs[0]))
}

func TestDecoderTruncatedTrailingFrame(t *testing.T) {
	full, err := Encode(map[string]any{"id": 6, "result": "pending"})
	require.NoError(t, err)

	dec := NewDecoder()
	dec.Write(full[:len(full)-5])

	msg, nextErr := dec.Next()
	require.ErrorIs(t, nextErr, io.EOF)
	require.Nil(t, msg)

	dec.Write(full[len(full)-5:])
	msg, nextErr = dec.Next()
	require.NoError(t, nextErr)
	assert.JSONEq(t, `{"id":6,"result":"pending"}`, string(msg))
}

func TestDecoderLFOnlySeparator(t *testing.T) {
	body := `{"id":7}`
	input := fmt.Sprintf("Content-Length: %d\n\n%s", len(body), body)

	msgs, errs := DecodeAll([]byte(input))
	require.Empty(t, errs)
	require.Len(t, msgs, 1)
	assert.JSONEq(t, body, string(msgs[0]))
}

func TestDecoderHeaderSplitAcrossWrites(t *testing.T) {
	frame, err := Encode(map[string]any{"id": 8})
	require.NoError(t, err)

	dec := NewDecoder()
	dec.Write(frame[:7]) // "Content" only
	_, nextErr := dec.Next()
	require.True(t, errors.Is(nextErr, io.EOF))

	dec.Write(frame[7:])
	msg, nextErr := dec.Next()
	require.NoError(t, nextErr)
	assert.JSONEq(t, `{"id":8}`, string(msg))
}
