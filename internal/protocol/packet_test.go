package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFrame_ReadFrame_RoundTrip(t *testing.T) {
	frame := NewFrame(MsgCmdMove, map[string]any{"x": int64(3), "y": int64(4)})
	frame.ID = "req-1"

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, frame))

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, frame.ID, got.ID)
	assert.Equal(t, frame.Type, got.Type)
	assert.Equal(t, frame.Version, got.Version)
	assert.EqualValues(t, 3, got.Payload["x"])
	assert.EqualValues(t, 4, got.Payload["y"])
}

func TestWriteFrame_StampsDefaultVersion(t *testing.T) {
	frame := Frame{Type: MsgRespSuccess, Payload: map[string]any{}}
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, frame))

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, ProtocolVersion, got.Version)
}

func TestReadFrame_EmptyFrameRejected(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0})
	_, err := ReadFrame(&buf)
	assert.Error(t, err)
}

func TestReadFrame_OversizedLengthRejected(t *testing.T) {
	var buf bytes.Buffer
	header := make([]byte, 4)
	header[0] = 0xFF
	header[1] = 0xFF
	header[2] = 0xFF
	header[3] = 0x7F
	buf.Write(header)
	_, err := ReadFrame(&buf)
	assert.Error(t, err)
}

func TestReadFrame_TruncatedBodyErrors(t *testing.T) {
	frame := NewFrame(MsgCmdAttack, map[string]any{"target_id": "npc-1"})
	body, err := EncodeFrame(frame)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, frame))
	truncated := buf.Bytes()[:4+len(body)-1]
	_, err = ReadFrame(bytes.NewReader(truncated))
	assert.Error(t, err)
}

func TestEncodeFrame_DecodeFrame_RoundTrip(t *testing.T) {
	frame := NewFrame(MsgEventChatMessage, map[string]any{
		"channel": "local",
		"speaker": "player-1",
		"text":    "hello",
	})

	body, err := EncodeFrame(frame)
	require.NoError(t, err)

	got, err := DecodeFrame(body)
	require.NoError(t, err)
	assert.Equal(t, frame.Type, got.Type)
	assert.Equal(t, "hello", got.Payload["text"])
}

func TestDecodeFrame_OversizedRejected(t *testing.T) {
	_, err := DecodeFrame(make([]byte, MaxFrameLen+1))
	assert.Error(t, err)
}

func TestWriteFrame_MultipleFramesSequential(t *testing.T) {
	var buf bytes.Buffer
	frames := []Frame{
		NewFrame(MsgCmdMove, map[string]any{"x": int64(1), "y": int64(1)}),
		NewFrame(MsgCmdAttack, map[string]any{"target_id": "npc-2"}),
		NewFrame(MsgQueryInventory, map[string]any{}),
	}
	for _, f := range frames {
		require.NoError(t, WriteFrame(&buf, f))
	}

	for _, want := range frames {
		got, err := ReadFrame(&buf)
		require.NoError(t, err)
		assert.Equal(t, want.Type, got.Type)
	}
}
