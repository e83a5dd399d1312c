package link

import (
	"bytes"
	"encoding/hex"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func testHeader(t *testing.T) Header {
	src, err := net.ParseMAC("aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)
	h, err := NewHeader(DefaultDestination(), src, DefaultProtocol)
	require.NoError(t, err)
	return h
}

func TestHeader(t *testing.T) {
	h := testHeader(t)
	require.Equal(t, "01606e11020faabbccddeeff6000", hex.EncodeToString(h[:]))
	require.Equal(t, DefaultDestination(), h.Destination())
	require.Equal(t, "aa:bb:cc:dd:ee:ff", h.Source().String())
	require.Equal(t, DefaultProtocol, h.Protocol())

	_, err := NewHeader(DefaultDestination(), net.HardwareAddr{1, 2, 3}, DefaultProtocol)
	require.Error(t, err)
	_, err = NewHeader(nil, DefaultDestination(), DefaultProtocol)
	require.Error(t, err)
}

func TestEncodePadding(t *testing.T) {
	h := testHeader(t)
	for _, size := range []int{0, 1, 2, MinPayloadSize - 1, MinPayloadSize, MinPayloadSize + 1, MaxFrameSize} {
		payload := bytes.Repeat([]byte{0x5a}, size)
		frame := h.Encode(payload)
		expected := HeaderLength + size
		if size < MinPayloadSize {
			expected = HeaderLength + MinPayloadSize
		}
		require.Lenf(t, frame, expected, "size %d", size)
		require.Equalf(t, h[:], frame[:HeaderLength], "size %d header", size)
	}
}

func TestEncodeDecode(t *testing.T) {
	h := testHeader(t)
	testCases := []struct {
		name    string
		payload []byte
	}{
		{"empty", nil},
		{"short", []byte("hello")},
		{"minimum", bytes.Repeat([]byte{1}, MinPayloadSize)},
		{"full", bytes.Repeat([]byte{2, 3}, MaxFrameSize/2)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			decoded, err := Decode(h.Encode(tc.payload))
			require.NoError(t, err)
			expected := tc.payload
			if len(expected) < MinPayloadSize {
				expected = append(append([]byte{}, expected...), make([]byte, MinPayloadSize-len(expected))...)
			}
			require.Equal(t, expected, decoded)
		})
	}
}

func TestEncodeHi(t *testing.T) {
	h := testHeader(t)
	frame := h.Encode([]byte("hi"))
	require.Len(t, frame, 60)
	require.Equal(t, "01606e11020faabbccddeeff6000", hex.EncodeToString(frame[:HeaderLength]))
	require.Equal(t, []byte("hi"), frame[HeaderLength:HeaderLength+2])
	require.Equal(t, make([]byte, 44), frame[HeaderLength+2:])
}

func TestEncodeKeepsPayload(t *testing.T) {
	h := testHeader(t)
	payload := make([]byte, 2, MinPayloadSize)
	payload[0], payload[1] = 7, 8
	frame := h.Encode(payload)
	frame[HeaderLength] = 0
	require.Equal(t, []byte{7, 8}, payload)
}

func TestDecodeTruncated(t *testing.T) {
	_, err := Decode(make([]byte, HeaderLength-1))
	require.Equal(t, ErrTruncated, err)
	_, err = Decode(nil)
	require.Equal(t, ErrTruncated, err)

	payload, err := Decode(make([]byte, HeaderLength))
	require.NoError(t, err)
	require.Empty(t, payload)
}

func TestCountMismatches(t *testing.T) {
	testCases := []struct {
		sent, echoed []byte
		expected     int
	}{
		{[]byte{1, 2, 3}, []byte{1, 2, 3}, 0},
		{[]byte{1, 2, 3}, []byte{1, 0, 0}, 2},
		{[]byte{1, 2, 3}, []byte{1, 2, 3, 0, 0}, 0},
		{[]byte{1, 2, 3}, []byte{9}, 1},
		{nil, []byte{1}, 0},
		{[]byte{1}, nil, 0},
	}
	for i, tc := range testCases {
		require.Equalf(t, tc.expected, CountMismatches(tc.sent, tc.echoed), "case %d", i)
	}
}
