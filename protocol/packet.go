// Package protocol implements the Source RCON wire format: encoding and
// decoding of single length-prefixed packets. It performs no I/O.
//
// Wire layout (all integers little-endian):
//
//	[length:i32][requestID:i32][type:i32][payload bytes][0x00][0x00]
//
// The length field counts every byte after itself, so it is always
// 8 + len(payload) + 2.
package protocol

import (
	"encoding/binary"
	"errors"
	"strings"
	"unicode/utf8"
)

var ErrTruncatedPacket = errors.New("rcon: packet body shorter than header")

// Packet is a single RCON protocol packet.
type Packet struct {
	RequestID int32
	Type      PacketType
	Payload   string
}

// Encode serializes the packet, including the leading length prefix.
// A zero-length payload is valid and encodes to a 14-byte packet.
func Encode(p Packet) []byte {
	payload := []byte(p.Payload)
	length := HeaderSize + len(payload)

	buf := make([]byte, 4+length)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(length))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.RequestID))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(p.Type))
	copy(buf[12:], payload)
	// Trailing two null bytes are already zero in the fresh buffer.
	return buf
}

// Decode parses a packet body: the bytes after the 4-byte length prefix.
// The caller must have consumed the prefix and read exactly that many
// bytes. Payload bytes that are not valid UTF-8 are replaced with U+FFFD
// rather than failing; game servers routinely emit such sequences.
func Decode(body []byte) (Packet, error) {
	if len(body) < HeaderSize {
		return Packet{}, ErrTruncatedPacket
	}

	requestID := int32(binary.LittleEndian.Uint32(body[0:4]))
	packetType := PacketType(binary.LittleEndian.Uint32(body[4:8]))
	payload := body[8 : len(body)-2]

	return Packet{
		RequestID: requestID,
		Type:      packetType,
		Payload:   sanitize(payload),
	}, nil
}

// sanitize converts raw payload bytes to a string, replacing invalid
// UTF-8 sequences with the replacement character.
func sanitize(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
