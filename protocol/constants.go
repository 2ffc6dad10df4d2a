package protocol

// PacketType identifies the role of a packet on the wire.
type PacketType int32

// Packet types defined by the Source RCON wire format.
const (
	TypeResponse PacketType = 0 // server -> client command output
	TypeCommand  PacketType = 2 // client -> server command
	TypeLogin    PacketType = 3 // client -> server authentication
)

const (
	// HeaderSize is the number of bytes covered by the length prefix
	// beyond the payload: request id (4) + type (4) + two null terminators.
	HeaderSize = 10

	// MaxPayload is the payload size servers commonly truncate at.
	// Longer responses arrive split across multiple packets.
	MaxPayload = 4096

	// AuthFailureID is the request id servers echo back when
	// authentication is rejected. Never sent by a client.
	AuthFailureID int32 = -1

	// SentinelID is the reserved request id used for the synthetic
	// end-of-response marker packet. Sequence never allocates it.
	SentinelID int32 = 9999
)

func (t PacketType) String() string {
	switch t {
	case TypeResponse:
		return "response"
	case TypeCommand:
		return "command"
	case TypeLogin:
		return "login"
	}
	return "unknown"
}
