package server

// Server event names.
const (
	EventConnectionStateChange = "connectionstatechange"
	EventTrack                 = "track"
	EventRTP                   = "rtp"
)

// Event is published on Server.Events. Fields that do not apply to an event
// are left empty.
type Event struct {
	Name string

	// State is the peer connection state for connectionstatechange.
	State string

	// Codec and SSRC identify the remote track for track and rtp events.
	Codec string
	SSRC  uint32

	// SequenceNumber, Timestamp and PayloadType come from the RTP header of rtp events.
	SequenceNumber uint16
	Timestamp      uint32
	PayloadType    uint8
}
