package presence

import "github.com/omega-realm/worldserver/internal/protocol"

// Sender delivers messages to one connection. Implementations must not block.
type Sender interface {
	SendReliable(conn ConnID, m protocol.Message)
	SendUnreliable(conn ConnID, m protocol.Message)
}

// BroadcastReliable sends m to every live presence
func (t *Table) BroadcastReliable(s Sender, m protocol.Message) {
	for _, p := range t.Snapshot() {
		s.SendReliable(p.Conn, m)
	}
}

// BroadcastUnreliable sends m to every live presence over the lossy channel
func (t *Table) BroadcastUnreliable(s Sender, m protocol.Message) {
	for _, p := range t.Snapshot() {
		s.SendUnreliable(p.Conn, m)
	}
}
