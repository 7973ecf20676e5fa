// Package protocol
// Author: momentics <momentics@gmail.com>

package protocol

// Role selects which side of the connection a socket plays.
type Role uint8

const (
	RoleClient Role = iota
	RoleServer
)

func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleServer:
		return "server"
	default:
		return "unknown"
	}
}

// MaskPolicy determines how frames are masked on write and which mask bits
// are acceptable on read. The zero value masks nothing and accepts anything.
type MaskPolicy struct {
	MaskOutbound  bool
	RequireMasked bool
	RejectMasked  bool
}

// Policy derives the masking policy for r under cfg.
func (r Role) Policy(cfg Config) MaskPolicy {
	if r == RoleClient {
		return MaskPolicy{MaskOutbound: true, RejectMasked: true}
	}
	return MaskPolicy{RequireMasked: !cfg.AcceptUnmaskedFrames}
}
