package entity

import (
	"github.com/ethereum/go-ethereum/common"
)

// IdentifierKind represents the syntactic class of a normalized identifier
type IdentifierKind string

const (
	IdentifierAddress IdentifierKind = "address"
	IdentifierHandle  IdentifierKind = "handle"
)

// Identifier represents a normalized user-supplied identifier. For the
// address kind the checksum-cased form is available via Address.Hex(); for
// the handle kind the lower-cased handle is kept verbatim so an external
// name-service resolver can take over.
type Identifier struct {
	Kind    IdentifierKind `json:"kind"`
	Address common.Address `json:"address,omitempty"`
	Handle  string         `json:"handle,omitempty"`
}
