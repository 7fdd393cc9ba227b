package entity

import (
	"github.com/ethereum/go-ethereum/common"
)

// TrustRelation represents a directed trust statement between two avatars.
// The truster accepts tokens minted by the trustee. The source data may list
// each direction independently, only one direction, or the same pair twice.
type TrustRelation struct {
	Truster common.Address `json:"truster"`
	Trustee common.Address `json:"trustee"`
	Limit   float64        `json:"limit,omitempty"`
}

// Involves reports whether the relation touches the given address.
func (r TrustRelation) Involves(addr common.Address) bool {
	return r.Truster == addr || r.Trustee == addr
}

// TrustConnection represents a deduplicated counterpart derived from the raw
// relation list of a root address. Mutual is true only when both directions
// were present as independent relations.
type TrustConnection struct {
	Counterpart common.Address `json:"counterpart"`
	Mutual      bool           `json:"mutual"`
}
