package service

import (
	"github.com/ethereum/go-ethereum/common"

	"circles-claim-reminder/internal/domain/entity"
)

// TrustGraphAggregator turns the raw, possibly asymmetric relation list of a
// root address into a deduplicated counterpart set annotated with
// mutual-trust status. Pure computation, no I/O.
type TrustGraphAggregator struct{}

// NewTrustGraphAggregator creates a new trust graph aggregator
func NewTrustGraphAggregator() *TrustGraphAggregator {
	return &TrustGraphAggregator{}
}

// Counterparts derives the ordered counterpart set for a root address.
// A counterpart is mutual only when both (root -> counterpart) and
// (counterpart -> root) appear as independent relations. Duplicate entries
// for the same counterpart collapse into one: the first sighting fixes the
// position, mutual flags OR-reduce across all entries.
func (a *TrustGraphAggregator) Counterparts(root common.Address, relations []entity.TrustRelation) []entity.TrustConnection {
	type direction struct {
		truster common.Address
		trustee common.Address
	}
	directed := make(map[direction]bool, len(relations))
	for _, rel := range relations {
		directed[direction{rel.Truster, rel.Trustee}] = true
	}

	var order []common.Address
	byAddr := make(map[common.Address]*entity.TrustConnection, len(relations))

	for _, rel := range relations {
		counterpart, ok := counterpartOf(root, rel)
		if !ok {
			continue
		}

		mutual := directed[direction{root, counterpart}] && directed[direction{counterpart, root}]

		if existing, seen := byAddr[counterpart]; seen {
			existing.Mutual = existing.Mutual || mutual
			continue
		}
		byAddr[counterpart] = &entity.TrustConnection{Counterpart: counterpart, Mutual: mutual}
		order = append(order, counterpart)
	}

	connections := make([]entity.TrustConnection, 0, len(order))
	for _, addr := range order {
		connections = append(connections, *byAddr[addr])
	}
	return connections
}

// counterpartOf returns the endpoint of a relation that is not the root.
// Self-loops and relations not touching the root yield no counterpart.
func counterpartOf(root common.Address, rel entity.TrustRelation) (common.Address, bool) {
	switch {
	case rel.Truster == root && rel.Trustee == root:
		return common.Address{}, false
	case rel.Truster == root:
		return rel.Trustee, true
	case rel.Trustee == root:
		return rel.Truster, true
	default:
		return common.Address{}, false
	}
}
