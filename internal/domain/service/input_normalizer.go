package service

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"circles-claim-reminder/internal/domain/entity"
)

// Normalization failure modes. Both are terminal for a request; nothing
// upstream retries them.
var (
	ErrEmptyInput     = errors.New("empty identifier")
	ErrInvalidAddress = errors.New("identifier is neither a hex address nor a name-service handle")
)

// InputNormalizer validates and normalizes user-supplied identifiers. Hex
// addresses become checksum-cased addresses; name-service handles are
// lower-cased and returned verbatim for an external resolver.
type InputNormalizer struct{}

// NewInputNormalizer creates a new input normalizer
func NewInputNormalizer() *InputNormalizer {
	return &InputNormalizer{}
}

// Normalize parses raw user input into a canonical Identifier.
func (n *InputNormalizer) Normalize(raw string) (entity.Identifier, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return entity.Identifier{}, ErrEmptyInput
	}

	if common.IsHexAddress(trimmed) {
		return entity.Identifier{
			Kind:    entity.IdentifierAddress,
			Address: common.HexToAddress(trimmed),
		}, nil
	}

	// Name-service handles always carry a dot separator, .eth included.
	lowered := strings.ToLower(trimmed)
	if strings.Contains(lowered, ".") {
		return entity.Identifier{
			Kind:   entity.IdentifierHandle,
			Handle: lowered,
		}, nil
	}

	return entity.Identifier{}, ErrInvalidAddress
}
