package entity

import (
	"github.com/ethereum/go-ethereum/common"
)

// AvatarType represents the kind of account registered in the Circles hub
type AvatarType string

const (
	AvatarTypeHuman        AvatarType = "human"
	AvatarTypeOrganization AvatarType = "organization"
	AvatarTypeGroup        AvatarType = "group"
)

// Avatar represents an account's registered identity in the Circles network
type Avatar struct {
	Address common.Address `json:"address"`
	Name    string         `json:"name"`
	Type    AvatarType     `json:"type"`
	Version int            `json:"version"`
}

// DisplayName returns the avatar's registered name, falling back to the
// truncated address when no name is set.
func (a *Avatar) DisplayName() string {
	if a != nil && a.Name != "" {
		return a.Name
	}
	if a == nil {
		return ""
	}
	return ShortAddress(a.Address)
}

// ShortAddress renders an address as a truncated checksum hex string
// suitable for display (0x1234...abcd).
func ShortAddress(addr common.Address) string {
	hex := addr.Hex()
	return hex[:6] + "..." + hex[len(hex)-4:]
}
