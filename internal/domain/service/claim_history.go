package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"circles-claim-reminder/internal/domain/entity"
)

// personalMint markers in ledger history. V1 rows carry the decoded method
// name or raw calldata, V2 rows carry the indexer's event tag.
const (
	mintMethodName = "personalMint"
	mintEventTag   = "CrcV2_PersonalMint"
)

// personalMint() function selector: first 4 bytes of the keccak hash of the
// canonical signature.
var mintSelectorHex = fmt.Sprintf("%x", crypto.Keccak256([]byte("personalMint()"))[:4])

// LatestClaimTime scans a newest-first history page for the most recent
// personalMint and returns its timestamp. The second return value is false
// when the page holds no claim event at all.
func LatestClaimTime(history []entity.LedgerActivity) (time.Time, bool) {
	for _, act := range history {
		if isPersonalMint(act) {
			return act.Timestamp, true
		}
	}
	return time.Time{}, false
}

// isPersonalMint matches one history entry against the three claim markers:
// method name, 4-byte calldata selector, or event tag.
func isPersonalMint(act entity.LedgerActivity) bool {
	if act.Method == mintMethodName {
		return true
	}
	if act.Event == mintEventTag {
		return true
	}

	input := strings.ToLower(strings.TrimPrefix(act.Input, "0x"))
	return strings.HasPrefix(input, mintSelectorHex)
}
