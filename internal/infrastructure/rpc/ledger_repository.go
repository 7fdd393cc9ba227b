package rpc

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"circles-claim-reminder/internal/domain/entity"
	"circles-claim-reminder/internal/domain/repository"
	"circles-claim-reminder/internal/infrastructure/logger"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Balance lookups cover both ledger versions.
var balanceMethods = []string{"circles_getTotalBalance", "circlesV2_getTotalBalance"}

// CirclesLedgerRepository implements LedgerReader interface
type CirclesLedgerRepository struct {
	client *Client
	logger *logger.Logger
}

// NewCirclesLedgerRepository creates a new Circles ledger repository
func NewCirclesLedgerRepository(client *Client, logger *logger.Logger) repository.LedgerReader {
	return &CirclesLedgerRepository{
		client: client,
		logger: logger.WithComponent("circles-ledger-repo"),
	}
}

// avatarInfoResult is the raw RPC response for circles_getAvatarInfo.
type avatarInfoResult struct {
	Avatar  string `json:"avatar"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Version int    `json:"version"`
}

// GetAvatar retrieves the registered avatar for an address. Unregistered
// addresses return (nil, nil).
func (r *CirclesLedgerRepository) GetAvatar(ctx context.Context, addr common.Address) (*entity.Avatar, error) {
	var result *avatarInfoResult
	if err := r.client.Call(ctx, "circles_getAvatarInfo", []interface{}{addr.Hex()}, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch avatar info: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	return &entity.Avatar{
		Address: addr,
		Name:    result.Name,
		Type:    avatarTypeFrom(result.Type),
		Version: result.Version,
	}, nil
}

// avatarTypeFrom maps a registration event tag (CrcV2_RegisterHuman,
// CrcV2_RegisterOrganization, CrcSignup, ...) to an avatar type.
func avatarTypeFrom(raw string) entity.AvatarType {
	switch {
	case strings.Contains(raw, "Organization"), strings.Contains(raw, "Organisation"):
		return entity.AvatarTypeOrganization
	case strings.Contains(raw, "Group"):
		return entity.AvatarTypeGroup
	default:
		return entity.AvatarTypeHuman
	}
}

// GetTotalBalance retrieves the CRC balance of an address summed across both
// ledger versions.
func (r *CirclesLedgerRepository) GetTotalBalance(ctx context.Context, addr common.Address) (float64, error) {
	var total float64
	for _, method := range balanceMethods {
		var raw interface{}
		if err := r.client.Call(ctx, method, []interface{}{addr.Hex(), true}, &raw); err != nil {
			return 0, fmt.Errorf("failed to fetch balance: %w", err)
		}
		amount, err := parseAmount(raw)
		if err != nil {
			return 0, fmt.Errorf("failed to parse balance from %s: %w", method, err)
		}
		total += amount
	}
	return total, nil
}

// parseAmount accepts the decimal string or bare number encodings the query
// service uses for CRC amounts.
func parseAmount(v interface{}) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case string:
		if n == "" {
			return 0, nil
		}
		return strconv.ParseFloat(n, 64)
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected amount type %T", v)
	}
}

// trustRelationRow is the raw RPC response item for circles_getTrustRelations.
type trustRelationRow struct {
	Truster string  `json:"truster"`
	Trustee string  `json:"trustee"`
	Limit   float64 `json:"limit"`
}

// GetTrustRelations retrieves up to limit raw trust relations touching an
// address. Both directions arrive as independent rows when present.
func (r *CirclesLedgerRepository) GetTrustRelations(ctx context.Context, addr common.Address, limit int) ([]entity.TrustRelation, error) {
	var rows []trustRelationRow
	if err := r.client.Call(ctx, "circles_getTrustRelations", []interface{}{addr.Hex(), limit}, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch trust relations: %w", err)
	}

	relations := make([]entity.TrustRelation, 0, len(rows))
	for _, row := range rows {
		relations = append(relations, entity.TrustRelation{
			Truster: common.HexToAddress(row.Truster),
			Trustee: common.HexToAddress(row.Trustee),
			Limit:   row.Limit,
		})
	}
	return relations, nil
}

// queryResult is the columns/rows result set returned by circles_query.
type queryResult struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// GetTransactionHistory retrieves up to limit history entries for an address,
// newest-first.
func (r *CirclesLedgerRepository) GetTransactionHistory(ctx context.Context, addr common.Address, limit int) ([]entity.LedgerActivity, error) {
	query := map[string]interface{}{
		"Namespace": "V_Crc",
		"Table":     "Transactions",
		"Columns":   []string{"transactionHash", "method", "input", "event", "timestamp"},
		"Filter": []interface{}{
			map[string]interface{}{
				"Type":       "FilterPredicate",
				"FilterType": "Equals",
				"Column":     "address",
				"Value":      strings.ToLower(addr.Hex()),
			},
		},
		"Order": []interface{}{
			map[string]interface{}{"Column": "timestamp", "SortOrder": "DESC"},
		},
		"Limit": limit,
	}

	var result queryResult
	if err := r.client.Call(ctx, "circles_query", []interface{}{query}, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch transaction history: %w", err)
	}

	idx := columnIndex(result.Columns)
	history := make([]entity.LedgerActivity, 0, len(result.Rows))
	for _, row := range result.Rows {
		history = append(history, entity.LedgerActivity{
			TxHash:    stringAt(row, idx["transactionHash"]),
			Method:    stringAt(row, idx["method"]),
			Input:     stringAt(row, idx["input"]),
			Event:     stringAt(row, idx["event"]),
			Timestamp: timeAt(row, idx["timestamp"]),
		})
	}

	r.logger.Debug("Fetched transaction history",
		zap.String("address", addr.Hex()),
		zap.Int("entries", len(history)))

	return history, nil
}

// columnIndex maps column names to their row positions. Missing columns map
// to -1 so lookups degrade to empty values instead of panicking.
func columnIndex(columns []string) map[string]int {
	idx := map[string]int{
		"transactionHash": -1,
		"method":          -1,
		"input":           -1,
		"event":           -1,
		"timestamp":       -1,
	}
	for i, name := range columns {
		idx[name] = i
	}
	return idx
}

func stringAt(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	s, _ := row[idx].(string)
	return s
}

// timeAt decodes a timestamp cell, accepting unix seconds (number or digit
// string) and RFC 3339 strings. Undecodable cells yield the zero time.
func timeAt(row []interface{}, idx int) time.Time {
	if idx < 0 || idx >= len(row) {
		return time.Time{}
	}
	switch v := row[idx].(type) {
	case float64:
		return time.Unix(int64(v), 0).UTC()
	case string:
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Unix(secs, 0).UTC()
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
