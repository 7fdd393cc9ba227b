package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"circles-claim-reminder/internal/domain/repository"
	"circles-claim-reminder/internal/infrastructure/logger"
)

var testAddr = common.HexToAddress("0xDE374ece6fA50e781E81Aac78e811b33D16912c7")

// ledgerServer fakes the Circles query service: one canned result per RPC
// method.
func ledgerServer(t *testing.T, results map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		result, ok := results[req.Method]
		if !ok {
			t.Errorf("unexpected method %s", req.Method)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
}

func testLedger(t *testing.T, url string) repository.LedgerReader {
	t.Helper()
	log, err := logger.NewLogger("error", "development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewCirclesLedgerRepository(testClient(url), log)
}

func TestLedgerRepository_GetAvatar(t *testing.T) {
	server := ledgerServer(t, map[string]interface{}{
		"circles_getAvatarInfo": map[string]interface{}{
			"avatar":  testAddr.Hex(),
			"name":    "alice",
			"type":    "CrcV2_RegisterHuman",
			"version": 2,
		},
	})
	defer server.Close()

	avatar, err := testLedger(t, server.URL).GetAvatar(context.Background(), testAddr)
	if err != nil {
		t.Fatalf("GetAvatar: %v", err)
	}
	if avatar == nil {
		t.Fatal("expected an avatar")
	}
	if avatar.Name != "alice" {
		t.Errorf("expected name alice, got %s", avatar.Name)
	}
	if avatar.Version != 2 {
		t.Errorf("expected version 2, got %d", avatar.Version)
	}
}

func TestLedgerRepository_GetAvatar_Unregistered(t *testing.T) {
	server := ledgerServer(t, map[string]interface{}{
		"circles_getAvatarInfo": nil,
	})
	defer server.Close()

	avatar, err := testLedger(t, server.URL).GetAvatar(context.Background(), testAddr)
	if err != nil {
		t.Fatalf("GetAvatar: %v", err)
	}
	if avatar != nil {
		t.Errorf("expected nil for an unregistered address, got %+v", avatar)
	}
}

func TestLedgerRepository_GetTotalBalance_SumsLedgerVersions(t *testing.T) {
	server := ledgerServer(t, map[string]interface{}{
		"circles_getTotalBalance":   "100.5",
		"circlesV2_getTotalBalance": "25.25",
	})
	defer server.Close()

	total, err := testLedger(t, server.URL).GetTotalBalance(context.Background(), testAddr)
	if err != nil {
		t.Fatalf("GetTotalBalance: %v", err)
	}
	if total != 125.75 {
		t.Errorf("expected 125.75, got %v", total)
	}
}

func TestLedgerRepository_GetTotalBalance_NullAndEmpty(t *testing.T) {
	server := ledgerServer(t, map[string]interface{}{
		"circles_getTotalBalance":   nil,
		"circlesV2_getTotalBalance": "",
	})
	defer server.Close()

	total, err := testLedger(t, server.URL).GetTotalBalance(context.Background(), testAddr)
	if err != nil {
		t.Fatalf("GetTotalBalance: %v", err)
	}
	if total != 0 {
		t.Errorf("expected 0, got %v", total)
	}
}

func TestLedgerRepository_GetTrustRelations(t *testing.T) {
	other := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	server := ledgerServer(t, map[string]interface{}{
		"circles_getTrustRelations": []map[string]interface{}{
			{"truster": testAddr.Hex(), "trustee": other.Hex(), "limit": 100},
			{"truster": other.Hex(), "trustee": testAddr.Hex(), "limit": 50},
		},
	})
	defer server.Close()

	relations, err := testLedger(t, server.URL).GetTrustRelations(context.Background(), testAddr, 200)
	if err != nil {
		t.Fatalf("GetTrustRelations: %v", err)
	}
	if len(relations) != 2 {
		t.Fatalf("expected 2 relations, got %d", len(relations))
	}
	if relations[0].Truster != testAddr || relations[0].Trustee != other {
		t.Errorf("unexpected first relation %+v", relations[0])
	}
	if relations[1].Truster != other || relations[1].Trustee != testAddr {
		t.Errorf("unexpected second relation %+v", relations[1])
	}
}

func TestLedgerRepository_GetTransactionHistory(t *testing.T) {
	server := ledgerServer(t, map[string]interface{}{
		"circles_query": map[string]interface{}{
			"columns": []string{"transactionHash", "method", "input", "event", "timestamp"},
			"rows": [][]interface{}{
				{"0xhash1", "personalMint", "0x0d873a79", "CrcV2_PersonalMint", float64(1756500000)},
				{"0xhash2", "transfer", "0xa9059cbb", "", "1756400000"},
			},
		},
	})
	defer server.Close()

	history, err := testLedger(t, server.URL).GetTransactionHistory(context.Background(), testAddr, 100)
	if err != nil {
		t.Fatalf("GetTransactionHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}

	first := history[0]
	if first.TxHash != "0xhash1" || first.Method != "personalMint" || first.Event != "CrcV2_PersonalMint" {
		t.Errorf("unexpected first entry %+v", first)
	}
	if !first.Timestamp.Equal(time.Unix(1756500000, 0).UTC()) {
		t.Errorf("unexpected timestamp %v", first.Timestamp)
	}
	// Digit-string timestamps decode too.
	if !history[1].Timestamp.Equal(time.Unix(1756400000, 0).UTC()) {
		t.Errorf("unexpected second timestamp %v", history[1].Timestamp)
	}
}

func TestLedgerRepository_GetTransactionHistory_ColumnOrderIndependent(t *testing.T) {
	server := ledgerServer(t, map[string]interface{}{
		"circles_query": map[string]interface{}{
			"columns": []string{"timestamp", "method"},
			"rows": [][]interface{}{
				{float64(1756500000), "personalMint"},
			},
		},
	})
	defer server.Close()

	history, err := testLedger(t, server.URL).GetTransactionHistory(context.Background(), testAddr, 100)
	if err != nil {
		t.Fatalf("GetTransactionHistory: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(history))
	}
	if history[0].Method != "personalMint" {
		t.Errorf("expected method decoded from shuffled columns, got %+v", history[0])
	}
	if history[0].TxHash != "" {
		t.Errorf("missing columns must decode to empty values, got %q", history[0].TxHash)
	}
}
