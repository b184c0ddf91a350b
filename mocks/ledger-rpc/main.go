// Mock ledger RPC service for local development. Mints confirm after a
// configurable number of receipt polls so the anchoring client's pending
// path gets exercised; REVERT_EVERY makes every Nth mint revert.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
)

const (
	defaultPort         = "8090"
	defaultPendingPolls = "2"
)

type mintRequest struct {
	To          string `json:"to"`
	ContentHash string `json:"content_hash"`
	MetadataURI string `json:"metadata_uri"`
	Signer      string `json:"signer"`
}

type event struct {
	Name         string `json:"name"`
	TokenID      uint64 `json:"token_id,omitempty"`
	OwnerAddress string `json:"owner_address,omitempty"`
}

type receipt struct {
	TxHash string  `json:"tx_hash"`
	Status string  `json:"status"`
	Events []event `json:"events"`
}

type ledgerState struct {
	mu           sync.Mutex
	nextToken    uint64
	mintCount    int
	polls        map[string]int
	receipts     map[string]receipt
	hashes       map[uint64]string
	pendingPolls int
	revertEvery  int
}

func main() {
	port := getEnv("PORT", defaultPort)
	state := &ledgerState{
		nextToken:    1,
		polls:        make(map[string]int),
		receipts:     make(map[string]receipt),
		hashes:       make(map[uint64]string),
		pendingPolls: getEnvInt("PENDING_POLLS", defaultPendingPolls),
		revertEvery:  getEnvInt("REVERT_EVERY", "0"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /rpc/v1/credentials/mint", state.handleMint)
	mux.HandleFunc("GET /rpc/v1/tx/{hash}/receipt", state.handleReceipt)
	mux.HandleFunc("GET /rpc/v1/credentials/{token}/hash", state.handleTokenHash)
	mux.HandleFunc("GET /rpc/v1/identities/{address}", handleIdentity)
	mux.HandleFunc("GET /rpc/v1/random", handleRandom)
	mux.HandleFunc("GET /rpc/v1/plans/{key}/price", handlePlanPrice)
	mux.HandleFunc("POST /rpc/v1/subscriptions/pay", handlePay)

	log.Printf("mock ledger RPC listening on :%s (pending polls: %d)", port, state.pendingPolls)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}

func (s *ledgerState) handleMint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed mint request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.mintCount++
	tokenID := s.nextToken
	s.nextToken++
	txHash := txHashFor(req.ContentHash, tokenID)

	status := "confirmed"
	events := []event{{Name: "CredentialMinted", TokenID: tokenID, OwnerAddress: req.To}}
	if s.revertEvery > 0 && s.mintCount%s.revertEvery == 0 {
		status = "reverted"
		events = nil
	} else {
		s.hashes[tokenID] = req.ContentHash
	}
	s.receipts[txHash] = receipt{TxHash: txHash, Status: status, Events: events}
	s.polls[txHash] = 0

	log.Printf("mint: token=%d tx=%s status(final)=%s", tokenID, txHash, status)
	writeJSON(w, http.StatusOK, map[string]string{"tx_hash": txHash})
}

func (s *ledgerState) handleReceipt(w http.ResponseWriter, r *http.Request) {
	txHash := r.PathValue("hash")

	s.mu.Lock()
	defer s.mu.Unlock()

	final, ok := s.receipts[txHash]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown transaction"})
		return
	}
	s.polls[txHash]++
	if s.polls[txHash] <= s.pendingPolls {
		writeJSON(w, http.StatusOK, receipt{TxHash: txHash, Status: "pending"})
		return
	}
	writeJSON(w, http.StatusOK, final)
}

func (s *ledgerState) handleTokenHash(w http.ResponseWriter, r *http.Request) {
	tokenID, err := strconv.ParseUint(r.PathValue("token"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed token id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	hash, ok := s.hashes[tokenID]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown token"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"hash": hash})
}

func handleIdentity(w http.ResponseWriter, r *http.Request) {
	// every well-formed address exists
	writeJSON(w, http.StatusOK, map[string]any{
		"address": r.PathValue("address"),
		"exists":  true,
	})
}

func handleRandom(w http.ResponseWriter, r *http.Request) {
	bound, err := strconv.ParseInt(r.URL.Query().Get("bound"), 10, 64)
	if err != nil || bound <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bound must be positive"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"value": rand.Int63n(bound)})
}

func handlePlanPrice(w http.ResponseWriter, r *http.Request) {
	prices := map[string]int64{"starter": 500, "pro": 1500, "enterprise": 9000}
	price, ok := prices[r.PathValue("key")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown plan"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"amount": price})
}

func handlePay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Team    string `json:"team"`
		PlanKey string `json:"plan_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed pay request"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"tx_hash": txHashFor(req.Team, 0)})
}

func txHashFor(input string, tokenID uint64) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s:%d", input, tokenID))
	return "0x" + hex.EncodeToString(sum[:])
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key, fallback string) int {
	v := getEnv(key, fallback)
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return n
}
