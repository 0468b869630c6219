// Copyright 2025 Certen Protocol
//
// Read-Only Contract State API
//
// Exposes a mound's hosted contracts and their current state over
// HTTP for wallets/dashboards, following the same handler-struct +
// writeJSONError + explicit-method-check idiom the teacher's original
// API handlers used.

package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/certen/rgb-stockpile/pkg/mound"
	"github.com/certen/rgb-stockpile/pkg/strictypes"
)

// Handlers serves the read-only contract-state API over a Mound.
type Handlers struct {
	mound  *mound.Mound
	logger *log.Logger
}

// NewHandlers wraps m. If logger is nil a default one is created.
func NewHandlers(m *mound.Mound, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = log.New(log.Writer(), "[StateAPI] ", log.LstdFlags)
	}
	return &Handlers{mound: m, logger: logger}
}

// Register mounts the handlers onto mux at the conventional paths.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc("/contracts", h.HandleListContracts)
	mux.HandleFunc("/contracts/", h.HandleContractState)
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleListContracts handles GET /contracts, returning the summary of
// every contract the mound currently hosts.
func (h *Handlers) HandleListContracts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.mound.ContractsInfo())
}

// HandleContractState handles GET /contracts/{contract_id}/state.
func (h *Handlers) HandleContractState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/contracts/")
	path = strings.TrimSuffix(path, "/state")
	if path == "" || path == r.URL.Path {
		writeJSONError(w, "expected /contracts/{contract_id}/state", http.StatusNotFound)
		return
	}
	contractId := strictypes.ContractId(common.HexToHash(path))

	sp, err := h.mound.Select(contractId)
	if err != nil {
		h.logger.Printf("unknown contract_id=%s: %v", path, err)
		writeJSONError(w, "unknown contract", http.StatusNotFound)
		return
	}
	state, err := sp.State()
	if err != nil {
		h.logger.Printf("state failed for contract_id=%s: %v", path, err)
		writeJSONError(w, "failed to compute state", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
