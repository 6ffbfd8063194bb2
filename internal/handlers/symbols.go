package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jwaldner/stockai/internal/logger"
	"github.com/jwaldner/stockai/internal/symbols"
)

// SymbolsHandler handles ticker suggestion endpoints
type SymbolsHandler struct {
	symbolService *symbols.Service
}

// NewSymbolsHandler creates a new symbols handler
func NewSymbolsHandler(symbolService *symbols.Service) *SymbolsHandler {
	return &SymbolsHandler{symbolService: symbolService}
}

// Register adds the symbol routes to r
func (h *SymbolsHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/symbols", h.GetSymbolsHandler).Methods("GET")
	r.HandleFunc("/api/symbols/update", h.UpdateSymbolsHandler).Methods("POST")
}

// GetSymbolsHandler returns the cached suggestion list
func (h *SymbolsHandler) GetSymbolsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.symbolService.LoadSymbols()
	if err != nil {
		http.Error(w, fmt.Sprintf("Could not load symbols: %v", err), http.StatusInternalServerError)
		return
	}
	info, _ := h.symbolService.GetSymbolsInfo()

	response := map[string]interface{}{
		"symbols":      list,
		"count":        len(list),
		"last_updated": info.LastUpdated,
		"timestamp":    time.Now().Unix(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// UpdateSymbolsHandler manually refreshes the suggestion list
func (h *SymbolsHandler) UpdateSymbolsHandler(w http.ResponseWriter, r *http.Request) {
	logger.Info.Printf("📡 Manual symbol update requested")

	startTime := time.Now()
	count, err := h.symbolService.UpdateSymbols(r.Context())
	duration := time.Since(startTime)

	if err != nil {
		logger.Error.Printf("❌ Symbol update failed: %v", err)
		http.Error(w, fmt.Sprintf("Update failed: %v", err), http.StatusBadGateway)
		return
	}

	info, _ := h.symbolService.GetSymbolsInfo()

	response := map[string]interface{}{
		"status":          "success",
		"message":         "Symbols updated successfully",
		"count":           count,
		"update_duration": duration.Milliseconds(),
		"timestamp":       time.Now().Unix(),
		"info":            info,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)

	logger.Info.Printf("✅ Symbol update completed in %v", duration)
}
