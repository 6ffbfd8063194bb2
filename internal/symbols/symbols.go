package symbols

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jwaldner/stockai/internal/logger"
)

const (
	// FileName is the cached suggestion list inside the symbols directory
	FileName = "symbols.json"

	timestampLayout = "2006-01-02 15:04:05"
	maxSymbolLength = 5
)

// Symbol is one ticker suggestion with optional metadata
type Symbol struct {
	Symbol  string `json:"symbol"`
	Company string `json:"company,omitempty"`
	Sector  string `json:"sector,omitempty"`
}

// Info describes the cached list without loading every entry
type Info struct {
	Exists      bool   `json:"exists"`
	LastUpdated string `json:"last_updated"`
	Source      string `json:"source,omitempty"`
	Count       int    `json:"count"`
}

type symbolsFile struct {
	LastUpdated string   `json:"last_updated"`
	Source      string   `json:"source"`
	Count       int      `json:"count"`
	Symbols     []Symbol `json:"symbols"`
}

// Service keeps the ticker suggestion list on disk and refreshes it from a CSV source.
// The list is only a hint for the symbol input; it never restricts what can be submitted.
type Service struct {
	dir        string
	sourceURL  string
	httpClient *http.Client
}

// NewService creates a service reading from dir/symbols.json
func NewService(dir, sourceURL string) *Service {
	if dir == "" {
		dir = "assets/symbols"
	}
	return &Service{
		dir:        dir,
		sourceURL:  sourceURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *Service) path() string {
	return filepath.Join(s.dir, FileName)
}

// LoadSymbols returns the cached list. A missing file is an empty list.
func (s *Service) LoadSymbols() ([]Symbol, error) {
	data, err := s.readFile()
	if err != nil {
		if os.IsNotExist(err) {
			return []Symbol{}, nil
		}
		return nil, err
	}
	return data.Symbols, nil
}

// GetSymbolsAsStrings returns just the ticker strings
func (s *Service) GetSymbolsAsStrings() ([]string, error) {
	list, err := s.LoadSymbols()
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(list))
	for _, sym := range list {
		out = append(out, sym.Symbol)
	}
	return out, nil
}

// GetSymbolsInfo returns summary information about the cached list
func (s *Service) GetSymbolsInfo() (Info, error) {
	data, err := s.readFile()
	if err != nil {
		if os.IsNotExist(err) {
			return Info{LastUpdated: "never"}, nil
		}
		return Info{}, err
	}
	return Info{
		Exists:      true,
		LastUpdated: data.LastUpdated,
		Source:      data.Source,
		Count:       data.Count,
	}, nil
}

// UpdateSymbols fetches the CSV source and replaces the cached list.
// The old list is kept when the fetch fails.
func (s *Service) UpdateSymbols(ctx context.Context) (int, error) {
	if s.sourceURL == "" {
		return 0, fmt.Errorf("no symbols source configured")
	}

	list, err := s.fetchCSVSource(ctx, s.sourceURL)
	if err != nil {
		logger.Warn.Printf("⚠️  SYMBOLS: fetch from %s failed: %v", s.sourceURL, err)
		return 0, fmt.Errorf("fetch symbols: %w", err)
	}
	list = deduplicateSymbols(list)
	if len(list) == 0 {
		return 0, fmt.Errorf("fetch symbols: source returned no usable rows")
	}

	if err := s.saveSymbols(list); err != nil {
		return 0, fmt.Errorf("save symbols: %w", err)
	}

	logger.Info.Printf("📋 SYMBOLS: saved %d symbols from %s", len(list), s.sourceURL)
	return len(list), nil
}

// AutoUpdate refreshes the list when it is missing or older than maxAge
func (s *Service) AutoUpdate(ctx context.Context, maxAge time.Duration) error {
	info, err := s.GetSymbolsInfo()
	if err != nil {
		return err
	}

	if info.Exists {
		updated, err := time.ParseInLocation(timestampLayout, info.LastUpdated, time.Local)
		if err == nil && time.Since(updated) <= maxAge {
			logger.Debug.Printf("📋 SYMBOLS: list is fresh (%s), skipping update", info.LastUpdated)
			return nil
		}
	}

	_, err = s.UpdateSymbols(ctx)
	return err
}

func (s *Service) readFile() (*symbolsFile, error) {
	f, err := os.Open(s.path())
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var data symbolsFile
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path(), err)
	}
	return &data, nil
}

// fetchCSVSource downloads and parses a constituents CSV
func (s *Service) fetchCSVSource(ctx context.Context, url string) ([]Symbol, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return parseCSV(resp.Body)
}

func parseCSV(r io.Reader) ([]Symbol, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 { // header + at least one row
		return nil, fmt.Errorf("invalid CSV data")
	}

	cols := findCSVColumns(records[0])

	var list []Symbol
	for _, record := range records[1:] {
		sym := strings.ToUpper(getColumnValue(record, cols.symbol))
		if sym == "" || len(sym) > maxSymbolLength {
			continue
		}
		list = append(list, Symbol{
			Symbol:  sym,
			Company: getColumnValue(record, cols.company),
			Sector:  getColumnValue(record, cols.sector),
		})
	}
	return list, nil
}

type csvColumns struct {
	symbol, company, sector int
}

// findCSVColumns maps the header names used by the common constituents files
func findCSVColumns(header []string) csvColumns {
	cols := csvColumns{symbol: -1, company: -1, sector: -1}

	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(col))

		switch {
		case strings.Contains(col, "symbol") || strings.Contains(col, "ticker"):
			cols.symbol = i
		case col == "security" || strings.Contains(col, "company") || col == "name":
			cols.company = i
		case strings.Contains(col, "sector") && !strings.Contains(col, "sub"):
			cols.sector = i
		}
	}

	// first column when no header matched
	if cols.symbol == -1 {
		cols.symbol = 0
	}
	return cols
}

func getColumnValue(record []string, col int) string {
	if col >= 0 && col < len(record) {
		return strings.TrimSpace(record[col])
	}
	return ""
}

func deduplicateSymbols(list []Symbol) []Symbol {
	seen := make(map[string]bool)
	var unique []Symbol

	for _, sym := range list {
		if !seen[sym.Symbol] {
			seen[sym.Symbol] = true
			unique = append(unique, sym)
		}
	}

	sort.Slice(unique, func(i, j int) bool {
		return unique[i].Symbol < unique[j].Symbol
	})
	return unique
}

func (s *Service) saveSymbols(list []Symbol) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	tmp := s.path() + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	err = encoder.Encode(symbolsFile{
		LastUpdated: time.Now().Format(timestampLayout),
		Source:      s.sourceURL,
		Count:       len(list),
		Symbols:     list,
	})
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, s.path())
}
