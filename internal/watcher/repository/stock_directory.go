package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"golang-stock-watchlist/internal/watcher/dto"
	"golang-stock-watchlist/pkg/logger"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	csvHeaderCode = "종목코드"
	csvHeaderName = "종목명"
)

// StockDirectory resolves display names and exchange codes against the
// KOSPI/KOSDAQ listing files. The mapping is loaded once at startup and is
// immutable afterwards, so lookups are safe for concurrent use.
type StockDirectory interface {
	FindByName(name string) (*dto.StockInfo, bool)
	FindByCode(code string) (*dto.StockInfo, bool)
	Size() int
}

type stockDirectory struct {
	nameToCode map[string]string
	codeToName map[string]string
}

// NewStockDirectory loads the listing CSV files. Files that are missing are
// skipped with a warning so a partial directory still serves lookups.
func NewStockDirectory(log *logger.Logger, paths ...string) (StockDirectory, error) {
	d := &stockDirectory{
		nameToCode: make(map[string]string),
		codeToName: make(map[string]string),
	}

	for _, path := range paths {
		n, err := d.loadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				log.Warn("Stock listing file missing, skipping", logger.StringField("path", path))
				continue
			}
			return nil, fmt.Errorf("failed to load stock listing %s: %w", path, err)
		}
		log.Info("Loaded stock listing", logger.StringField("path", path), logger.IntField("count", n))
	}

	return d, nil
}

// loadFile reads one listing file, trying the encodings Korean exchange
// exports are commonly delivered in.
func (d *stockDirectory) loadFile(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	encodings := []encoding.Encoding{korean.EUCKR, unicode.UTF8BOM, unicode.UTF8}
	var lastErr error
	for _, enc := range encodings {
		decoded, _, err := transform.Bytes(enc.NewDecoder(), raw)
		if err != nil {
			lastErr = err
			continue
		}
		n, err := d.parseCSV(decoded)
		if err != nil {
			lastErr = err
			continue
		}
		return n, nil
	}
	return 0, lastErr
}

func (d *stockDirectory) parseCSV(data []byte) (int, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return 0, err
	}
	if len(records) < 1 {
		return 0, fmt.Errorf("empty listing file")
	}

	codeIdx, nameIdx := -1, -1
	for i, col := range records[0] {
		switch strings.TrimSpace(col) {
		case csvHeaderCode:
			codeIdx = i
		case csvHeaderName:
			nameIdx = i
		}
	}
	if codeIdx < 0 || nameIdx < 0 {
		return 0, fmt.Errorf("listing header missing %s/%s columns", csvHeaderCode, csvHeaderName)
	}

	count := 0
	for _, row := range records[1:] {
		if len(row) <= codeIdx || len(row) <= nameIdx {
			continue
		}
		code := strings.TrimSpace(row[codeIdx])
		name := strings.TrimSpace(row[nameIdx])
		if code == "" || name == "" {
			continue
		}
		d.nameToCode[name] = code
		d.codeToName[code] = name
		count++
	}
	return count, nil
}

// FindByName resolves a display name. An exact match wins; otherwise
// substring candidates are considered and, when ambiguous, the shortest
// candidate name is taken as the most specific listing.
func (d *stockDirectory) FindByName(name string) (*dto.StockInfo, bool) {
	name = strings.TrimSpace(name)
	if code, ok := d.nameToCode[name]; ok {
		return &dto.StockInfo{StockCode: code, StockName: name}, true
	}

	var best *dto.StockInfo
	for candidate, code := range d.nameToCode {
		if !strings.Contains(candidate, name) && !strings.Contains(name, candidate) {
			continue
		}
		if best == nil || len(candidate) < len(best.StockName) {
			best = &dto.StockInfo{StockCode: code, StockName: candidate}
		}
	}
	if best != nil {
		return best, true
	}
	return nil, false
}

func (d *stockDirectory) FindByCode(code string) (*dto.StockInfo, bool) {
	code = strings.TrimSpace(code)
	if name, ok := d.codeToName[code]; ok {
		return &dto.StockInfo{StockCode: code, StockName: name}, true
	}
	return nil, false
}

func (d *stockDirectory) Size() int {
	return len(d.codeToName)
}
