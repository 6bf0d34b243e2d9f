package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// CategoryUnmatched is returned when no row of the reference workbook matches
// a candidate major, or when the workbook cannot be read at all.
const CategoryUnmatched = "未匹配"

// synonymHeader is the optional third column of the reference workbook
// holding canonical synonym spellings for a sub-major.
const synonymHeader = "同义规范名"

// MajorLookupBackend resolves an already-normalized major name to a category.
// An error means the backend could not answer (unreadable workbook, formula
// evaluation failure) and the next backend should be tried.
type MajorLookupBackend interface {
	Lookup(normalizedMajor string) (string, error)
}

type MajorService interface {
	MapCategory(rawMajor string) string
	IsMajorAcceptable(rawMajor string, allowedCategories []string) bool
}

type majorService struct {
	backends []MajorLookupBackend
}

// NewMajorService builds the lookup chain for the reference workbook.
// lookupMode "formula" tries in-workbook formula evaluation first and falls
// back to the static row scan; anything else uses the scan alone.
func NewMajorService(workbookPath, sheet, lookupMode string) MajorService {
	scan := &scanLookupBackend{workbookPath: workbookPath, sheet: sheet}
	if lookupMode == "formula" {
		return &majorService{backends: []MajorLookupBackend{
			&formulaLookupBackend{workbookPath: workbookPath, sheet: sheet},
			scan,
		}}
	}
	return &majorService{backends: []MajorLookupBackend{scan}}
}

// NewMajorServiceWithBackends wires explicit backends, first one wins.
func NewMajorServiceWithBackends(backends ...MajorLookupBackend) MajorService {
	return &majorService{backends: backends}
}

// MapCategory maps a raw major to its coarse category, or 未匹配 when nothing
// matches or the reference table is unreadable. It never returns an error.
func (s *majorService) MapCategory(rawMajor string) string {
	normalized := NormalizeMajor(rawMajor)
	if normalized == "" {
		// An empty probe would substring-match the first row.
		return CategoryUnmatched
	}

	for _, backend := range s.backends {
		category, err := backend.Lookup(normalized)
		if err != nil {
			log.WithError(err).Debugf("major lookup backend failed for %q", normalized)
			continue
		}
		if category == "" {
			return CategoryUnmatched
		}
		return category
	}
	return CategoryUnmatched
}

// IsMajorAcceptable reports whether the candidate major satisfies any entry
// of the job posting's allowed list. The list is OR semantics: a hit on
// either the mapped category or the normalized raw string is enough.
func (s *majorService) IsMajorAcceptable(rawMajor string, allowedCategories []string) bool {
	mapped := s.MapCategory(rawMajor)
	normalizedCandidate := NormalizeMajor(rawMajor)

	for _, allowed := range allowedCategories {
		allowedNormalized := NormalizeMajor(allowed)
		if mapped != CategoryUnmatched && mapped == allowedNormalized {
			return true
		}
		if normalizedCandidate == allowedNormalized {
			return true
		}
	}
	return false
}

// scanLookupBackend reads the sheet row by row. The synonym column, when the
// header names one, is probed across all rows before the sub-major column;
// matching is substring containment so abbreviated table entries still hit.
// Row order is significant: the first matching row wins.
type scanLookupBackend struct {
	workbookPath string
	sheet        string
}

func (b *scanLookupBackend) Lookup(normalizedMajor string) (string, error) {
	f, err := excelize.OpenFile(b.workbookPath)
	if err != nil {
		return "", errors.Wrap(err, "failed to open majors workbook")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.WithError(cerr).Warn("failed to close majors workbook")
		}
	}()

	rows, err := f.GetRows(b.sheet)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read sheet %q", b.sheet)
	}
	if len(rows) < 2 {
		return CategoryUnmatched, nil
	}

	// First row is the header; only the synonym column is located by name,
	// the first two columns are sub-major and category by position.
	synonymCol := -1
	for i, cell := range rows[0] {
		if strings.TrimSpace(cell) == synonymHeader {
			synonymCol = i
			break
		}
	}

	if synonymCol >= 0 {
		for _, row := range rows[1:] {
			if synonymCol < len(row) && strings.Contains(row[synonymCol], normalizedMajor) {
				return cellAt(row, 1), nil
			}
		}
	}

	for _, row := range rows[1:] {
		if strings.Contains(cellAt(row, 0), normalizedMajor) {
			return cellAt(row, 1), nil
		}
	}

	return CategoryUnmatched, nil
}

func cellAt(row []string, col int) string {
	if col < len(row) {
		return strings.TrimSpace(row[col])
	}
	return ""
}

// formulaLookupBackend evaluates an exact-match lookup formula inside the
// workbook itself. The workbook is shared process-wide and the scratch cell
// is a single mutable slot, so evaluations are serialized.
type formulaLookupBackend struct {
	workbookPath string
	sheet        string
	mu           sync.Mutex
}

const formulaScratchCell = "Z1"

func (b *formulaLookupBackend) Lookup(normalizedMajor string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := excelize.OpenFile(b.workbookPath)
	if err != nil {
		return "", errors.Wrap(err, "failed to open majors workbook")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.WithError(cerr).Warn("failed to close majors workbook")
		}
	}()

	rows, err := f.GetRows(b.sheet)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read sheet %q", b.sheet)
	}
	if len(rows) < 2 {
		return CategoryUnmatched, nil
	}

	needle := strings.ReplaceAll(normalizedMajor, `"`, `""`)
	formula := fmt.Sprintf(`IFERROR(VLOOKUP("%s",A2:B%d,2,FALSE),"%s")`,
		needle, len(rows), CategoryUnmatched)

	if err := f.SetCellFormula(b.sheet, formulaScratchCell, formula); err != nil {
		return "", errors.Wrap(err, "failed to set lookup formula")
	}

	result, err := f.CalcCellValue(b.sheet, formulaScratchCell)
	if err != nil {
		return "", errors.Wrap(err, "failed to evaluate lookup formula")
	}
	if result == "" {
		return CategoryUnmatched, nil
	}
	return result, nil
}
