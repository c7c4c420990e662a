package xlsx

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
)

const (
	DefaultSheet = "Table 1"

	columnID    = "ID"
	columnName  = "Name"
	columnEmail = "E-Mail"
	columnSent  = "Gesendet"
	columnLabel = "Dominante Tag - Label"
)

// Store keeps survey submissions in a local workbook whose first row holds
// the column headers.
type Store struct {
	path  string
	sheet string

	mu sync.Mutex
}

func New(path, sheet string) *Store {
	if strings.TrimSpace(sheet) == "" {
		sheet = DefaultSheet
	}
	return &Store{path: path, sheet: sheet}
}

type layout struct {
	columns map[string]int
}

func (l layout) cell(row []string, header string) string {
	idx, ok := l.columns[header]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (s *Store) FetchUnprocessed(ctx context.Context) ([]domain.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", s.sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	l, err := readLayout(rows[0])
	if err != nil {
		return nil, err
	}

	var out []domain.Submission
	for _, row := range rows[1:] {
		id := l.cell(row, columnID)
		if id == "" {
			continue
		}
		sub := domain.Submission{
			ID:        id,
			Name:      l.cell(row, columnName),
			Email:     l.cell(row, columnEmail),
			Processed: parseBool(l.cell(row, columnSent)),
			Archetype: domain.Archetype(l.cell(row, columnLabel)),
		}
		if !sub.Pending() {
			continue
		}
		for idx := range sub.Answers {
			sub.Answers[idx] = parseAnswer(l.cell(row, domain.QuestionField(idx)))
		}
		out = append(out, sub)
	}
	return out, nil
}

func (s *Store) MarkProcessed(ctx context.Context, id string, archetype domain.Archetype) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", s.sheet, err)
	}
	if len(rows) == 0 {
		return domain.WrapError(domain.ErrRecordNotFound, "xlsx.mark", fmt.Errorf("submission %s", id))
	}
	l, err := readLayout(rows[0])
	if err != nil {
		return err
	}
	sentCol, okSent := l.columns[columnSent]
	labelCol, okLabel := l.columns[columnLabel]
	if !okSent || !okLabel {
		return domain.WrapError(domain.ErrInvalidInput, "xlsx.mark", fmt.Errorf("sheet %q lacks %q or %q column", s.sheet, columnSent, columnLabel))
	}

	for rowIdx, row := range rows[1:] {
		if l.cell(row, columnID) != id {
			continue
		}
		excelRow := rowIdx + 2
		if err := s.setCell(f, sentCol, excelRow, true); err != nil {
			return err
		}
		if err := s.setCell(f, labelCol, excelRow, archetype.String()); err != nil {
			return err
		}
		if err := f.Save(); err != nil {
			return fmt.Errorf("save workbook: %w", err)
		}
		return nil
	}
	return domain.WrapError(domain.ErrRecordNotFound, "xlsx.mark", fmt.Errorf("submission %s", id))
}

func (s *Store) setCell(f *excelize.File, colIdx, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(colIdx+1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellValue(s.sheet, cell, value); err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}
	return nil
}

func readLayout(header []string) (layout, error) {
	l := layout{columns: make(map[string]int, len(header))}
	for idx, name := range header {
		name = strings.TrimSpace(name)
		if name != "" {
			l.columns[name] = idx
		}
	}
	if _, ok := l.columns[columnID]; !ok {
		return l, domain.WrapError(domain.ErrInvalidInput, "xlsx.layout", fmt.Errorf("missing %q column", columnID))
	}
	return l, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "ja", "yes", "x", "wahr":
		return true
	default:
		return false
	}
}

func parseAnswer(v string) int {
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || n != float64(int(n)) {
		return 0
	}
	return int(n)
}
