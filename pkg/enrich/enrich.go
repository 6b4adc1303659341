package enrich

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/classify"
	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/engine"
	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/rules"
	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/sheet"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Service ties the enrichment pipeline together for one process: rule set,
// classification collaborators, and rewrite options are loaded once and
// shared across requests. Each request operates on its own workbook with no
// shared mutable state.
type Service struct {
	opts     Options
	rules    *rules.RuleSet
	provider *classify.Provider
	log      *zap.Logger
}

// NewService creates a Service.
func NewService(opts Options, ruleSet *rules.RuleSet, provider *classify.Provider, log *zap.Logger) *Service {
	return &Service{
		opts:     opts,
		rules:    ruleSet,
		provider: provider,
		log:      log,
	}
}

// Rules returns the service's rule set.
func (s *Service) Rules() *rules.RuleSet {
	return s.rules
}

// Provider returns the classification collaborators in use.
func (s *Service) Provider() *classify.Provider {
	return s.provider
}

// ValidateFilename reports whether the file name carries a supported
// spreadsheet extension.
func ValidateFilename(name string) error {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return nil
	}
	return ErrUnsupportedFile
}

// SheetNames lists the sheets of a workbook given its raw bytes.
func (s *Service) SheetNames(content []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// Export runs the full pipeline on one workbook: locate the header row of
// the selected sheet, enrich every data row, and rewrite the data region in
// place while preserving formatting. All other sheets pass through
// unchanged.
//
// On success it returns the path of a temporary .xlsx file holding the
// modified workbook; the caller owns the file and must remove it once the
// bytes have been delivered. On any failure the temporary artifact is
// already cleaned up.
func (s *Service) Export(ctx context.Context, content []byte, sheetName string) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if !slices.Contains(sheets, sheetName) {
		return "", &SheetNotFoundError{Sheet: sheetName, Available: sheets}
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return "", fmt.Errorf("read sheet %q: %w", sheetName, err)
	}
	headerRow := sheet.LocateHeader(rows, s.opts.TargetColumn, s.opts.HeaderSearchRows, s.opts.DefaultHeaderRow, s.log)

	table, err := sheet.ReadTable(f, sheetName, headerRow)
	if err != nil {
		return "", fmt.Errorf("read table: %w", err)
	}
	s.log.Info("parsed table",
		zap.String("sheet", sheetName),
		zap.Int("header_row", headerRow),
		zap.Int("rows", len(table.Rows)),
		zap.Strings("columns", table.Headers))

	eng := engine.New(s.provider, s.rules, s.opts.Workers, s.opts.CallTimeout, s.log)
	enriched, err := eng.Enrich(ctx, table)
	if err != nil {
		return "", err
	}

	rewriter := sheet.NewRewriter(f, sheetName, s.opts.NewColumnWidth, s.log)
	if err := rewriter.Rewrite(headerRow, s.rules.Assignment.ColumnsToAdd, enriched); err != nil {
		return "", err
	}

	return s.saveTemp(f)
}

// saveTemp writes the modified workbook to a transient file, removing it
// again if the write fails partway.
func (s *Service) saveTemp(f *excelize.File) (string, error) {
	tmp, err := os.CreateTemp("", "enriched-*.xlsx")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}
