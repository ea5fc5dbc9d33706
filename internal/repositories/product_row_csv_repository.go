package repositories

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"storefront/internal/models"

	"go.uber.org/zap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVRowRepository reads product rows from a CSV file with a header line.
type CSVRowRepository struct {
	path string
	log  *zap.Logger
}

// NewCSVRowRepository creates a repository over the CSV file at path.
func NewCSVRowRepository(path string, log *zap.Logger) *CSVRowRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &CSVRowRepository{
		path: path,
		log:  log,
	}
}

// GetAll opens the file and returns every readable row. Malformed records are
// logged and skipped; a missing file or header is an error.
func (r *CSVRowRepository) GetAll(ctx context.Context) ([]models.ProductRow, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open product file: %w", err)
	}
	defer f.Close()

	rows, err := ReadProductRows(ctx, f, r.log)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.path, err)
	}
	return rows, nil
}

// ReadProductRows parses CSV product data from src.
func ReadProductRows(ctx context.Context, src io.Reader, log *zap.Logger) ([]models.ProductRow, error) {
	if log == nil {
		log = zap.NewNop()
	}

	br := bufio.NewReader(src)
	if head, _ := br.Peek(len(utf8BOM)); len(head) == len(utf8BOM) && string(head) == string(utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	for _, col := range models.ProductRowColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var rows []models.ProductRow
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("failed to read record: %w", err)
			}
			log.Error("skipping malformed csv record", zap.Int("line", parseErr.StartLine), zap.Error(err))
			continue
		}

		cells := make(map[string]string, len(models.ProductRowColumns))
		for _, col := range models.ProductRowColumns {
			if i := index[col]; i < len(record) {
				cells[col] = record[i]
			}
		}
		rows = append(rows, models.ProductRowFromMap(cells))
	}

	return rows, nil
}
