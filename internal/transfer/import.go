package transfer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-ats/internal/candidates"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

const importModule = "candidate_import"

// DefaultSource is recorded for imported candidates without a source column.
const DefaultSource = "Import"

// CandidateStore is the part of the candidate service used by transfer.
type CandidateStore interface {
	List(ctx context.Context) ([]candidates.Candidate, error)
	Create(ctx context.Context, req candidates.CreateCandidateRequest) (*candidates.Candidate, error)
}

// KeyStore deduplicates import batches by Idempotency-Key.
type KeyStore interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// ImportResult summarises one import batch.
type ImportResult struct {
	Success int                    `json:"success"`
	Failed  int                    `json:"failed"`
	Errors  []string               `json:"errors"`
	Data    []candidates.Candidate `json:"data"`
}

// Importer turns CSV uploads into candidates.
type Importer struct {
	store    CandidateStore
	keys     KeyStore
	validate *validator.Validate
	logger   *slog.Logger
}

// NewImporter wires the importer. keys may be nil to disable deduplication.
func NewImporter(store CandidateStore, keys KeyStore, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: store, keys: keys, validate: validator.New(), logger: logger}
}

// Parse reads a CSV document into mapped create requests. Row numbers in the
// result count the header as row 1.
func Parse(r io.Reader) ([]candidates.CreateCandidateRequest, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, shared.Invalid("File is empty")
	}
	if err != nil {
		return nil, shared.Invalid("Invalid CSV: %v", err)
	}
	mapping := MapHeaders(header)
	if len(mapping) == 0 {
		return nil, shared.Invalid("No recognised columns in header")
	}

	var rows []candidates.CreateCandidateRequest
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, shared.Invalid("Invalid CSV: %v", err)
		}
		if blank(record) {
			continue
		}
		rows = append(rows, mapping.Apply(record))
	}
	return rows, nil
}

// ValidateRow returns the problems with one mapped row.
func (im *Importer) ValidateRow(req candidates.CreateCandidateRequest) []string {
	var problems []string
	if strings.TrimSpace(req.Name) == "" {
		problems = append(problems, "Name is required")
	}
	email := strings.TrimSpace(req.Email)
	switch {
	case email == "":
		problems = append(problems, "Email is required")
	case im.validate.Var(email, "email") != nil:
		problems = append(problems, "Invalid email format")
	}
	if strings.TrimSpace(req.Mobile) == "" {
		problems = append(problems, "Mobile number is required")
	}
	return problems
}

// Import validates every row and creates the valid ones. A non-empty key
// that was already used fails the whole batch.
func (im *Importer) Import(ctx context.Context, r io.Reader, key string) (*ImportResult, error) {
	rows, err := Parse(r)
	if err != nil {
		return nil, err
	}
	key = strings.TrimSpace(key)
	if key != "" && im.keys != nil {
		if err := im.keys.CheckAndInsert(ctx, key, importModule); err != nil {
			return nil, err
		}
	}

	res := &ImportResult{Errors: []string{}, Data: []candidates.Candidate{}}
	for i, req := range rows {
		rowNum := i + 2
		if problems := im.ValidateRow(req); len(problems) > 0 {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("Row %d: %s", rowNum, strings.Join(problems, ", ")))
			continue
		}
		if req.Status == "" {
			req.Status = candidates.StatusNew
		}
		if req.Source == "" {
			req.Source = DefaultSource
		}
		c, err := im.store.Create(ctx, req)
		if err != nil {
			var se *shared.Error
			if !errors.As(err, &se) {
				im.logger.Error("import row", slog.Int("row", rowNum), slog.Any("error", err))
				err = errors.New("could not be saved")
			}
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("Row %d: %s", rowNum, err.Error()))
			continue
		}
		res.Success++
		res.Data = append(res.Data, *c)
	}

	if res.Success == 0 && key != "" && im.keys != nil {
		// nothing was written, so the same batch may be retried after fixing it
		if err := im.keys.Delete(ctx, key); err != nil {
			im.logger.Warn("release idempotency key", slog.String("key", key), slog.Any("error", err))
		}
	}
	return res, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
