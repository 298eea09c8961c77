// Package insight aggregates the energy dataset and answers natural
// language questions about it through an external model provider.
package insight

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrAlreadyExists means the aggregate artifact is already on disk;
	// generation is a no-op.
	ErrAlreadyExists = errors.New("insight: aggregate file already exists")

	// ErrSourceMissing means the source CSV is absent.
	ErrSourceMissing = errors.New("insight: source csv not found")

	// ErrAggregateMissing means Ask was called before the aggregate was
	// generated.
	ErrAggregateMissing = errors.New("insight: aggregate file not found, generate it first")
)

// Provider rate limit: the insight endpoint is user-facing but the
// upstream quota is shared, so keep a modest ceiling with small bursts.
const (
	providerRateLimit = 30.0 / 60.0
	providerBurst     = 3
	askTimeout        = 60 * time.Second
)

// Source and aggregate CSV column names.
const (
	colCountry     = "Country"
	colYear        = "Year"
	colConsumption = "Total Energy Consumption (TWh)"
)

// Service generates the per-country/year aggregate and forwards
// questions about it to the model provider.
type Service struct {
	sourcePath    string
	aggregatePath string
	completer     Completer
	limiter       *rate.Limiter
	logger        *zap.Logger
}

// NewService creates an insight service reading from sourcePath and
// maintaining its derived aggregate at aggregatePath.
func NewService(sourcePath, aggregatePath string, completer Completer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sourcePath:    sourcePath,
		aggregatePath: aggregatePath,
		completer:     completer,
		limiter:       rate.NewLimiter(rate.Limit(providerRateLimit), providerBurst),
		logger:        logger,
	}
}

// aggregateRow is one (country, year) group with its mean consumption.
type aggregateRow struct {
	country         string
	year            int
	meanConsumption float64
}

// GenerateAggregate groups the source CSV by (country, year), computes
// the mean consumption per group and writes the result to the aggregate
// file. Returns the number of groups written. Idempotent: if the file
// already exists the call is a no-op reporting ErrAlreadyExists.
func (s *Service) GenerateAggregate(ctx context.Context) (int, error) {
	if _, err := os.Stat(s.aggregatePath); err == nil {
		return 0, ErrAlreadyExists
	}

	rows, err := s.readSourceGroups()
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(s.aggregatePath), 0755); err != nil {
		return 0, fmt.Errorf("creating data directory: %w", err)
	}

	f, err := os.Create(s.aggregatePath)
	if err != nil {
		return 0, fmt.Errorf("creating aggregate file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{colCountry, colYear, colConsumption}); err != nil {
		return 0, fmt.Errorf("writing aggregate header: %w", err)
	}
	for _, row := range rows {
		rec := []string{
			row.country,
			strconv.Itoa(row.year),
			strconv.FormatFloat(row.meanConsumption, 'f', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return 0, fmt.Errorf("writing aggregate row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flushing aggregate file: %w", err)
	}

	s.logger.Info("aggregate generated",
		zap.String("path", s.aggregatePath),
		zap.Int("groups", len(rows)))

	return len(rows), nil
}

// readSourceGroups loads the source CSV and folds it into sorted
// (country, year) groups with mean consumption.
func (s *Service) readSourceGroups() ([]aggregateRow, error) {
	f, err := os.Open(s.sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSourceMissing
		}
		return nil, fmt.Errorf("opening source csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading source header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, required := range []string{colCountry, colYear, colConsumption} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("source csv missing column %q", required)
		}
	}

	type key struct {
		country string
		year    int
	}
	sums := make(map[key]float64)
	counts := make(map[key]int)

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading source row: %w", err)
		}

		year, err := strconv.Atoi(strings.TrimSpace(rec[idx[colYear]]))
		if err != nil {
			continue
		}
		cons, err := strconv.ParseFloat(rec[idx[colConsumption]], 64)
		if err != nil {
			continue
		}

		k := key{country: rec[idx[colCountry]], year: year}
		sums[k] += cons
		counts[k]++
	}

	rows := make([]aggregateRow, 0, len(sums))
	for k, sum := range sums {
		rows = append(rows, aggregateRow{
			country:         k.country,
			year:            k.year,
			meanConsumption: sum / float64(counts[k]),
		})
	}

	// Deterministic output so regeneration is byte-stable.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].country != rows[j].country {
			return rows[i].country < rows[j].country
		}
		return rows[i].year < rows[j].year
	})

	return rows, nil
}

// Ask embeds the aggregate table and the question into the analysis
// prompt and forwards it to the model provider.
//
// Provider failures are returned as the answer text rather than as an
// error: the dashboard shows a degraded response instead of a fault.
// The only error conditions are a missing aggregate file and context
// cancellation.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	table, err := s.readAggregateTable()
	if err != nil {
		return "", err
	}

	op := uuid.New().String()
	s.logger.Info("forwarding insight question",
		zap.String("op", op),
		zap.Int("question_len", len(question)))

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, askTimeout)
	defer cancel()

	answer, err := s.completer.Complete(ctx, renderPrompt(table, question))
	if err != nil {
		s.logger.Warn("model provider failed",
			zap.String("op", op),
			zap.Error(err))
		return fmt.Sprintf("An error occurred while contacting the model provider: %s", err), nil
	}

	return answer, nil
}

// readAggregateTable loads the aggregate file as display text for the
// prompt.
func (s *Service) readAggregateTable() (string, error) {
	data, err := os.ReadFile(s.aggregatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrAggregateMissing
		}
		return "", fmt.Errorf("reading aggregate file: %w", err)
	}

	// The CSV reads fine as a table; just swap separators for the model.
	return strings.ReplaceAll(string(data), ",", "\t"), nil
}
