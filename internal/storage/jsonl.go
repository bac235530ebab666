package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"feeScope/internal/model"
	"feeScope/internal/observability"
)

// Record kinds written to the kind field of each line.
const (
	KindDailyFee     = "daily_fee"
	KindEstimate     = "fee_estimate"
	KindVerification = "verification"
	KindOwnerTotal   = "owner_total"
)

// JsonlStorage appends records to a JSONL file, one object per line.
type JsonlStorage struct {
	path    string
	metrics *observability.Metrics
	mu      sync.Mutex
}

func NewJsonlStorage(path string, metrics *observability.Metrics) *JsonlStorage {
	return &JsonlStorage{path: path, metrics: metrics}
}

type line struct {
	Kind   string `json:"kind"`
	Record any    `json:"record"`
}

func (s *JsonlStorage) WriteDailyFees(_ context.Context, records []model.DailyFeeRecord) error {
	return writeLines(s, KindDailyFee, records)
}

func (s *JsonlStorage) WriteEstimates(_ context.Context, records []model.FeeEstimateRecord) error {
	return writeLines(s, KindEstimate, records)
}

func (s *JsonlStorage) WriteVerifications(_ context.Context, records []model.VerificationRecord) error {
	return writeLines(s, KindVerification, records)
}

// WriteTotals appends owner totals. Totals are a point-in-time view and only go to JSONL.
func (s *JsonlStorage) WriteTotals(_ context.Context, records []model.OwnerTotalRecord) error {
	return writeLines(s, KindOwnerTotal, records)
}

func writeLines[T any](s *JsonlStorage, kind string, records []T) error {
	if len(records) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		encoded, err := json.Marshal(line{Kind: kind, Record: record})
		if err != nil {
			return fmt.Errorf("marshal %s record: %w", kind, err)
		}
		if _, err := writer.Write(encoded); err != nil {
			return fmt.Errorf("write %s record: %w", kind, err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	s.metrics.Rows("jsonl", kind, len(records))
	return nil
}
