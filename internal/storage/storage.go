// Package storage persists reconstruction output.
package storage

import (
	"context"
	"errors"

	"feeScope/internal/model"
)

// Sink receives output records. Writes of the same key replace earlier ones where the sink
// supports it.
type Sink interface {
	WriteDailyFees(ctx context.Context, records []model.DailyFeeRecord) error
	WriteEstimates(ctx context.Context, records []model.FeeEstimateRecord) error
	WriteVerifications(ctx context.Context, records []model.VerificationRecord) error
}

// Multi fans every write out to each sink in order and joins their errors.
type Multi []Sink

func (m Multi) WriteDailyFees(ctx context.Context, records []model.DailyFeeRecord) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.WriteDailyFees(ctx, records))
	}
	return errors.Join(errs...)
}

func (m Multi) WriteEstimates(ctx context.Context, records []model.FeeEstimateRecord) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.WriteEstimates(ctx, records))
	}
	return errors.Join(errs...)
}

func (m Multi) WriteVerifications(ctx context.Context, records []model.VerificationRecord) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.WriteVerifications(ctx, records))
	}
	return errors.Join(errs...)
}
