package preflight

import (
	"context"

	"github.com/google/uuid"

	pkgerrors "github.com/rentkit/rentkit-backend/pkg/errors"
)

// DefaultTierChunkSize bounds how many product ids a single tier query may
// carry, keeping the IN-list within storage limits.
const DefaultTierChunkSize = 500

// RowReader supplies the raw rows the scan operates on.
type RowReader interface {
	ListProducts(ctx context.Context, opts Options) ([]ProductRow, error)
	ListTiers(ctx context.Context, productIDs []uuid.UUID) ([]TierRow, error)
}

// Scanner runs the single-pass preflight analysis against a row reader.
type Scanner struct {
	reader    RowReader
	chunkSize int
}

// NewScanner builds a scanner. chunkSize <= 0 falls back to the default.
func NewScanner(reader RowReader, chunkSize int) (*Scanner, error) {
	if reader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "preflight row reader required")
	}
	if chunkSize <= 0 {
		chunkSize = DefaultTierChunkSize
	}
	return &Scanner{reader: reader, chunkSize: chunkSize}, nil
}

// Run reads all products and tiers in scope, then analyzes them in memory.
// Only storage failures abort the run; data anomalies become report issues.
func (s *Scanner) Run(ctx context.Context, opts Options) (*Report, error) {
	products, err := s.reader.ListProducts(ctx, opts)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products for preflight")
	}

	productIDs := make([]uuid.UUID, len(products))
	for i, product := range products {
		productIDs[i] = product.ID
	}

	tiersByProduct := map[uuid.UUID][]TierRow{}
	for start := 0; start < len(productIDs); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(productIDs) {
			end = len(productIDs)
		}
		tiers, err := s.reader.ListTiers(ctx, productIDs[start:end])
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tiers for preflight")
		}
		for _, tier := range tiers {
			tiersByProduct[tier.ProductID] = append(tiersByProduct[tier.ProductID], tier)
		}
	}

	return Analyze(products, tiersByProduct, opts), nil
}
