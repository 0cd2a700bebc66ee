package service

import (
	"context"
	"fmt"
	"time"

	"finsync/internal/models"
	"finsync/pkg/config"

	"go.uber.org/zap"
)

// TransferDetector tags pairs of opposite transactions between two owned accounts (same
// local day, same absolute amount) with the reserved transfer category.
type TransferDetector struct {
	transactions TransactionStore
	categories   CategoryStore
	categoryID   string
	categoryName string
	window       time.Duration
	chunkSize    int
	location     *time.Location
	now          func() time.Time
	logger       *zap.Logger
}

func NewTransferDetector(
	transactions TransactionStore,
	categories CategoryStore,
	cfg config.SyncConfig,
	logger *zap.Logger,
) *TransferDetector {
	chunkSize := cfg.TransferChunkSize
	if chunkSize <= 0 {
		chunkSize = 100
	}
	windowDays := cfg.TransferWindowDays
	if windowDays <= 0 {
		windowDays = 30
	}

	return &TransferDetector{
		transactions: transactions,
		categories:   categories,
		categoryID:   cfg.TransferCategoryID,
		categoryName: cfg.TransferCategoryName,
		window:       time.Duration(windowDays) * 24 * time.Hour,
		chunkSize:    chunkSize,
		location:     cfg.Location(),
		now:          time.Now,
		logger:       logger,
	}
}

// DetectAndMark runs one detection pass over the trailing window and returns the number
// of transactions moved into the transfer category.
func (d *TransferDetector) DetectAndMark(ctx context.Context) (int, error) {
	// 1. Reserved category
	category, err := d.categories.EnsureByName(ctx, d.categoryID, d.categoryName)
	if err != nil {
		return 0, fmt.Errorf("failed to ensure transfer category: %w", err)
	}

	// 2. Candidates, newest first
	since := d.now().Add(-d.window)
	candidates, err := d.transactions.ListTransferCandidates(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("failed to load transfer candidates: %w", err)
	}

	// 3-6. Pairing
	ids := PairInternalTransfers(candidates, d.location)
	if len(ids) == 0 {
		d.logger.Debug("No internal transfers found", zap.Int("candidates", len(candidates)))
		return 0, nil
	}

	// 7. Chunked update
	marked := 0
	for start := 0; start < len(ids); start += d.chunkSize {
		end := min(start+d.chunkSize, len(ids))
		n, err := d.transactions.AssignCategory(ctx, ids[start:end], category.ID)
		if err != nil {
			return marked, fmt.Errorf("failed to mark transfers: %w", err)
		}
		marked += int(n)
	}

	d.logger.Info("Internal transfers marked",
		zap.Int("candidates", len(candidates)),
		zap.Int("paired", len(ids)),
		zap.Int("marked", marked),
		zap.String("category_id", category.ID),
	)
	return marked, nil
}

type transferBucketKey struct {
	day    string
	amount int64
}

type transferBucket struct {
	positives []models.TransferCandidate
	negatives []models.TransferCandidate
}

// PairInternalTransfers is the greedy matcher. Candidates are bucketed by (local calendar
// day in loc, |amount|); inside a bucket each negative, in input order, takes the first
// unused positive of a different account. Ids are returned in pairing order and only for
// transactions without a category. Zero amounts never pair.
func PairInternalTransfers(candidates []models.TransferCandidate, loc *time.Location) []string {
	if loc == nil {
		loc = time.UTC
	}

	order := []transferBucketKey{}
	buckets := map[transferBucketKey]*transferBucket{}
	for _, c := range candidates {
		if c.AmountCZK == 0 {
			continue
		}
		key := transferBucketKey{day: c.Ts.In(loc).Format("2006-01-02"), amount: abs64(c.AmountCZK)}
		b, ok := buckets[key]
		if !ok {
			b = &transferBucket{}
			buckets[key] = b
			order = append(order, key)
		}
		if c.AmountCZK > 0 {
			b.positives = append(b.positives, c)
		} else {
			b.negatives = append(b.negatives, c)
		}
	}

	ids := []string{}
	for _, key := range order {
		b := buckets[key]
		if len(b.positives) == 0 || len(b.negatives) == 0 {
			continue
		}

		used := make([]bool, len(b.positives))
		for _, neg := range b.negatives {
			for i, pos := range b.positives {
				if used[i] || pos.AccountID == neg.AccountID {
					continue
				}
				used[i] = true
				if !neg.Categorized() {
					ids = append(ids, neg.ID)
				}
				if !pos.Categorized() {
					ids = append(ids, pos.ID)
				}
				break
			}
		}
	}
	return ids
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
