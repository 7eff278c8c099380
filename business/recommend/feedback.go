package recommend

import (
	"context"
	"fmt"
	"time"

	"freshCart/domain"
	"freshCart/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// FeedbackRecorder persists recommendation batches and the
// shown/clicked/purchased outcomes reported back by callers.
type FeedbackRecorder struct {
	recos RecommendationRepository
	ttl   time.Duration
	now   func() time.Time
}

func NewFeedbackRecorder(recos RecommendationRepository, ttl time.Duration) *FeedbackRecorder {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &FeedbackRecorder{
		recos: recos,
		ttl:   ttl,
		now:   time.Now,
	}
}

// PersistBatch stores one row per candidate with a shared batch id and
// a 24h expiry. Candidates that already have an unexpired row for the
// same strategy are skipped, so replaying a batch is a no-op.
func (f *FeedbackRecorder) PersistBatch(
	ctx context.Context,
	userID uint,
	cands []domain.RecommendationCandidate,
	reqContext map[string]any,
) (int64, error) {

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}
	if userID == 0 || len(cands) == 0 {
		return 0, nil
	}

	now := f.now()
	batchID := uuid.NewString()

	// Load the active set once per strategy present in the batch.
	active := make(map[domain.StrategyKind]map[uint64]struct{})
	for _, cand := range cands {
		if _, ok := active[cand.Strategy]; ok {
			continue
		}
		ids, err := f.recos.ActiveProductIDs(ctx, userID, cand.Strategy, now)
		if err != nil {
			return 0, fmt.Errorf("load active recommendations: %w", err)
		}
		set := make(map[uint64]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		active[cand.Strategy] = set
	}

	rows := make([]domain.StoredRecommendation, 0, len(cands))
	for _, cand := range cands {
		if _, dup := active[cand.Strategy][cand.ProductID]; dup {
			continue
		}
		row := domain.StoredRecommendation{
			UserID:    userID,
			ProductID: cand.ProductID,
			Strategy:  cand.Strategy,
			BatchID:   batchID,
			Score:     cand.NormalizedScore,
			Reason:    cand.Reason,
			ExpiresAt: now.Add(f.ttl),
		}
		if len(reqContext) > 0 {
			row.Context = datatypes.JSONMap(reqContext)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	inserted, err := f.recos.SaveBatch(ctx, rows)
	if err != nil {
		return 0, fmt.Errorf("persist recommendation batch: %w", err)
	}

	return inserted, nil
}

// MarkShown stamps the shown flag on the matching unexpired row. A
// strategy of "" matches any strategy. Zero matches is silent.
func (f *FeedbackRecorder) MarkShown(ctx context.Context, userID uint, productID uint64, strategy domain.StrategyKind) error {
	affected, err := f.recos.MarkShown(ctx, userID, productID, strategy, f.now())
	if err != nil {
		return fmt.Errorf("mark shown: %w", err)
	}
	f.logOutcome("shown", userID, productID, affected)
	return nil
}

func (f *FeedbackRecorder) MarkClicked(ctx context.Context, userID uint, productID uint64, strategy domain.StrategyKind) error {
	affected, err := f.recos.MarkClicked(ctx, userID, productID, strategy, f.now())
	if err != nil {
		return fmt.Errorf("mark clicked: %w", err)
	}
	f.logOutcome("clicked", userID, productID, affected)
	return nil
}

// MarkPurchased only matches rows already shown; a purchase reported
// for a recommendation nobody saw updates nothing.
func (f *FeedbackRecorder) MarkPurchased(ctx context.Context, userID uint, productID uint64, strategy domain.StrategyKind) error {
	affected, err := f.recos.MarkPurchased(ctx, userID, productID, strategy, f.now())
	if err != nil {
		return fmt.Errorf("mark purchased: %w", err)
	}
	f.logOutcome("purchased", userID, productID, affected)
	return nil
}

func (f *FeedbackRecorder) logOutcome(eventType string, userID uint, productID uint64, affected int64) {
	if affected == 0 {
		logger.Debug("feedback matched no active recommendation",
			"event_type", eventType,
			"user_id", userID,
			"product_id", productID,
		)
		return
	}
	FeedbackEventsTotal.WithLabelValues(eventType).Add(float64(affected))
}
