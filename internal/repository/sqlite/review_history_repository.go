package sqlite

import (
	"context"
	"database/sql"

	"github.com/prepdeck/prepdeck/internal/logger"
	"github.com/prepdeck/prepdeck/internal/models"
	"github.com/prepdeck/prepdeck/internal/repository"
)

type reviewHistoryRepository struct {
	db *sql.DB
}

// NewReviewHistoryRepository creates a new ReviewHistoryRepository implementation
func NewReviewHistoryRepository(db *sql.DB) repository.ReviewHistoryRepository {
	return &reviewHistoryRepository{db: db}
}

func (r *reviewHistoryRepository) Insert(ctx context.Context, e models.ReviewEntry) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("review_history_repo")
	log.Debug("inserting review entry: card_id=%d, rating=%d", e.CardID, e.Rating)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO review_history (card_id, rating, elapsed_days, scheduled_days, state, stability, difficulty, reviewed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, e.CardID, int(e.Rating), e.ElapsedDays, e.ScheduledDays, int(e.State), e.Stability, e.Difficulty, e.ReviewedAt)
	if err != nil {
		log.Error("failed to insert review entry: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get review entry id: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *reviewHistoryRepository) ListForCard(ctx context.Context, cardID int64, limit int) ([]models.ReviewEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("review_history_repo")
	log.Debug("listing review entries: card_id=%d, limit=%d", cardID, limit)

	if limit <= 0 {
		limit = 200
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, card_id, rating, elapsed_days, scheduled_days, state, stability, difficulty, reviewed_at
FROM review_history
WHERE card_id = ?
ORDER BY reviewed_at DESC, id DESC
LIMIT ?
`, cardID, limit)
	if err != nil {
		log.Error("failed to query review entries: %v", err)
		return nil, err
	}
	defer rows.Close()
	var entries []models.ReviewEntry
	for rows.Next() {
		var e models.ReviewEntry
		if err := rows.Scan(&e.ID, &e.CardID, &e.Rating, &e.ElapsedDays, &e.ScheduledDays, &e.State, &e.Stability, &e.Difficulty, &e.ReviewedAt); err != nil {
			log.Error("failed to scan review entry row: %v", err)
			return nil, err
		}
		entries = append(entries, e)
	}
	log.Debug("found %d review entries", len(entries))
	return entries, rows.Err()
}
