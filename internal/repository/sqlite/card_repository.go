package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/prepdeck/prepdeck/internal/logger"
	"github.com/prepdeck/prepdeck/internal/models"
	"github.com/prepdeck/prepdeck/internal/repository"
)

var cardColumns = []string{
	"id", "deck_id", "mode", "learning_state", "learning_step", "learning_card_type",
	"test_date", "schedule", "current_step", "state", "stability", "difficulty",
	"mastery", "reps", "lapses", "last_review_at", "next_review_at", "original_due_at",
	"last_response", "is_leech", "leech_suspended", "created_at",
}

type cardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a new CardRepository implementation
func NewCardRepository(db *sql.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (models.Card, error) {
	var (
		c            models.Card
		testDate     sql.NullTime
		schedule     sql.NullString
		currentStep  sql.NullInt64
		state        sql.NullInt64
		stability    sql.NullFloat64
		difficulty   sql.NullFloat64
		lastReview   sql.NullTime
		originalDue  sql.NullTime
		lastResponse sql.NullInt64
	)
	err := row.Scan(
		&c.ID, &c.DeckID, &c.Mode, &c.LearningState, &c.LearningStep, &c.LearningCardType,
		&testDate, &schedule, &currentStep, &state, &stability, &difficulty,
		&c.Mastery, &c.Reps, &c.Lapses, &lastReview, &c.NextReviewAt, &originalDue,
		&lastResponse, &c.IsLeech, &c.LeechSuspended, &c.CreatedAt,
	)
	if err != nil {
		return models.Card{}, err
	}
	if testDate.Valid {
		tp := &models.TestPrepState{TestDate: testDate.Time}
		if schedule.Valid && schedule.String != "" {
			if err := json.Unmarshal([]byte(schedule.String), &tp.Schedule); err != nil {
				return models.Card{}, err
			}
		}
		if currentStep.Valid {
			tp.CurrentStep = int(currentStep.Int64)
		}
		c.TestPrep = tp
	}
	if state.Valid {
		c.Memory = &models.MemoryModel{
			State:      models.MemoryState(state.Int64),
			Stability:  stability.Float64,
			Difficulty: difficulty.Float64,
		}
	}
	if lastReview.Valid {
		t := lastReview.Time
		c.LastReviewAt = &t
	}
	if originalDue.Valid {
		t := originalDue.Time
		c.OriginalDueAt = &t
	}
	if lastResponse.Valid {
		r := models.Rating(lastResponse.Int64)
		c.LastResponse = &r
	}
	return c, nil
}

func (r *cardRepository) Get(ctx context.Context, id int64) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("getting card: id=%d", id)

	query, args, err := sqlBuilder.Select(cardColumns...).From("cards").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	c, err := scanCard(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found: id=%d", id)
		} else {
			log.Error("failed to get card: %v", err)
		}
		return nil, err
	}
	return &c, nil
}

func (r *cardRepository) List(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("listing cards with filter: deck_id=%d, mode=%s", filter.DeckID, filter.Mode)

	query := sqlBuilder.Select(cardColumns...).From("cards")

	// Dynamic WHERE clauses
	if filter.DeckID != 0 {
		query = query.Where(squirrel.Eq{"deck_id": filter.DeckID})
	}
	if filter.Mode != "" {
		query = query.Where(squirrel.Eq{"mode": filter.Mode})
	}
	if filter.DueBy != nil {
		query = query.Where(squirrel.LtOrEq{"next_review_at": *filter.DueBy})
	}
	if filter.IsLeech != nil {
		query = query.Where(squirrel.Eq{"is_leech": *filter.IsLeech})
	}

	query = query.OrderBy("next_review_at ASC, id ASC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	return r.queryCards(ctx, sqlStr, args...)
}

func (r *cardRepository) ListAll(ctx context.Context) ([]models.Card, error) {
	sqlStr, args, err := sqlBuilder.Select(cardColumns...).From("cards").OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryCards(ctx, sqlStr, args...)
}

func (r *cardRepository) queryCards(ctx context.Context, sqlStr string, args ...any) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query cards: %v", err)
		return nil, err
	}
	defer rows.Close()
	var cards []models.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	log.Debug("found %d cards", len(cards))
	return cards, rows.Err()
}

func (r *cardRepository) Insert(ctx context.Context, c models.Card) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("inserting card: deck_id=%d, mode=%s", c.DeckID, c.Mode)

	var (
		testDate    any
		schedule    any
		currentStep any
	)
	if c.TestPrep != nil {
		testDate = c.TestPrep.TestDate
		currentStep = c.TestPrep.CurrentStep
		raw, err := json.Marshal(c.TestPrep.Schedule)
		if err != nil {
			log.Error("failed to encode schedule: %v", err)
			return 0, err
		}
		schedule = string(raw)
	}
	var state, stability, difficulty any
	if c.Memory != nil {
		state = int(c.Memory.State)
		stability = c.Memory.Stability
		difficulty = c.Memory.Difficulty
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO cards (deck_id, mode, learning_state, learning_step, learning_card_type,
                   test_date, schedule, current_step, state, stability, difficulty,
                   mastery, reps, lapses, last_review_at, next_review_at, original_due_at,
                   last_response, is_leech, leech_suspended, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, c.DeckID, c.Mode, c.LearningState, c.LearningStep, c.LearningCardType,
		testDate, schedule, currentStep, state, stability, difficulty,
		c.Mastery, c.Reps, c.Lapses, c.LastReviewAt, c.NextReviewAt, c.OriginalDueAt,
		ratingOrNil(c.LastResponse), c.IsLeech, c.LeechSuspended, c.CreatedAt)
	if err != nil {
		log.Error("failed to insert card: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get card id: %v", err)
		return 0, err
	}
	log.Debug("card inserted: id=%d", id)
	return id, nil
}

func ratingOrNil(r *models.Rating) any {
	if r == nil {
		return nil
	}
	return int(*r)
}

// updateBuilder maps the set fields of a diff onto an UPDATE statement.
// Nil pointers are skipped entirely so unset columns keep their values.
func updateBuilder(u models.CardUpdate) squirrel.UpdateBuilder {
	q := sqlBuilder.Update("cards").Where(squirrel.Eq{"id": u.CardID})
	if u.Mode != nil {
		q = q.Set("mode", *u.Mode)
	}
	if u.LearningState != nil {
		q = q.Set("learning_state", *u.LearningState)
	}
	if u.LearningStep != nil {
		q = q.Set("learning_step", *u.LearningStep)
	}
	if u.LearningCardType != nil {
		q = q.Set("learning_card_type", *u.LearningCardType)
	}
	if u.CurrentStep != nil {
		q = q.Set("current_step", *u.CurrentStep)
	}
	if u.ClearTestPrep {
		q = q.Set("test_date", nil).Set("schedule", nil).Set("current_step", nil)
	}
	if u.State != nil {
		q = q.Set("state", int(*u.State))
	}
	if u.Stability != nil {
		q = q.Set("stability", *u.Stability)
	}
	if u.Difficulty != nil {
		q = q.Set("difficulty", *u.Difficulty)
	}
	if u.Mastery != nil {
		q = q.Set("mastery", *u.Mastery)
	}
	if u.Reps != nil {
		q = q.Set("reps", *u.Reps)
	}
	if u.Lapses != nil {
		q = q.Set("lapses", *u.Lapses)
	}
	if u.LastReviewAt != nil {
		q = q.Set("last_review_at", *u.LastReviewAt)
	}
	if u.NextReviewAt != nil {
		q = q.Set("next_review_at", *u.NextReviewAt)
	}
	if u.OriginalDueAt != nil {
		q = q.Set("original_due_at", *u.OriginalDueAt)
	}
	if u.LastResponse != nil {
		q = q.Set("last_response", int(*u.LastResponse))
	}
	if u.IsLeech != nil {
		q = q.Set("is_leech", *u.IsLeech)
	}
	return q
}

func (r *cardRepository) ApplyUpdate(ctx context.Context, u models.CardUpdate) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("applying card update: id=%d", u.CardID)

	sqlStr, args, err := updateBuilder(u).ToSql()
	if err != nil {
		// Squirrel rejects an UPDATE with zero SET clauses; an empty diff
		// is a no-op, not an error.
		log.Debug("empty card update: id=%d", u.CardID)
		return nil
	}
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to update card: %v", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		log.Debug("card not found on update: id=%d", u.CardID)
		return sql.ErrNoRows
	}
	return nil
}

func (r *cardRepository) ApplyUpdates(ctx context.Context, updates []models.CardUpdate) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("applying %d card updates", len(updates))

	return tx(ctx, r.db, func(txn *sql.Tx) error {
		for _, u := range updates {
			sqlStr, args, err := updateBuilder(u).ToSql()
			if err != nil {
				continue
			}
			res, err := txn.ExecContext(ctx, sqlStr, args...)
			if err != nil {
				log.Error("failed to update card %d in batch: %v", u.CardID, err)
				return err
			}
			if n, err := res.RowsAffected(); err == nil && n == 0 {
				log.Error("card %d missing during batch update", u.CardID)
				return sql.ErrNoRows
			}
		}
		return nil
	})
}

func (r *cardRepository) SetLeechSuspended(ctx context.Context, id int64, suspended bool) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("setting leech suspension: id=%d, suspended=%v", id, suspended)

	res, err := r.db.ExecContext(ctx, `UPDATE cards SET leech_suspended = ? WHERE id = ?`, suspended, id)
	if err != nil {
		log.Error("failed to set leech suspension: %v", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *cardRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("deleting card: id=%d", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete card: %v", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
