package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/prepdeck/prepdeck/internal/logger"
	"github.com/prepdeck/prepdeck/internal/models"
	"github.com/prepdeck/prepdeck/internal/repository"
)

type deckRepository struct {
	db *sql.DB
}

// NewDeckRepository creates a new DeckRepository implementation
func NewDeckRepository(db *sql.DB) repository.DeckRepository {
	return &deckRepository{db: db}
}

func (r *deckRepository) Get(ctx context.Context, id int64) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("getting deck: id=%d", id)

	var d models.Deck
	var testDate sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT id, name, mode, test_date, desired_retention, max_cards_per_day, new_cards_per_day, insertion_order, created_at
FROM decks
WHERE id = ?
`, id).Scan(&d.ID, &d.Name, &d.Mode, &testDate, &d.DesiredRetention, &d.MaxCardsPerDay, &d.NewCardsPerDay, &d.InsertionOrder, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("deck not found: id=%d", id)
		} else {
			log.Error("failed to get deck: %v", err)
		}
		return nil, err
	}
	if testDate.Valid {
		t := testDate.Time
		d.TestDate = &t
	}
	if d.EasyDays, err = r.easyDays(ctx, d.ID); err != nil {
		return nil, err
	}
	log.Debug("deck found: name=%s, mode=%s", d.Name, d.Mode)
	return &d, nil
}

func (r *deckRepository) List(ctx context.Context, filter models.DeckFilter) ([]models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("listing decks with filter: mode=%s", filter.Mode)

	query := sqlBuilder.Select(
		"id", "name", "mode", "test_date", "desired_retention",
		"max_cards_per_day", "new_cards_per_day", "insertion_order", "created_at",
	).From("decks")

	if filter.Mode != "" {
		query = query.Where(squirrel.Eq{"mode": filter.Mode})
	}
	query = query.OrderBy("created_at DESC, id DESC")
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

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, err
	}
	defer rows.Close()
	var decks []models.Deck
	for rows.Next() {
		var d models.Deck
		var testDate sql.NullTime
		if err := rows.Scan(&d.ID, &d.Name, &d.Mode, &testDate, &d.DesiredRetention, &d.MaxCardsPerDay, &d.NewCardsPerDay, &d.InsertionOrder, &d.CreatedAt); err != nil {
			log.Error("failed to scan deck row: %v", err)
			return nil, err
		}
		if testDate.Valid {
			t := testDate.Time
			d.TestDate = &t
		}
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range decks {
		if decks[i].EasyDays, err = r.easyDays(ctx, decks[i].ID); err != nil {
			return nil, err
		}
	}
	log.Debug("found %d decks", len(decks))
	return decks, nil
}

func (r *deckRepository) Insert(ctx context.Context, d models.Deck) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("inserting deck: name=%s, mode=%s", d.Name, d.Mode)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO decks (name, mode, test_date, desired_retention, max_cards_per_day, new_cards_per_day, insertion_order, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, d.Name, d.Mode, d.TestDate, d.DesiredRetention, d.MaxCardsPerDay, d.NewCardsPerDay, d.InsertionOrder, d.CreatedAt)
	if err != nil {
		log.Error("failed to insert deck: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get deck id: %v", err)
		return 0, err
	}
	if len(d.EasyDays) > 0 {
		if err := r.ReplaceEasyDays(ctx, id, d.EasyDays); err != nil {
			return 0, err
		}
	}
	log.Debug("deck inserted: id=%d", id)
	return id, nil
}

func (r *deckRepository) Update(ctx context.Context, d models.Deck) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("updating deck: id=%d", d.ID)

	res, err := r.db.ExecContext(ctx, `
UPDATE decks
SET name = ?, mode = ?, test_date = ?, desired_retention = ?, max_cards_per_day = ?, new_cards_per_day = ?, insertion_order = ?
WHERE id = ?
`, d.Name, d.Mode, d.TestDate, d.DesiredRetention, d.MaxCardsPerDay, d.NewCardsPerDay, d.InsertionOrder, d.ID)
	if err != nil {
		log.Error("failed to update deck: %v", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *deckRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("deleting deck: id=%d", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete deck: %v", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *deckRepository) ReplaceEasyDays(ctx context.Context, deckID int64, days []models.EasyDay) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("replacing easy days: deck_id=%d, count=%d", deckID, len(days))

	return tx(ctx, r.db, func(txn *sql.Tx) error {
		if _, err := txn.ExecContext(ctx, `DELETE FROM easy_days WHERE deck_id = ?`, deckID); err != nil {
			log.Error("failed to clear easy days: %v", err)
			return err
		}
		for _, day := range days {
			var weekday any
			if day.Weekday != nil {
				weekday = int(*day.Weekday)
			}
			if _, err := txn.ExecContext(ctx, `
INSERT INTO easy_days (deck_id, weekday, date, max_cards)
VALUES (?, ?, ?, ?)
`, deckID, weekday, day.Date, day.MaxCards); err != nil {
				log.Error("failed to insert easy day: %v", err)
				return err
			}
		}
		return nil
	})
}

func (r *deckRepository) easyDays(ctx context.Context, deckID int64) ([]models.EasyDay, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, deck_id, weekday, date, max_cards
FROM easy_days
WHERE deck_id = ?
ORDER BY id ASC
`, deckID)
	if err != nil {
		log.Error("failed to query easy days: %v", err)
		return nil, err
	}
	defer rows.Close()
	var days []models.EasyDay
	for rows.Next() {
		var d models.EasyDay
		var weekday sql.NullInt64
		var date sql.NullTime
		if err := rows.Scan(&d.ID, &d.DeckID, &weekday, &date, &d.MaxCards); err != nil {
			log.Error("failed to scan easy day row: %v", err)
			return nil, err
		}
		if weekday.Valid {
			w := time.Weekday(weekday.Int64)
			d.Weekday = &w
		}
		if date.Valid {
			t := date.Time
			d.Date = &t
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
