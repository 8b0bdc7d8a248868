package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ShowtimeRepository interface {
	Create(ctx context.Context, showtime *entity.Showtime) error
	FindByID(ctx context.Context, id string) (*entity.Showtime, error)
	FindAll(ctx context.Context) ([]*entity.Showtime, error)
}

type showtimeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewShowtimeRepository(db database.PgxIface, log *zap.Logger) ShowtimeRepository {
	return &showtimeRepository{
		db:  db,
		log: log.With(zap.String("repository", "showtime")),
	}
}

func (r *showtimeRepository) Create(ctx context.Context, showtime *entity.Showtime) error {
	query := `
		INSERT INTO showtimes (id, movie_id, screen_id, starts_at, ends_at, price_per_seat, layout, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	layout, err := json.Marshal(showtime.Layout)
	if err != nil {
		return fmt.Errorf("encode layout of showtime %s: %w", showtime.ID, err)
	}

	_, err = r.db.Exec(ctx, query,
		showtime.ID,
		showtime.MovieID,
		showtime.ScreenID,
		showtime.StartsAt,
		showtime.EndsAt,
		showtime.PricePerSeat,
		layout,
		showtime.CreatedAt,
		showtime.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create showtime",
			zap.Error(err),
			zap.String("showtime_id", showtime.ID),
			zap.String("movie_id", showtime.MovieID),
			zap.Time("starts_at", showtime.StartsAt),
		)
		return fmt.Errorf("create showtime %s: %w", showtime.ID, err)
	}

	return nil
}

func (r *showtimeRepository) FindByID(ctx context.Context, id string) (*entity.Showtime, error) {
	query := `
		SELECT id, movie_id, screen_id, starts_at, ends_at, price_per_seat, layout, created_at, updated_at
		FROM showtimes
		WHERE id = $1
	`

	showtime, err := scanShowtime(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find showtime by ID",
			zap.Error(err),
			zap.String("showtime_id", id),
		)
		return nil, fmt.Errorf("find showtime by ID %s: %w", id, err)
	}

	return showtime, nil
}

func (r *showtimeRepository) FindAll(ctx context.Context) ([]*entity.Showtime, error) {
	query := `
		SELECT id, movie_id, screen_id, starts_at, ends_at, price_per_seat, layout, created_at, updated_at
		FROM showtimes
		ORDER BY starts_at, id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find showtimes", zap.Error(err))
		return nil, fmt.Errorf("find showtimes: %w", err)
	}
	defer rows.Close()

	var showtimes []*entity.Showtime
	for rows.Next() {
		showtime, err := scanShowtime(rows)
		if err != nil {
			r.log.Error("Failed to scan showtime row", zap.Error(err))
			return nil, fmt.Errorf("scan showtime row: %w", err)
		}
		showtimes = append(showtimes, showtime)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate showtime rows: %w", err)
	}

	return showtimes, nil
}

func scanShowtime(row pgx.Row) (*entity.Showtime, error) {
	var (
		showtime entity.Showtime
		layout   []byte
	)

	err := row.Scan(
		&showtime.ID,
		&showtime.MovieID,
		&showtime.ScreenID,
		&showtime.StartsAt,
		&showtime.EndsAt,
		&showtime.PricePerSeat,
		&layout,
		&showtime.CreatedAt,
		&showtime.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(layout, &showtime.Layout); err != nil {
		return nil, fmt.Errorf("decode layout of showtime %s: %w", showtime.ID, err)
	}

	return &showtime, nil
}
