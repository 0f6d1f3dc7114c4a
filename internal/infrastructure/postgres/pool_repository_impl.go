package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/villagemarket/village-market/internal/domain/entity"
	"github.com/villagemarket/village-market/internal/domain/repository"
)

const poolColumns = `id, slug, title, description, category, image_url, goal, contributors,
	current_amount, current_contributors, state, city, address, deadline, status, creator_id, created_at, updated_at`

type PoolRepository struct {
	pool *pgxpool.Pool
}

func NewPoolRepository(pool *pgxpool.Pool) *PoolRepository {
	return &PoolRepository{pool: pool}
}

func scanPool(row rowScanner) (*entity.Pool, error) {
	p := &entity.Pool{}
	var category, status string
	var deadline *time.Time
	if err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &category, &p.ImageURL, &p.Goal, &p.Contributors,
		&p.CurrentAmount, &p.CurrentContributors, &p.State, &p.City, &p.Address, &deadline, &status,
		&p.CreatorID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	p.Category = entity.Category(category)
	p.Status = entity.PoolStatus(status)
	if deadline != nil {
		p.Deadline = *deadline
	}
	return p, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (r *PoolRepository) Create(ctx context.Context, p *entity.Pool) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO pools (slug, title, description, category, image_url, goal, contributors,
			                   state, city, address, deadline, status, creator_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING id, current_amount, current_contributors, created_at, updated_at
		`, p.Slug, p.Title, p.Description, string(p.Category), p.ImageURL, p.Goal, p.Contributors,
			p.State, p.City, p.Address, nullableTime(p.Deadline), string(p.Status), p.CreatorID)
		if err := row.Scan(&p.ID, &p.CurrentAmount, &p.CurrentContributors, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return mapErr(err)
		}

		_, err := tx.Exec(ctx, `UPDATE creators SET pools_created = pools_created + 1, updated_at = now() WHERE id = $1`, p.CreatorID)
		return mapErr(err)
	})
}

func (r *PoolRepository) GetByID(ctx context.Context, id string) (*entity.Pool, error) {
	return scanPool(r.pool.QueryRow(ctx, `SELECT `+poolColumns+` FROM pools WHERE id = $1`, id))
}

func (r *PoolRepository) GetBySlug(ctx context.Context, slug string) (*entity.Pool, error) {
	return scanPool(r.pool.QueryRow(ctx, `SELECT `+poolColumns+` FROM pools WHERE slug = $1`, slug))
}

// Update writes the descriptive fields. Progress counters and status have
// their own write paths. The goal and contributors only change while no
// slot is filled, checked against the row as it is at write time.
func (r *PoolRepository) Update(ctx context.Context, p *entity.Pool) error {
	p.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE pools
		SET slug = $1, title = $2, description = $3, category = $4, image_url = $5, goal = $6,
		    contributors = $7, state = $8, city = $9, address = $10, deadline = $11, updated_at = $12
		WHERE id = $13
		  AND (current_contributors = 0 OR (goal = $6 AND contributors = $7))
	`, p.Slug, p.Title, p.Description, string(p.Category), p.ImageURL, p.Goal,
		p.Contributors, p.State, p.City, p.Address, nullableTime(p.Deadline), p.UpdatedAt, p.ID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return r.missingOr(ctx, p.ID, ErrConflict)
	}
	return nil
}

func (r *PoolRepository) UpdateStatus(ctx context.Context, id string, from, to entity.PoolStatus) error {
	res, err := r.pool.Exec(ctx, `UPDATE pools SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
		string(to), id, string(from))
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return r.missingOr(ctx, id, ErrConflict)
	}
	return nil
}

// missingOr tells a guarded write that matched no row apart from one whose
// row is gone.
func (r *PoolRepository) missingOr(ctx context.Context, id string, err error) error {
	var exists bool
	if qErr := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pools WHERE id = $1)`, id).Scan(&exists); qErr != nil {
		return mapErr(qErr)
	}
	if !exists {
		return ErrNotFound
	}
	return err
}

// Delete removes abandoned checkouts with the pool. Successful
// contributions keep the foreign key in place and surface as ErrConflict.
func (r *PoolRepository) Delete(ctx context.Context, id string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM contributions WHERE pool_id = $1 AND status <> 'SUCCESS'`, id); err != nil {
			return mapErr(err)
		}
		var creatorID string
		err := tx.QueryRow(ctx, `DELETE FROM pools WHERE id = $1 RETURNING creator_id`, id).Scan(&creatorID)
		if err != nil {
			return mapErr(err)
		}
		_, err = tx.Exec(ctx, `UPDATE creators SET pools_created = GREATEST(pools_created - 1, 0), updated_at = now() WHERE id = $1`, creatorID)
		return mapErr(err)
	})
}

func (r *PoolRepository) List(ctx context.Context, f repository.PoolFilter) ([]entity.Pool, int, error) {
	w := &where{}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Category != "" {
		w.add("category = ?", f.Category)
	}
	if f.State != "" {
		w.add("state ILIKE ?", f.State)
	}
	if f.CreatorID != "" {
		w.add("creator_id = ?", f.CreatorID)
	}
	if f.Query != "" {
		p := likePattern(f.Query)
		w.add("(title ILIKE ? OR description ILIKE ? OR city ILIKE ?)", p, p, p)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pools`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	cond := w.String()
	rows, err := r.pool.Query(ctx, `SELECT `+poolColumns+` FROM pools`+cond+` ORDER BY created_at DESC`+w.paginate(f.Page), w.args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	out := make([]entity.Pool, 0)
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, mapErr(rows.Err())
}

func (r *PoolRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM pools GROUP BY status`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	return scanCounts(rows)
}

func (r *PoolRepository) TotalRaised(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(current_amount), 0)::BIGINT FROM pools`).Scan(&total)
	return total, mapErr(err)
}

var _ repository.PoolRepository = (*PoolRepository)(nil)
