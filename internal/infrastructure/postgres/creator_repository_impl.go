package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/villagemarket/village-market/internal/domain/entity"
	"github.com/villagemarket/village-market/internal/domain/repository"
)

const creatorColumns = `id, user_id, name, email, phone, organization, address, id_type, id_number, status, pools_created, total_raised, created_at, updated_at`

type CreatorRepository struct {
	pool *pgxpool.Pool
}

func NewCreatorRepository(pool *pgxpool.Pool) *CreatorRepository {
	return &CreatorRepository{pool: pool}
}

func scanCreator(row rowScanner) (*entity.Creator, error) {
	c := &entity.Creator{}
	var idType, status string
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Organization, &c.Address,
		&idType, &c.IDNumber, &status, &c.PoolsCreated, &c.TotalRaised, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	c.IDType = entity.IDType(idType)
	c.Status = entity.CreatorStatus(status)
	return c, nil
}

func (r *CreatorRepository) Create(ctx context.Context, c *entity.Creator) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO creators (user_id, name, email, phone, organization, address, id_type, id_number, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, c.UserID, c.Name, c.Email, c.Phone, c.Organization, c.Address, string(c.IDType), c.IDNumber, string(c.Status))

	return mapErr(row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt))
}

func (r *CreatorRepository) GetByID(ctx context.Context, id string) (*entity.Creator, error) {
	return scanCreator(r.pool.QueryRow(ctx, `SELECT `+creatorColumns+` FROM creators WHERE id = $1`, id))
}

func (r *CreatorRepository) GetByUserID(ctx context.Context, userID string) (*entity.Creator, error) {
	return scanCreator(r.pool.QueryRow(ctx, `SELECT `+creatorColumns+` FROM creators WHERE user_id = $1`, userID))
}

// Update writes the editable profile and status. Counters are owned by the
// pool and contribution repositories.
func (r *CreatorRepository) Update(ctx context.Context, c *entity.Creator) error {
	c.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE creators
		SET name = $1, email = $2, phone = $3, organization = $4, address = $5,
		    id_type = $6, id_number = $7, status = $8, updated_at = $9
		WHERE id = $10
	`, c.Name, c.Email, c.Phone, c.Organization, c.Address, string(c.IDType), c.IDNumber, string(c.Status), c.UpdatedAt, c.ID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete fails with ErrConflict while the creator still owns pools.
func (r *CreatorRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM creators WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CreatorRepository) List(ctx context.Context, f repository.CreatorFilter) ([]entity.Creator, int, error) {
	w := &where{}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Query != "" {
		p := likePattern(f.Query)
		w.add("(name ILIKE ? OR email ILIKE ? OR organization ILIKE ?)", p, p, p)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM creators`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	cond := w.String()
	rows, err := r.pool.Query(ctx, `SELECT `+creatorColumns+` FROM creators`+cond+` ORDER BY created_at DESC`+w.paginate(f.Page), w.args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	out := make([]entity.Creator, 0)
	for rows.Next() {
		c, err := scanCreator(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, mapErr(rows.Err())
}

func (r *CreatorRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM creators GROUP BY status`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	return scanCounts(rows)
}

var _ repository.CreatorRepository = (*CreatorRepository)(nil)
