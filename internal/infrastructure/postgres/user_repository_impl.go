package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/villagemarket/village-market/internal/domain/entity"
	"github.com/villagemarket/village-market/internal/domain/repository"
)

const userColumns = `id, name, email, phone, avatar_url, password_hash, role, status, total_contributed, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row rowScanner) (*entity.User, error) {
	u := &entity.User{}
	var role, status string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.AvatarURL, &u.Password,
		&role, &status, &u.TotalContributed, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	u.Role = entity.Role(role)
	u.Status = entity.UserStatus(status)
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, phone, avatar_url, password_hash, role, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, u.Name, u.Email, u.Phone, u.AvatarURL, u.Password, string(u.Role), string(u.Status))

	return mapErr(row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, phone = $3, avatar_url = $4, role = $5, status = $6, updated_at = $7
		WHERE id = $8
	`, u.Name, u.Email, u.Phone, u.AvatarURL, string(u.Role), string(u.Status), u.UpdatedAt, u.ID)
	if err != nil {
		return mapErr(err)
	}

	if res.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	res, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, hash, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, f repository.UserFilter) ([]entity.User, int, error) {
	w := &where{}
	if f.Role != "" {
		w.add("role = ?", f.Role)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Query != "" {
		p := likePattern(f.Query)
		w.add("(name ILIKE ? OR email ILIKE ?)", p, p)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	cond := w.String()
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users`+cond+` ORDER BY created_at DESC`+w.paginate(f.Page), w.args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	out := make([]entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *u)
	}
	return out, total, mapErr(rows.Err())
}

func (r *UserRepository) CountBy(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT 'role:' || role, COUNT(*) FROM users GROUP BY role
		UNION ALL
		SELECT 'status:' || status, COUNT(*) FROM users GROUP BY status
	`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	return scanCounts(rows)
}

var _ repository.UserRepository = (*UserRepository)(nil)
