package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/villagemarket/village-market/internal/domain/entity"
	"github.com/villagemarket/village-market/internal/domain/repository"
)

const teamMemberColumns = `id, name, role, bio, avatar_url, display_order, created_at, updated_at`

type TeamMemberRepository struct {
	pool *pgxpool.Pool
}

func NewTeamMemberRepository(pool *pgxpool.Pool) *TeamMemberRepository {
	return &TeamMemberRepository{pool: pool}
}

func scanTeamMember(row rowScanner) (*entity.TeamMember, error) {
	m := &entity.TeamMember{}
	if err := row.Scan(&m.ID, &m.Name, &m.Role, &m.Bio, &m.AvatarURL, &m.DisplayOrder, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return m, nil
}

func (r *TeamMemberRepository) Create(ctx context.Context, m *entity.TeamMember) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO team_members (name, role, bio, avatar_url, display_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, m.Name, m.Role, m.Bio, m.AvatarURL, m.DisplayOrder)
	return mapErr(row.Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt))
}

func (r *TeamMemberRepository) GetByID(ctx context.Context, id string) (*entity.TeamMember, error) {
	return scanTeamMember(r.pool.QueryRow(ctx, `SELECT `+teamMemberColumns+` FROM team_members WHERE id = $1`, id))
}

func (r *TeamMemberRepository) Update(ctx context.Context, m *entity.TeamMember) error {
	m.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE team_members
		SET name = $1, role = $2, bio = $3, avatar_url = $4, display_order = $5, updated_at = $6
		WHERE id = $7
	`, m.Name, m.Role, m.Bio, m.AvatarURL, m.DisplayOrder, m.UpdatedAt, m.ID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TeamMemberRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM team_members WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TeamMemberRepository) List(ctx context.Context) ([]entity.TeamMember, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+teamMemberColumns+` FROM team_members ORDER BY display_order, name`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]entity.TeamMember, 0)
	for rows.Next() {
		m, err := scanTeamMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, mapErr(rows.Err())
}

var _ repository.TeamMemberRepository = (*TeamMemberRepository)(nil)
