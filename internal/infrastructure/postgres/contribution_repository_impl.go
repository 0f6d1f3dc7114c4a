package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/villagemarket/village-market/internal/domain/entity"
	"github.com/villagemarket/village-market/internal/domain/repository"
)

const contributionColumns = `c.id, c.pool_id, c.user_id, c.amount, c.slots, c.reference, c.status,
	c.delivery_status, c.paid_at, c.created_at, c.updated_at`

const contributionJoinColumns = contributionColumns + `, p.title, u.name, u.email`

const contributionJoin = ` FROM contributions c
	JOIN pools p ON p.id = c.pool_id
	JOIN users u ON u.id = c.user_id`

type ContributionRepository struct {
	pool *pgxpool.Pool
}

func NewContributionRepository(pool *pgxpool.Pool) *ContributionRepository {
	return &ContributionRepository{pool: pool}
}

func scanContribution(row rowScanner, joined bool) (*entity.Contribution, error) {
	c := &entity.Contribution{}
	var status, delivery string
	dest := []any{&c.ID, &c.PoolID, &c.UserID, &c.Amount, &c.Slots, &c.Reference, &status,
		&delivery, &c.PaidAt, &c.CreatedAt, &c.UpdatedAt}
	if joined {
		dest = append(dest, &c.PoolTitle, &c.UserName, &c.UserEmail)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, mapErr(err)
	}
	c.Status = entity.ContributionStatus(status)
	c.DeliveryStatus = entity.DeliveryStatus(delivery)
	return c, nil
}

func lockPool(ctx context.Context, tx pgx.Tx, id string) (*entity.Pool, error) {
	return scanPool(tx.QueryRow(ctx, `SELECT `+poolColumns+` FROM pools WHERE id = $1 FOR UPDATE`, id))
}

func (r *ContributionRepository) Reserve(ctx context.Context, c *entity.Contribution, holdTTL time.Duration, check repository.HoldCheck) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		p, err := lockPool(ctx, tx, c.PoolID)
		if err != nil {
			return err
		}

		var held int
		err = tx.QueryRow(ctx, `
			SELECT COALESCE(SUM(slots), 0)::INT
			FROM contributions
			WHERE pool_id = $1 AND status = 'PENDING' AND created_at > $2
		`, c.PoolID, time.Now().Add(-holdTTL)).Scan(&held)
		if err != nil {
			return mapErr(err)
		}

		if check != nil {
			if err := check(p, held); err != nil {
				return err
			}
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO contributions (pool_id, user_id, amount, slots, reference, status, delivery_status)
			VALUES ($1, $2, $3, $4, $5, 'PENDING', 'PENDING')
			RETURNING id, status, delivery_status, created_at, updated_at
		`, c.PoolID, c.UserID, c.Amount, c.Slots, c.Reference)

		var status, delivery string
		if err := row.Scan(&c.ID, &status, &delivery, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return mapErr(err)
		}
		c.Status = entity.ContributionStatus(status)
		c.DeliveryStatus = entity.DeliveryStatus(delivery)
		return nil
	})
}

func (r *ContributionRepository) Settle(ctx context.Context, reference string, paidAt time.Time, check repository.SettleCheck) (*repository.Settlement, error) {
	out := &repository.Settlement{}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		c, err := scanContribution(tx.QueryRow(ctx,
			`SELECT `+contributionColumns+` FROM contributions c WHERE c.reference = $1 FOR UPDATE`, reference), false)
		if err != nil {
			return err
		}

		p, err := lockPool(ctx, tx, c.PoolID)
		if err != nil {
			return err
		}

		out.Contribution, out.Pool = c, p
		if c.Status == entity.ContributionSuccess {
			out.AlreadySettled = true
			return nil
		}

		if check != nil {
			if err := check(p, c); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, `
			UPDATE contributions SET status = 'SUCCESS', paid_at = $1, updated_at = now() WHERE id = $2
		`, paidAt, c.ID); err != nil {
			return mapErr(err)
		}
		c.Status = entity.ContributionSuccess
		c.PaidAt = &paidAt

		var status string
		err = tx.QueryRow(ctx, `
			UPDATE pools
			SET current_amount = current_amount + $1,
			    current_contributors = current_contributors + $2,
			    status = CASE WHEN status = 'ACTIVE' AND current_contributors + $2 >= contributors
			                  THEN 'COMPLETED' ELSE status END,
			    updated_at = now()
			WHERE id = $3
			RETURNING current_amount, current_contributors, status, updated_at
		`, c.Amount, c.Slots, p.ID).Scan(&p.CurrentAmount, &p.CurrentContributors, &status, &p.UpdatedAt)
		if err != nil {
			return mapErr(err)
		}
		p.Status = entity.PoolStatus(status)

		if _, err := tx.Exec(ctx, `
			UPDATE users SET total_contributed = total_contributed + $1, updated_at = now() WHERE id = $2
		`, c.Amount, c.UserID); err != nil {
			return mapErr(err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE creators SET total_raised = total_raised + $1, updated_at = now() WHERE id = $2
		`, c.Amount, p.CreatorID)
		return mapErr(err)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkFailed only touches PENDING rows so a late failure never undoes a
// settled payment.
func (r *ContributionRepository) MarkFailed(ctx context.Context, reference string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE contributions SET status = 'FAILED', updated_at = now()
		WHERE reference = $1 AND status = 'PENDING'
	`, reference)
	return mapErr(err)
}

func (r *ContributionRepository) GetByID(ctx context.Context, id string) (*entity.Contribution, error) {
	return scanContribution(r.pool.QueryRow(ctx, `SELECT `+contributionJoinColumns+contributionJoin+` WHERE c.id = $1`, id), true)
}

func (r *ContributionRepository) GetByReference(ctx context.Context, reference string) (*entity.Contribution, error) {
	return scanContribution(r.pool.QueryRow(ctx, `SELECT `+contributionJoinColumns+contributionJoin+` WHERE c.reference = $1`, reference), true)
}

func (r *ContributionRepository) UpdateDelivery(ctx context.Context, id string, status entity.DeliveryStatus) error {
	res, err := r.pool.Exec(ctx, `UPDATE contributions SET delivery_status = $1, updated_at = now() WHERE id = $2`, string(status), id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ContributionRepository) List(ctx context.Context, f repository.ContributionFilter) ([]entity.Contribution, int, error) {
	w := &where{}
	if f.PoolID != "" {
		w.add("c.pool_id = ?", f.PoolID)
	}
	if f.UserID != "" {
		w.add("c.user_id = ?", f.UserID)
	}
	if f.Status != "" {
		w.add("c.status = ?", f.Status)
	}
	if f.DeliveryStatus != "" {
		w.add("c.delivery_status = ?", f.DeliveryStatus)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contributions c`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	cond := w.String()
	rows, err := r.pool.Query(ctx, `SELECT `+contributionJoinColumns+contributionJoin+cond+` ORDER BY c.created_at DESC`+w.paginate(f.Page), w.args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	out := make([]entity.Contribution, 0)
	for rows.Next() {
		c, err := scanContribution(rows, true)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, mapErr(rows.Err())
}

func (r *ContributionRepository) CountSuccessful(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contributions WHERE status = 'SUCCESS'`).Scan(&n)
	return n, mapErr(err)
}

func (r *ContributionRepository) CountForPool(ctx context.Context, poolID string, status entity.ContributionStatus) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contributions WHERE pool_id = $1 AND status = $2`, poolID, string(status)).Scan(&n)
	return n, mapErr(err)
}

var _ repository.ContributionRepository = (*ContributionRepository)(nil)
