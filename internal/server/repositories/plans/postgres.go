package plans

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const planColumns = `id, code, name, description, price_cents, currency, billing_cycle, created_at`

func (r *PostgresRepository) FindByCode(ctx context.Context, code string) (*models.SubscriptionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE code = $1`
	return r.getOne(ctx, query, code)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.SubscriptionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.SubscriptionPlan, error) {
	p := &models.SubscriptionPlan{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&p.ID, &p.Code, &p.Name, &p.Description, &p.PriceCents, &p.Currency,
		&p.BillingCycle, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans ORDER BY price_cents`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.SubscriptionPlan
	for rows.Next() {
		p := &models.SubscriptionPlan{}
		if err := rows.Scan(
			&p.ID, &p.Code, &p.Name, &p.Description, &p.PriceCents, &p.Currency,
			&p.BillingCycle, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
