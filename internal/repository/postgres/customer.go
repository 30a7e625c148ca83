package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"billing/internal/domain"
	"billing/internal/repository"
)

// CustomerRepository is a PostgreSQL implementation of repository.CustomerRepository.
// Tiers are stored in commission_tiers with their canonical position.
type CustomerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new PostgreSQL customer repository.
func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = `id, company, contact_person, email, phone, status, monthly_spendings, sector, notes, created_at, updated_at`

// Create persists a new customer together with its commission tiers.
func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, company, contact_person, email, phone, status, monthly_spendings, sector, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	return withTx(ctx, r.db, func(q Querier) error {
		err := q.QueryRowContext(ctx, query,
			customer.ID,
			customer.Company,
			customer.ContactPerson,
			customer.Email,
			customer.Phone,
			customer.Status,
			customer.MonthlySpendings,
			customer.Sector,
			customer.Notes,
		).Scan(&customer.CreatedAt, &customer.UpdatedAt)
		if err != nil {
			return mapError(err)
		}
		return insertTiers(ctx, q, customer.ID, customer.CommissionTiers)
	})
}

// GetByID retrieves a customer and its tiers by ID.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}

	tiers, err := r.getTiers(ctx, id)
	if err != nil {
		return nil, err
	}
	customer.CommissionTiers = tiers

	return customer, nil
}

// GetAll retrieves all customers, newest first.
func (r *CustomerRepository) GetAll(ctx context.Context) ([]*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*domain.Customer
	byID := make(map[string]*domain.Customer)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
		byID[customer.ID] = customer
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(customers) == 0 {
		return customers, nil
	}

	ids := make([]string, 0, len(customers))
	for _, c := range customers {
		ids = append(ids, c.ID)
	}

	tierQuery := `
		SELECT customer_id, min_amount, max_amount, fee_type, rate, fixed_amount
		FROM commission_tiers WHERE customer_id = ANY($1)
		ORDER BY customer_id, position
	`
	tierRows, err := r.db.QueryContext(ctx, tierQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer tierRows.Close()

	for tierRows.Next() {
		var customerID string
		tier, err := scanTier(tierRows, &customerID)
		if err != nil {
			return nil, err
		}
		if c, ok := byID[customerID]; ok {
			c.CommissionTiers = append(c.CommissionTiers, tier)
		}
	}

	return customers, tierRows.Err()
}

// Update replaces the profile fields and the tier list of a customer.
func (r *CustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	query := `
		UPDATE customers
		SET company = $1, contact_person = $2, email = $3, phone = $4, status = $5,
		    monthly_spendings = $6, sector = $7, notes = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at
	`

	return withTx(ctx, r.db, func(q Querier) error {
		err := q.QueryRowContext(ctx, query,
			customer.Company,
			customer.ContactPerson,
			customer.Email,
			customer.Phone,
			customer.Status,
			customer.MonthlySpendings,
			customer.Sector,
			customer.Notes,
			customer.ID,
		).Scan(&customer.UpdatedAt)
		if err != nil {
			return mapError(err)
		}
		return replaceTiers(ctx, q, customer.ID, customer.CommissionTiers)
	})
}

// getTiers retrieves the tier list of a customer in stored order.
func (r *CustomerRepository) getTiers(ctx context.Context, customerID string) ([]domain.CommissionTier, error) {
	query := `
		SELECT customer_id, min_amount, max_amount, fee_type, rate, fixed_amount
		FROM commission_tiers WHERE customer_id = $1
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tiers := []domain.CommissionTier{}
	for rows.Next() {
		var owner string
		tier, err := scanTier(rows, &owner)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}
	return tiers, rows.Err()
}

// ReplaceTiers replaces a customer's tier list wholesale.
func (r *CustomerRepository) ReplaceTiers(ctx context.Context, customerID string, tiers []domain.CommissionTier) error {
	return withTx(ctx, r.db, func(q Querier) error {
		result, err := q.ExecContext(ctx, `UPDATE customers SET updated_at = NOW() WHERE id = $1`, customerID)
		if err != nil {
			return err
		}
		if err := requireAffected(result); err != nil {
			return err
		}
		return replaceTiers(ctx, q, customerID, tiers)
	})
}

// Delete removes a customer. Tiers are removed by ON DELETE CASCADE; a
// customer that still has payments is rejected with repository.ErrReferenced.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return repository.ErrReferenced
		}
		return err
	}
	return requireAffected(result)
}

func replaceTiers(ctx context.Context, q Querier, customerID string, tiers []domain.CommissionTier) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM commission_tiers WHERE customer_id = $1`, customerID); err != nil {
		return err
	}
	return insertTiers(ctx, q, customerID, tiers)
}

func insertTiers(ctx context.Context, q Querier, customerID string, tiers []domain.CommissionTier) error {
	query := `
		INSERT INTO commission_tiers (customer_id, position, min_amount, max_amount, fee_type, rate, fixed_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for i, tier := range tiers {
		_, err := q.ExecContext(ctx, query,
			customerID,
			i,
			tier.MinAmount,
			toNullDecimal(tier.MaxAmount),
			tier.FeeType,
			toNullDecimal(tier.Rate),
			toNullDecimal(tier.FixedAmount),
		)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	var customer domain.Customer
	var notes sql.NullString

	err := row.Scan(
		&customer.ID,
		&customer.Company,
		&customer.ContactPerson,
		&customer.Email,
		&customer.Phone,
		&customer.Status,
		&customer.MonthlySpendings,
		&customer.Sector,
		&notes,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	customer.Notes = notes.String
	customer.CommissionTiers = []domain.CommissionTier{}

	return &customer, nil
}

func scanTier(row rowScanner, customerID *string) (domain.CommissionTier, error) {
	var tier domain.CommissionTier
	var maxAmount, rate, fixedAmount decimal.NullDecimal

	err := row.Scan(customerID, &tier.MinAmount, &maxAmount, &tier.FeeType, &rate, &fixedAmount)
	if err != nil {
		return domain.CommissionTier{}, err
	}

	tier.MaxAmount = fromNullDecimal(maxAmount)
	tier.Rate = fromNullDecimal(rate)
	tier.FixedAmount = fromNullDecimal(fixedAmount)
	return tier, nil
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func fromNullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

var _ repository.CustomerRepository = (*CustomerRepository)(nil)
