package postgres

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"billing/internal/domain"
	"billing/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

const paymentColumns = `
	id, customer_id, amount, payment_date, payment_method, service_type, bank,
	has_commission, commission_rate, commission_amount, has_vat, is_vat_exempt,
	vat_amount, net_amount, total_amount, created_at, updated_at
`

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			id, customer_id, amount, payment_date, payment_method, service_type, bank,
			has_commission, commission_rate, commission_amount, has_vat, is_vat_exempt,
			vat_amount, net_amount, total_amount
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		payment.ID,
		payment.CustomerID,
		payment.Amount,
		payment.PaymentDate,
		payment.PaymentMethod,
		payment.ServiceType,
		toNullString(payment.Bank),
		payment.HasCommission,
		toNullDecimal(payment.CommissionRate),
		payment.CommissionAmount,
		payment.HasVAT,
		payment.IsVATExempt,
		payment.VATAmount,
		payment.NetAmount,
		payment.TotalAmount,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)

	return mapError(err)
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return payment, nil
}

// GetAll retrieves all payments, newest first.
func (r *PaymentRepository) GetAll(ctx context.Context) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY created_at DESC`
	return r.list(ctx, query)
}

// GetByCustomer retrieves the payments of one customer, newest first.
func (r *PaymentRepository) GetByCustomer(ctx context.Context, customerID string) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE customer_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, customerID)
}

// Update overwrites every stored field of a payment.
func (r *PaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET customer_id = $1, amount = $2, payment_date = $3, payment_method = $4, service_type = $5,
		    bank = $6, has_commission = $7, commission_rate = $8, commission_amount = $9,
		    has_vat = $10, is_vat_exempt = $11, vat_amount = $12, net_amount = $13,
		    total_amount = $14, updated_at = NOW()
		WHERE id = $15
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		payment.CustomerID,
		payment.Amount,
		payment.PaymentDate,
		payment.PaymentMethod,
		payment.ServiceType,
		toNullString(payment.Bank),
		payment.HasCommission,
		toNullDecimal(payment.CommissionRate),
		payment.CommissionAmount,
		payment.HasVAT,
		payment.IsVATExempt,
		payment.VATAmount,
		payment.NetAmount,
		payment.TotalAmount,
		payment.ID,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)

	return mapError(err)
}

// Delete removes a payment.
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *PaymentRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Payment, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []*domain.Payment{}
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var payment domain.Payment
	var bank sql.NullString
	var commissionRate decimal.NullDecimal

	err := row.Scan(
		&payment.ID,
		&payment.CustomerID,
		&payment.Amount,
		&payment.PaymentDate,
		&payment.PaymentMethod,
		&payment.ServiceType,
		&bank,
		&payment.HasCommission,
		&commissionRate,
		&payment.CommissionAmount,
		&payment.HasVAT,
		&payment.IsVATExempt,
		&payment.VATAmount,
		&payment.NetAmount,
		&payment.TotalAmount,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	payment.Bank = bank.String
	payment.CommissionRate = fromNullDecimal(commissionRate)
	return &payment, nil
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ repository.PaymentRepository = (*PaymentRepository)(nil)
