package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound = errors.New("payment not found")
	// ErrNotPending is returned when charging a payment that already left
	// the Pending state; the balance has been touched exactly once already.
	ErrNotPending = errors.New("payment is not pending")
	// ErrAlreadyRefunded signals an idempotent no-op: the refund already
	// happened and the balance was credited exactly once.
	ErrAlreadyRefunded = errors.New("payment already refunded")
	ErrNotRefundable   = errors.New("only paid payments can be refunded")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetPayment(ctx context.Context, id uuid.UUID) (Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, getPayment, id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

const getPayment = `SELECT * FROM payments WHERE id = $1`

func (r *Repository) GetPayments(ctx context.Context) ([]Payment, error) {
	var payments []Payment
	err := r.db.SelectContext(ctx, &payments, getPayments)
	return payments, err
}

const getPayments = `SELECT * FROM payments ORDER BY created_at DESC`

func (r *Repository) GetPaymentsByUser(ctx context.Context, userID uuid.UUID) ([]Payment, error) {
	var payments []Payment
	err := r.db.SelectContext(ctx, &payments, getPaymentsByUser, userID)
	return payments, err
}

const getPaymentsByUser = `SELECT * FROM payments WHERE user_id = $1 ORDER BY created_at DESC`

type insufficientBalanceError struct {
	balanceCents int64
	amountCents  int64
}

func (e *insufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %d cents, need %d cents", e.balanceCents, e.amountCents)
}

// BalanceFromInsufficientBalanceError extracts the rider balance from a
// failed charge so callers can show it alongside the override prompt.
func BalanceFromInsufficientBalanceError(err error) (int64, bool) {
	var ibErr *insufficientBalanceError
	if errors.As(err, &ibErr) {
		return ibErr.balanceCents, true
	}
	return 0, false
}

// Charge moves a Pending payment to Paid and debits the rider balance on the
// caller's transaction, so a crash cannot leave status and balance out of
// sync. The balance may only go negative when allowNegative is set (explicit
// admin override).
func (r *Repository) Charge(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, allowNegative bool) (Payment, error) {
	var p Payment
	err := tx.GetContext(ctx, &p, lockPayment, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Payment{}, ErrNotFound
	}
	if err != nil {
		return Payment{}, err
	}
	if !CanTransition(p.Status, StatusPaid) {
		return Payment{}, ErrNotPending
	}

	var balance int64
	err = tx.GetContext(ctx, &balance, lockUserBalance, p.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return Payment{}, errors.New("payment references missing user")
	}
	if err != nil {
		return Payment{}, err
	}
	if balance < p.AmountCents && !allowNegative {
		return Payment{}, &insufficientBalanceError{balanceCents: balance, amountCents: p.AmountCents}
	}

	_, err = tx.ExecContext(ctx, debitBalance, p.AmountCents, p.UserID)
	if err != nil {
		return Payment{}, err
	}
	err = tx.GetContext(ctx, &p, markPaid, id)
	if err != nil {
		return Payment{}, err
	}

	return p, nil
}

// Refund moves a Paid payment to Refunded and credits the rider balance on
// the caller's transaction. Refunding an already refunded payment returns
// ErrAlreadyRefunded without touching anything.
func (r *Repository) Refund(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (Payment, error) {
	var p Payment
	err := tx.GetContext(ctx, &p, lockPayment, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Payment{}, ErrNotFound
	}
	if err != nil {
		return Payment{}, err
	}
	if p.Status == StatusRefunded {
		return p, ErrAlreadyRefunded
	}
	if !CanTransition(p.Status, StatusRefunded) {
		return Payment{}, ErrNotRefundable
	}

	_, err = tx.ExecContext(ctx, creditBalance, p.AmountCents, p.UserID)
	if err != nil {
		return Payment{}, err
	}
	err = tx.GetContext(ctx, &p, markRefunded, id)
	if err != nil {
		return Payment{}, err
	}

	return p, nil
}

const lockPayment = `SELECT * FROM payments WHERE id = $1 FOR UPDATE`
const lockUserBalance = `SELECT balance_cents FROM users WHERE id = $1 FOR UPDATE`
const debitBalance = `UPDATE users SET balance_cents = balance_cents - $1 WHERE id = $2`
const creditBalance = `UPDATE users SET balance_cents = balance_cents + $1 WHERE id = $2`
const markPaid = `UPDATE payments SET status = 'Paid' WHERE id = $1 RETURNING *`
const markRefunded = `UPDATE payments SET status = 'Refunded' WHERE id = $1 RETURNING *`
