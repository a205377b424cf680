package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fptsbe/fleetengine-backend/payment"
	"github.com/fptsbe/fleetengine-backend/user"
)

// Charge settles a pending payment against the payer's balance. Students may
// only settle their own payments and never overdraw; admins may settle any
// payment and push the balance negative with the override flag.
func (c *Controller) Charge(ctx context.Context, actor user.User, paymentID uuid.UUID, allowNegative bool) (p payment.Payment, err error) {
	ctx, end := span(ctx, "lifecycle.Charge", paymentID.String())
	defer end()
	defer func() { c.observe(ctx, ActionCharge, err) }()

	if err = Authorize(actor.Role, ActionCharge); err != nil {
		return payment.Payment{}, err
	}

	target, err := c.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return payment.Payment{}, err
	}
	if actor.Role != user.RoleAdmin {
		if target.UserID != actor.ID {
			return payment.Payment{}, reject(ActionCharge, "payment %s belongs to another rider", paymentID)
		}
		allowNegative = false
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return payment.Payment{}, err
	}
	defer tx.Rollback()

	p, err = c.payments.Charge(ctx, tx, paymentID, allowNegative)
	if balance, ok := payment.BalanceFromInsufficientBalanceError(err); ok {
		return payment.Payment{}, reject(ActionCharge, "balance %d cents does not cover %d cents", balance, target.AmountCents)
	}
	if err != nil {
		return payment.Payment{}, err
	}

	if err = c.audit(ctx, tx, actor, ActionCharge, "payment", p.ID.String(), fmt.Sprintf("charged %d cents", p.AmountCents)); err != nil {
		return payment.Payment{}, err
	}
	return p, tx.Commit()
}

// Refund reverses a paid payment, crediting the payer's balance. Refunding
// twice is a no-op that reports the already-refunded state.
func (c *Controller) Refund(ctx context.Context, actor user.User, paymentID uuid.UUID) (p payment.Payment, err error) {
	ctx, end := span(ctx, "lifecycle.Refund", paymentID.String())
	defer end()
	defer func() { c.observe(ctx, ActionRefund, err) }()

	if err = Authorize(actor.Role, ActionRefund); err != nil {
		return payment.Payment{}, err
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return payment.Payment{}, err
	}
	defer tx.Rollback()

	p, err = c.payments.Refund(ctx, tx, paymentID)
	if errors.Is(err, payment.ErrAlreadyRefunded) {
		// Nothing was written; report the no-op without an audit row.
		return p, err
	}
	if err != nil {
		return p, err
	}

	if err = c.audit(ctx, tx, actor, ActionRefund, "payment", p.ID.String(), fmt.Sprintf("refunded %d cents", p.AmountCents)); err != nil {
		return payment.Payment{}, err
	}
	return p, tx.Commit()
}
