package lifecycle

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fptsbe/fleetengine-backend/payment"
	"github.com/fptsbe/fleetengine-backend/user"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, "ok"},
		{"already refunded no-op", payment.ErrAlreadyRefunded, "ok"},
		{"wrapped already refunded", fmt.Errorf("refund: %w", payment.ErrAlreadyRefunded), "ok"},
		{"precondition rejection", reject(ActionUnlock, "bike is busy"), "rejected"},
		{"authz failure", &AuthzError{Role: user.RoleStudent, Action: ActionRemoteLock}, "rejected"},
		{"storage failure", errors.New("connection reset"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outcome(tt.err); got != tt.want {
				t.Errorf("outcome(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
