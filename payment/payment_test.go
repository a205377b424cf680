package payment

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPaid, StatusRefunded, true},
		{StatusPending, StatusRefunded, false},
		{StatusPaid, StatusPending, false},
		{StatusRefunded, StatusPaid, false},
		{StatusRefunded, StatusPending, false},
		{StatusRefunded, StatusRefunded, false},
		{StatusPending, StatusPending, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCost(t *testing.T) {
	tests := []struct {
		minutes int
		want    int64
	}{
		{1, 5},
		{10, 50},
		{13, 65},
		{60, 300},
	}

	for _, tt := range tests {
		if got := Cost(tt.minutes); got != tt.want {
			t.Errorf("Cost(%d) = %d, want %d", tt.minutes, got, tt.want)
		}
	}
}
