package payment

import "testing"

func TestUnitAmountCents(t *testing.T) {
	tests := []struct {
		price float64
		want  int64
	}{
		{10.00, 1000},
		{0.01, 1},
		{24.99, 2499},
		{0.005, 1}, // half-up
		{0, 0},
	}
	for _, tt := range tests {
		if got := UnitAmountCents(tt.price); got != tt.want {
			t.Errorf("UnitAmountCents(%v) = %d, want %d", tt.price, got, tt.want)
		}
	}
}

func TestServiceFeeCents(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{20.00, 300},    // two 10.00 cards → 3.00 fee
		{156.25, 2344},  // 23.4375 → half-up on the cent
		{0.01, 0},       // 0.15 cents rounds down
		{0.04, 1},       // 0.6 cents rounds up
		{0, 0},
	}
	for _, tt := range tests {
		if got := ServiceFeeCents(tt.amount); got != tt.want {
			t.Errorf("ServiceFeeCents(%v) = %d, want %d", tt.amount, got, tt.want)
		}
	}
}

// The Stripe total for two 10.00 cards is the item lines plus the fee line:
// 2×1000 + 300 = 2300 cents.
func TestCheckoutTotalWithFee(t *testing.T) {
	itemCents := 2 * UnitAmountCents(10.00)
	total := itemCents + ServiceFeeCents(20.00)
	if total != 2300 {
		t.Errorf("total = %d cents, want 2300", total)
	}
}

func TestReturnURLs(t *testing.T) {
	origin := "https://shop.example"
	if got := SuccessURL(origin, "abc123"); got != "https://shop.example/verify?success=true&orderId=abc123" {
		t.Errorf("SuccessURL = %q", got)
	}
	if got := CancelURL(origin, "abc123"); got != "https://shop.example/verify?success=false&orderId=abc123" {
		t.Errorf("CancelURL = %q", got)
	}
}
