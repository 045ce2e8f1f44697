package money

import "testing"

func TestSplitAddsBackToTotal(t *testing.T) {
	cases := []struct {
		total float64
		n     int
		last  float64
	}{
		{100, 3, 33.34},
		{1000, 4, 250},
		{10, 6, 1.70},
	}
	for _, tc := range cases {
		parts := Split(tc.total, tc.n)
		if len(parts) != tc.n {
			t.Fatalf("Split(%v, %d) returned %d parts", tc.total, tc.n, len(parts))
		}
		if got := Sum(parts...); got != tc.total {
			t.Errorf("Split(%v, %d) sums to %v", tc.total, tc.n, got)
		}
		if parts[tc.n-1] != tc.last {
			t.Errorf("Split(%v, %d) last part = %v, want %v", tc.total, tc.n, parts[tc.n-1], tc.last)
		}
	}
}

func TestSubFloorClampsAtZero(t *testing.T) {
	if got := SubFloor(50, 80); got != 0 {
		t.Errorf("SubFloor(50, 80) = %v, want 0", got)
	}
	if got := SubFloor(100.10, 0.2); got != 99.9 {
		t.Errorf("SubFloor(100.10, 0.2) = %v, want 99.9", got)
	}
}

func TestSumAvoidsFloatDrift(t *testing.T) {
	if got := Sum(0.1, 0.2); got != 0.3 {
		t.Errorf("Sum(0.1, 0.2) = %v, want 0.3", got)
	}
	if got := Mul(3, 19.99); got != 59.97 {
		t.Errorf("Mul(3, 19.99) = %v, want 59.97", got)
	}
}
