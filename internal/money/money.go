// Package money keeps currency arithmetic off float64 rounding paths.
// Amounts stay float64 in the models (they map to NUMERIC(12,2) columns) and
// every sum or difference goes through decimal before being rounded back.
package money

import "github.com/shopspring/decimal"

// Round rounds to cents.
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Sum adds amounts and rounds the result to cents.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(2).InexactFloat64()
}

// Sub returns a - b rounded to cents.
func Sub(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// SubFloor returns max(0, a - b) rounded to cents.
func SubFloor(a, b float64) float64 {
	d := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b))
	if d.IsNegative() {
		return 0
	}
	return d.Round(2).InexactFloat64()
}

// Mul returns qty * price rounded to cents.
func Mul(qty float64, price float64) float64 {
	return decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(price)).Round(2).InexactFloat64()
}

// Split divides total into n parts of equal cents; the rounding remainder is
// added to the last part so the parts always add back to total.
func Split(total float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	t := decimal.NewFromFloat(total).Round(2)
	part := t.Div(decimal.NewFromInt(int64(n))).RoundDown(2)
	parts := make([]float64, n)
	acc := decimal.Zero
	for i := 0; i < n-1; i++ {
		parts[i] = part.InexactFloat64()
		acc = acc.Add(part)
	}
	parts[n-1] = t.Sub(acc).InexactFloat64()
	return parts
}

// Min returns the smaller amount.
func Min(a, b float64) float64 {
	if decimal.NewFromFloat(a).LessThan(decimal.NewFromFloat(b)) {
		return a
	}
	return b
}
