package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// NormalizeMoney округляет денежную сумму до двух знаков (половина округляется от нуля).
// Округление идёт по кратчайшему десятичному представлению числа,
// поэтому 11.565 превращается в 11.57, а повторный вызов ничего не меняет.
// NaN и бесконечности возвращаются как есть: их отсекает валидация.
func NormalizeMoney(x float64) float64 {
	if !finite(x) {
		return x
	}
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

func moneyDecimal(x float64) decimal.Decimal {
	if !finite(x) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(x)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
