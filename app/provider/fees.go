package provider

import (
	"fmt"

	"github.com/SwayEquilibrium/pos-payments/app/types"
)

// quoteFees computes the fee breakdown for an amount against a method's
// schedule. Pure: the same inputs always yield the same quote, and
// Fee + Net == amount. The percentage component rounds half-up on minor
// units so repeated quotes are deterministic.
func quoteFees(amount int64, method types.PaymentMethod) *types.FeeQuote {
	breakdown := make([]types.FeeComponent, 0, 2)

	var fee int64
	if method.PercentageRate > 0 {
		pct := roundHalfUp(float64(amount) * method.PercentageRate / 100)
		fee += pct
		breakdown = append(breakdown, types.FeeComponent{
			Description: fmt.Sprintf("%.4g%% processing fee", method.PercentageRate),
			Amount:      pct,
		})
	}
	if method.FixedFee > 0 {
		fee += method.FixedFee
		breakdown = append(breakdown, types.FeeComponent{
			Description: "fixed transaction fee",
			Amount:      method.FixedFee,
		})
	}

	return &types.FeeQuote{
		Fee:       fee,
		Net:       amount - fee,
		Breakdown: breakdown,
	}
}

// zeroFeeQuote is used when the method code is unknown to the provider; the
// quote is still well-formed so callers can rely on Fee + Net == amount.
func zeroFeeQuote(amount int64) *types.FeeQuote {
	return &types.FeeQuote{Fee: 0, Net: amount, Breakdown: []types.FeeComponent{}}
}

func roundHalfUp(v float64) int64 {
	if v < 0 {
		return -int64(-v + 0.5)
	}
	return int64(v + 0.5)
}
