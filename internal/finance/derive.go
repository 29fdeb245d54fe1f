package finance

import "github.com/spec-kit/ops-desk/internal/domain"

// Financials holds the amounts derived from an event's sales.
type Financials struct {
	NetSale     domain.Money
	TotalPayout domain.Money
}

// Derive computes net sale and total payout. Callers validate that inputs are not negative.
//
// TotalPayout currently equals NetSale; the stored processing fee is not deducted.
func Derive(grossSale, serviceFee, gatewayFee domain.Money) Financials {
	net := grossSale - serviceFee - gatewayFee
	return Financials{NetSale: net, TotalPayout: net}
}
