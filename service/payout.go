package service

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculatePayout converts a stake and american odds into the total amount
// payable to the winner, rounded to cents. Positive odds pay stake*odds/100
// profit, negative odds pay stake*100/|odds| profit. Zero odds pay even,
// returning the stake itself.
//
// Every payout stored or displayed in the system goes through this function.
func CalculatePayout(stake decimal.Decimal, odds int) decimal.Decimal {
	if odds == 0 {
		return stake.Round(2)
	}

	o := decimal.NewFromInt(int64(odds))
	var profit decimal.Decimal
	if odds > 0 {
		profit = stake.Mul(o).Div(hundred)
	} else {
		profit = stake.Mul(hundred).Div(o.Abs())
	}

	return stake.Add(profit).Round(2)
}
