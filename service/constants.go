package service

import "github.com/shopspring/decimal"

var (
	MaxLoanAmount   = decimal.NewFromInt(100_000_000) // 10 crore
	MaxInterestRate = decimal.NewFromInt(100)         // percent per year
)

const (
	MaxTermMonths = 360 // 30 years
	MinTermMonths = 1

	loanCacheKeyPrefix = "loan:"
)
