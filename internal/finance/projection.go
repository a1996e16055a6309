// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package finance

import (
	"math"

	"github.com/pdiddy/market-engine/pkg/types"
)

// Projection defaults, used when the caller passes zero values.
const (
	DefaultProjectionMonths  = 24
	DefaultInitialCustomers  = 100
	DefaultMonthlyGrowthRate = 0.1
)

// Project runs a month-indexed P&L simulation: each period grows and churns
// the customer base by floored fractions, then derives revenue, gross profit,
// acquisition spend, and running cumulative totals. The simulation is pure —
// identical inputs always produce an identical table.
func Project(in Inputs, months, initialCustomers int, growthRate float64) []types.ProjectionRow {
	if months <= 0 {
		months = DefaultProjectionMonths
	}
	if initialCustomers <= 0 {
		initialCustomers = DefaultInitialCustomers
	}
	if growthRate <= 0 {
		growthRate = DefaultMonthlyGrowthRate
	}

	rows := make([]types.ProjectionRow, 0, months)
	customers := initialCustomers
	cumulativeRevenue := 0.0
	cumulativeCost := 0.0

	for month := 1; month <= months; month++ {
		newCustomers := int(math.Floor(float64(customers) * growthRate))
		churned := int(math.Floor(float64(customers) * in.ChurnRate))
		customers += newCustomers - churned

		revenue := float64(customers) * in.ARPU
		cogs := revenue * (1 - in.GrossMargin)
		grossProfit := revenue - cogs
		cacSpend := float64(newCustomers) * in.CAC
		net := grossProfit - cacSpend

		cumulativeRevenue += revenue
		cumulativeCost += cogs + cacSpend

		rows = append(rows, types.ProjectionRow{
			Month:             month,
			Customers:         customers,
			NewCustomers:      newCustomers,
			Churned:           churned,
			Revenue:           round2(revenue),
			GrossProfit:       round2(grossProfit),
			CACSpend:          round2(cacSpend),
			Net:               round2(net),
			CumulativeRevenue: round2(cumulativeRevenue),
			CumulativeProfit:  round2(cumulativeRevenue - cumulativeCost),
		})
	}
	return rows
}
