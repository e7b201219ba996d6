package reports

import (
	"github.com/shopspring/decimal"
)

// SalesStats is the aggregate view served to dashboards. Revenue covers only
// orders whose payment completed; open balances are not revenue yet.
type SalesStats struct {
	TodayOrders   int64           `json:"todayOrders"`
	TodayRevenue  decimal.Decimal `json:"todayRevenue"`
	TodayNetSales decimal.Decimal `json:"todayNetSales"`

	TotalOrders   int64           `json:"totalOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalNetSales decimal.Decimal `json:"totalNetSales"`

	StatusCounts map[string]int64 `json:"statusCounts"`
}
