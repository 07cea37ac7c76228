package model

// BudgetStats holds month-to-date spend against the configured budget.
type BudgetStats struct {
	MonthlyBudget     float64 `json:"monthlyBudget"`
	MonthToDate       float64 `json:"monthToDate"`
	DailyBurnRate     float64 `json:"dailyBurnRate"`
	ProjectedMonthly  float64 `json:"projectedMonthly"`
	DaysRemaining     int     `json:"daysRemaining"`
	BudgetUsedPercent float64 `json:"budgetUsedPercent"`
}
