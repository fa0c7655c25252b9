package models

// Category is a free-text spending or income label. The constants below are
// the labels the backend itself assigns; extracted signals may carry any value.
type Category string

const (
	CategoryInvestments   Category = "Investments"
	CategorySalary        Category = "Salary"
	CategoryHousing       Category = "Housing"
	CategorySubscriptions Category = "Subscriptions"
	CategoryUncategorized Category = "Uncategorized"
)
