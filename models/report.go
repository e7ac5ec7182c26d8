package models

// ZipCount is an order count grouped by a postal code.
type ZipCount struct {
	ZipCode    string `gorm:"column:zip_code"`
	OrderCount int64  `gorm:"column:order_count"`
}

// CustomerOrderCount is an order count grouped by customer.
type CustomerOrderCount struct {
	CustomerID int64 `gorm:"column:customer_id"`
	OrderCount int64 `gorm:"column:order_count"`
}
