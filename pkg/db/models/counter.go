package models

import "time"

// Counter holds the shared order/invoice number counters. There is
// conceptually one row; readers always take the most recent by id.
type Counter struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	OrderNo      int64     `gorm:"column:order_no;not null;default:0"`
	OrderStart   string    `gorm:"column:order_start;not null"`
	InvoiceNo    int64     `gorm:"column:invoice_no;not null;default:0"`
	InvoiceStart string    `gorm:"column:invoice_start;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName preserves the legacy store's table name.
func (Counter) TableName() string {
	return "centerize_data"
}
