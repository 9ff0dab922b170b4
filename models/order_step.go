package models

type OrderStep struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	OrderID uint   `gorm:"not null;index;uniqueIndex:idx_order_step_name" json:"order_id"`
	Name    string `gorm:"type:varchar(100);not null;uniqueIndex:idx_order_step_name" json:"name"`
}
