package models

import "time"

type Employee struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	RFID      string    `gorm:"column:rfid;type:varchar(100);uniqueIndex;not null" json:"rfid"`
	Mobile    string    `gorm:"type:varchar(20);uniqueIndex" json:"mobile"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
