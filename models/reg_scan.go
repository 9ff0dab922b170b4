package models

import "time"

// RegScan holds raw tags read at the registration kiosk before an employee
// record exists for them.
type RegScan struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RFID      string    `gorm:"type:varchar(100);not null" json:"rfid"`
	ScannedAt time.Time `gorm:"not null" json:"scanned_at"`
}
