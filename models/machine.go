package models

import "time"

// Machine status values. A machine is "In Use" exactly while a live
// allocation references it.
const (
	MachineAvailable = "Available"
	MachineInUse     = "In Use"
)

type Machine struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	MachineNumber string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"machine_number"`
	Status        string    `gorm:"type:varchar(20);not null;default:'Available'" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
