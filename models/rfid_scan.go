package models

import "time"

// RFIDScan is the audit row written for every badge scan that moved a task.
type RFIDScan struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EmployeeID uint      `gorm:"not null;index" json:"employee_id"`
	TaskID     uint      `gorm:"not null;index" json:"task_id"`
	ScanTime   time.Time `gorm:"not null" json:"scan_time"`
}
