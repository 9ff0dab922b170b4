package models

import "time"

// History action types. History rows are append-only; nothing in the
// application updates or deletes them.
const (
	ActionReassign = "Reassign"
	ActionDelete   = "Delete"
	ActionComplete = "Complete"
)

// EmployeeTaskHistory is an immutable snapshot of a task and its allocation
// context (order, step, machine) taken at a terminal event.
type EmployeeTaskHistory struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	EmployeeID    uint      `gorm:"not null;index" json:"employee_id"`
	OrderNumber   string    `gorm:"type:varchar(50);not null" json:"order_number"`
	StepName      string    `gorm:"type:varchar(100);not null" json:"step_name"`
	MachineNumber string    `gorm:"type:varchar(50);not null" json:"machine_number"`
	Target        int       `gorm:"not null" json:"target"`
	Completed     int       `gorm:"not null" json:"completed"`
	Duration      string    `gorm:"type:varchar(50)" json:"duration"`
	ActionType    string    `gorm:"type:varchar(20);not null" json:"action_type"`
	ActionTime    time.Time `gorm:"not null" json:"action_time"`
	WorkingDate   time.Time `gorm:"type:date;not null;index" json:"working_date"`
}

func (EmployeeTaskHistory) TableName() string {
	return "employee_task_histories"
}
