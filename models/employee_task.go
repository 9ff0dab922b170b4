package models

import "time"

// Task status values, shared vocabulary with MachineAllocation.
const (
	TaskAssigned   = "Assigned"
	TaskInProgress = "In Progress"
	TaskCompleted  = "Completed"
)

// Task duration labels, informational only.
const (
	DurationSingleDay = "One Day"
	DurationMultiDay  = "Multiple Days"
)

type EmployeeTask struct {
	ID                  uint              `gorm:"primaryKey" json:"id"`
	EmployeeID          uint              `gorm:"not null;index" json:"employee_id"`
	Employee            Employee          `gorm:"foreignKey:EmployeeID" json:"-"`
	MachineAllocationID uint              `gorm:"not null;index" json:"machine_allocation_id"`
	MachineAllocation   MachineAllocation `gorm:"foreignKey:MachineAllocationID" json:"-"`
	Target              int               `gorm:"not null" json:"target"`
	Completed           int               `gorm:"not null;default:0" json:"completed"`
	Duration            string            `gorm:"type:varchar(50);not null" json:"duration"`
	Status              string            `gorm:"type:varchar(20);not null;default:'Assigned'" json:"status"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// Remaining is the unit count still to be produced on this task.
func (t *EmployeeTask) Remaining() int {
	if r := t.Target - t.Completed; r > 0 {
		return r
	}
	return 0
}
