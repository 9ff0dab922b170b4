package models

import "time"

// Allocation status values. "Available" means the allocation no longer
// occupies its machine; it is kept (never deleted) so task history stays
// addressable. Assigned/In Progress/Completed mirror the task vocabulary.
const (
	AllocationAssigned   = "Assigned"
	AllocationInProgress = "In Progress"
	AllocationCompleted  = "Completed"
	AllocationAvailable  = "Available"
)

type MachineAllocation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Order     Order     `gorm:"foreignKey:OrderID" json:"-"`
	MachineID uint      `gorm:"not null;index" json:"machine_id"`
	Machine   Machine   `gorm:"foreignKey:MachineID" json:"-"`
	Step      string    `gorm:"type:varchar(100);not null" json:"step"`
	Status    string    `gorm:"type:varchar(20);not null;default:'Assigned'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tasks []EmployeeTask `gorm:"foreignKey:MachineAllocationID" json:"tasks,omitempty"`
}

// Live reports whether the allocation currently occupies its machine.
func (a *MachineAllocation) Live() bool {
	return a.Status != AllocationAvailable
}
