package models

import "time"

// Order status values (derived from task progress, see services.DeriveOrderStatus).
const (
	OrderPending    = "Pending"
	OrderInProgress = "In Progress"
	OrderCompleted  = "Completed"
)

// OrderStages is the fixed production stage enumeration, in floor order.
// current_stage is descriptive and set explicitly by the office; it is
// distinct from per-step allocation/task status.
var OrderStages = []string{
	"Cutting",
	"Cutting Started",
	"Cutting Completed",
	"Sewing is in progress",
	"Sewing Completed",
	"Quality Check in progress",
	"Quality Check Completed",
	"Packing is in progress",
	"Packing Completed",
	"Ready for Dispatch",
	"Dispatched",
}

// IsValidStage reports whether stage is one of the enumerated values.
func IsValidStage(stage string) bool {
	for _, s := range OrderStages {
		if s == stage {
			return true
		}
	}
	return false
}

type Order struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderNumber  string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"order_number"`
	Product      string    `gorm:"type:varchar(255);not null" json:"product"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	Status       string    `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	CurrentStage string    `gorm:"type:varchar(50);not null;default:'Cutting'" json:"current_stage"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Steps       []OrderStep         `gorm:"foreignKey:OrderID" json:"steps,omitempty"`
	Allocations []MachineAllocation `gorm:"foreignKey:OrderID" json:"allocations,omitempty"`
}
