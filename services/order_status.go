package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/cutmap/smo-backend/models"
)

// DeriveOrderStatus computes an order's status from the sum of completed
// units across its live allocations. Pure; nothing in the write path
// denormalizes this into the order row.
func DeriveOrderStatus(quantity, sumCompleted int) string {
	switch {
	case quantity > 0 && sumCompleted >= quantity:
		return models.OrderCompleted
	case sumCompleted > 0:
		return models.OrderInProgress
	default:
		return models.OrderPending
	}
}

// StepProgress is the per-step slice of an order progress projection.
type StepProgress struct {
	Step         string `json:"step"`
	MachineID    *uint  `json:"machine_id"`
	AllocationID *uint  `json:"allocation_id"`
	Completed    int    `json:"completed"`
}

// OrderProgress is the read projection behind the orders/progress endpoint.
type OrderProgress struct {
	ID           uint           `json:"id"`
	OrderNumber  string         `json:"order_number"`
	Product      string         `json:"product"`
	Quantity     int            `json:"quantity"`
	Completed    int            `json:"completed"`
	Status       string         `json:"status"`
	CurrentStage string         `json:"current_stage"`
	Steps        []StepProgress `json:"steps"`
}

// OrderService covers the order/step catalog and its read projections.
type OrderService struct {
	DB *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{DB: db}
}

// sumCompleted aggregates the completed counters of every task under one
// allocation.
func sumCompleted(db *gorm.DB, allocationID uint) (int, error) {
	var sum int
	err := db.Model(&models.EmployeeTask{}).
		Where("machine_allocation_id = ?", allocationID).
		Select("COALESCE(SUM(completed), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, ErrTransient(err)
	}
	return sum, nil
}

// Progress builds the step-by-step completion projection for one order.
func (os *OrderService) Progress(orderID uint) (*OrderProgress, error) {
	var order models.Order
	if err := os.DB.Preload("Steps").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("order %d not found", orderID)
		}
		return nil, ErrTransient(err)
	}

	// Released allocations still carry completed work, so every allocation
	// counts toward the sums; only live ones expose their machine.
	var allocations []models.MachineAllocation
	if err := os.DB.Where("order_id = ?", orderID).Find(&allocations).Error; err != nil {
		return nil, ErrTransient(err)
	}
	byStep := make(map[string][]*models.MachineAllocation, len(allocations))
	for i := range allocations {
		byStep[allocations[i].Step] = append(byStep[allocations[i].Step], &allocations[i])
	}

	progress := &OrderProgress{
		ID:           order.ID,
		OrderNumber:  order.OrderNumber,
		Product:      order.Product,
		Quantity:     order.Quantity,
		CurrentStage: order.CurrentStage,
		Steps:        make([]StepProgress, 0, len(order.Steps)),
	}

	total := 0
	for _, step := range order.Steps {
		sp := StepProgress{Step: step.Name}
		for _, alloc := range byStep[step.Name] {
			sum, err := sumCompleted(os.DB, alloc.ID)
			if err != nil {
				return nil, err
			}
			sp.Completed += sum
			if alloc.Live() {
				sp.MachineID = &alloc.MachineID
				sp.AllocationID = &alloc.ID
			}
		}
		total += sp.Completed
		progress.Steps = append(progress.Steps, sp)
	}
	progress.Completed = total
	progress.Status = DeriveOrderStatus(order.Quantity, total)
	return progress, nil
}

// AllProgress runs the projection over every order, newest first.
func (os *OrderService) AllProgress() ([]OrderProgress, error) {
	var orders []models.Order
	if err := os.DB.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, ErrTransient(err)
	}
	out := make([]OrderProgress, 0, len(orders))
	for _, order := range orders {
		p, err := os.Progress(order.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// SetCurrentStage is the thin external stage setter; it validates the stage
// label and nothing else. No cascade into allocations or tasks.
func (os *OrderService) SetCurrentStage(orderID uint, stage string) (*models.Order, error) {
	if !models.IsValidStage(stage) {
		return nil, ErrValidation("invalid stage %q", stage)
	}
	var order models.Order
	if err := os.DB.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("order %d not found", orderID)
		}
		return nil, ErrTransient(err)
	}
	if err := os.DB.Model(&order).Update("current_stage", stage).Error; err != nil {
		return nil, ErrTransient(err)
	}
	return &order, nil
}

// DeleteOrder removes an order, cascading explicitly through its allocations
// and their tasks so no live allocation survives its order.
func (os *OrderService) DeleteOrder(orderID uint) error {
	return os.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("order %d not found", orderID)
			}
			return ErrTransient(err)
		}

		var allocations []models.MachineAllocation
		if err := tx.Where("order_id = ?", orderID).Find(&allocations).Error; err != nil {
			return ErrTransient(err)
		}
		for _, alloc := range allocations {
			var tasks []models.EmployeeTask
			if err := tx.Where("machine_allocation_id = ?", alloc.ID).Find(&tasks).Error; err != nil {
				return ErrTransient(err)
			}
			for i := range tasks {
				if err := AppendTaskEvent(tx, &tasks[i], models.ActionDelete); err != nil {
					return err
				}
			}
			if err := tx.Where("machine_allocation_id = ?", alloc.ID).
				Delete(&models.EmployeeTask{}).Error; err != nil {
				return ErrTransient(err)
			}
			if err := tx.Delete(&models.MachineAllocation{}, alloc.ID).Error; err != nil {
				return ErrTransient(err)
			}
			if alloc.Live() {
				if err := tx.Model(&models.Machine{}).Where("id = ?", alloc.MachineID).
					Update("status", models.MachineAvailable).Error; err != nil {
					return ErrTransient(err)
				}
			}
		}

		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderStep{}).Error; err != nil {
			return ErrTransient(err)
		}
		if err := tx.Delete(&order).Error; err != nil {
			return ErrTransient(err)
		}
		return nil
	})
}
