package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cutmap/smo-backend/models"
)

// HistoryService is the append-only ledger of task outcomes. Append never
// rejects duplicate or overlapping data; it only fails when the store does.
type HistoryService struct {
	DB *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{DB: db}
}

// snapshotTask builds a ledger row from a task plus its allocation context.
// The order and machine labels are resolved here so the row stays readable
// after the allocation or machine is gone.
func snapshotTask(tx *gorm.DB, task *models.EmployeeTask, action string) (*models.EmployeeTaskHistory, error) {
	var alloc models.MachineAllocation
	if err := tx.First(&alloc, task.MachineAllocationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("allocation %d not found", task.MachineAllocationID)
		}
		return nil, ErrTransient(err)
	}

	var order models.Order
	if err := tx.First(&order, alloc.OrderID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransient(err)
	}
	var machine models.Machine
	if err := tx.First(&machine, alloc.MachineID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransient(err)
	}

	now := time.Now()
	return &models.EmployeeTaskHistory{
		EmployeeID:    task.EmployeeID,
		OrderNumber:   order.OrderNumber,
		StepName:      alloc.Step,
		MachineNumber: machine.MachineNumber,
		Target:        task.Target,
		Completed:     task.Completed,
		Duration:      task.Duration,
		ActionType:    action,
		ActionTime:    now,
		WorkingDate:   now.Truncate(24 * time.Hour),
	}, nil
}

// AppendTaskEvent snapshots the task inside the caller's transaction and
// appends the ledger row.
func AppendTaskEvent(tx *gorm.DB, task *models.EmployeeTask, action string) error {
	record, err := snapshotTask(tx, task, action)
	if err != nil {
		return err
	}
	if err := tx.Create(record).Error; err != nil {
		return ErrTransient(err)
	}
	return nil
}

// ForEmployee returns all ledger rows for one employee, newest working date
// first.
func (hs *HistoryService) ForEmployee(employeeID uint) ([]models.EmployeeTaskHistory, error) {
	var records []models.EmployeeTaskHistory
	if err := hs.DB.
		Where("employee_id = ?", employeeID).
		Order("working_date DESC, action_time DESC").
		Find(&records).Error; err != nil {
		return nil, ErrTransient(err)
	}
	return records, nil
}
