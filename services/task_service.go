package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/cutmap/smo-backend/models"
	"github.com/cutmap/smo-backend/utils"
)

// TaskService binds employees to allocations. It owns the completed counter;
// machine status cascades go through AllocationService only.
type TaskService struct {
	DB          *gorm.DB
	Allocations *AllocationService
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{DB: db, Allocations: NewAllocationService(db)}
}

// AssignOrUpdate creates the task for an allocation, or reassigns the
// existing one. On reassignment the previous state is snapshotted into the
// ledger and the completed counter is preserved; only employee, target and
// duration change.
func (ts *TaskService) AssignOrUpdate(employeeID, allocationID uint, target int, duration string) (*models.EmployeeTask, error) {
	if employeeID == 0 || allocationID == 0 || duration == "" {
		return nil, ErrValidation("employee_id, machine_allocation_id, target and duration are required")
	}
	if target <= 0 {
		return nil, ErrValidation("target must be greater than zero")
	}

	var task models.EmployeeTask
	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		var employee models.Employee
		if err := tx.First(&employee, employeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("employee %d not found", employeeID)
			}
			return ErrTransient(err)
		}
		var alloc models.MachineAllocation
		if err := tx.First(&alloc, allocationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("allocation %d not found", allocationID)
			}
			return ErrTransient(err)
		}

		err := lockForUpdate(tx).
			Where("machine_allocation_id = ?", allocationID).
			First(&task).Error
		if err == nil {
			// Reassignment: ledger the outgoing state first.
			if err := AppendTaskEvent(tx, &task, models.ActionReassign); err != nil {
				return err
			}
			task.EmployeeID = employeeID
			task.Target = target
			task.Duration = duration
			if err := tx.Save(&task).Error; err != nil {
				return ErrTransient(err)
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransient(err)
		}

		task = models.EmployeeTask{
			EmployeeID:          employeeID,
			MachineAllocationID: allocationID,
			Target:              target,
			Completed:           0,
			Duration:            duration,
			Status:              models.TaskAssigned,
		}
		if err := tx.Create(&task).Error; err != nil {
			return ErrTransient(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Task %d on allocation %d assigned to employee %d (target=%d)", task.ID, allocationID, employeeID, target)
	return &task, nil
}

// Complete is the manual override: the task is marked Completed regardless
// of its counter, then the owning machine is reconciled (which may free it).
func (ts *TaskService) Complete(taskID uint) error {
	if taskID == 0 {
		return ErrValidation("task_id is required")
	}
	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		var task models.EmployeeTask
		if err := lockForUpdate(tx).First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("task %d not found", taskID)
			}
			return ErrTransient(err)
		}

		if err := tx.Model(&task).Update("status", models.TaskCompleted).Error; err != nil {
			return ErrTransient(err)
		}

		var alloc models.MachineAllocation
		if err := tx.First(&alloc, task.MachineAllocationID).Error; err != nil {
			return ErrTransient(err)
		}
		return reconcileMachine(tx, alloc.MachineID)
	})
	if err != nil {
		return err
	}

	utils.InfoLogger.Printf("Task %d manually completed", taskID)
	return nil
}

// Delete removes a task after snapshotting it into the ledger.
func (ts *TaskService) Delete(taskID uint) error {
	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		var task models.EmployeeTask
		if err := lockForUpdate(tx).First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("task %d not found", taskID)
			}
			return ErrTransient(err)
		}
		if err := AppendTaskEvent(tx, &task, models.ActionDelete); err != nil {
			return err
		}
		if err := tx.Delete(&task).Error; err != nil {
			return ErrTransient(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	utils.InfoLogger.Printf("Task %d deleted", taskID)
	return nil
}
