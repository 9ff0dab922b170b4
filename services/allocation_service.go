package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cutmap/smo-backend/models"
	"github.com/cutmap/smo-backend/utils"
)

// AllocationService owns the machine/allocation side of the lifecycle: it is
// the only code allowed to flip Machine.status, and ReconcileMachineStatus is
// the only repair path for ambiguous machine state.
type AllocationService struct {
	DB *gorm.DB
}

func NewAllocationService(db *gorm.DB) *AllocationService {
	return &AllocationService{DB: db}
}

// lockForUpdate serializes concurrent check-then-act sequences on the same
// rows. SQLite (tests, dev) has no FOR UPDATE and serializes writers itself.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// Assign binds a machine to one (order, step) pair. The uniqueness predicates
// are re-checked inside the same transaction that writes, so two concurrent
// Assign calls for the same machine or step cannot both succeed.
func (as *AllocationService) Assign(orderID uint, step string, machineID uint) (*models.MachineAllocation, error) {
	if orderID == 0 || machineID == 0 || step == "" {
		return nil, ErrValidation("order_id, step and machine_id are required")
	}

	var alloc models.MachineAllocation
	err := as.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("order %d not found", orderID)
			}
			return ErrTransient(err)
		}

		var stepCount int64
		if err := tx.Model(&models.OrderStep{}).
			Where("order_id = ? AND name = ?", orderID, step).
			Count(&stepCount).Error; err != nil {
			return ErrTransient(err)
		}
		if stepCount == 0 {
			return ErrNotFound("order %d has no step %q", orderID, step)
		}

		var machine models.Machine
		if err := lockForUpdate(tx).First(&machine, machineID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("machine %d not found", machineID)
			}
			return ErrTransient(err)
		}

		// One live allocation per (order, step).
		var existing models.MachineAllocation
		err := lockForUpdate(tx).
			Where("order_id = ? AND step = ? AND status <> ?", orderID, step, models.AllocationAvailable).
			First(&existing).Error
		if err == nil {
			return ErrConflict("step %q in order %d already has machine %d", step, orderID, existing.MachineID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransient(err)
		}

		// One live allocation per machine, regardless of order/step.
		err = lockForUpdate(tx).
			Where("machine_id = ? AND status <> ?", machineID, models.AllocationAvailable).
			First(&existing).Error
		if err == nil {
			return ErrConflict("machine %d is already assigned to order %d, step %q", machineID, existing.OrderID, existing.Step)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransient(err)
		}

		alloc = models.MachineAllocation{
			OrderID:   orderID,
			MachineID: machineID,
			Step:      step,
			Status:    models.AllocationAssigned,
		}
		if err := tx.Create(&alloc).Error; err != nil {
			return ErrTransient(err)
		}
		if err := tx.Model(&models.Machine{}).Where("id = ?", machineID).
			Update("status", models.MachineInUse).Error; err != nil {
			return ErrTransient(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Machine %d assigned to order %d step %q (allocation %d)", machineID, orderID, step, alloc.ID)
	return &alloc, nil
}

// Free releases a machine once every task under its live allocation is
// completed. The allocation row is marked Available, never deleted.
func (as *AllocationService) Free(machineID uint) error {
	if machineID == 0 {
		return ErrValidation("machine_id is required")
	}

	err := as.DB.Transaction(func(tx *gorm.DB) error {
		var alloc models.MachineAllocation
		err := lockForUpdate(tx).
			Where("machine_id = ? AND status <> ?", machineID, models.AllocationAvailable).
			First(&alloc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound("machine %d has no live allocation", machineID)
		}
		if err != nil {
			return ErrTransient(err)
		}

		var pending int64
		if err := tx.Model(&models.EmployeeTask{}).
			Where("machine_allocation_id = ? AND status <> ?", alloc.ID, models.TaskCompleted).
			Count(&pending).Error; err != nil {
			return ErrTransient(err)
		}
		if pending > 0 {
			return ErrConflict("machine %d still has %d pending task(s)", machineID, pending)
		}

		return releaseMachine(tx, &alloc)
	})
	if err != nil {
		return err
	}

	utils.InfoLogger.Printf("Machine %d freed", machineID)
	return nil
}

// releaseMachine marks the allocation Available and the machine Available,
// in that order so the allocation never reports live on a free machine.
func releaseMachine(tx *gorm.DB, alloc *models.MachineAllocation) error {
	if err := tx.Model(&models.MachineAllocation{}).Where("id = ?", alloc.ID).
		Update("status", models.AllocationAvailable).Error; err != nil {
		return ErrTransient(err)
	}
	if err := tx.Model(&models.Machine{}).Where("id = ?", alloc.MachineID).
		Update("status", models.MachineAvailable).Error; err != nil {
		return ErrTransient(err)
	}
	return nil
}

// Delete removes an allocation and cascades to its tasks. Each task is
// snapshotted into the ledger before its row goes away.
func (as *AllocationService) Delete(allocationID uint) error {
	err := as.DB.Transaction(func(tx *gorm.DB) error {
		var alloc models.MachineAllocation
		if err := lockForUpdate(tx).First(&alloc, allocationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("allocation %d not found", allocationID)
			}
			return ErrTransient(err)
		}

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
		if err := tx.Delete(&alloc).Error; err != nil {
			return ErrTransient(err)
		}
		if err := tx.Model(&models.Machine{}).Where("id = ?", alloc.MachineID).
			Update("status", models.MachineAvailable).Error; err != nil {
			return ErrTransient(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	utils.InfoLogger.Printf("Allocation %d deleted with task cascade", allocationID)
	return nil
}

// ReconcileMachineStatus re-derives a machine's status from its latest task.
// It is idempotent and is the single replacement for the legacy trio of
// divergent "mark machine available" paths.
func (as *AllocationService) ReconcileMachineStatus(machineID uint) error {
	if machineID == 0 {
		return ErrValidation("machine_id is required")
	}
	err := as.DB.Transaction(func(tx *gorm.DB) error {
		return reconcileMachine(tx, machineID)
	})
	return err
}

func reconcileMachine(tx *gorm.DB, machineID uint) error {
	var machine models.Machine
	if err := lockForUpdate(tx).First(&machine, machineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound("machine %d not found", machineID)
		}
		return ErrTransient(err)
	}

	var alloc models.MachineAllocation
	err := lockForUpdate(tx).
		Where("machine_id = ? AND status <> ?", machineID, models.AllocationAvailable).
		Order("created_at DESC").
		First(&alloc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Nothing live references the machine; force Available.
		if machine.Status != models.MachineAvailable {
			if err := tx.Model(&machine).Update("status", models.MachineAvailable).Error; err != nil {
				return ErrTransient(err)
			}
		}
		return nil
	}
	if err != nil {
		return ErrTransient(err)
	}

	var latest models.EmployeeTask
	err = tx.Where("machine_allocation_id = ?", alloc.ID).
		Order("created_at DESC").
		First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Live allocation with no task at all is a stray; release it.
		return releaseMachine(tx, &alloc)
	}
	if err != nil {
		return ErrTransient(err)
	}

	// A task is done when its counter reached target or when it was manually
	// marked Completed below target.
	if latest.Status == models.TaskCompleted || latest.Completed >= latest.Target {
		return releaseMachine(tx, &alloc)
	}

	// Work remains: the machine must report In Use.
	if machine.Status != models.MachineInUse {
		if err := tx.Model(&machine).Update("status", models.MachineInUse).Error; err != nil {
			return ErrTransient(err)
		}
	}
	return nil
}

// ActiveAllocations lists allocations that still occupy their machine.
func (as *AllocationService) ActiveAllocations() ([]models.MachineAllocation, error) {
	var allocations []models.MachineAllocation
	if err := as.DB.
		Where("status <> ?", models.AllocationAvailable).
		Order("created_at ASC").
		Find(&allocations).Error; err != nil {
		return nil, ErrTransient(err)
	}
	return allocations, nil
}
