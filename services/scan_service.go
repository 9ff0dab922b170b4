package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cutmap/smo-backend/metrics"
	"github.com/cutmap/smo-backend/models"
	"github.com/cutmap/smo-backend/utils"
)

// ScanService turns an RFID badge read into task progress. It is the only
// orchestrator: employee resolution, task selection, the status cascade into
// the allocation and the completion ledger entry all happen here, in one
// transaction, in a fixed order.
type ScanService struct {
	DB *gorm.DB
}

func NewScanService(db *gorm.DB) *ScanService {
	return &ScanService{DB: db}
}

// ScanResult is what the badge reader (and the floor display behind it)
// gets back after a scan.
type ScanResult struct {
	EmployeeName string `json:"employee_name"`
	OrderID      uint   `json:"order_id,omitempty"`
	Step         string `json:"step,omitempty"`
	TaskID       uint   `json:"task_id,omitempty"`
	Completed    int    `json:"completed"`
	Target       int    `json:"target"`
	Status       string `json:"status,omitempty"`
	Message      string `json:"message"`
	// Progressed is false when the scan found no remaining work and wrote
	// nothing.
	Progressed bool `json:"-"`
}

// ProcessScan resolves the tag to an employee, picks the oldest task with
// remaining capacity and advances it by one unit. A task reaching its target
// completes it, cascades the status into its allocation, ledgers the
// completion and reconciles the machine. Scans with no task to advance write
// nothing.
func (ss *ScanService) ProcessScan(rfid string) (*ScanResult, error) {
	if rfid == "" {
		return nil, ErrValidation("rfid tag is required")
	}

	var employee models.Employee
	if err := ss.DB.Where("rfid = ?", rfid).First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("no employee registered for this tag")
		}
		return nil, ErrTransient(err)
	}

	result := &ScanResult{EmployeeName: employee.Name}
	err := ss.DB.Transaction(func(tx *gorm.DB) error {
		var tasks []models.EmployeeTask
		if err := lockForUpdate(tx).
			Where("employee_id = ?", employee.ID).
			Order("created_at ASC").
			Find(&tasks).Error; err != nil {
			return ErrTransient(err)
		}

		// Oldest assignment first; skip tasks already at target.
		var task *models.EmployeeTask
		for i := range tasks {
			if tasks[i].Completed < tasks[i].Target {
				task = &tasks[i]
				break
			}
		}
		if task == nil {
			result.Message = "No remaining work for " + employee.Name
			return nil
		}

		task.Completed++
		status := models.TaskInProgress
		if task.Completed >= task.Target {
			status = models.TaskCompleted
		}
		task.Status = status
		if err := tx.Save(task).Error; err != nil {
			return ErrTransient(err)
		}

		// The allocation mirrors the task status. This write must land
		// before any freeing so the machine is never released while its
		// allocation still reads Assigned.
		var alloc models.MachineAllocation
		if err := tx.First(&alloc, task.MachineAllocationID).Error; err != nil {
			return ErrTransient(err)
		}
		if err := tx.Model(&alloc).Update("status", status).Error; err != nil {
			return ErrTransient(err)
		}

		if status == models.TaskCompleted {
			if err := AppendTaskEvent(tx, task, models.ActionComplete); err != nil {
				return err
			}
			if err := reconcileMachine(tx, alloc.MachineID); err != nil {
				return err
			}
			metrics.TasksCompletedTotal.Inc()
		}

		scan := models.RFIDScan{
			EmployeeID: employee.ID,
			TaskID:     task.ID,
			ScanTime:   time.Now(),
		}
		if err := tx.Create(&scan).Error; err != nil {
			return ErrTransient(err)
		}
		if err := recordHourlyProduction(tx, employee.ID, time.Now()); err != nil {
			return err
		}

		result.OrderID = alloc.OrderID
		result.Step = alloc.Step
		result.TaskID = task.ID
		result.Completed = task.Completed
		result.Target = task.Target
		result.Status = status
		result.Message = "Scan recorded successfully"
		result.Progressed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Progressed {
		metrics.ScansTotal.WithLabelValues("progress").Inc()
		utils.InfoLogger.Printf("Scan: %s advanced task %d to %d/%d (%s)",
			employee.Name, result.TaskID, result.Completed, result.Target, result.Status)
	} else {
		metrics.ScansTotal.WithLabelValues("no_work").Inc()
		utils.InfoLogger.Printf("Scan: %s has no remaining work", employee.Name)
	}
	return result, nil
}

// recordHourlyProduction bumps the per-hour bucket for the trend chart.
// Scans outside the 09:00-17:00 shift only count toward the daily total.
func recordHourlyProduction(tx *gorm.DB, employeeID uint, at time.Time) error {
	date := at.Truncate(24 * time.Hour)

	var row models.HourlyProduction
	err := lockForUpdate(tx).
		Where("employee_id = ? AND date = ?", employeeID, date).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = models.HourlyProduction{EmployeeID: employeeID, Date: date}
		if err := tx.Create(&row).Error; err != nil {
			return ErrTransient(err)
		}
	} else if err != nil {
		return ErrTransient(err)
	}

	updates := map[string]interface{}{"total": gorm.Expr("total + 1")}
	if col := models.BucketColumn(at.Hour()); col != "" {
		updates[col] = gorm.Expr(col + " + 1")
	}
	if err := tx.Model(&models.HourlyProduction{}).Where("id = ?", row.ID).
		Updates(updates).Error; err != nil {
		return ErrTransient(err)
	}
	return nil
}

// RecordRegScan stores a raw tag read from the registration kiosk.
func (ss *ScanService) RecordRegScan(rfid string) error {
	if rfid == "" {
		return ErrValidation("rfid tag is required")
	}
	scan := models.RegScan{RFID: rfid, ScannedAt: time.Now()}
	if err := ss.DB.Create(&scan).Error; err != nil {
		return ErrTransient(err)
	}
	return nil
}

// LatestRegScan returns the newest kiosk scan not older than maxAge.
func (ss *ScanService) LatestRegScan(maxAge time.Duration) (*models.RegScan, error) {
	var scan models.RegScan
	err := ss.DB.
		Where("scanned_at >= ?", time.Now().Add(-maxAge)).
		Order("scanned_at DESC").
		First(&scan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound("no recent scans found")
	}
	if err != nil {
		return nil, ErrTransient(err)
	}
	return &scan, nil
}
