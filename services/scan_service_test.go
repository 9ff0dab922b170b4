package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cutmap/smo-backend/models"
)

func TestProcessScanAdvancesTask(t *testing.T) {
	db := openServiceDB(t, "scan_advance")
	fix := seedLine(t, db, "ORD-300", 3, "Cutting")
	allocSvc := NewAllocationService(db)
	taskSvc := NewTaskService(db)
	scanSvc := NewScanService(db)

	alloc, err := allocSvc.Assign(fix.Order.ID, "Cutting", fix.Machine.ID)
	assert.NoError(t, err)
	task, err := taskSvc.AssignOrUpdate(fix.Employee.ID, alloc.ID, 3, models.DurationSingleDay)
	assert.NoError(t, err)

	res, err := scanSvc.ProcessScan(fix.Employee.RFID)
	assert.NoError(t, err)
	assert.True(t, res.Progressed)
	assert.Equal(t, 1, res.Completed)
	assert.Equal(t, models.TaskInProgress, res.Status)
	assert.Equal(t, models.AllocationInProgress, allocationStatus(t, db, alloc.ID))

	res, err = scanSvc.ProcessScan(fix.Employee.RFID)
	assert.NoError(t, err)
	assert.Equal(t, 2, res.Completed)

	// Third scan hits the target: completion cascade.
	res, err = scanSvc.ProcessScan(fix.Employee.RFID)
	assert.NoError(t, err)
	assert.Equal(t, 3, res.Completed)
	assert.Equal(t, models.TaskCompleted, res.Status)
	assert.Equal(t, models.AllocationAvailable, allocationStatus(t, db, alloc.ID))
	assert.Equal(t, models.MachineAvailable, machineStatus(t, db, fix.Machine.ID))

	var history []models.EmployeeTaskHistory
	db.Where("employee_id = ?", fix.Employee.ID).Find(&history)
	assert.Len(t, history, 1)
	assert.Equal(t, models.ActionComplete, history[0].ActionType)
	assert.Equal(t, 3, history[0].Completed)

	var scans int64
	db.Model(&models.RFIDScan{}).Where("employee_id = ?", fix.Employee.ID).Count(&scans)
	assert.EqualValues(t, 3, scans)

	var hourly models.HourlyProduction
	assert.NoError(t, db.Where("employee_id = ?", fix.Employee.ID).First(&hourly).Error)
	assert.Equal(t, 3, hourly.Total)

	// Fourth scan finds nothing left and writes nothing.
	res, err = scanSvc.ProcessScan(fix.Employee.RFID)
	assert.NoError(t, err)
	assert.False(t, res.Progressed)
	assert.Contains(t, res.Message, "No remaining work")

	var reloaded models.EmployeeTask
	assert.NoError(t, db.First(&reloaded, task.ID).Error)
	assert.Equal(t, 3, reloaded.Completed)
	db.Model(&models.RFIDScan{}).Where("employee_id = ?", fix.Employee.ID).Count(&scans)
	assert.EqualValues(t, 3, scans)
}

func TestProcessScanPicksOldestTaskFirst(t *testing.T) {
	db := openServiceDB(t, "scan_fifo")
	fix := seedLine(t, db, "ORD-301", 4, "Cutting", "Sewing")
	scanSvc := NewScanService(db)

	second := models.Machine{MachineNumber: "M-301-B", Status: models.MachineAvailable}
	assert.NoError(t, db.Create(&second).Error)

	allocSvc := NewAllocationService(db)
	allocA, err := allocSvc.Assign(fix.Order.ID, "Cutting", fix.Machine.ID)
	assert.NoError(t, err)
	allocB, err := allocSvc.Assign(fix.Order.ID, "Sewing", second.ID)
	assert.NoError(t, err)

	base := time.Now().Add(-time.Hour)
	taskA := models.EmployeeTask{
		EmployeeID:          fix.Employee.ID,
		MachineAllocationID: allocA.ID,
		Target:              2,
		Duration:            models.DurationSingleDay,
		Status:              models.TaskAssigned,
		CreatedAt:           base,
	}
	assert.NoError(t, db.Create(&taskA).Error)
	taskB := models.EmployeeTask{
		EmployeeID:          fix.Employee.ID,
		MachineAllocationID: allocB.ID,
		Target:              2,
		Duration:            models.DurationSingleDay,
		Status:              models.TaskAssigned,
		CreatedAt:           base.Add(time.Minute),
	}
	assert.NoError(t, db.Create(&taskB).Error)

	// Scans drain the older task before touching the newer one.
	res, err := scanSvc.ProcessScan(fix.Employee.RFID)
	assert.NoError(t, err)
	assert.Equal(t, taskA.ID, res.TaskID)

	res, err = scanSvc.ProcessScan(fix.Employee.RFID)
	assert.NoError(t, err)
	assert.Equal(t, taskA.ID, res.TaskID)
	assert.Equal(t, models.TaskCompleted, res.Status)

	res, err = scanSvc.ProcessScan(fix.Employee.RFID)
	assert.NoError(t, err)
	assert.Equal(t, taskB.ID, res.TaskID)
	assert.Equal(t, 1, res.Completed)
}

func TestProcessScanUnknownTag(t *testing.T) {
	db := openServiceDB(t, "scan_unknown")
	seedLine(t, db, "ORD-302", 4, "Cutting")
	scanSvc := NewScanService(db)

	_, err := scanSvc.ProcessScan("TAG-DOES-NOT-EXIST")
	assert.True(t, IsKind(err, KindNotFound))

	_, err = scanSvc.ProcessScan("")
	assert.True(t, IsKind(err, KindValidation))
}

func TestRegScans(t *testing.T) {
	db := openServiceDB(t, "scan_reg")
	scanSvc := NewScanService(db)

	_, err := scanSvc.LatestRegScan(3 * time.Minute)
	assert.True(t, IsKind(err, KindNotFound))

	assert.NoError(t, scanSvc.RecordRegScan("TAG-NEW-CARD"))

	scan, err := scanSvc.LatestRegScan(3 * time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, "TAG-NEW-CARD", scan.RFID)

	// A stale read does not show up.
	stale := models.RegScan{RFID: "TAG-OLD", ScannedAt: time.Now().Add(-10 * time.Minute)}
	assert.NoError(t, db.Create(&stale).Error)
	scan, err = scanSvc.LatestRegScan(3 * time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, "TAG-NEW-CARD", scan.RFID)
}
