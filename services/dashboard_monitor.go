package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/cutmap/smo-backend/live"
	"github.com/cutmap/smo-backend/metrics"
	"github.com/cutmap/smo-backend/models"
	"github.com/cutmap/smo-backend/utils"
)

// DashboardMonitor polls aggregate counts on a fixed interval and pushes a
// flat JSON object to every connected dashboard viewer. It is read-only and
// fully decoupled from the write path; a failed poll is logged and skipped
// so the broadcast loop never dies.
type DashboardMonitor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration
}

// DashboardCounts is the broadcast payload.
type DashboardCounts struct {
	TotalTasks        int64 `json:"totalTasks"`
	CompletedTasks    int64 `json:"completedTasks"`
	ActiveOrders      int64 `json:"activeOrders"`
	AvailableMachines int64 `json:"availableMachines"`
	InUseMachines     int64 `json:"inUseMachines"`
}

func NewDashboardMonitor(db *gorm.DB) *DashboardMonitor {
	return &DashboardMonitor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 3 * time.Second,
	}
}

func (dm *DashboardMonitor) Start() {
	go func() {
		ticker := time.NewTicker(dm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				dm.broadcastCounts()
			case <-dm.StopChan:
				return
			}
		}
	}()
}

func (dm *DashboardMonitor) Stop() {
	close(dm.StopChan)
}

func (dm *DashboardMonitor) broadcastCounts() {
	counts, err := dm.Counts()
	if err != nil {
		utils.ErrorLogger.Printf("Dashboard poll failed: %v", err)
		return
	}
	metrics.MachinesInUse.Set(float64(counts.InUseMachines))
	live.Broadcast(live.Message{
		Event: live.EventDashboardUpdate,
		Data:  counts,
	})
}

// Counts gathers the aggregate numbers the live dashboard shows. Also used
// synchronously by the office dashboard endpoint.
func (dm *DashboardMonitor) Counts() (*DashboardCounts, error) {
	var c DashboardCounts
	queries := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&c.TotalTasks, dm.DB.Model(&models.EmployeeTask{})},
		{&c.CompletedTasks, dm.DB.Model(&models.EmployeeTask{}).Where("status = ?", models.TaskCompleted)},
		{&c.AvailableMachines, dm.DB.Model(&models.Machine{}).Where("status = ?", models.MachineAvailable)},
		{&c.InUseMachines, dm.DB.Model(&models.Machine{}).Where("status = ?", models.MachineInUse)},
	}
	for _, q := range queries {
		if err := q.query.Count(q.dest).Error; err != nil {
			return nil, ErrTransient(err)
		}
	}

	// Order status is derived from task progress, never stored, so the
	// active count comes from the same derivation the progress endpoint uses.
	err := dm.DB.Raw(`
		SELECT COUNT(*) FROM orders o
		WHERE (
			SELECT COALESCE(SUM(t.completed), 0)
			FROM employee_tasks t
			JOIN machine_allocations a ON t.machine_allocation_id = a.id
			WHERE a.order_id = o.id AND a.status <> ?
		) BETWEEN 1 AND o.quantity - 1
	`, models.AllocationAvailable).Scan(&c.ActiveOrders).Error
	if err != nil {
		return nil, ErrTransient(err)
	}
	return &c, nil
}
