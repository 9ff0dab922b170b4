package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cutmap/smo-backend/models"
	"github.com/cutmap/smo-backend/services"
	"github.com/cutmap/smo-backend/utils"
)

type DashboardController struct {
	DB      *gorm.DB
	Monitor *services.DashboardMonitor
	History *services.HistoryService
}

func NewDashboardController(db *gorm.DB, monitor *services.DashboardMonitor) *DashboardController {
	return &DashboardController{DB: db, Monitor: monitor, History: services.NewHistoryService(db)}
}

// GetOfficeDashboard -> aggregate counts plus the currently active tasks
func (dc *DashboardController) GetOfficeDashboard(c *gin.Context) {
	counts, err := dc.Monitor.Counts()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var totalOrders, totalEmployees, employeesWorking int64
	dc.DB.Model(&models.Order{}).Count(&totalOrders)
	dc.DB.Model(&models.Employee{}).Count(&totalEmployees)
	dc.DB.Model(&models.EmployeeTask{}).
		Where("status IN ?", []string{models.TaskAssigned, models.TaskInProgress}).
		Count(&employeesWorking)

	var tasks []models.EmployeeTask
	if err := dc.DB.
		Preload("Employee").
		Preload("MachineAllocation").
		Where("status IN ?", []string{models.TaskAssigned, models.TaskInProgress}).
		Find(&tasks).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	active := make([]gin.H, 0, len(tasks))
	for _, task := range tasks {
		active = append(active, gin.H{
			"employee_name": task.Employee.Name,
			"order_id":      task.MachineAllocation.OrderID,
			"step_name":     task.MachineAllocation.Step,
			"completed":     task.Completed,
			"target":        task.Target,
			"status":        task.Status,
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Office dashboard", gin.H{
		"totalOrders":       totalOrders,
		"activeOrders":      counts.ActiveOrders,
		"totalEmployees":    totalEmployees,
		"employeesWorking":  employeesWorking,
		"totalTasks":        counts.TotalTasks,
		"completedTasks":    counts.CompletedTasks,
		"availableMachines": counts.AvailableMachines,
		"inUseMachines":     counts.InUseMachines,
		"tasks":             active,
	})
}

// GetEmployeeDashboard -> the active task for one employee with its
// allocation context, for the floor display
func (dc *DashboardController) GetEmployeeDashboard(c *gin.Context) {
	employeeID := c.Param("employee_id")

	var task models.EmployeeTask
	err := dc.DB.
		Preload("MachineAllocation").
		Preload("MachineAllocation.Order").
		Where("employee_id = ? AND status <> ?", employeeID, models.TaskCompleted).
		Order("created_at ASC").
		First(&task).Error
	if err != nil {
		utils.RespondJSON(c, http.StatusOK, "No active tasks assigned", nil)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Employee dashboard", gin.H{
		"task_id":    task.ID,
		"order_id":   task.MachineAllocation.OrderID,
		"product":    task.MachineAllocation.Order.Product,
		"step":       task.MachineAllocation.Step,
		"machine_id": task.MachineAllocation.MachineID,
		"target":     task.Target,
		"completed":  task.Completed,
	})
}

// GetHourlyProduction -> per-hour scan buckets for one employee and date
// (defaults to today), feeding the hourly trend chart
func (dc *DashboardController) GetHourlyProduction(c *gin.Context) {
	employeeID := c.Param("employee_id")
	date := c.Query("date")

	query := dc.DB.Where("employee_id = ?", employeeID)
	if date != "" {
		query = query.Where("date = ?", date)
	}

	var rows []models.HourlyProduction
	if err := query.Order("date DESC").Find(&rows).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Hourly production", rows)
}
