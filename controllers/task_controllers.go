package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cutmap/smo-backend/models"
	"github.com/cutmap/smo-backend/services"
	"github.com/cutmap/smo-backend/utils"
)

type TaskController struct {
	DB    *gorm.DB
	Tasks *services.TaskService
}

func NewTaskController(db *gorm.DB) *TaskController {
	return &TaskController{DB: db, Tasks: services.NewTaskService(db)}
}

// AssignTask -> create or reassign the task on an allocation. Reassignment
// keeps the completed counter and ledgers the previous state.
func (tc *TaskController) AssignTask(c *gin.Context) {
	var req struct {
		EmployeeID          uint   `json:"employee_id" binding:"required"`
		MachineAllocationID uint   `json:"machine_allocation_id" binding:"required"`
		Target              int    `json:"target" binding:"required"`
		Duration            string `json:"duration" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	task, err := tc.Tasks.AssignOrUpdate(req.EmployeeID, req.MachineAllocationID, req.Target, req.Duration)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Task assigned successfully", task)
}

// GetAllTasks -> tasks with employee and allocation context, oldest first
func (tc *TaskController) GetAllTasks(c *gin.Context) {
	var tasks []models.EmployeeTask
	if err := tc.DB.
		Preload("Employee").
		Preload("MachineAllocation").
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of employee tasks", tasks)
}

// CompleteTask -> manual completion override, then machine reconciliation
func (tc *TaskController) CompleteTask(c *gin.Context) {
	var req struct {
		TaskID uint `json:"task_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := tc.Tasks.Complete(req.TaskID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Task completed, machine status updated", gin.H{"task_id": req.TaskID})
}

// UpdateTask -> reassign an existing task by id (same ledger rules as
// AssignTask, routed through the owning allocation)
func (tc *TaskController) UpdateTask(c *gin.Context) {
	taskID, err := parseUint(c.Param("task_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid task id"))
		return
	}

	var req struct {
		EmployeeID uint   `json:"employee_id" binding:"required"`
		Target     int    `json:"target" binding:"required"`
		Duration   string `json:"duration" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var task models.EmployeeTask
	if err := tc.DB.First(&task, taskID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	updated, err := tc.Tasks.AssignOrUpdate(req.EmployeeID, task.MachineAllocationID, req.Target, req.Duration)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Task updated successfully", updated)
}

// DeleteTask -> ledger then delete
func (tc *TaskController) DeleteTask(c *gin.Context) {
	taskID, err := parseUint(c.Param("task_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid task id"))
		return
	}

	if err := tc.Tasks.Delete(taskID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Task deleted", gin.H{"task_id": taskID})
}
