package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cutmap/smo-backend/services"
	"github.com/cutmap/smo-backend/utils"
)

type AllocationController struct {
	DB          *gorm.DB
	Allocations *services.AllocationService
}

func NewAllocationController(db *gorm.DB) *AllocationController {
	return &AllocationController{DB: db, Allocations: services.NewAllocationService(db)}
}

// GetActiveAllocations -> allocations still occupying their machine
func (ac *AllocationController) GetActiveAllocations(c *gin.Context) {
	allocations, err := ac.Allocations.ActiveAllocations()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active machine allocations", allocations)
}

// AssignMachine -> bind a machine to one (order, step)
func (ac *AllocationController) AssignMachine(c *gin.Context) {
	var req struct {
		OrderID   uint   `json:"order_id" binding:"required"`
		Step      string `json:"step" binding:"required"`
		MachineID uint   `json:"machine_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	allocation, err := ac.Allocations.Assign(req.OrderID, req.Step, req.MachineID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Machine assigned successfully", allocation)
}

// FreeMachine -> release a machine whose tasks are all completed
func (ac *AllocationController) FreeMachine(c *gin.Context) {
	var req struct {
		MachineID uint `json:"machine_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := ac.Allocations.Free(req.MachineID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Machine is now free and ready to use", gin.H{"machine_id": req.MachineID})
}

// ReconcileMachineStatus -> re-derive a machine's status from its latest
// task. Callers invoke this after ambiguous states instead of patching
// machine or allocation rows themselves.
func (ac *AllocationController) ReconcileMachineStatus(c *gin.Context) {
	var req struct {
		MachineID uint `json:"machine_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := ac.Allocations.ReconcileMachineStatus(req.MachineID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Machine status reconciled", gin.H{"machine_id": req.MachineID})
}

// DeleteAllocation -> remove an allocation, cascading to its tasks
func (ac *AllocationController) DeleteAllocation(c *gin.Context) {
	allocationID, err := parseUint(c.Param("allocation_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid allocation id"))
		return
	}

	if err := ac.Allocations.Delete(allocationID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Allocation deleted", gin.H{"allocation_id": allocationID})
}
