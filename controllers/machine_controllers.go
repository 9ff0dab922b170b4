package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cutmap/smo-backend/models"
	"github.com/cutmap/smo-backend/utils"
)

type MachineController struct {
	DB *gorm.DB
}

func NewMachineController(db *gorm.DB) *MachineController {
	return &MachineController{DB: db}
}

// CreateMachine -> register a new machine, Available by default
func (mc *MachineController) CreateMachine(c *gin.Context) {
	var req struct {
		MachineNumber string `json:"machine_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	machine := models.Machine{
		MachineNumber: req.MachineNumber,
		Status:        models.MachineAvailable,
	}
	if err := mc.DB.Create(&machine).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Machine added: %s", machine.MachineNumber)
	utils.RespondJSON(c, http.StatusCreated, "Machine added successfully", machine)
}

// GetAllMachines -> list machines with their current status
func (mc *MachineController) GetAllMachines(c *gin.Context) {
	var machines []models.Machine
	if err := mc.DB.Find(&machines).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of machines", machines)
}

// FindMachinesByStatus -> e.g. list available machines for the planner
func (mc *MachineController) FindMachinesByStatus(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		status = models.MachineAvailable
	}
	var machines []models.Machine
	if err := mc.DB.Where("status = ?", status).Find(&machines).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Machines with status: "+status, machines)
}
