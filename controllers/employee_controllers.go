package controllers

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cutmap/smo-backend/models"
	"github.com/cutmap/smo-backend/services"
	"github.com/cutmap/smo-backend/utils"
)

type EmployeeController struct {
	DB      *gorm.DB
	History *services.HistoryService
}

func NewEmployeeController(db *gorm.DB) *EmployeeController {
	return &EmployeeController{DB: db, History: services.NewHistoryService(db)}
}

var mobileRegex = regexp.MustCompile(`^[0-9]{10}$`)

// GetAllEmployees -> list every registered employee
func (ec *EmployeeController) GetAllEmployees(c *gin.Context) {
	var employees []models.Employee
	if err := ec.DB.Find(&employees).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of employees", employees)
}

// RegisterEmployee -> create an employee for a scanned badge. A tag is
// issued once: re-registration fails, it never overwrites.
func (ec *EmployeeController) RegisterEmployee(c *gin.Context) {
	var req struct {
		Name   string `json:"name" binding:"required"`
		RFID   string `json:"rfid" binding:"required"`
		Mobile string `json:"mobile" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if !mobileRegex.MatchString(req.Mobile) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid mobile number format"))
		return
	}

	var existing models.Employee
	if err := ec.DB.Where("rfid = ?", req.RFID).First(&existing).Error; err == nil {
		respondServiceError(c, services.ErrConflict("RFID already registered"))
		return
	}
	if err := ec.DB.Where("mobile = ?", req.Mobile).First(&existing).Error; err == nil {
		respondServiceError(c, services.ErrConflict("mobile number already registered"))
		return
	}

	employee := models.Employee{Name: req.Name, RFID: req.RFID, Mobile: req.Mobile}
	if err := ec.DB.Create(&employee).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Employee registered: %s (RFID %s)", employee.Name, employee.RFID)
	utils.RespondJSON(c, http.StatusCreated, "Employee registered successfully", employee)
}

// DeleteEmployee -> remove an employee; dependent login accounts go first.
func (ec *EmployeeController) DeleteEmployee(c *gin.Context) {
	employeeID := c.Param("employee_id")

	var employee models.Employee
	if err := ec.DB.First(&employee, employeeID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	err := ec.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", employee.ID).Delete(&models.User{}).Error; err != nil {
			return err
		}
		return tx.Delete(&employee).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Employee %d deleted", employee.ID)
	utils.RespondJSON(c, http.StatusOK, "Employee deleted successfully", gin.H{"id": employee.ID})
}

// GetEmployeeHistory -> the task ledger for one employee, latest first
func (ec *EmployeeController) GetEmployeeHistory(c *gin.Context) {
	employeeID, err := parseUint(c.Param("employee_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("employee id is required"))
		return
	}

	records, err := ec.History.ForEmployee(employeeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Task history", gin.H{"history": records})
}
