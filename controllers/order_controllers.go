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

type OrderController struct {
	DB     *gorm.DB
	Orders *services.OrderService
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{DB: db, Orders: services.NewOrderService(db)}
}

// GetAllOrders -> list orders
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	var orders []models.Order
	if err := oc.DB.Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// CreateOrder -> create an order together with its named steps
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req struct {
		OrderNumber string `json:"order_number" binding:"required"`
		Product     string `json:"product" binding:"required"`
		Quantity    int    `json:"quantity" binding:"required"`
		Steps       []struct {
			Name string `json:"name"`
		} `json:"steps"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Quantity <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("quantity must be greater than zero"))
		return
	}

	order := models.Order{
		OrderNumber: req.OrderNumber,
		Product:     req.Product,
		Quantity:    req.Quantity,
		Status:      models.OrderPending,
	}

	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for _, step := range req.Steps {
			if step.Name == "" {
				continue
			}
			if err := tx.Create(&models.OrderStep{OrderID: order.ID, Name: step.Name}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Order %s created (quantity=%d, steps=%d)", order.OrderNumber, order.Quantity, len(req.Steps))
	utils.RespondJSON(c, http.StatusCreated, "Order and steps added successfully", order)
}

// GetOrderSteps -> the ordered step list of one order
func (oc *OrderController) GetOrderSteps(c *gin.Context) {
	orderID := c.Param("order_id")
	var steps []models.OrderStep
	if err := oc.DB.Where("order_id = ?", orderID).Order("id ASC").Find(&steps).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if len(steps) == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("no steps found for this order"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order steps", steps)
}

// GetOrdersWithMachines -> orders preloaded with allocations and their tasks
func (oc *OrderController) GetOrdersWithMachines(c *gin.Context) {
	var orders []models.Order
	if err := oc.DB.
		Preload("Allocations").
		Preload("Allocations.Tasks").
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders with assigned machines", orders)
}

// GetOrdersProgress -> step-wise completed counts for every order
func (oc *OrderController) GetOrdersProgress(c *gin.Context) {
	progress, err := oc.Orders.AllProgress()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders progress", progress)
}

// UpdateOrder -> change product/quantity
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	orderID := c.Param("order_id")
	var req struct {
		Product  string `json:"product" binding:"required"`
		Quantity int    `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var order models.Order
	if err := oc.DB.First(&order, orderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	order.Product = req.Product
	order.Quantity = req.Quantity
	if err := oc.DB.Save(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order updated successfully", order)
}

// UpdateStage -> office sets the descriptive production stage
func (oc *OrderController) UpdateStage(c *gin.Context) {
	var req struct {
		ID           uint   `json:"id" binding:"required"`
		CurrentStage string `json:"current_stage" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.SetCurrentStage(req.ID, req.CurrentStage)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order %d stage set to %q", order.ID, req.CurrentStage)
	utils.RespondJSON(c, http.StatusOK, "Stage updated successfully", order)
}

// DeleteOrder -> delete with explicit cascade through allocations and tasks
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	orderID, err := parseUint(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	if err := oc.Orders.DeleteOrder(orderID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order %d deleted", orderID)
	utils.RespondJSON(c, http.StatusOK, "Order deleted successfully", gin.H{"order_id": orderID})
}
