package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cutmap/smo-backend/controllers"
	"github.com/cutmap/smo-backend/models"
	"github.com/cutmap/smo-backend/utils"
)

func setupTestDBForOrders() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:ctl_orders?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	err = db.AutoMigrate(
		&models.Employee{},
		&models.Machine{},
		&models.Order{},
		&models.OrderStep{},
		&models.MachineAllocation{},
		&models.EmployeeTask{},
		&models.EmployeeTaskHistory{},
	)
	if err != nil {
		panic(err)
	}
	return db
}

func setupOrderRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()

	orderCtrl := controllers.NewOrderController(db)
	router.GET("/orders", orderCtrl.GetAllOrders)
	router.POST("/orders", orderCtrl.CreateOrder)
	router.GET("/orders/progress", orderCtrl.GetOrdersProgress)
	router.GET("/orders/:order_id/steps", orderCtrl.GetOrderSteps)
	router.PATCH("/orders/stage", orderCtrl.UpdateStage)
	router.DELETE("/orders/:order_id", orderCtrl.DeleteOrder)

	return router
}

func TestCreateOrderWithSteps(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()
	router := setupOrderRouter(db)

	payload := gin.H{
		"order_number": "ORD-CT-1",
		"product":      "Denim Jacket",
		"quantity":     120,
		"steps": []gin.H{
			{"name": "Cutting"},
			{"name": "Sewing"},
			{"name": "Packing"},
		},
	}
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", "/orders", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	orderID := uint(data["id"].(float64))
	assert.Equal(t, models.OrderPending, data["status"])

	req, _ = http.NewRequest("GET", "/orders/"+idParam(orderID)+"/steps", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	steps := resp["data"].([]interface{})
	assert.Len(t, steps, 3)
}

func TestCreateOrderRejectsZeroQuantity(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()
	router := setupOrderRouter(db)

	body, _ := json.Marshal(gin.H{
		"order_number": "ORD-CT-2",
		"product":      "Denim Jacket",
		"quantity":     0,
	})
	req, _ := http.NewRequest("POST", "/orders", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrdersProgressEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()
	router := setupOrderRouter(db)

	order := models.Order{OrderNumber: "ORD-CT-3", Product: "Kurta", Quantity: 10}
	assert.NoError(t, db.Create(&order).Error)
	assert.NoError(t, db.Create(&models.OrderStep{OrderID: order.ID, Name: "Cutting"}).Error)

	req, _ := http.NewRequest("GET", "/orders/progress", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	rows := resp["data"].([]interface{})
	assert.NotEmpty(t, rows)

	// Tanpa task, order masih Pending.
	for _, row := range rows {
		entry := row.(map[string]interface{})
		if entry["order_number"] == "ORD-CT-3" {
			assert.Equal(t, models.OrderPending, entry["status"])
			assert.EqualValues(t, 0, entry["completed"])
		}
	}
}

func TestUpdateStage(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()
	router := setupOrderRouter(db)

	order := models.Order{OrderNumber: "ORD-CT-4", Product: "Kurta", Quantity: 10}
	assert.NoError(t, db.Create(&order).Error)

	body, _ := json.Marshal(gin.H{"id": order.ID, "current_stage": "Sewing is in progress"})
	req, _ := http.NewRequest("PATCH", "/orders/stage", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Order
	assert.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, "Sewing is in progress", reloaded.CurrentStage)

	// Stage di luar enumerasi ditolak.
	body, _ = json.Marshal(gin.H{"id": order.ID, "current_stage": "Welding"})
	req, _ = http.NewRequest("PATCH", "/orders/stage", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
