package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cutmap/smo-backend/models"
	"github.com/cutmap/smo-backend/router"
	"github.com/cutmap/smo-backend/services"
	"github.com/cutmap/smo-backend/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

// TestEndToEndIntegration menguji flow utama:
// 0. Seed admin user, lalu login -> token
// 1. Register pekerja + mesin + order dengan steps
// 2. Assign mesin ke step, assign task ke pekerja
// 3. Scan RFID sampai target tercapai -> task selesai, mesin bebas
// 4. Cek progress order dan dashboard
func TestEndToEndIntegration(t *testing.T) {
	db := setupIntegrationDB()
	r := router.SetupRouter(db, services.NewDashboardMonitor(db))

	token := loginTest(t, r)

	employeeID := registerEmployeeTest(t, r, token)
	machineID := createMachineTest(t, r, token)
	orderID := createOrderTest(t, r, token)

	allocationID := assignMachineTest(t, r, token, orderID, machineID)
	assignTaskTest(t, r, token, employeeID, allocationID)

	scanUntilDoneTest(t, r, db, machineID)
	checkProgressTest(t, r, token, orderID)
	checkDashboardTest(t, r, token)
}

// setupIntegrationDB -> migrasi model di SQLite in-memory + seed data
func setupIntegrationDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:floor_it?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Employee{},
		&models.Machine{},
		&models.Order{},
		&models.OrderStep{},
		&models.MachineAllocation{},
		&models.EmployeeTask{},
		&models.EmployeeTaskHistory{},
		&models.RFIDScan{},
		&models.RegScan{},
		&models.HourlyProduction{},
	)
	if err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	db.Create(&models.User{
		Name:     "Test Admin",
		Email:    "admin@example.com",
		Password: string(hashedPassword),
		Role:     "admin",
	})

	return db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		assert.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, path, body)
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	assert.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

func loginTest(t *testing.T, r *gin.Engine) string {
	w := doJSON(t, r, "POST", "/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	token, _ := dataOf(t, w)["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func registerEmployeeTest(t *testing.T, r *gin.Engine, token string) uint {
	w := doJSON(t, r, "POST", "/admin/employees", token, map[string]string{
		"name":   "Integration Emp",
		"rfid":   "TAG-IT-001",
		"mobile": "9123456789",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	return uint(dataOf(t, w)["id"].(float64))
}

func createMachineTest(t *testing.T, r *gin.Engine, token string) uint {
	w := doJSON(t, r, "POST", "/admin/machines", token, map[string]string{
		"machine_number": "M-IT-1",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	return uint(dataOf(t, w)["id"].(float64))
}

func createOrderTest(t *testing.T, r *gin.Engine, token string) uint {
	w := doJSON(t, r, "POST", "/admin/orders", token, gin.H{
		"order_number": "ORD-IT-1",
		"product":      "Polo Shirt",
		"quantity":     2,
		"steps":        []gin.H{{"name": "Cutting"}, {"name": "Sewing"}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	return uint(dataOf(t, w)["id"].(float64))
}

func assignMachineTest(t *testing.T, r *gin.Engine, token string, orderID, machineID uint) uint {
	w := doJSON(t, r, "POST", "/admin/allocations", token, gin.H{
		"order_id":   orderID,
		"step":       "Cutting",
		"machine_id": machineID,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	return uint(dataOf(t, w)["id"].(float64))
}

func assignTaskTest(t *testing.T, r *gin.Engine, token string, employeeID, allocationID uint) {
	w := doJSON(t, r, "POST", "/admin/tasks", token, gin.H{
		"employee_id":           employeeID,
		"machine_allocation_id": allocationID,
		"target":                2,
		"duration":              models.DurationSingleDay,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func scanUntilDoneTest(t *testing.T, r *gin.Engine, db *gorm.DB, machineID uint) {
	for i := 1; i <= 2; i++ {
		w := doJSON(t, r, "POST", "/rfid/scan", "", map[string]string{"rfid": "TAG-IT-001"})
		assert.Equal(t, http.StatusOK, w.Code, "scan %d failed: %s", i, w.Body.String())
		data := dataOf(t, w)
		assert.EqualValues(t, i, data["completed"])
	}

	// Target tercapai: mesin harus kembali Available.
	var machine models.Machine
	assert.NoError(t, db.First(&machine, machineID).Error)
	assert.Equal(t, models.MachineAvailable, machine.Status)
}

func checkProgressTest(t *testing.T, r *gin.Engine, token string, orderID uint) {
	w := doJSON(t, r, "GET", "/admin/orders/progress", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	rows := resp["data"].([]interface{})
	assert.NotEmpty(t, rows)

	found := false
	for _, row := range rows {
		entry := row.(map[string]interface{})
		if uint(entry["id"].(float64)) == orderID {
			found = true
			assert.Equal(t, models.OrderCompleted, entry["status"])
			assert.EqualValues(t, 2, entry["completed"])
		}
	}
	assert.True(t, found, fmt.Sprintf("order %d missing from progress listing", orderID))
}

func checkDashboardTest(t *testing.T, r *gin.Engine, token string) {
	w := doJSON(t, r, "GET", "/admin/dashboard/stats", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := dataOf(t, w)
	assert.EqualValues(t, 1, data["totalTasks"])
	assert.EqualValues(t, 1, data["completedTasks"])
	assert.EqualValues(t, 0, data["inUseMachines"])
}
