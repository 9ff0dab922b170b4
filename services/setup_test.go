package services

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cutmap/smo-backend/models"
	"github.com/cutmap/smo-backend/utils"
)

// openServiceDB membuka SQLite in-memory untuk testing. Setiap test memakai
// nama database sendiri supaya state tidak bocor antar test.
func openServiceDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	utils.InitLogger()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
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
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

type lineFixture struct {
	Order    models.Order
	Machine  models.Machine
	Employee models.Employee
}

// seedLine membuat satu order dengan steps, satu mesin dan satu pekerja.
func seedLine(t *testing.T, db *gorm.DB, orderNumber string, quantity int, steps ...string) lineFixture {
	t.Helper()

	order := models.Order{OrderNumber: orderNumber, Product: "Hoodie", Quantity: quantity}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	for _, s := range steps {
		if err := db.Create(&models.OrderStep{OrderID: order.ID, Name: s}).Error; err != nil {
			t.Fatalf("seed step %q: %v", s, err)
		}
	}

	machine := models.Machine{MachineNumber: "M-" + orderNumber, Status: models.MachineAvailable}
	if err := db.Create(&machine).Error; err != nil {
		t.Fatalf("seed machine: %v", err)
	}

	employee := models.Employee{Name: "Ravi", RFID: "TAG-" + orderNumber, Mobile: "90000" + orderNumber}
	if err := db.Create(&employee).Error; err != nil {
		t.Fatalf("seed employee: %v", err)
	}

	return lineFixture{Order: order, Machine: machine, Employee: employee}
}

func machineStatus(t *testing.T, db *gorm.DB, machineID uint) string {
	t.Helper()
	var machine models.Machine
	if err := db.First(&machine, machineID).Error; err != nil {
		t.Fatalf("load machine %d: %v", machineID, err)
	}
	return machine.Status
}

func allocationStatus(t *testing.T, db *gorm.DB, allocationID uint) string {
	t.Helper()
	var alloc models.MachineAllocation
	if err := db.First(&alloc, allocationID).Error; err != nil {
		t.Fatalf("load allocation %d: %v", allocationID, err)
	}
	return alloc.Status
}
