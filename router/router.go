package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/cutmap/smo-backend/controllers"
	"github.com/cutmap/smo-backend/middlewares"
	"github.com/cutmap/smo-backend/services"
)

func SetupRouter(db *gorm.DB, monitor *services.DashboardMonitor) *gin.Engine {
	r := gin.Default()

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	employeeCtrl := controllers.NewEmployeeController(db)
	machineCtrl := controllers.NewMachineController(db)
	orderCtrl := controllers.NewOrderController(db)
	allocationCtrl := controllers.NewAllocationController(db)
	taskCtrl := controllers.NewTaskController(db)
	scanCtrl := controllers.NewScanController(db)
	dashboardCtrl := controllers.NewDashboardController(db, monitor)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Rate limiter untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
		public.POST("/app/login", userCtrl.AppLogin)
	}

	// RFID readers post here without auth; the reader box carries no token.
	r.POST("/rfid/scan", scanCtrl.ProcessScan)
	r.POST("/reg-scans", scanCtrl.RecordRegScan)
	r.GET("/reg-scans/latest", scanCtrl.GetLatestRegScan)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.EnhancedAuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)
	auth.GET("/users", userCtrl.GetAllUsers)
	auth.PATCH("/users/:user_id", userCtrl.EditUser)
	auth.DELETE("/users/:user_id", middlewares.RequireRoles(), userCtrl.DeleteUser)
	auth.PATCH("/users/:user_id/password", userCtrl.UpdatePassword)
	auth.POST("/logout", userCtrl.Logout)

	// EMPLOYEES
	auth.GET("/employees", employeeCtrl.GetAllEmployees)
	auth.POST("/employees", employeeCtrl.RegisterEmployee)
	auth.DELETE("/employees/:employee_id", middlewares.RequireRoles("manager"), employeeCtrl.DeleteEmployee)
	auth.GET("/employees/:employee_id/history", employeeCtrl.GetEmployeeHistory)

	// MACHINES
	auth.GET("/machines", machineCtrl.GetAllMachines)
	auth.POST("/machines", machineCtrl.CreateMachine)
	auth.GET("/machines/by-status", machineCtrl.FindMachinesByStatus)

	// ORDERS
	auth.GET("/orders", orderCtrl.GetAllOrders)
	auth.POST("/orders", orderCtrl.CreateOrder)
	auth.GET("/orders/progress", orderCtrl.GetOrdersProgress)
	auth.GET("/orders/with-machines", orderCtrl.GetOrdersWithMachines)
	auth.GET("/orders/:order_id/steps", orderCtrl.GetOrderSteps)
	auth.PATCH("/orders/:order_id", orderCtrl.UpdateOrder)
	auth.PATCH("/orders/stage", orderCtrl.UpdateStage)
	auth.DELETE("/orders/:order_id", middlewares.RequireRoles("manager"), orderCtrl.DeleteOrder)

	// MACHINE ALLOCATIONS
	auth.GET("/allocations", allocationCtrl.GetActiveAllocations)
	auth.POST("/allocations", allocationCtrl.AssignMachine)
	auth.POST("/allocations/free", allocationCtrl.FreeMachine)
	auth.POST("/allocations/reconcile", allocationCtrl.ReconcileMachineStatus)
	auth.DELETE("/allocations/:allocation_id", allocationCtrl.DeleteAllocation)

	// EMPLOYEE TASKS
	auth.GET("/tasks", taskCtrl.GetAllTasks)
	auth.POST("/tasks", taskCtrl.AssignTask)
	auth.POST("/tasks/complete", taskCtrl.CompleteTask)
	auth.PATCH("/tasks/:task_id", taskCtrl.UpdateTask)
	auth.DELETE("/tasks/:task_id", taskCtrl.DeleteTask)

	// DASHBOARDS
	auth.GET("/dashboard/stats", dashboardCtrl.GetOfficeDashboard)
	auth.GET("/dashboard/employees/:employee_id", dashboardCtrl.GetEmployeeDashboard)
	auth.GET("/dashboard/employees/:employee_id/hourly", dashboardCtrl.GetHourlyProduction)

	// FLOOR APP (operator roles)
	app := r.Group("/app")
	app.Use(middlewares.EnhancedAuthMiddleware())
	app.Use(middlewares.RequireRoles("manager", "employee", "Cutting", "Sewing", "Quality control", "Packing"))
	{
		app.GET("/employees/:employee_id/tasks", userCtrl.GetEmployeeTaskFeed)
	}

	// WebSocket endpoint dengan middleware khusus
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/dashboard", controllers.DashboardStream)
	}

	return r
}
