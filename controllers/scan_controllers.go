package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cutmap/smo-backend/metrics"
	"github.com/cutmap/smo-backend/services"
	"github.com/cutmap/smo-backend/utils"
)

type ScanController struct {
	Scans *services.ScanService
}

func NewScanController(db *gorm.DB) *ScanController {
	return &ScanController{Scans: services.NewScanService(db)}
}

// ProcessScan -> the badge reader endpoint. One scan advances the
// employee's oldest unfinished task by one unit.
func (sc *ScanController) ProcessScan(c *gin.Context) {
	var req struct {
		RFID string `json:"rfid" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	result, err := sc.Scans.ProcessScan(req.RFID)
	metrics.ScanDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, result.Message, result)
}

// RecordRegScan -> registration kiosk pushes every raw tag read here
func (sc *ScanController) RecordRegScan(c *gin.Context) {
	var req struct {
		RFID string `json:"rfid" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := sc.Scans.RecordRegScan(req.RFID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "RFID scan recorded successfully", gin.H{"rfid": req.RFID})
}

// GetLatestRegScan -> the newest kiosk read, capped at three minutes so the
// registration form never picks up a stale tag
func (sc *ScanController) GetLatestRegScan(c *gin.Context) {
	scan, err := sc.Scans.LatestRegScan(3 * time.Minute)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Latest scan", gin.H{
		"rfid":       scan.RFID,
		"scanned_at": scan.ScannedAt,
	})
}
