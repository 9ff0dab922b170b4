package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal counts processed badge scans, labelled by outcome
	// (progress / no_work).
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "floor_scans_total",
		Help: "The total number of processed RFID scans",
	}, []string{"outcome"})

	// TasksCompletedTotal counts tasks that reached their target.
	TasksCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "floor_tasks_completed_total",
		Help: "The total number of tasks completed",
	})

	// MachinesInUse mirrors the current number of busy machines.
	MachinesInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "floor_machines_in_use",
		Help: "The number of machines currently allocated",
	})

	// ScanDuration tracks how long scan processing takes end to end.
	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "floor_scan_duration_seconds",
		Help:    "Time spent processing one RFID scan",
		Buckets: prometheus.DefBuckets,
	})
)
