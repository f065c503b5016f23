// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Dataset Store Metrics
	DatasetSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_dataset_saves_total",
			Help: "Total number of dataset mirror saves",
		},
		[]string{"result"},
	)

	DatasetSaveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gallery_dataset_save_duration_seconds",
			Help:    "Duration of dataset mirror saves in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Backup Metrics
	BackupOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_backup_operations_total",
			Help: "Total number of backup operations",
		},
		[]string{"operation", "result"}, // operation: create, restore, delete
	)

	BackupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_backup_duration_seconds",
			Help:    "Duration of backup operations in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"operation"},
	)

	BackupLastSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_backup_last_size_bytes",
			Help: "Size of the most recently created archive",
		},
	)

	RetentionDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_retention_deleted_total",
			Help: "Total number of archives deleted by rotation",
		},
	)

	// Thumbnail cache
	ThumbnailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_thumbnail_cache_hits_total",
			Help: "Total number of thumbnail cache hits",
		},
	)

	ThumbnailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_thumbnail_cache_misses_total",
			Help: "Total number of thumbnail cache misses",
		},
	)

	ThumbnailCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_thumbnail_cache_entries",
			Help: "Thumbnails held in the cache after the last sweep",
		},
	)

	ThumbnailCacheExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_thumbnail_cache_expired_total",
			Help: "Total number of thumbnails dropped by cache sweeps",
		},
	)
)

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordDatasetSave records one mirror write.
func RecordDatasetSave(duration time.Duration, err error) {
	DatasetSavesTotal.WithLabelValues(result(err)).Inc()
	DatasetSaveDuration.Observe(duration.Seconds())
}

// RecordBackupOperation records a create, restore or delete.
func RecordBackupOperation(operation string, duration time.Duration, err error) {
	BackupOperationsTotal.WithLabelValues(operation, result(err)).Inc()
	BackupDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordBackupSize sets the size of the newest archive.
func RecordBackupSize(size int64) {
	BackupLastSizeBytes.Set(float64(size))
}

// RecordRetentionDeleted counts archives removed by rotation.
func RecordRetentionDeleted(n int) {
	RetentionDeletedTotal.Add(float64(n))
}

// RecordThumbnailCache records a thumbnail cache lookup.
func RecordThumbnailCache(hit bool) {
	if hit {
		ThumbnailCacheHits.Inc()
	} else {
		ThumbnailCacheMisses.Inc()
	}
}

// RecordThumbnailSweep records one cache sweep.
func RecordThumbnailSweep(expired, remaining int) {
	ThumbnailCacheExpired.Add(float64(expired))
	ThumbnailCacheEntries.Set(float64(remaining))
}
