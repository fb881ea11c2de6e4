package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lifeline-dev/lifeline/db"
	"github.com/lifeline-dev/lifeline/internal/models"
	"github.com/lifeline-dev/lifeline/internal/types"
	"github.com/lifeline-dev/lifeline/internal/utils"
	"gorm.io/gorm"
)

// Critical > High > Medium > Low when sorting search results.
const urgencyRank = "CASE urgency_level WHEN 'Critical' THEN 4 WHEN 'High' THEN 3 WHEN 'Medium' THEN 2 ELSE 1 END DESC"

type StatCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type BloodRequestStatsResponse struct {
	BloodTypeStats  []StatCount           `json:"blood_type_stats"`
	UrgencyStats    []StatCount           `json:"urgency_stats"`
	RecentFulfilled []BloodRequestSummary `json:"recent_fulfilled"`
	TotalOpen       int64                 `json:"total_open"`
	TotalInProgress int64                 `json:"total_in_progress"`
	TotalFulfilled  int64                 `json:"total_fulfilled"`
}

func ListBloodRequests(ctx *gin.Context) {
	filters := func(tx *gorm.DB) *gorm.DB {
		if keyword := ctx.Query("keyword"); keyword != "" {
			pattern := "%" + keyword + "%"
			tx = tx.Where("LOWER(description) LIKE LOWER(?) OR LOWER(location) LIKE LOWER(?)", pattern, pattern)
		}

		if bloodType := ctx.Query("bloodType"); bloodType != "" {
			tx = tx.Where("blood_type = ?", bloodType)
		}

		if urgencyLevel := ctx.Query("urgencyLevel"); urgencyLevel != "" {
			tx = tx.Where("urgency_level = ?", urgencyLevel)
		}

		return tx.Where("status = ?", ctx.DefaultQuery("status", types.StatusOpen))
	}

	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}

	var total int64

	if err := db.DB.Model(&models.BloodRequest{}).Scopes(filters).Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve blood requests"})
		return
	}

	var requests []models.BloodRequest

	if err := db.DB.Scopes(filters).Preload("Institution").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&requests).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve blood requests"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"bloodRequests": newBloodRequestSummaries(requests),
		"page":          page,
		"pages":         int(math.Ceil(float64(total) / float64(limit))),
		"total":         total,
	})
}

func SearchBloodRequests(ctx *gin.Context) {
	query := db.DB.Where("status = ?", types.StatusOpen)

	if bloodType := ctx.Query("bloodType"); bloodType != "" {
		query = query.Where("blood_type = ?", bloodType)
	}

	if location := ctx.Query("location"); location != "" {
		query = query.Where("LOWER(location) LIKE LOWER(?)", "%"+location+"%")
	}

	var requests []models.BloodRequest

	if err := query.Preload("Institution").
		Order(urgencyRank).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search blood requests"})
		return
	}

	ctx.JSON(http.StatusOK, newBloodRequestSummaries(requests))
}

func GetDonationEvents(ctx *gin.Context) {
	var requests []models.BloodRequest

	if err := db.DB.Preload("Institution").
		Where("status = ? AND required_by > ?", types.StatusOpen, time.Now()).
		Order("required_by ASC").
		Limit(10).
		Find(&requests).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve donation events"})
		return
	}

	ctx.JSON(http.StatusOK, newBloodRequestSummaries(requests))
}

func GetBloodRequestStats(ctx *gin.Context) {
	var stats BloodRequestStatsResponse

	if err := db.DB.Model(&models.BloodRequest{}).
		Select("blood_type AS label, COUNT(*) AS count").
		Where("status = ?", types.StatusOpen).
		Group("blood_type").
		Order("count DESC").
		Scan(&stats.BloodTypeStats).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stats"})
		return
	}

	if err := db.DB.Model(&models.BloodRequest{}).
		Select("urgency_level AS label, COUNT(*) AS count").
		Where("status = ?", types.StatusOpen).
		Group("urgency_level").
		Order("count DESC").
		Scan(&stats.UrgencyStats).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stats"})
		return
	}

	var recentFulfilled []models.BloodRequest

	if err := db.DB.Preload("Institution").
		Where("status = ?", types.StatusFulfilled).
		Order("updated_at DESC").
		Limit(5).
		Find(&recentFulfilled).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stats"})
		return
	}

	stats.RecentFulfilled = newBloodRequestSummaries(recentFulfilled)

	counts := map[string]*int64{
		types.StatusOpen:       &stats.TotalOpen,
		types.StatusInProgress: &stats.TotalInProgress,
		types.StatusFulfilled:  &stats.TotalFulfilled,
	}

	for status, target := range counts {
		if err := db.DB.Model(&models.BloodRequest{}).
			Where("status = ?", status).
			Count(target).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stats"})
			return
		}
	}

	ctx.JSON(http.StatusOK, stats)
}

func GetBloodRequestByID(ctx *gin.Context) {
	requestID, err := utils.GetRequestID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var request models.BloodRequest

	if err := db.DB.Preload("Institution").First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Blood request not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve blood request"})
		}
		return
	}

	ctx.JSON(http.StatusOK, newBloodRequestSummary(request))
}
