package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lifeline-dev/lifeline/db"
	"github.com/lifeline-dev/lifeline/internal/models"
	"github.com/lifeline-dev/lifeline/internal/services"
	"github.com/lifeline-dev/lifeline/internal/types"
	"github.com/lifeline-dev/lifeline/internal/utils"
	"gorm.io/gorm"
)

type CreateBloodRequestBody struct {
	BloodType    string     `json:"blood_type" binding:"required"`
	Quantity     int        `json:"quantity" binding:"required"`
	UrgencyLevel string     `json:"urgency_level" binding:"required"`
	RequiredBy   *time.Time `json:"required_by"`
	Description  string     `json:"description"`
	Location     string     `json:"location" binding:"required"`
}

type UpdateBloodRequestBody struct {
	BloodType    string     `json:"blood_type"`
	Quantity     int        `json:"quantity"`
	UrgencyLevel string     `json:"urgency_level"`
	RequiredBy   *time.Time `json:"required_by"`
	Description  string     `json:"description"`
	Location     string     `json:"location"`
}

type ConfirmAppointmentBody struct {
	AppointmentDate *time.Time `json:"appointment_date"`
}

func CreateBloodRequest(ctx *gin.Context) {
	institution, ok := currentInstitution(ctx)

	if !ok {
		return
	}

	var req CreateBloodRequestBody

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !types.IsValidRequestBloodType(req.BloodType) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid blood type"})
		return
	}

	if req.Quantity < 1 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be at least 1 unit"})
		return
	}

	if !types.IsValidUrgencyLevel(req.UrgencyLevel) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid urgency level"})
		return
	}

	request := models.BloodRequest{
		InstitutionID: institution.ID,
		BloodType:     req.BloodType,
		Quantity:      req.Quantity,
		UrgencyLevel:  req.UrgencyLevel,
		Status:        types.StatusOpen,
		RequiredBy:    req.RequiredBy,
		Description:   req.Description,
		Location:      req.Location,
	}

	if err := db.DB.Create(&request).Error; err != nil {
		log.Printf("Failed to create blood request: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create blood request"})
		return
	}

	request.Institution = institution
	BroadcastRequestEvent(EventRequestCreated, request)

	ctx.JSON(http.StatusCreated, newBloodRequestSummary(request))
}

func ListInstitutionRequests(ctx *gin.Context) {
	institution, ok := currentInstitution(ctx)

	if !ok {
		return
	}

	var requests []models.BloodRequest

	if err := db.DB.Where("institution_id = ?", institution.ID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve blood requests"})
		return
	}

	ctx.JSON(http.StatusOK, newBloodRequestSummaries(requests))
}

func GetInstitutionRequestByID(ctx *gin.Context) {
	institution, ok := currentInstitution(ctx)

	if !ok {
		return
	}

	request, ok := ownedRequest(ctx, institution, "RespondingDonors.Donor")

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, newBloodRequestSummary(request))
}

func UpdateBloodRequest(ctx *gin.Context) {
	institution, ok := currentInstitution(ctx)

	if !ok {
		return
	}

	request, ok := ownedRequest(ctx, institution)

	if !ok {
		return
	}

	var req UpdateBloodRequestBody

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// Status is deliberately not updatable here; cancelling is its own
	// endpoint and the remaining transitions happen through confirm/complete.
	if req.BloodType != "" {
		if !types.IsValidRequestBloodType(req.BloodType) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid blood type"})
			return
		}
		request.BloodType = req.BloodType
	}

	if req.Quantity != 0 {
		if req.Quantity < 1 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be at least 1 unit"})
			return
		}
		request.Quantity = req.Quantity
	}

	if req.UrgencyLevel != "" {
		if !types.IsValidUrgencyLevel(req.UrgencyLevel) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid urgency level"})
			return
		}
		request.UrgencyLevel = req.UrgencyLevel
	}

	if req.RequiredBy != nil {
		request.RequiredBy = req.RequiredBy
	}

	if req.Description != "" {
		request.Description = req.Description
	}

	if req.Location != "" {
		request.Location = req.Location
	}

	if err := db.DB.Save(&request).Error; err != nil {
		log.Printf("Failed to update blood request: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update blood request"})
		return
	}

	ctx.JSON(http.StatusOK, newBloodRequestSummary(request))
}

func CancelBloodRequest(ctx *gin.Context) {
	institution, ok := currentInstitution(ctx)

	if !ok {
		return
	}

	request, ok := ownedRequest(ctx, institution)

	if !ok {
		return
	}

	// Fulfilled and Cancelled are terminal.
	result := db.DB.Model(&models.BloodRequest{}).
		Where("id = ? AND status IN ?", request.ID, []string{types.StatusOpen, types.StatusInProgress}).
		Update("status", types.StatusCancelled)

	if result.Error != nil {
		log.Printf("Failed to cancel blood request: %v", result.Error)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel blood request"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Request is already " + request.Status})
		return
	}

	request.Status = types.StatusCancelled
	request.Institution = institution
	BroadcastRequestEvent(EventRequestCancelled, request)

	ctx.JSON(http.StatusOK, gin.H{"message": "Blood request cancelled"})
}

func ConfirmDonorAppointment(ctx *gin.Context) {
	institution, ok := currentInstitution(ctx)

	if !ok {
		return
	}

	request, ok := ownedRequest(ctx, institution)

	if !ok {
		return
	}

	// Fulfilled and Cancelled are terminal.
	if request.Status == types.StatusFulfilled || request.Status == types.StatusCancelled {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Request is already " + request.Status})
		return
	}

	donorID, err := utils.GetDonorID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body ConfirmAppointmentBody

	if ctx.Request.ContentLength > 0 {
		if err := ctx.BindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
	}

	var response models.DonorResponse

	if err := db.DB.Where("blood_request_id = ? AND donor_id = ?", request.ID, donorID).
		First(&response).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Donor not found in responding donors list"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve donor response"})
		}
		return
	}

	response.Status = types.ResponseConfirmed

	if body.AppointmentDate != nil {
		response.AppointmentDate = body.AppointmentDate
	}

	if err := db.DB.Save(&response).Error; err != nil {
		log.Printf("Failed to confirm donor appointment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm donor appointment"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Donor appointment confirmed"})
}

func CompleteDonation(ctx *gin.Context) {
	institution, ok := currentInstitution(ctx)

	if !ok {
		return
	}

	request, ok := ownedRequest(ctx, institution)

	if !ok {
		return
	}

	// Fulfilled and Cancelled are terminal.
	if request.Status == types.StatusFulfilled || request.Status == types.StatusCancelled {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Request is already " + request.Status})
		return
	}

	donorID, err := utils.GetDonorID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var response models.DonorResponse

	if err := db.DB.Where("blood_request_id = ? AND donor_id = ?", request.ID, donorID).
		First(&response).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Donor not found in responding donors list"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve donor response"})
		}
		return
	}

	if response.Status == types.ResponseCompleted {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Donation already completed for this donor"})
		return
	}

	now := time.Now()
	fulfilled := false

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&response).Update("status", types.ResponseCompleted).Error; err != nil {
			return err
		}

		donation := models.Donation{
			DonorID:        donorID,
			InstitutionID:  institution.ID,
			BloodRequestID: request.ID,
			Date:           now,
			Location:       request.Location,
		}

		if err := tx.Create(&donation).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Donor{}).Where("id = ?", donorID).
			Update("last_donation_date", now).Error; err != nil {
			return err
		}

		var completed int64

		if err := tx.Model(&models.DonorResponse{}).
			Where("blood_request_id = ? AND status = ?", request.ID, types.ResponseCompleted).
			Count(&completed).Error; err != nil {
			return err
		}

		if completed >= int64(request.Quantity) {
			// Conditional on In Progress so a request cancelled in the
			// meantime stays Cancelled.
			result := tx.Model(&models.BloodRequest{}).
				Where("id = ? AND status = ?", request.ID, types.StatusInProgress).
				Update("status", types.StatusFulfilled)

			if result.Error != nil {
				return result.Error
			}

			fulfilled = result.RowsAffected > 0
		}

		return nil
	})

	if err != nil {
		log.Printf("Failed to complete donation: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete donation"})
		return
	}

	if fulfilled {
		request.Status = types.StatusFulfilled
		request.Institution = institution
		BroadcastRequestEvent(EventRequestFulfilled, request)
	}

	go func(institution models.Institution, request models.BloodRequest, donorID uint) {
		var donor models.Donor
		if err := db.DB.First(&donor, donorID).Error; err != nil {
			return
		}
		if err := services.NotifyDonationCompleted(institution, request, donor); err != nil {
			log.Printf("Failed to notify institution %d: %v", institution.ID, err)
		}
	}(institution, request, donorID)

	ctx.JSON(http.StatusOK, gin.H{"message": "Donation marked as completed"})
}

// ownedRequest loads the request in the path and enforces ownership: absent
// requests are 404, requests owned by another institution are 401.
func ownedRequest(ctx *gin.Context, institution models.Institution, preloads ...string) (models.BloodRequest, bool) {
	requestID, err := utils.GetRequestID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.BloodRequest{}, false
	}

	query := db.DB

	for _, preload := range preloads {
		query = query.Preload(preload)
	}

	var request models.BloodRequest

	if err := query.First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Blood request not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve blood request"})
		}
		return models.BloodRequest{}, false
	}

	if request.InstitutionID != institution.ID {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Not authorized to access this request"})
		return models.BloodRequest{}, false
	}

	return request, true
}
