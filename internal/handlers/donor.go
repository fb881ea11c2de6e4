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

type CreateDonorRequest struct {
	Name      string  `json:"name" binding:"required"`
	Phone     string  `json:"phone" binding:"required"`
	BloodType string  `json:"blood_type" binding:"required"`
	Address   Address `json:"address"`
}

type UpdateDonorRequest struct {
	Name      string   `json:"name"`
	Phone     string   `json:"phone"`
	BloodType string   `json:"blood_type"`
	Address   *Address `json:"address"`
}

type RespondToRequestBody struct {
	AppointmentDate *time.Time `json:"appointment_date"`
}

type UpdateAvailabilityRequest struct {
	AvailabilityStatus string `json:"availability_status" binding:"required"`
}

type DonationHistoryEntry struct {
	ID             uint      `json:"id"`
	Date           time.Time `json:"date"`
	Location       string    `json:"location"`
	InstitutionID  uint      `json:"institution_id"`
	BloodRequestID uint      `json:"blood_request_id"`
}

func CreateDonorProfile(ctx *gin.Context) {
	var req CreateDonorRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !types.IsValidDonorBloodType(req.BloodType) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid blood type"})
		return
	}

	if req.Address.City == "" || req.Address.State == "" || req.Address.Country == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Address must include city, state and country"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	donor := models.Donor{
		UserID:             userID,
		Name:               req.Name,
		Phone:              req.Phone,
		BloodType:          req.BloodType,
		Street:             req.Address.Street,
		City:               req.Address.City,
		State:              req.Address.State,
		ZipCode:            req.Address.ZipCode,
		Country:            req.Address.Country,
		AvailabilityStatus: types.AvailabilityAvailable,
	}

	if err := db.DB.Create(&donor).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Donor profile already exists"})
			return
		}
		log.Printf("Failed to create donor profile: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create donor profile"})
		return
	}

	ctx.JSON(http.StatusCreated, newDonorProfile(donor))
}

func GetDonorProfile(ctx *gin.Context) {
	donor, ok := currentDonor(ctx)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, newDonorProfile(donor))
}

func UpdateDonorProfile(ctx *gin.Context) {
	donor, ok := currentDonor(ctx)

	if !ok {
		return
	}

	var req UpdateDonorRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// Unset fields keep their previous values.
	if req.Name != "" {
		donor.Name = req.Name
	}

	if req.Phone != "" {
		donor.Phone = req.Phone
	}

	if req.BloodType != "" {
		if !types.IsValidDonorBloodType(req.BloodType) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid blood type"})
			return
		}
		donor.BloodType = req.BloodType
	}

	if req.Address != nil {
		if req.Address.City == "" || req.Address.State == "" || req.Address.Country == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Address must include city, state and country"})
			return
		}
		donor.Street = req.Address.Street
		donor.City = req.Address.City
		donor.State = req.Address.State
		donor.ZipCode = req.Address.ZipCode
		donor.Country = req.Address.Country
	}

	if err := db.DB.Save(&donor).Error; err != nil {
		log.Printf("Failed to update donor profile: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update donor profile"})
		return
	}

	ctx.JSON(http.StatusOK, newDonorProfile(donor))
}

func GetEligibleRequests(ctx *gin.Context) {
	donor, ok := currentDonor(ctx)

	if !ok {
		return
	}

	var requests []models.BloodRequest

	if err := db.DB.Preload("Institution").
		Where("status = ? AND (blood_type = ? OR blood_type = ?)", types.StatusOpen, donor.BloodType, types.BloodTypeAny).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve blood requests"})
		return
	}

	ctx.JSON(http.StatusOK, newBloodRequestSummaries(requests))
}

func RespondToRequest(ctx *gin.Context) {
	donor, ok := currentDonor(ctx)

	if !ok {
		return
	}

	requestID, err := utils.GetRequestID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body RespondToRequestBody

	if ctx.Request.ContentLength > 0 {
		if err := ctx.BindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
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

	// The insert and the Open -> In Progress flip run in one transaction.
	// The unique index on (blood_request_id, donor_id) rejects a duplicate
	// response and the conditional update only fires while the request is
	// still Open, so two near-simultaneous responses cannot lose an entry.
	transitioned := false

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		response := models.DonorResponse{
			BloodRequestID:  request.ID,
			DonorID:         donor.ID,
			Status:          types.ResponseInterested,
			AppointmentDate: body.AppointmentDate,
		}

		if err := tx.Create(&response).Error; err != nil {
			return err
		}

		result := tx.Model(&models.BloodRequest{}).
			Where("id = ? AND status = ?", request.ID, types.StatusOpen).
			Update("status", types.StatusInProgress)

		if result.Error != nil {
			return result.Error
		}

		transitioned = result.RowsAffected > 0

		return nil
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Donor has already responded to this request"})
			return
		}
		log.Printf("Failed to record donor response: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to respond to blood request"})
		return
	}

	if transitioned {
		request.Status = types.StatusInProgress
		BroadcastRequestEvent(EventRequestInProgress, request)
	}

	go func(institution models.Institution, request models.BloodRequest, donor models.Donor) {
		if err := services.NotifyDonorResponse(institution, request, donor); err != nil {
			log.Printf("Failed to notify institution %d: %v", institution.ID, err)
		}
	}(request.Institution, request, donor)

	ctx.JSON(http.StatusCreated, gin.H{"message": "Successfully responded to blood request"})
}

func GetDonationHistory(ctx *gin.Context) {
	donor, ok := currentDonor(ctx)

	if !ok {
		return
	}

	var donations []models.Donation

	if err := db.DB.Where("donor_id = ?", donor.ID).Order("date DESC").Find(&donations).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve donation history"})
		return
	}

	history := make([]DonationHistoryEntry, 0, len(donations))

	for _, donation := range donations {
		history = append(history, DonationHistoryEntry{
			ID:             donation.ID,
			Date:           donation.Date,
			Location:       donation.Location,
			InstitutionID:  donation.InstitutionID,
			BloodRequestID: donation.BloodRequestID,
		})
	}

	ctx.JSON(http.StatusOK, history)
}

func UpdateAvailability(ctx *gin.Context) {
	donor, ok := currentDonor(ctx)

	if !ok {
		return
	}

	var req UpdateAvailabilityRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Please provide a valid availability status (available/unavailable)"})
		return
	}

	if req.AvailabilityStatus != types.AvailabilityAvailable && req.AvailabilityStatus != types.AvailabilityUnavailable {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Please provide a valid availability status (available/unavailable)"})
		return
	}

	if err := db.DB.Model(&donor).Update("availability_status", req.AvailabilityStatus).Error; err != nil {
		log.Printf("Failed to update availability status: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update availability status"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Availability status updated to " + req.AvailabilityStatus})
}

// currentDonor loads the caller's donor profile, writing the error response
// itself when there is none.
func currentDonor(ctx *gin.Context) (models.Donor, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return models.Donor{}, false
	}

	var donor models.Donor

	if err := db.DB.Where("user_id = ?", userID).First(&donor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Donor profile not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve donor profile"})
		}
		return models.Donor{}, false
	}

	return donor, true
}
