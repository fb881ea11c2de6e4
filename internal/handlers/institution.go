package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lifeline-dev/lifeline/db"
	"github.com/lifeline-dev/lifeline/internal/models"
	"github.com/lifeline-dev/lifeline/internal/types"
	"github.com/lifeline-dev/lifeline/internal/utils"
	"gorm.io/gorm"
)

type CreateInstitutionRequest struct {
	Name           string             `json:"name" binding:"required"`
	ContactPerson  string             `json:"contact_person" binding:"required"`
	Phone          string             `json:"phone" binding:"required"`
	Description    string             `json:"description"`
	OperatingHours string             `json:"operating_hours"`
	Address        Address            `json:"address"`
	Coordinates    *types.Coordinates `json:"coordinates"`
	DiscordWebhook string             `json:"discord_webhook"`
	SlackWebhook   string             `json:"slack_webhook"`
}

type UpdateInstitutionRequest struct {
	Name           string             `json:"name"`
	ContactPerson  string             `json:"contact_person"`
	Phone          string             `json:"phone"`
	Description    string             `json:"description"`
	OperatingHours string             `json:"operating_hours"`
	Address        *Address           `json:"address"`
	Coordinates    *types.Coordinates `json:"coordinates"`
	DiscordWebhook *string            `json:"discord_webhook"`
	SlackWebhook   *string            `json:"slack_webhook"`
}

func CreateInstitutionProfile(ctx *gin.Context) {
	var req CreateInstitutionRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Address.City == "" || req.Address.State == "" || req.Address.Country == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Location must include city, state and country"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	institution := models.Institution{
		UserID:         userID,
		Name:           req.Name,
		ContactPerson:  req.ContactPerson,
		Phone:          req.Phone,
		Description:    req.Description,
		OperatingHours: req.OperatingHours,
		Street:         req.Address.Street,
		City:           req.Address.City,
		State:          req.Address.State,
		ZipCode:        req.Address.ZipCode,
		Country:        req.Address.Country,
		DiscordWebhook: req.DiscordWebhook,
		SlackWebhook:   req.SlackWebhook,
	}

	if req.Coordinates != nil {
		coordinates, err := json.Marshal(req.Coordinates)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
			return
		}
		institution.Coordinates = coordinates
	}

	if err := db.DB.Create(&institution).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Institution profile already exists"})
			return
		}
		log.Printf("Failed to create institution profile: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create institution profile"})
		return
	}

	ctx.JSON(http.StatusCreated, newInstitutionProfile(institution))
}

func GetInstitutionProfile(ctx *gin.Context) {
	institution, ok := currentInstitution(ctx)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, newInstitutionProfile(institution))
}

func UpdateInstitutionProfile(ctx *gin.Context) {
	institution, ok := currentInstitution(ctx)

	if !ok {
		return
	}

	var req UpdateInstitutionRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// Unset fields keep their previous values.
	if req.Name != "" {
		institution.Name = req.Name
	}

	if req.ContactPerson != "" {
		institution.ContactPerson = req.ContactPerson
	}

	if req.Phone != "" {
		institution.Phone = req.Phone
	}

	if req.Description != "" {
		institution.Description = req.Description
	}

	if req.OperatingHours != "" {
		institution.OperatingHours = req.OperatingHours
	}

	if req.Address != nil {
		if req.Address.City == "" || req.Address.State == "" || req.Address.Country == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Location must include city, state and country"})
			return
		}
		institution.Street = req.Address.Street
		institution.City = req.Address.City
		institution.State = req.Address.State
		institution.ZipCode = req.Address.ZipCode
		institution.Country = req.Address.Country
	}

	if req.Coordinates != nil {
		coordinates, err := json.Marshal(req.Coordinates)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
			return
		}
		institution.Coordinates = coordinates
	}

	if req.DiscordWebhook != nil {
		institution.DiscordWebhook = *req.DiscordWebhook
	}

	if req.SlackWebhook != nil {
		institution.SlackWebhook = *req.SlackWebhook
	}

	if err := db.DB.Save(&institution).Error; err != nil {
		log.Printf("Failed to update institution profile: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update institution profile"})
		return
	}

	ctx.JSON(http.StatusOK, newInstitutionProfile(institution))
}

// currentInstitution loads the caller's institution profile, writing the
// error response itself when there is none.
func currentInstitution(ctx *gin.Context) (models.Institution, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return models.Institution{}, false
	}

	var institution models.Institution

	if err := db.DB.Where("user_id = ?", userID).First(&institution).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Institution profile not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve institution profile"})
		}
		return models.Institution{}, false
	}

	return institution, true
}
