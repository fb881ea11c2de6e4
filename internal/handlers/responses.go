package handlers

import (
	"encoding/json"
	"time"

	"github.com/lifeline-dev/lifeline/internal/models"
	"github.com/lifeline-dev/lifeline/internal/types"
)

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

type DonorProfile struct {
	ID                 uint       `json:"id"`
	UserID             uint       `json:"user_id"`
	Name               string     `json:"name"`
	Phone              string     `json:"phone"`
	BloodType          string     `json:"blood_type"`
	Address            Address    `json:"address"`
	AvailabilityStatus string     `json:"availability_status"`
	LastDonationDate   *time.Time `json:"last_donation_date"`
	CreatedAt          time.Time  `json:"created_at"`
}

type InstitutionProfile struct {
	ID             uint               `json:"id"`
	UserID         uint               `json:"user_id"`
	Name           string             `json:"name"`
	ContactPerson  string             `json:"contact_person"`
	Phone          string             `json:"phone"`
	Description    string             `json:"description"`
	OperatingHours string             `json:"operating_hours"`
	Address        Address            `json:"address"`
	Coordinates    *types.Coordinates `json:"coordinates"`
	CreatedAt      time.Time          `json:"created_at"`
}

type InstitutionSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	City  string `json:"city"`
	State string `json:"state"`
	Phone string `json:"phone,omitempty"`
}

type RespondingDonorSummary struct {
	DonorID         uint       `json:"donor_id"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	BloodType       string     `json:"blood_type"`
	Status          string     `json:"status"`
	AppointmentDate *time.Time `json:"appointment_date"`
}

type BloodRequestSummary struct {
	ID               uint                     `json:"id"`
	InstitutionID    uint                     `json:"institution_id"`
	BloodType        string                   `json:"blood_type"`
	Quantity         int                      `json:"quantity"`
	UrgencyLevel     string                   `json:"urgency_level"`
	Status           string                   `json:"status"`
	RequiredBy       *time.Time               `json:"required_by"`
	Description      string                   `json:"description"`
	Location         string                   `json:"location"`
	CreatedAt        time.Time                `json:"created_at"`
	Institution      *InstitutionSummary      `json:"institution,omitempty"`
	RespondingDonors []RespondingDonorSummary `json:"responding_donors,omitempty"`
}

func newDonorProfile(donor models.Donor) DonorProfile {
	return DonorProfile{
		ID:        donor.ID,
		UserID:    donor.UserID,
		Name:      donor.Name,
		Phone:     donor.Phone,
		BloodType: donor.BloodType,
		Address: Address{
			Street:  donor.Street,
			City:    donor.City,
			State:   donor.State,
			ZipCode: donor.ZipCode,
			Country: donor.Country,
		},
		AvailabilityStatus: donor.AvailabilityStatus,
		LastDonationDate:   donor.LastDonationDate,
		CreatedAt:          donor.CreatedAt,
	}
}

func newInstitutionProfile(institution models.Institution) InstitutionProfile {
	profile := InstitutionProfile{
		ID:             institution.ID,
		UserID:         institution.UserID,
		Name:           institution.Name,
		ContactPerson:  institution.ContactPerson,
		Phone:          institution.Phone,
		Description:    institution.Description,
		OperatingHours: institution.OperatingHours,
		Address: Address{
			Street:  institution.Street,
			City:    institution.City,
			State:   institution.State,
			ZipCode: institution.ZipCode,
			Country: institution.Country,
		},
		CreatedAt: institution.CreatedAt,
	}

	if len(institution.Coordinates) > 0 {
		var coordinates types.Coordinates
		if err := json.Unmarshal(institution.Coordinates, &coordinates); err == nil {
			profile.Coordinates = &coordinates
		}
	}

	return profile
}

func newInstitutionSummary(institution models.Institution) *InstitutionSummary {
	if institution.ID == 0 {
		return nil
	}

	return &InstitutionSummary{
		ID:    institution.ID,
		Name:  institution.Name,
		City:  institution.City,
		State: institution.State,
		Phone: institution.Phone,
	}
}

func newBloodRequestSummary(request models.BloodRequest) BloodRequestSummary {
	summary := BloodRequestSummary{
		ID:            request.ID,
		InstitutionID: request.InstitutionID,
		BloodType:     request.BloodType,
		Quantity:      request.Quantity,
		UrgencyLevel:  request.UrgencyLevel,
		Status:        request.Status,
		RequiredBy:    request.RequiredBy,
		Description:   request.Description,
		Location:      request.Location,
		CreatedAt:     request.CreatedAt,
		Institution:   newInstitutionSummary(request.Institution),
	}

	for _, response := range request.RespondingDonors {
		summary.RespondingDonors = append(summary.RespondingDonors, RespondingDonorSummary{
			DonorID:         response.DonorID,
			Name:            response.Donor.Name,
			Phone:           response.Donor.Phone,
			BloodType:       response.Donor.BloodType,
			Status:          response.Status,
			AppointmentDate: response.AppointmentDate,
		})
	}

	return summary
}

func newBloodRequestSummaries(requests []models.BloodRequest) []BloodRequestSummary {
	summaries := make([]BloodRequestSummary, 0, len(requests))

	for _, request := range requests {
		summaries = append(summaries, newBloodRequestSummary(request))
	}

	return summaries
}
