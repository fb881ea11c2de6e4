package models

import (
	"time"

	"gorm.io/gorm"
)

// DonorResponse records a donor's interest in a blood request. The composite
// unique index guarantees a donor appears at most once per request, which
// makes the duplicate-response check atomic at insert time.
type DonorResponse struct {
	gorm.Model

	BloodRequestID  uint   `gorm:"not null;uniqueIndex:idx_request_donor"`
	DonorID         uint   `gorm:"not null;uniqueIndex:idx_request_donor"`
	Status          string `gorm:"not null;default:'Interested'"` // "Interested", "Confirmed", "Completed", "Cancelled"
	AppointmentDate *time.Time

	// Relationships
	BloodRequest BloodRequest `gorm:"foreignKey:BloodRequestID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Donor        Donor        `gorm:"foreignKey:DonorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
