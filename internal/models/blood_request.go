package models

import (
	"time"

	"gorm.io/gorm"
)

type BloodRequest struct {
	gorm.Model

	InstitutionID uint   `gorm:"not null;index"`
	BloodType     string `gorm:"not null"` // donor types plus "Any"
	Quantity      int    `gorm:"not null"` // units, >= 1
	UrgencyLevel  string `gorm:"not null"` // "Low", "Medium", "High", "Critical"
	Status        string `gorm:"not null;default:'Open'"`
	RequiredBy    *time.Time
	Description   string
	Location      string `gorm:"not null"`

	// Set once the overdue-request reminder has gone out.
	ReminderSentAt *time.Time

	// Relationships
	Institution      Institution     `gorm:"foreignKey:InstitutionID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	RespondingDonors []DonorResponse `gorm:"foreignKey:BloodRequestID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
