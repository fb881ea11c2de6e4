package models

import (
	"time"

	"gorm.io/gorm"
)

// Donation is a completed donation in a donor's history.
type Donation struct {
	gorm.Model

	DonorID        uint      `gorm:"not null;index"`
	InstitutionID  uint      `gorm:"not null;index"`
	BloodRequestID uint      `gorm:"not null;index"`
	Date           time.Time `gorm:"not null"`
	Location       string

	// Relationships
	Donor        Donor        `gorm:"foreignKey:DonorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Institution  Institution  `gorm:"foreignKey:InstitutionID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	BloodRequest BloodRequest `gorm:"foreignKey:BloodRequestID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
