package models

import (
	"time"

	"gorm.io/gorm"
)

type Donor struct {
	gorm.Model

	UserID    uint   `gorm:"not null;uniqueIndex"` // one donor profile per user
	Name      string `gorm:"not null"`
	Phone     string `gorm:"not null"`
	BloodType string `gorm:"not null"` // "A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"

	Street  string
	City    string `gorm:"not null"`
	State   string `gorm:"not null"`
	ZipCode string
	Country string `gorm:"not null"`

	AvailabilityStatus string `gorm:"not null;default:'available'"` // "available", "unavailable"
	LastDonationDate   *time.Time

	// Relationships
	User      User            `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Donations []Donation      `gorm:"foreignKey:DonorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Responses []DonorResponse `gorm:"foreignKey:DonorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
