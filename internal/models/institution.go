package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Institution struct {
	gorm.Model

	UserID         uint   `gorm:"not null;uniqueIndex"` // one institution profile per user
	Name           string `gorm:"not null"`
	ContactPerson  string `gorm:"not null"`
	Phone          string `gorm:"not null"`
	Description    string
	OperatingHours string

	Street      string
	City        string         `gorm:"not null"`
	State       string         `gorm:"not null"`
	ZipCode     string
	Country     string         `gorm:"not null"`
	Coordinates datatypes.JSON `gorm:"type:jsonb"` // optional {latitude, longitude}

	// Optional notification targets
	DiscordWebhook string
	SlackWebhook   string

	// Relationships
	User          User           `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	BloodRequests []BloodRequest `gorm:"foreignKey:InstitutionID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
