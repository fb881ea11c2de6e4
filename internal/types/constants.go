package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

// User roles.
const (
	RoleDonor       = "donor"
	RoleInstitution = "institution"
	RoleAdmin       = "admin"
)

// Donor availability.
const (
	AvailabilityAvailable   = "available"
	AvailabilityUnavailable = "unavailable"
)

// BloodRequest lifecycle.
const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusFulfilled  = "Fulfilled"
	StatusCancelled  = "Cancelled"
)

// Responding-donor sub-status.
const (
	ResponseInterested = "Interested"
	ResponseConfirmed  = "Confirmed"
	ResponseCompleted  = "Completed"
	ResponseCancelled  = "Cancelled"
)

// Urgency levels.
const (
	UrgencyLow      = "Low"
	UrgencyMedium   = "Medium"
	UrgencyHigh     = "High"
	UrgencyCritical = "Critical"
)

// BloodTypeAny matches every donor blood type on a request.
const BloodTypeAny = "Any"

var donorBloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

func IsValidDonorBloodType(bloodType string) bool {
	for _, bt := range donorBloodTypes {
		if bt == bloodType {
			return true
		}
	}
	return false
}

func IsValidRequestBloodType(bloodType string) bool {
	return bloodType == BloodTypeAny || IsValidDonorBloodType(bloodType)
}

func IsValidUrgencyLevel(level string) bool {
	switch level {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
