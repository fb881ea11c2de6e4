package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lifeline-dev/lifeline/internal/handlers"
	"github.com/lifeline-dev/lifeline/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDonorProfileConflict(t *testing.T) {
	r := setupTest(t)

	donor := registerUser(t, r, "donor@example.com", types.RoleDonor)
	createDonorProfile(t, r, donor.Token, "A+")

	w := performRequest(t, r, http.MethodPost, "/api/donors", donor.Token, gin.H{
		"name":       "Test Donor",
		"phone":      "555-0100",
		"blood_type": "A+",
		"address": gin.H{
			"city":    "Springfield",
			"state":   "IL",
			"country": "USA",
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Donor profile already exists")
}

func TestDonorRoutesRejectInstitutions(t *testing.T) {
	r := setupTest(t)

	institution := registerUser(t, r, "hospital@example.com", types.RoleInstitution)

	w := performRequest(t, r, http.MethodGet, "/api/donors/profile", institution.Token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Not authorized as a donor")
}

func TestUpdateDonorProfilePartial(t *testing.T) {
	r := setupTest(t)

	donor := registerUser(t, r, "donor@example.com", types.RoleDonor)
	createDonorProfile(t, r, donor.Token, "B+")

	w := performRequest(t, r, http.MethodPut, "/api/donors/profile", donor.Token, gin.H{
		"phone": "555-9999",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var profile handlers.DonorProfile
	decodeJSON(t, w, &profile)
	assert.Equal(t, "555-9999", profile.Phone)
	assert.Equal(t, "Test Donor", profile.Name)
	assert.Equal(t, "B+", profile.BloodType)
}

func TestGetEligibleRequests(t *testing.T) {
	r := setupTest(t)

	donor := registerUser(t, r, "donor@example.com", types.RoleDonor)
	createDonorProfile(t, r, donor.Token, "O-")

	hospital := registerUser(t, r, "hospital@example.com", types.RoleInstitution)
	createInstitutionProfile(t, r, hospital.Token)

	matching := createBloodRequest(t, r, hospital.Token, gin.H{
		"blood_type": "O-", "quantity": 1, "urgency_level": "High", "location": "Ward 1",
	})
	anyType := createBloodRequest(t, r, hospital.Token, gin.H{
		"blood_type": "Any", "quantity": 1, "urgency_level": "Low", "location": "Ward 2",
	})
	createBloodRequest(t, r, hospital.Token, gin.H{
		"blood_type": "A+", "quantity": 1, "urgency_level": "High", "location": "Ward 3",
	})
	cancelled := createBloodRequest(t, r, hospital.Token, gin.H{
		"blood_type": "O-", "quantity": 1, "urgency_level": "Critical", "location": "Ward 4",
	})

	w := performRequest(t, r, http.MethodPut, "/api/institutions/blood-requests/"+itoa(cancelled.ID)+"/cancel", hospital.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = performRequest(t, r, http.MethodGet, "/api/donors/eligible-requests", donor.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var eligible []handlers.BloodRequestSummary
	decodeJSON(t, w, &eligible)
	require.Len(t, eligible, 2)

	ids := []uint{eligible[0].ID, eligible[1].ID}
	assert.Contains(t, ids, matching.ID)
	assert.Contains(t, ids, anyType.ID)
}

func TestRespondToRequest(t *testing.T) {
	r := setupTest(t)

	donor := registerUser(t, r, "donor@example.com", types.RoleDonor)
	createDonorProfile(t, r, donor.Token, "A+")

	hospital := registerUser(t, r, "hospital@example.com", types.RoleInstitution)
	createInstitutionProfile(t, r, hospital.Token)

	request := createBloodRequest(t, r, hospital.Token, gin.H{
		"blood_type": "A+", "quantity": 2, "urgency_level": "High", "location": "Ward 4",
	})

	w := performRequest(t, r, http.MethodPost, "/api/donors/respond/"+itoa(request.ID), donor.Token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = performRequest(t, r, http.MethodGet, "/api/bloodRequests/"+itoa(request.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var fetched handlers.BloodRequestSummary
	decodeJSON(t, w, &fetched)
	assert.Equal(t, types.StatusInProgress, fetched.Status)

	// A second response from the same donor must be rejected.
	w = performRequest(t, r, http.MethodPost, "/api/donors/respond/"+itoa(request.ID), donor.Token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already responded")
}

func TestRespondTransitionsOnlyOnce(t *testing.T) {
	r := setupTest(t)

	first := registerUser(t, r, "first@example.com", types.RoleDonor)
	createDonorProfile(t, r, first.Token, "A+")
	second := registerUser(t, r, "second@example.com", types.RoleDonor)
	createDonorProfile(t, r, second.Token, "A+")

	hospital := registerUser(t, r, "hospital@example.com", types.RoleInstitution)
	createInstitutionProfile(t, r, hospital.Token)

	request := createBloodRequest(t, r, hospital.Token, gin.H{
		"blood_type": "A+", "quantity": 5, "urgency_level": "Medium", "location": "Ward 2",
	})

	w := performRequest(t, r, http.MethodPost, "/api/donors/respond/"+itoa(request.ID), first.Token, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(t, r, http.MethodPost, "/api/donors/respond/"+itoa(request.ID), second.Token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = performRequest(t, r, http.MethodGet, "/api/bloodRequests/"+itoa(request.ID), "", nil)

	var fetched handlers.BloodRequestSummary
	decodeJSON(t, w, &fetched)
	assert.Equal(t, types.StatusInProgress, fetched.Status)
}

func TestRespondToMissingRequest(t *testing.T) {
	r := setupTest(t)

	donor := registerUser(t, r, "donor@example.com", types.RoleDonor)
	createDonorProfile(t, r, donor.Token, "A+")

	w := performRequest(t, r, http.MethodPost, "/api/donors/respond/9999", donor.Token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRespondWithoutProfile(t *testing.T) {
	r := setupTest(t)

	donor := registerUser(t, r, "donor@example.com", types.RoleDonor)

	w := performRequest(t, r, http.MethodPost, "/api/donors/respond/1", donor.Token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Donor profile not found")
}

func TestUpdateAvailability(t *testing.T) {
	r := setupTest(t)

	donor := registerUser(t, r, "donor@example.com", types.RoleDonor)
	createDonorProfile(t, r, donor.Token, "A+")

	w := performRequest(t, r, http.MethodPut, "/api/donors/availability", donor.Token, gin.H{
		"availability_status": "busy",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(t, r, http.MethodPut, "/api/donors/availability", donor.Token, gin.H{
		"availability_status": types.AvailabilityUnavailable,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = performRequest(t, r, http.MethodGet, "/api/donors/profile", donor.Token, nil)

	var profile handlers.DonorProfile
	decodeJSON(t, w, &profile)
	assert.Equal(t, types.AvailabilityUnavailable, profile.AvailabilityStatus)
}
