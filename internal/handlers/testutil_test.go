package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/lifeline-dev/lifeline/db"
	"github.com/lifeline-dev/lifeline/internal/auth"
	"github.com/lifeline-dev/lifeline/internal/handlers"
	"github.com/lifeline-dev/lifeline/internal/models"
	"github.com/lifeline-dev/lifeline/internal/router"
	"github.com/lifeline-dev/lifeline/internal/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "password123"

type authPayload struct {
	User  types.UserResponse `json:"user"`
	Token string             `json:"token"`
}

func setupTest(t *testing.T) *gin.Engine {
	t.Helper()

	t.Setenv("JWT_SECRET", "test-secret")
	require.NoError(t, auth.InitJWTSecret())

	gin.SetMode(gin.TestMode)

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db.DB = conn
	require.NoError(t, db.MigrateDatabase())

	return router.NewRouter()
}

func performRequest(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target))
}

func registerUser(t *testing.T, r http.Handler, email, role string) authPayload {
	t.Helper()

	w := performRequest(t, r, http.MethodPost, "/api/users", "", gin.H{
		"email":    email,
		"password": testPassword,
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var payload authPayload
	decodeJSON(t, w, &payload)
	require.NotEmpty(t, payload.Token)

	return payload
}

func createAdmin(t *testing.T, r http.Handler, email string) authPayload {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.DefaultCost)
	require.NoError(t, err)

	admin := models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         types.RoleAdmin,
		IsAdmin:      true,
	}
	require.NoError(t, db.DB.Create(&admin).Error)

	w := performRequest(t, r, http.MethodPost, "/api/users/login", "", gin.H{
		"email":    email,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var payload authPayload
	decodeJSON(t, w, &payload)

	return payload
}

func createDonorProfile(t *testing.T, r http.Handler, token, bloodType string) handlers.DonorProfile {
	t.Helper()

	w := performRequest(t, r, http.MethodPost, "/api/donors", token, gin.H{
		"name":       "Test Donor",
		"phone":      "555-0100",
		"blood_type": bloodType,
		"address": gin.H{
			"street":  "1 Main St",
			"city":    "Springfield",
			"state":   "IL",
			"country": "USA",
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var profile handlers.DonorProfile
	decodeJSON(t, w, &profile)

	return profile
}

func createInstitutionProfile(t *testing.T, r http.Handler, token string) handlers.InstitutionProfile {
	t.Helper()

	w := performRequest(t, r, http.MethodPost, "/api/institutions", token, gin.H{
		"name":           "General Hospital",
		"contact_person": "Dr. Example",
		"phone":          "555-0200",
		"address": gin.H{
			"city":    "Springfield",
			"state":   "IL",
			"country": "USA",
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var profile handlers.InstitutionProfile
	decodeJSON(t, w, &profile)

	return profile
}

func createBloodRequest(t *testing.T, r http.Handler, token string, body gin.H) handlers.BloodRequestSummary {
	t.Helper()

	w := performRequest(t, r, http.MethodPost, "/api/institutions/blood-requests", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var summary handlers.BloodRequestSummary
	decodeJSON(t, w, &summary)

	return summary
}
