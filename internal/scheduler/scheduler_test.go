package scheduler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/lifeline-dev/lifeline/db"
	"github.com/lifeline-dev/lifeline/internal/models"
	"github.com/lifeline-dev/lifeline/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db.DB = conn
	require.NoError(t, db.MigrateDatabase())
}

func TestSweepNotifiesOverdueOnce(t *testing.T) {
	setupDB(t)

	var calls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	user := models.User{Email: "hospital@example.com", PasswordHash: "x", Role: types.RoleInstitution}
	require.NoError(t, db.DB.Create(&user).Error)

	institution := models.Institution{UserID: user.ID, Name: "Central Hospital", DiscordWebhook: server.URL}
	require.NoError(t, db.DB.Create(&institution).Error)

	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)

	overdue := models.BloodRequest{
		InstitutionID: institution.ID, BloodType: "A+", Quantity: 1,
		UrgencyLevel: types.UrgencyHigh, Status: types.StatusOpen,
		Location: "Ward 1", RequiredBy: &past,
	}
	require.NoError(t, db.DB.Create(&overdue).Error)

	upcoming := models.BloodRequest{
		InstitutionID: institution.ID, BloodType: "A+", Quantity: 1,
		UrgencyLevel: types.UrgencyHigh, Status: types.StatusOpen,
		Location: "Ward 2", RequiredBy: &future,
	}
	require.NoError(t, db.DB.Create(&upcoming).Error)

	s := NewScheduler()
	s.sweep()

	assert.Equal(t, 1, calls)

	var stamped models.BloodRequest
	require.NoError(t, db.DB.First(&stamped, overdue.ID).Error)
	require.NotNil(t, stamped.ReminderSentAt)
	assert.Equal(t, types.StatusOpen, stamped.Status)

	// Second sweep skips already-reminded requests.
	s.sweep()
	assert.Equal(t, 1, calls)
}

func TestSweepLeavesStampOffOnFailure(t *testing.T) {
	setupDB(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	user := models.User{Email: "hospital@example.com", PasswordHash: "x", Role: types.RoleInstitution}
	require.NoError(t, db.DB.Create(&user).Error)

	institution := models.Institution{UserID: user.ID, Name: "Central Hospital", DiscordWebhook: server.URL}
	require.NoError(t, db.DB.Create(&institution).Error)

	past := time.Now().Add(-24 * time.Hour)
	overdue := models.BloodRequest{
		InstitutionID: institution.ID, BloodType: "A+", Quantity: 1,
		UrgencyLevel: types.UrgencyHigh, Status: types.StatusOpen,
		Location: "Ward 1", RequiredBy: &past,
	}
	require.NoError(t, db.DB.Create(&overdue).Error)

	s := NewScheduler()
	s.sweep()

	var unstamped models.BloodRequest
	require.NoError(t, db.DB.First(&unstamped, overdue.ID).Error)
	assert.Nil(t, unstamped.ReminderSentAt)
}

func TestNewSchedulerInterval(t *testing.T) {
	t.Setenv("REMINDER_INTERVAL", "5")
	assert.Equal(t, 5*time.Minute, NewScheduler().interval)

	t.Setenv("REMINDER_INTERVAL", "bogus")
	assert.Equal(t, 60*time.Minute, NewScheduler().interval)
}
