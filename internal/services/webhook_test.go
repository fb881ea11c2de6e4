package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lifeline-dev/lifeline/internal/models"
	"github.com/lifeline-dev/lifeline/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest() models.BloodRequest {
	return models.BloodRequest{
		BloodType:    "O-",
		Quantity:     2,
		UrgencyLevel: types.UrgencyCritical,
		Status:       types.StatusOpen,
		Location:     "Central Hospital",
	}
}

func TestNotifyDonorResponseSendsDiscordPayload(t *testing.T) {
	var received DiscordWebhookRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	institution := models.Institution{Name: "Central Hospital", DiscordWebhook: server.URL}
	donor := models.Donor{Name: "Jane Doe", BloodType: "O-"}

	err := NotifyDonorResponse(institution, sampleRequest(), donor)
	require.NoError(t, err)

	assert.Equal(t, Username, received.Username)
	require.Len(t, received.Embeds, 1)
	assert.Equal(t, "New donor response", received.Embeds[0].Title)
	assert.Equal(t, ColorBlue, received.Embeds[0].Color)
	assert.Contains(t, received.Embeds[0].Description, "Jane Doe")
}

func TestNotifyRequestOverdueSendsSlackPayload(t *testing.T) {
	var received SlackWebhookRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	institution := models.Institution{Name: "Central Hospital", SlackWebhook: server.URL}

	err := NotifyRequestOverdue(institution, sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "Blood request overdue", received.Text)
	require.Len(t, received.Attachments, 1)
	assert.Equal(t, "danger", received.Attachments[0].Color)

	var locationField SlackField
	for _, field := range received.Attachments[0].Fields {
		if field.Title == "Location" {
			locationField = field
		}
	}
	assert.Equal(t, "Central Hospital", locationField.Value)
}

func TestNotifySendsToBothWhenConfigured(t *testing.T) {
	var calls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	institution := models.Institution{
		Name:           "Central Hospital",
		DiscordWebhook: server.URL,
		SlackWebhook:   server.URL,
	}
	donor := models.Donor{Name: "Jane Doe", BloodType: "O-"}

	require.NoError(t, NotifyDonationCompleted(institution, sampleRequest(), donor))
	assert.Equal(t, 2, calls)
}

func TestNotifySkipsWithoutWebhooks(t *testing.T) {
	institution := models.Institution{Name: "Central Hospital"}
	donor := models.Donor{Name: "Jane Doe", BloodType: "O-"}

	assert.NoError(t, NotifyDonorResponse(institution, sampleRequest(), donor))
}

func TestNotifyReportsWebhookFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	institution := models.Institution{Name: "Central Hospital", DiscordWebhook: server.URL}
	donor := models.Donor{Name: "Jane Doe", BloodType: "O-"}

	err := NotifyDonorResponse(institution, sampleRequest(), donor)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discord")
}
