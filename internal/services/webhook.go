package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lifeline-dev/lifeline/internal/models"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Footer      *DiscordFooter        `json:"footer,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	ColorRed   = 16711680 // #FF0000 - request overdue
	ColorGreen = 65280    // #00FF00 - donation completed
	ColorBlue  = 255      // #0000FF - donor responded

	Username = "Lifeline"
)

// NotifyDonorResponse tells the institution a donor expressed interest in one
// of its requests.
func NotifyDonorResponse(institution models.Institution, request models.BloodRequest, donor models.Donor) error {
	title := "New donor response"
	text := fmt.Sprintf("%s (%s) responded to your request for %s blood at %s.",
		donor.Name, donor.BloodType, request.BloodType, request.Location)

	return notify(institution, request, title, text, ColorBlue, "good")
}

// NotifyDonationCompleted tells the institution a donation was recorded.
func NotifyDonationCompleted(institution models.Institution, request models.BloodRequest, donor models.Donor) error {
	title := "Donation completed"
	text := fmt.Sprintf("%s completed a donation for your %s request at %s.",
		donor.Name, request.BloodType, request.Location)

	return notify(institution, request, title, text, ColorGreen, "good")
}

// NotifyRequestOverdue reminds the institution an open request passed its
// required-by date.
func NotifyRequestOverdue(institution models.Institution, request models.BloodRequest) error {
	title := "Blood request overdue"
	text := fmt.Sprintf("Your request for %d unit(s) of %s blood at %s is still open past its required-by date.",
		request.Quantity, request.BloodType, request.Location)

	return notify(institution, request, title, text, ColorRed, "danger")
}

func notify(institution models.Institution, request models.BloodRequest, title, text string, discordColor int, slackColor string) error {
	if institution.DiscordWebhook != "" {
		payload := DiscordWebhookRequest{
			Username: Username,
			Embeds: []DiscordEmbed{
				{
					Title:       title,
					Description: text,
					Color:       discordColor,
					Fields:      discordRequestFields(request),
					Footer: &DiscordFooter{
						Text: fmt.Sprintf("Institution: %s | Lifeline", institution.Name),
					},
					Timestamp: time.Now().Format(time.RFC3339),
				},
			},
		}

		if err := sendDiscordWebhook(institution.DiscordWebhook, payload); err != nil {
			return fmt.Errorf("discord: %w", err)
		}
	}

	if institution.SlackWebhook != "" {
		payload := SlackWebhookRequest{
			Username: Username,
			Text:     title,
			Attachments: []SlackAttachment{
				{
					Color:     slackColor,
					Title:     title,
					Text:      text,
					Fields:    slackRequestFields(request),
					Footer:    fmt.Sprintf("Institution: %s", institution.Name),
					Timestamp: time.Now().Unix(),
				},
			},
		}

		if err := sendSlackWebhook(institution.SlackWebhook, payload); err != nil {
			return fmt.Errorf("slack: %w", err)
		}
	}

	return nil
}

func discordRequestFields(request models.BloodRequest) []DiscordWebhookField {
	return []DiscordWebhookField{
		{Name: "Blood Type", Value: request.BloodType, Inline: true},
		{Name: "Quantity", Value: fmt.Sprintf("%d unit(s)", request.Quantity), Inline: true},
		{Name: "Urgency", Value: request.UrgencyLevel, Inline: true},
		{Name: "Location", Value: request.Location, Inline: false},
		{Name: "Status", Value: request.Status, Inline: true},
	}
}

func slackRequestFields(request models.BloodRequest) []SlackField {
	return []SlackField{
		{Title: "Blood Type", Value: request.BloodType, Short: true},
		{Title: "Quantity", Value: fmt.Sprintf("%d unit(s)", request.Quantity), Short: true},
		{Title: "Urgency", Value: request.UrgencyLevel, Short: true},
		{Title: "Location", Value: request.Location, Short: false},
		{Title: "Status", Value: request.Status, Short: true},
	}
}

func sendDiscordWebhook(webhookURL string, payload DiscordWebhookRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Discord payload: %w", err)
	}

	resp, err := http.Post(webhookURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send Discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Discord webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func sendSlackWebhook(webhookURL string, payload SlackWebhookRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack payload: %w", err)
	}

	resp, err := http.Post(webhookURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send Slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}
