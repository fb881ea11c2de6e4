package scheduler

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/lifeline-dev/lifeline/db"
	"github.com/lifeline-dev/lifeline/internal/models"
	"github.com/lifeline-dev/lifeline/internal/services"
	"github.com/lifeline-dev/lifeline/internal/types"
)

const defaultIntervalMinutes = 60

// Scheduler periodically reminds institutions about open requests that
// passed their required-by date. It never mutates request status.
type Scheduler struct {
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	minutes := defaultIntervalMinutes

	if raw := os.Getenv("REMINDER_INTERVAL"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			log.Printf("Invalid REMINDER_INTERVAL %q, defaulting to %d minutes", raw, defaultIntervalMinutes)
		} else {
			minutes = parsed
		}
	}

	return &Scheduler{
		interval: time.Duration(minutes) * time.Minute,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the reminder loop in its own goroutine.
func (s *Scheduler) Start() {
	log.Printf("Starting reminder scheduler, interval %s", s.interval)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

// Stop shuts down the reminder loop.
func (s *Scheduler) Stop() {
	log.Println("Stopping reminder scheduler...")
	s.cancel()
}

func (s *Scheduler) sweep() {
	var overdue []models.BloodRequest

	if err := db.DB.Preload("Institution").
		Where("status = ? AND required_by < ? AND reminder_sent_at IS NULL", types.StatusOpen, time.Now()).
		Find(&overdue).Error; err != nil {
		log.Printf("Reminder sweep failed: %v", err)
		return
	}

	for _, request := range overdue {
		if err := services.NotifyRequestOverdue(request.Institution, request); err != nil {
			log.Printf("Failed to send overdue reminder for request %d: %v", request.ID, err)
			continue
		}

		now := time.Now()

		if err := db.DB.Model(&models.BloodRequest{}).Where("id = ?", request.ID).
			Update("reminder_sent_at", now).Error; err != nil {
			log.Printf("Failed to stamp reminder for request %d: %v", request.ID, err)
		}
	}

	if len(overdue) > 0 {
		log.Printf("Reminder sweep processed %d overdue request(s)", len(overdue))
	}
}
