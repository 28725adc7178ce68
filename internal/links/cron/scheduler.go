package cronjob

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/taha-association/links-backend/internal/links/service"
)

// Scheduler runs the periodic remote-to-local backup mirror. Remote wins;
// the local snapshot is refreshed, never merged.
type Scheduler struct {
	svc  *service.LinkService
	spec string
	c    *cron.Cron
}

func NewScheduler(svc *service.LinkService, spec string) *Scheduler {
	return &Scheduler{svc: svc, spec: spec}
}

// Start initializes the cron task.
func (s *Scheduler) Start() {
	s.c = cron.New(cron.WithSeconds())

	_, err := s.c.AddFunc(s.spec, s.runBackup)
	if err != nil {
		log.Printf("Failed to create backup cron job: %v", err)
		return
	}

	log.Printf("Backup scheduler started (schedule %q)", s.spec)
	s.c.Start()
}

func (s *Scheduler) Stop() {
	if s.c != nil {
		s.c.Stop()
	}
}

func (s *Scheduler) runBackup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.svc.MirrorRemote(ctx)
	if err != nil {
		log.Printf("Backup mirror failed: %v", err)
		return
	}

	log.Printf("Backup mirror completed: %d projects at %s", count, time.Now().Format(time.RFC1123))
}
