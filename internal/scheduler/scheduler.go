// Package scheduler turns a cron spec into refresh requests for the menu
// loop. It never touches the ledger itself.
package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Specs accept an optional seconds field and descriptors such as "@every 30s".
var specParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateSpec reports whether spec is a usable auto-refresh schedule.
func ValidateSpec(spec string) error {
	_, err := specParser.Parse(spec)
	return err
}

// Scheduler posts refresh requests on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	requests chan struct{}
}

// NewScheduler creates a Scheduler firing on spec.
func NewScheduler(spec string) (*Scheduler, error) {
	s := &Scheduler{
		Cron:     cron.New(cron.WithParser(specParser)),
		requests: make(chan struct{}, 1),
	}
	if _, err := s.Cron.AddFunc(spec, s.RequestRefresh); err != nil {
		return nil, fmt.Errorf("register refresh task: %w", err)
	}
	return s, nil
}

// Requests delivers one value per pending refresh request.
func (s *Scheduler) Requests() <-chan struct{} { return s.requests }

// RequestRefresh queues a refresh unless one is already pending.
func (s *Scheduler) RequestRefresh() {
	select {
	case s.requests <- struct{}{}:
	default:
		log.Println("[WARN] refresh already pending, skipping")
	}
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] auto refresh scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] auto refresh scheduler stopped")
}
