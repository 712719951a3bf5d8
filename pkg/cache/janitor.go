package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const evictTimeout = 30 * time.Second

// Janitor periodically evicts expired entries from stores without native expiry
type Janitor struct {
	log   logrus.FieldLogger
	cache *Cache
	cron  *cron.Cron
}

// NewJanitor schedules eviction using a cron spec such as "@every 1m"
func NewJanitor(log logrus.FieldLogger, c *Cache, schedule string) (*Janitor, error) {
	j := &Janitor{
		log:   log.WithField("component", "cache-janitor"),
		cache: c,
		cron:  cron.New(),
	}

	if _, err := j.cron.AddFunc(schedule, j.run); err != nil {
		return nil, fmt.Errorf("invalid janitor schedule %q: %w", schedule, err)
	}

	return j, nil
}

// Start begins the schedule in the background
func (j *Janitor) Start() {
	j.log.Info("Starting cache janitor")
	j.cron.Start()
}

// Stop halts the schedule and waits for a running eviction to finish
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
	j.log.Info("Stopped cache janitor")
}

func (j *Janitor) run() {
	ctx, cancel := context.WithTimeout(context.Background(), evictTimeout)
	defer cancel()

	evicted, err := j.cache.EvictExpired(ctx)
	if err != nil {
		j.log.WithError(err).Warn("Failed to evict expired cache entries")
		return
	}

	if evicted > 0 {
		j.log.WithField("evicted", evicted).Debug("Evicted expired cache entries")
	}
}
