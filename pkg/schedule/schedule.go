// Package schedule runs recurring background tasks, such as the nightly
// purge of stale cart lines.
//
//	schedule.Daily().Name("carts.purge_stale").WithoutOverlapping().Run(purge)
//	schedule.Cron("0 3 * * *").Name("nightly-report").Run(report)
//
//	// Start the dispatcher in the background (call once at boot):
//	schedule.Start(ctx)
package schedule

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/allinbuy/api/pkg/logger"
)

// Task is the function signature for a scheduled task.
type Task func()

// job is one registered task plus its firing rule.
type job struct {
	id        string
	interval  time.Duration
	cronExpr  string // "" unless using Cron()
	task      Task
	lastRun   time.Time
	running   bool // overlap guard
	noOverlap bool
	mu        sync.Mutex
}

// Schedule is a fluent builder for a single job before it is registered.
type Schedule struct {
	j *job
}

// ------------------- Registry -------------------

var (
	regMu sync.Mutex
	jobs  []*job
)

// EveryMinute schedules the task to run every 60 seconds.
func EveryMinute() *Schedule { return Every(1).Minutes() }

// Every starts a fluent builder with n units.
func Every(n int) *freqBuilder { return &freqBuilder{n: n} }

// Hourly schedules the task to run every hour.
func Hourly() *Schedule { return Every(1).Hours() }

// Daily schedules the task to run every 24 hours.
func Daily() *Schedule { return Every(24).Hours() }

// Cron schedules using a 5-field cron expression (min hour dom mon dow).
func Cron(expr string) *Schedule {
	return &Schedule{j: &job{cronExpr: expr}}
}

// ------------------- Fluent frequency builder -------------------

type freqBuilder struct{ n int }

func (f *freqBuilder) Minutes() *Schedule {
	return &Schedule{j: &job{interval: time.Duration(f.n) * time.Minute}}
}
func (f *freqBuilder) Hours() *Schedule {
	return &Schedule{j: &job{interval: time.Duration(f.n) * time.Hour}}
}
func (f *freqBuilder) Days() *Schedule {
	return &Schedule{j: &job{interval: time.Duration(f.n) * 24 * time.Hour}}
}

// ------------------- Chainable options -------------------

// WithoutOverlapping prevents a new run if the previous one is still executing.
func (s *Schedule) WithoutOverlapping() *Schedule {
	s.j.noOverlap = true
	return s
}

// Name gives the job a human-readable identifier for logging.
func (s *Schedule) Name(id string) *Schedule {
	s.j.id = id
	return s
}

// Run registers the task. Call Start() to begin dispatching.
func (s *Schedule) Run(fn Task) {
	s.j.task = fn
	regMu.Lock()
	if s.j.id == "" {
		s.j.id = fmt.Sprintf("task-%d", len(jobs)+1)
	}
	jobs = append(jobs, s.j)
	regMu.Unlock()
}

// ------------------- Dispatcher loop -------------------

// Start begins the dispatcher loop in the background. It ticks every second
// and fires due jobs.
func Start(ctx context.Context) {
	go run(ctx)
	logger.Info("schedule: scheduler started")
}

func run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("schedule: scheduler stopped")
			return
		case now := <-ticker.C:
			regMu.Lock()
			current := make([]*job, len(jobs))
			copy(current, jobs)
			regMu.Unlock()

			for _, j := range current {
				if j.due(now) {
					j.fire()
				}
			}
		}
	}
}

func (j *job) due(now time.Time) bool {
	if j.cronExpr != "" {
		// The loop ticks every second; firing once per matching minute
		// needs the lastRun check.
		return matchCron(j.cronExpr, now) && now.Truncate(time.Minute).After(j.lastRun)
	}
	if j.lastRun.IsZero() {
		return true // first run happens at boot
	}
	return now.Sub(j.lastRun) >= j.interval
}

func (j *job) fire() {
	j.mu.Lock()
	if j.noOverlap && j.running {
		j.mu.Unlock()
		logger.Warn("schedule: skipping overlapping task", "id", j.id)
		return
	}
	j.running = true
	j.lastRun = time.Now()
	j.mu.Unlock()

	go func() {
		defer func() {
			j.mu.Lock()
			j.running = false
			j.mu.Unlock()
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "id", j.id, "panic", r)
			}
		}()

		logger.Info("schedule: running task", "id", j.id)
		j.task()
	}()
}

// ------------------- Minimal cron parser -------------------
// Supports 5-field cron: minute hour dom month dow
// Each field: * | number | */step | number-number

func matchCron(expr string, t time.Time) bool {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return false
	}
	checks := []struct {
		field string
		val   int
	}{
		{fields[0], t.Minute()},
		{fields[1], t.Hour()},
		{fields[2], t.Day()},
		{fields[3], int(t.Month())},
		{fields[4], int(t.Weekday())},
	}
	for _, c := range checks {
		if !matchField(c.field, c.val) {
			return false
		}
	}
	return true
}

func matchField(field string, val int) bool {
	if field == "*" {
		return true
	}
	if strings.HasPrefix(field, "*/") {
		var step int
		fmt.Sscanf(field[2:], "%d", &step)
		return step > 0 && val%step == 0
	}
	if strings.Contains(field, "-") {
		var lo, hi int
		fmt.Sscanf(field, "%d-%d", &lo, &hi)
		return val >= lo && val <= hi
	}
	var n int
	fmt.Sscanf(field, "%d", &n)
	return n == val
}

// List returns the registered jobs for CLI display.
func List() []string {
	regMu.Lock()
	defer regMu.Unlock()
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		freq := j.cronExpr
		if freq == "" {
			freq = j.interval.String()
		}
		out = append(out, fmt.Sprintf("%s  [%s]", j.id, freq))
	}
	return out
}
