package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/allinbuy/api/pkg/logger"
	"gorm.io/gorm"
)

// FailedJobRecord persists a job that exhausted its retries, so operators
// can inspect and re-dispatch lost confirmation emails after an outage.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	JobType  string    `gorm:"size:255;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"autoCreateTime"`
}

func (FailedJobRecord) TableName() string { return "failed_jobs" }

// failedJobDB is set via UseDB; nil keeps the failed-job log in memory only.
var failedJobDB *gorm.DB

// UseDB makes the queue persist exhausted jobs to the database. Call once
// at boot after the connection is established.
func UseDB(db *gorm.DB) {
	failedJobDB = db
	db.AutoMigrate(&FailedJobRecord{})
}

// persistFailed records an exhausted job in memory and, when configured,
// in the failed_jobs table.
func (m *Manager) persistFailed(job Job, typeName string, lastErr error, attempts int) {
	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{
		Job: job, Err: lastErr, FailedAt: time.Now(), Attempts: attempts,
	})
	m.mu.Unlock()

	if failedJobDB == nil {
		return
	}

	payload, err := json.Marshal(job)
	if err != nil {
		payload = []byte(fmt.Sprintf(`{"error": "could not marshal: %v"}`, err))
	}

	record := FailedJobRecord{
		JobType:  typeName,
		Payload:  string(payload),
		Error:    lastErr.Error(),
		Attempts: attempts,
		FailedAt: time.Now(),
	}

	if err := failedJobDB.Create(&record).Error; err != nil {
		// Non-fatal; the in-memory slice still has the job.
		logger.Error("queue: persist failed job", "type", typeName, "error", err)
	}
}
