package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-timetable-api/internal/models"
	"github.com/noah-isme/course-timetable-api/pkg/jobs"
)

const auditJobType = "audit_log"

type auditStore interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AuditService writes audit logs from a background queue. When the queue is
// full or not running the write happens inline.
type AuditService struct {
	store        auditStore
	queue        *jobs.Queue
	logger       *zap.Logger
	writeTimeout time.Duration
}

// NewAuditService constructs an AuditService around store.
func NewAuditService(store auditStore, logger *zap.Logger, cfg jobs.QueueConfig) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AuditService{store: store, logger: logger, writeTimeout: 5 * time.Second}
	cfg.Logger = logger
	cfg.OnDrop = svc.dropped
	svc.queue = jobs.NewQueue("audit", svc.handle, cfg)
	return svc
}

// Start launches the queue workers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains pending entries and stops the workers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// CreateAuditLog queues log for writing.
func (s *AuditService) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log == nil {
		return nil
	}
	err := s.queue.TryEnqueue(jobs.Job{Type: auditJobType, Payload: log})
	if err == nil {
		return nil
	}
	if errors.Is(err, jobs.ErrQueueFull) {
		s.logger.Warn("audit queue full, writing inline", zap.String("resource", log.Resource))
	}
	return s.write(ctx, log)
}

func (s *AuditService) handle(ctx context.Context, job jobs.Job) error {
	log, ok := job.Payload.(*models.AuditLog)
	if !ok {
		return fmt.Errorf("unexpected audit payload %T", job.Payload)
	}
	// Detached from ctx so a stopping queue still finishes the write in flight.
	return s.write(context.WithoutCancel(ctx), log)
}

// dropped makes one last inline attempt for an entry the queue gave up on.
func (s *AuditService) dropped(job jobs.Job, cause error) {
	log, ok := job.Payload.(*models.AuditLog)
	if !ok {
		return
	}
	if err := s.write(context.Background(), log); err != nil {
		s.logger.Error("audit entry lost",
			zap.String("action", log.Action), zap.String("resource", log.Resource),
			zap.NamedError("cause", cause), zap.Error(err))
	}
}

func (s *AuditService) write(ctx context.Context, log *models.AuditLog) error {
	ctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()
	return s.store.CreateAuditLog(ctx, log)
}
