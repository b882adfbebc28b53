package app

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/service"
	"go.uber.org/zap"
)

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	lessons  service.LessonStore
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler создаёт новый планировщик
func NewScheduler(lessons service.LessonStore, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		lessons:  lessons,
		interval: interval,
		now:      time.Now,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))

	// Запускаем задачу автозавершения занятий
	s.wg.Add(1)
	go s.runAutoCompleteTask(ctx)
}

// Stop останавливает фоновые задачи и ждёт их завершения
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})
	s.wg.Wait()
}

// runAutoCompleteTask периодически отмечает прошедшие занятия проведёнными
func (s *Scheduler) runAutoCompleteTask(ctx context.Context) {
	defer s.wg.Done()

	// Первый запуск сразу при старте
	s.completePastLessons(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.completePastLessons(ctx)
		case <-s.stopChan:
			s.logger.Info("Auto-complete task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Auto-complete task cancelled")
			return
		}
	}
}

// completePastLessons переводит закончившиеся planned-занятия в completed.
// Баланс пакетов не меняется: planned и completed списывают часы одинаково
func (s *Scheduler) completePastLessons(ctx context.Context) {
	n, err := s.lessons.CompletePastLessons(ctx, s.now())
	if err != nil {
		s.logger.Error("Failed to complete past lessons", zap.Error(err))
		return
	}

	if n > 0 {
		s.logger.Info("Past lessons marked completed", zap.Int64("count", n))
	}
}
