package sync

import (
	"context"
	gosync "sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"oficina-system/internal/dto"
	"oficina-system/pkg/config"
)

// LockKey - ключ Redis, который держит запущенная синхронизация.
const LockKey = "sync:trello:lock"

type BoardSyncer interface {
	SyncBoardToStore(ctx context.Context) (dto.SyncResultDTO, error)
}

// Locker - распределённая блокировка между экземплярами приложения.
type Locker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	DelIfEqual(ctx context.Context, key, value string) (bool, error)
}

// Scheduler запускает синхронизацию сразу при старте и затем на каждом тике.
// Если прошлый запуск ещё идёт, тик пропускается.
type Scheduler struct {
	syncer   BoardSyncer
	locker   Locker
	interval time.Duration
	lockTTL  time.Duration
	logger   *zap.Logger

	running atomic.Bool
	runs    atomic.Int64
	skipped atomic.Int64

	mu      gosync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool

	// life живёт до Stop; на нём работают фоновые запуски (вебхук)
	life       context.Context
	lifeCancel context.CancelFunc
	background gosync.WaitGroup
}

// NewScheduler: locker может быть nil, тогда блокировка только внутри процесса.
func NewScheduler(syncer BoardSyncer, locker Locker, cfg config.SyncConfig, logger *zap.Logger) *Scheduler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	life, lifeCancel := context.WithCancel(context.Background())
	return &Scheduler{
		syncer:     syncer,
		locker:     locker,
		interval:   interval,
		lockTTL:    cfg.LockTTL,
		logger:     logger.Named("sync_scheduler"),
		life:       life,
		lifeCancel: lifeCancel,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil || s.stopped {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("Планировщик синхронизации запущен", zap.Duration("interval", s.interval))
		s.RunOnce(runCtx)
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				s.RunOnce(runCtx)
			}
		}
	}(s.done)
}

// Stop останавливает таймер, отменяет фоновые запуски и дожидается их завершения.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	alreadyStopped := s.stopped
	s.stopped = true
	s.mu.Unlock()

	s.lifeCancel()
	if cancel != nil {
		cancel()
		<-done
	}
	s.background.Wait()
	if !alreadyStopped {
		s.logger.Info("Планировщик синхронизации остановлен")
	}
}

// RunInBackground выполняет fn в отдельной горутине на контексте планировщика.
// false - планировщик уже остановлен и fn не запущена.
func (s *Scheduler) RunInBackground(fn func(ctx context.Context)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}

	s.background.Add(1)
	go func() {
		defer s.background.Done()
		fn(s.life)
	}()
	return true
}

// RunOnce выполняет один запуск. ran=false, если запуск пропущен из-за блокировки.
func (s *Scheduler) RunOnce(ctx context.Context) (result dto.SyncResultDTO, ran bool) {
	if !s.running.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		s.logger.Warn("Предыдущая синхронизация ещё выполняется, тик пропущен")
		return result, false
	}
	defer s.running.Store(false)

	if s.locker != nil {
		token := uuid.NewString()
		acquired, err := s.locker.SetNX(ctx, LockKey, token, s.lockTTL)
		if err != nil {
			s.logger.Warn("Redis недоступен, продолжаем без распределённой блокировки", zap.Error(err))
		} else if !acquired {
			s.skipped.Add(1)
			s.logger.Info("Синхронизацию выполняет другой экземпляр, тик пропущен")
			return result, false
		} else {
			defer func() {
				released, err := s.locker.DelIfEqual(context.Background(), LockKey, token)
				switch {
				case err != nil:
					s.logger.Warn("Не удалось снять блокировку синхронизации", zap.Error(err))
				case !released:
					s.logger.Warn("Блокировка истекла во время синхронизации и уже принадлежит другому экземпляру",
						zap.Duration("lock_ttl", s.lockTTL))
				}
			}()
		}
	}

	s.runs.Add(1)
	result, err := s.syncer.SyncBoardToStore(ctx)
	if err != nil {
		s.logger.Error("Синхронизация доски завершилась ошибкой", zap.Error(err))
	}
	return result, true
}

// Stats - число выполненных и пропущенных запусков.
func (s *Scheduler) Stats() (runs, skipped int64) {
	return s.runs.Load(), s.skipped.Load()
}
