package sync

import (
	"context"
	"errors"
	gosync "sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"oficina-system/internal/dto"
	"oficina-system/pkg/config"
)

type blockingSyncer struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func newBlockingSyncer() *blockingSyncer {
	return &blockingSyncer{started: make(chan struct{}, 10), release: make(chan struct{})}
}

func (b *blockingSyncer) SyncBoardToStore(ctx context.Context) (dto.SyncResultDTO, error) {
	b.calls.Add(1)
	b.started <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return dto.SyncResultDTO{Success: true, Synced: 4}, nil
}

type countingSyncer struct {
	calls atomic.Int32
	err   error
}

func (c *countingSyncer) SyncBoardToStore(ctx context.Context) (dto.SyncResultDTO, error) {
	c.calls.Add(1)
	if c.err != nil {
		return dto.SyncResultDTO{Success: false, Errors: 1}, c.err
	}
	return dto.SyncResultDTO{Success: true, Synced: 2}, nil
}

type fakeLocker struct {
	mu       gosync.Mutex
	held     map[string]string
	err      error
	releases int
}

func (l *fakeLocker) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if _, ok := l.held[key]; ok {
		return false, nil
	}
	l.held[key] = value.(string)
	return true, nil
}

func (l *fakeLocker) DelIfEqual(ctx context.Context, key, value string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releases++
	if l.held[key] != value {
		return false, nil
	}
	delete(l.held, key)
	return true, nil
}

// takeOver имитирует истечение TTL и захват блокировки другим экземпляром.
func (l *fakeLocker) takeOver(key, token string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held[key] = token
}

func (l *fakeLocker) value(key string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.held[key]
	return v, ok
}

type funcSyncer func(ctx context.Context) (dto.SyncResultDTO, error)

func (f funcSyncer) SyncBoardToStore(ctx context.Context) (dto.SyncResultDTO, error) {
	return f(ctx)
}

func TestRunOnceSkipsOverlappingRun(t *testing.T) {
	syncer := newBlockingSyncer()
	s := NewScheduler(syncer, nil, config.SyncConfig{Interval: time.Hour}, zap.NewNop())

	done := make(chan dto.SyncResultDTO)
	go func() {
		result, ran := s.RunOnce(context.Background())
		assert.True(t, ran)
		done <- result
	}()
	<-syncer.started

	_, ran := s.RunOnce(context.Background())
	assert.False(t, ran, "второй запуск во время первого пропускается")

	close(syncer.release)
	result := <-done
	assert.Equal(t, 4, result.Synced)

	runs, skipped := s.Stats()
	assert.Equal(t, int64(1), runs)
	assert.Equal(t, int64(1), skipped)
	assert.Equal(t, int32(1), syncer.calls.Load())

	_, ran = s.RunOnce(context.Background())
	assert.True(t, ran, "после завершения запуск снова разрешён")
}

func TestRunOnceHonoursDistributedLock(t *testing.T) {
	syncer := &countingSyncer{}
	locker := &fakeLocker{held: map[string]string{LockKey: "outro-exemplar"}}
	s := NewScheduler(syncer, locker, config.SyncConfig{LockTTL: time.Minute}, zap.NewNop())

	_, ran := s.RunOnce(context.Background())
	assert.False(t, ran)
	assert.Equal(t, int32(0), syncer.calls.Load())

	delete(locker.held, LockKey)
	result, ran := s.RunOnce(context.Background())
	assert.True(t, ran)
	assert.True(t, result.Success)
	_, held := locker.value(LockKey)
	assert.False(t, held, "блокировка снята после запуска")
	assert.Equal(t, 1, locker.releases)
}

func TestRunOnceKeepsLockTakenByAnotherInstance(t *testing.T) {
	locker := &fakeLocker{held: map[string]string{}}
	var ownToken string
	syncer := funcSyncer(func(ctx context.Context) (dto.SyncResultDTO, error) {
		ownToken, _ = locker.value(LockKey)
		locker.takeOver(LockKey, "outro-exemplar")
		return dto.SyncResultDTO{Success: true, Synced: 1}, nil
	})
	s := NewScheduler(syncer, locker, config.SyncConfig{LockTTL: time.Millisecond}, zap.NewNop())

	_, ran := s.RunOnce(context.Background())
	require.True(t, ran)
	assert.NotEmpty(t, ownToken, "у запуска есть собственный токен")

	holder, held := locker.value(LockKey)
	assert.True(t, held, "чужая блокировка не удаляется")
	assert.Equal(t, "outro-exemplar", holder)
	assert.Equal(t, 1, locker.releases)
}

func TestRunOnceWithoutRedis(t *testing.T) {
	syncer := &countingSyncer{}
	locker := &fakeLocker{held: map[string]string{}, err: errors.New("connection refused")}
	s := NewScheduler(syncer, locker, config.SyncConfig{}, zap.NewNop())

	_, ran := s.RunOnce(context.Background())
	assert.True(t, ran, "недоступный Redis не блокирует синхронизацию")
	assert.Equal(t, int32(1), syncer.calls.Load())
}

func TestRunOnceReportsFailure(t *testing.T) {
	s := NewScheduler(&countingSyncer{err: errors.New("trello fora do ar")}, nil, config.SyncConfig{}, zap.NewNop())

	result, ran := s.RunOnce(context.Background())
	assert.True(t, ran)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Errors)
}

func TestSchedulerStartRunsImmediatelyAndStops(t *testing.T) {
	syncer := newBlockingSyncer()
	s := NewScheduler(syncer, nil, config.SyncConfig{Interval: time.Hour}, zap.NewNop())

	s.Start(context.Background())
	s.Start(context.Background())

	select {
	case <-syncer.started:
	case <-time.After(2 * time.Second):
		t.Fatal("первый запуск не выполнен при старте")
	}

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop не дождался завершения")
	}

	assert.Equal(t, int32(1), syncer.calls.Load())
	s.Stop()
}

func TestSchedulerStopCancelsBackgroundRuns(t *testing.T) {
	s := NewScheduler(&countingSyncer{}, nil, config.SyncConfig{Interval: time.Hour}, zap.NewNop())

	entered := make(chan struct{})
	var cancelled atomic.Bool
	started := s.RunInBackground(func(ctx context.Context) {
		close(entered)
		<-ctx.Done()
		cancelled.Store(true)
	})
	require.True(t, started)
	<-entered

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop не дождался фонового запуска")
	}
	assert.True(t, cancelled.Load(), "контекст фонового запуска отменён до возврата Stop")

	assert.False(t, s.RunInBackground(func(ctx context.Context) {}), "после Stop фоновые запуски не принимаются")
}
