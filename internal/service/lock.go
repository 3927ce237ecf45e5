package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	pkgerrors "SevenDay/pkg/errors"
	"SevenDay/pkg/logger"
)

// programLock 每个参与者同一时间只允许一个重置 / 结营 / 生成
type programLock struct {
	locker Locker
	ttl    time.Duration
}

// run 拿不到锁时立即返回 GENERATION_IN_PROGRESS（同时也是 STATE_CONFLICT）
func (l programLock) run(ctx context.Context, pid int64, fn func(ctx context.Context) error) error {
	key := programLockKey(pid)

	token, ok, err := l.locker.TryLock(ctx, key, l.ttl)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %w", pkgerrors.GenerationInProgress, pkgerrors.StateConflict)
	}

	defer func() {
		// 请求被取消也要释放
		if err := l.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			logger.Logger.Warn("Failed to release program lock",
				zap.Int64("participant_id", pid),
				zap.Error(err),
			)
		}
	}()

	return fn(ctx)
}
