package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"SevenDay/config"
	pkgerrors "SevenDay/pkg/errors"
	"SevenDay/pkg/logger"
	"SevenDay/pkg/response"
	"SevenDay/storage/redis"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// 时间窗口（秒）
	Window int
	// 时间窗口内最大请求数
	MaxRequests int
	// 限流键前缀
	KeyPrefix string
	// 是否按参与者 ID 限流（需要认证）
	ByUserID bool
	// 是否按IP限流
	ByIP bool
	// 阻塞时长（秒），超过限制后禁止访问的时间
	BlockDuration int
}

// DefaultRateLimitConfig 默认限流配置
var DefaultRateLimitConfig = RateLimitConfig{
	Window:        60,
	MaxRequests:   100,
	KeyPrefix:     "rate:limit",
	ByUserID:      true,
	ByIP:          true,
	BlockDuration: 300,
}

// GenerateRateLimitConfig 报告生成会调用模型，单独收紧
var GenerateRateLimitConfig = RateLimitConfig{
	Window:        60,
	MaxRequests:   3,
	KeyPrefix:     "rate:generate",
	ByUserID:      true,
	ByIP:          false,
	BlockDuration: 300,
}

var FinalizeRateLimitConfig = RateLimitConfig{
	Window:        60,
	MaxRequests:   3,
	KeyPrefix:     "rate:finalize",
	ByUserID:      true,
	ByIP:          false,
	BlockDuration: 300,
}

// RefreshRateLimitConfig 未认证接口按 IP 限流
var RefreshRateLimitConfig = RateLimitConfig{
	Window:        60,
	MaxRequests:   10,
	KeyPrefix:     "rate:refresh",
	ByUserID:      false,
	ByIP:          true,
	BlockDuration: 900,
}

// RateLimiter 限流器
type RateLimiter struct {
	client redislib.Cmdable
	now    func() time.Time
	config RateLimitConfig
}

func NewRateLimiter(client redislib.Cmdable, cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		client: client,
		now:    time.Now,
		config: cfg,
	}
}

// identifier 已认证时按参与者，否则按 IP
func (rl *RateLimiter) identifier(ctx context.Context, c *app.RequestContext) string {
	if rl.config.ByUserID {
		if userID, exists := GetUserID(ctx, c); exists {
			return "user:" + userID
		}
	}
	if rl.config.ByIP {
		return "ip:" + c.ClientIP()
	}
	return "anonymous"
}

// Allow 使用 zset 滑动窗口计数
func (rl *RateLimiter) Allow(ctx context.Context, id string) (bool, int, error) {
	key := redis.Key(rl.config.KeyPrefix, id)
	now := rl.now()
	windowStart := now.Add(-time.Duration(rl.config.Window) * time.Second)

	pipe := rl.client.Pipeline()

	// 先移除窗口之外的记录
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	pipe.ZAdd(ctx, key, redislib.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	zcardCmd := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, time.Duration(rl.config.Window+10)*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	count := int(zcardCmd.Val())
	return count <= rl.config.MaxRequests, count, nil
}

func (rl *RateLimiter) blockKey(id string) string {
	return redis.Key(rl.config.KeyPrefix, "block", id)
}

func (rl *RateLimiter) Block(ctx context.Context, id string) error {
	return rl.client.Set(ctx, rl.blockKey(id), "1", time.Duration(rl.config.BlockDuration)*time.Second).Err()
}

func (rl *RateLimiter) IsBlocked(ctx context.Context, id string) (bool, error) {
	result, err := rl.client.Exists(ctx, rl.blockKey(id)).Result()
	return result > 0, err
}

// Handler 限流检查失败时放行，Redis 故障不影响业务接口
func (rl *RateLimiter) Handler() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id := rl.identifier(ctx, c)

		blocked, err := rl.IsBlocked(ctx, id)
		if err != nil {
			logger.Logger.Warn("Failed to check block status", zap.String("key_prefix", rl.config.KeyPrefix), zap.Error(err))
			c.Next(ctx)
			return
		}
		if blocked {
			response.Error(ctx, c, pkgerrors.TooManyRequests)
			c.Abort()
			return
		}

		allowed, count, err := rl.Allow(ctx, id)
		if err != nil {
			logger.Logger.Warn("Failed to check rate limit", zap.String("key_prefix", rl.config.KeyPrefix), zap.Error(err))
			c.Next(ctx)
			return
		}

		remaining := rl.config.MaxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Response.Header.Set("X-RateLimit-Limit", strconv.Itoa(rl.config.MaxRequests))
		c.Response.Header.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			if err := rl.Block(ctx, id); err != nil {
				logger.Logger.Error("Failed to block caller", zap.String("caller", id), zap.Error(err))
			}
			response.Error(ctx, c, pkgerrors.TooManyRequests)
			c.Abort()
			return
		}

		c.Next(ctx)
	}
}

// RateLimitMiddleware 创建限流中间件，RATE_LIMIT_ENABLED=false 时直接放行
func RateLimitMiddleware(cfg RateLimitConfig) app.HandlerFunc {
	if !config.Cfg.RateLimitEnabled {
		return func(ctx context.Context, c *app.RequestContext) { c.Next(ctx) }
	}
	return NewRateLimiter(redis.Client(), cfg).Handler()
}

func GeneralRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(DefaultRateLimitConfig)
}

func GenerateRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(GenerateRateLimitConfig)
}

func FinalizeRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(FinalizeRateLimitConfig)
}

func RefreshRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(RefreshRateLimitConfig)
}
