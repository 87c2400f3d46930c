package valkey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/redis/go-redis/v9"

	"github.com/alexmorbo/bttn-relay/domain/room"
	"github.com/alexmorbo/bttn-relay/pkg/logger"
)

const (
	keyPrefix = "bttn:room:"
	ttl       = 7 * 24 * time.Hour
)

var (
	redisSetOK  = metrics.NewCounter(`redis_operations_total{operation="set",status="ok"}`)
	redisSetErr = metrics.NewCounter(`redis_operations_total{operation="set",status="error"}`)
	redisSetDur = metrics.NewHistogram(`redis_operation_duration_seconds{operation="set"}`)

	redisGetOK   = metrics.NewCounter(`redis_operations_total{operation="get",status="ok"}`)
	redisGetErr  = metrics.NewCounter(`redis_operations_total{operation="get",status="error"}`)
	redisGetMiss = metrics.NewCounter(`redis_operations_total{operation="get",status="miss"}`)
	redisGetDur  = metrics.NewHistogram(`redis_operation_duration_seconds{operation="get"}`)

	redisDelOK  = metrics.NewCounter(`redis_operations_total{operation="del",status="ok"}`)
	redisDelErr = metrics.NewCounter(`redis_operations_total{operation="del",status="error"}`)
)

type roomData struct {
	RoomID  string    `json:"room_id"`
	Title   string    `json:"title"`
	SavedAt time.Time `json:"saved_at"`
}

// RoomRepository caches resolved room ids by room title so a restarted
// relay does not have to list remote rooms again.
type RoomRepository struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRoomRepository(client *redis.Client, log *slog.Logger) *RoomRepository {
	return &RoomRepository{
		client: client,
		logger: log,
	}
}

func (r *RoomRepository) SaveRoomID(ctx context.Context, title, roomID string) error {
	key := keyPrefix + title
	start := time.Now()

	jsonData, err := json.Marshal(roomData{RoomID: roomID, Title: title, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal room data: %w", err)
	}

	if err := r.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		r.logger.Error("Redis SET failed", logger.RedisFields("set", key, time.Since(start), err))
		redisSetErr.Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	elapsed := time.Since(start)
	r.logger.Debug("Redis SET completed", logger.RedisFields("set", key, elapsed, nil))
	redisSetOK.Inc()
	redisSetDur.Update(elapsed.Seconds())

	return nil
}

func (r *RoomRepository) FindRoomID(ctx context.Context, title string) (string, error) {
	key := keyPrefix + title
	start := time.Now()

	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Redis GET miss", logger.RedisFields("get", key, time.Since(start), nil))
			redisGetMiss.Inc()
			return "", room.ErrNotFound
		}
		r.logger.Error("Redis GET failed", logger.RedisFields("get", key, time.Since(start), err))
		redisGetErr.Inc()
		return "", fmt.Errorf("redis get: %w", err)
	}

	var data roomData
	if err := json.Unmarshal([]byte(result), &data); err != nil {
		return "", fmt.Errorf("unmarshal room data: %w", err)
	}

	elapsed := time.Since(start)
	r.logger.Debug("Redis GET completed", logger.RedisFields("get", key, elapsed, nil))
	redisGetOK.Inc()
	redisGetDur.Update(elapsed.Seconds())

	return data.RoomID, nil
}

func (r *RoomRepository) DeleteRoomID(ctx context.Context, title string) error {
	key := keyPrefix + title
	start := time.Now()

	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Redis DEL failed", logger.RedisFields("del", key, time.Since(start), err))
		redisDelErr.Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	r.logger.Debug("Redis DEL completed", logger.RedisFields("del", key, time.Since(start), nil))
	redisDelOK.Inc()

	return nil
}

func (r *RoomRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
