package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "epif:prediction:"

// PredictionCache stores classifier probabilities by feature row.
type PredictionCache interface {
	GetProbabilities(ctx context.Context, key string) ([]float64, bool, error)
	StoreProbabilities(ctx context.Context, key string, probs []float64) error
}

type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects to redisURL and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string, ttl time.Duration) (*RedisClient, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{client: client, ttl: ttl}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

// Ping checks that Redis is reachable.
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

type cachedPrediction struct {
	Probabilities []float64 `json:"probabilities"`
	StoredAt      int64     `json:"stored_at"`
}

// StoreProbabilities saves probs under key with the configured expiration.
func (r *RedisClient) StoreProbabilities(ctx context.Context, key string, probs []float64) error {
	data, err := json.Marshal(cachedPrediction{Probabilities: probs, StoredAt: time.Now().Unix()})
	if err != nil {
		return fmt.Errorf("failed to marshal prediction: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store prediction in Redis: %w", err)
	}
	return nil
}

// GetProbabilities returns the cached probabilities for key, if any.
func (r *RedisClient) GetProbabilities(ctx context.Context, key string) ([]float64, bool, error) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get prediction from Redis: %w", err)
	}

	var cached cachedPrediction
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal prediction: %w", err)
	}
	return cached.Probabilities, true, nil
}

// DeleteProbabilities removes a cached prediction.
func (r *RedisClient) DeleteProbabilities(ctx context.Context, key string) error {
	return r.client.Del(ctx, keyPrefix+key).Err()
}

// GetStatus reports connection pool statistics.
func (r *RedisClient) GetStatus(ctx context.Context) (map[string]interface{}, error) {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	stats := r.client.PoolStats()
	return map[string]interface{}{
		"connected":    true,
		"hits":         stats.Hits,
		"misses":       stats.Misses,
		"active_conns": stats.TotalConns,
	}, nil
}

// PredictionKey identifies a feature row. The feature names are part of the
// key so a reordered classifier never reads stale entries.
func PredictionKey(featureNames []string, row []float64) string {
	h := sha256.New()
	for _, name := range featureNames {
		h.Write([]byte(name))
		h.Write([]byte{0})
	}
	var buf [8]byte
	for _, v := range row {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
