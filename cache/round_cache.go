package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"fightpool/events"
	"fightpool/models"

	"github.com/redis/go-redis/v9"
)

// roundInfoTTL bounds staleness if an invalidation event is ever lost
const roundInfoTTL = 30 * time.Second

// ConnectRedis opens and verifies a redis connection
func ConnectRedis(addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// RoundCache keeps round snapshots in redis so the read path doesn't hit
// the database for every status query. Writes go through the services; the
// cache only ever holds what they published.
type RoundCache struct {
	rdb *redis.Client
}

// NewRoundCache creates a round cache over the given redis client
func NewRoundCache(rdb *redis.Client) *RoundCache {
	return &RoundCache{rdb: rdb}
}

func roundKey(roundID int64) string {
	return fmt.Sprintf("pool:round:%d", roundID)
}

// Get loads a cached round snapshot, reporting a miss as found=false
func (c *RoundCache) Get(ctx context.Context, roundID int64) (*models.RoundInfo, bool, error) {
	b, err := c.rdb.Get(ctx, roundKey(roundID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var info models.RoundInfo
	if err := json.Unmarshal(b, &info); err != nil {
		return nil, false, err
	}
	return &info, true, nil
}

// Set stores a round snapshot
func (c *RoundCache) Set(ctx context.Context, info *models.RoundInfo) error {
	b, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, roundKey(info.ID), b, roundInfoTTL).Err()
}

// Invalidate drops a cached round snapshot
func (c *RoundCache) Invalidate(ctx context.Context, roundID int64) error {
	return c.rdb.Del(ctx, roundKey(roundID)).Err()
}

// SubscribeInvalidation drops cached snapshots whenever round state changes.
// Invalidation failures are logged, not fatal; the TTL catches stragglers.
func (c *RoundCache) SubscribeInvalidation(bus *events.Bus) {
	invalidate := func(ctx context.Context, roundID int64) {
		if err := c.Invalidate(ctx, roundID); err != nil {
			log.WithFields(log.Fields{
				"roundID": roundID,
				"error":   err,
			}).Error("Failed to invalidate round cache")
		}
	}

	bus.Subscribe(events.EventTypeWagerPlaced, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.WagerPlacedEvent); ok {
			invalidate(ctx, e.RoundID)
		}
	})
	bus.Subscribe(events.EventTypeRoundEnded, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.RoundEndedEvent); ok {
			invalidate(ctx, e.RoundID)
		}
	})
}
