// Package cache is an optional redis read-through cache for computed day
// schedules. Resolution stays correct without it; it only saves the
// per-request index rebuild for hot host/date pairs.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"meetcal/internal/metrics"
)

// Intervals whose cached entries are invalidated together per date.
var slotIntervals = []int{15, 30, 60}

// DaySchedule is the cached payload for one host/date/interval triple.
type DaySchedule struct {
	Bookable bool     `json:"bookable"`
	Slots    []string `json:"slots"`
}

// SlotCache stores computed day schedules in redis with a TTL.
type SlotCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// New returns a cache over the given client. A nil client disables caching;
// all operations become no-ops.
func New(client *redis.Client, ttl time.Duration) *SlotCache {
	return &SlotCache{redis: client, ttl: ttl}
}

func (c *SlotCache) enabled() bool {
	return c != nil && c.redis != nil && c.ttl > 0
}

func slotKey(hostID, date string, interval int) string {
	return fmt.Sprintf("slots:%s:%s:%d", hostID, date, interval)
}

// Get returns the cached schedule, or ok=false on miss or any redis error.
func (c *SlotCache) Get(ctx context.Context, hostID, date string, interval int) (DaySchedule, bool) {
	if !c.enabled() {
		return DaySchedule{}, false
	}

	val, err := c.redis.Get(ctx, slotKey(hostID, date, interval)).Result()
	if err != nil {
		metrics.IncCacheLookup("miss")
		return DaySchedule{}, false
	}

	var schedule DaySchedule
	if err := json.Unmarshal([]byte(val), &schedule); err != nil {
		metrics.IncCacheLookup("miss")
		return DaySchedule{}, false
	}

	metrics.IncCacheLookup("hit")
	return schedule, true
}

// Set stores a schedule. Failures are ignored; the cache is best effort.
func (c *SlotCache) Set(ctx context.Context, hostID, date string, interval int, schedule DaySchedule) {
	if !c.enabled() {
		return
	}

	data, err := json.Marshal(schedule)
	if err != nil {
		return
	}
	c.redis.Set(ctx, slotKey(hostID, date, interval), data, c.ttl)
}

// InvalidateDate drops cached schedules for one host/date across all
// intervals, called after a booking is created on that date.
func (c *SlotCache) InvalidateDate(ctx context.Context, hostID, date string) {
	if !c.enabled() {
		return
	}

	keys := make([]string, 0, len(slotIntervals))
	for _, interval := range slotIntervals {
		keys = append(keys, slotKey(hostID, date, interval))
	}
	c.redis.Del(ctx, keys...)
}

// InvalidateHost drops every cached schedule of a host, called after rule
// changes since those affect arbitrary dates.
func (c *SlotCache) InvalidateHost(ctx context.Context, hostID string) {
	if !c.enabled() {
		return
	}

	var cursor uint64
	pattern := fmt.Sprintf("slots:%s:*", hostID)
	for {
		keys, next, err := c.redis.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			c.redis.Del(ctx, keys...)
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}
