package lease

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lua script for atomic lease acquisition - the single check-and-set that
// prevents two customers from locking the same seat
const luaAcquireLease = `
-- KEYS[1] = seat lease key
-- KEYS[2] = holder index set
-- ARGV[1] = holder_id
-- ARGV[2] = ttl_ms

local holder = redis.call("GET", KEYS[1])
if holder == false or holder == ARGV[1] then
    redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
    redis.call("SADD", KEYS[2], KEYS[1])
    redis.call("PEXPIRE", KEYS[2], ARGV[2])
    return 1
end
return 0
`

// Lua script for holder-checked lease release
const luaReleaseLease = `
-- KEYS[1] = seat lease key
-- KEYS[2] = holder index set
-- ARGV[1] = holder_id

local holder = redis.call("GET", KEYS[1])
if holder == ARGV[1] then
    redis.call("DEL", KEYS[1])
    redis.call("SREM", KEYS[2], KEYS[1])
    return 1
end
return 0
`

// Lua script for all-or-nothing multi-seat TTL extension. Verifies every
// holder before touching any TTL and names the first offending seat.
const luaExtendLeases = `
-- KEYS[1..N-1] = seat lease keys
-- KEYS[N]      = holder index set
-- ARGV[1] = holder_id
-- ARGV[2] = ttl_ms

for i = 1, #KEYS - 1 do
    local holder = redis.call("GET", KEYS[i])
    if holder ~= ARGV[1] then
        return {0, KEYS[i]}
    end
end

for i = 1, #KEYS - 1 do
    redis.call("PEXPIRE", KEYS[i], ARGV[2])
end
redis.call("PEXPIRE", KEYS[#KEYS], ARGV[2])

return {1, ""}
`

var (
	acquireScript = redis.NewScript(luaAcquireLease)
	releaseScript = redis.NewScript(luaReleaseLease)
	extendScript  = redis.NewScript(luaExtendLeases)
)

// RedisManager enforces seat mutual exclusion with Lua scripts so each
// operation is one indivisible round trip.
type RedisManager struct {
	redis *redis.Client
}

// NewRedisManager creates a Redis-backed lease manager.
func NewRedisManager(client *redis.Client) *RedisManager {
	return &RedisManager{redis: client}
}

// PreloadScripts loads the Lua scripts into Redis so later calls hit the
// script cache.
func (m *RedisManager) PreloadScripts(ctx context.Context) error {
	for _, script := range []*redis.Script{acquireScript, releaseScript, extendScript} {
		if err := script.Load(ctx, m.redis).Err(); err != nil {
			return fmt.Errorf("failed to load lease script: %w", err)
		}
	}
	return nil
}

func (m *RedisManager) Acquire(ctx context.Context, eventID, seatKey, holderID string, ttl time.Duration) error {
	keys := []string{seatKey, holderIndexKey(eventID, holderID)}
	args := []interface{}{holderID, strconv.FormatInt(ttl.Milliseconds(), 10)}

	result, err := acquireScript.Run(ctx, m.redis, keys, args...).Int64()
	if err != nil {
		return fmt.Errorf("failed to execute lease acquire: %w", err)
	}
	if result == 0 {
		return &ConflictError{SeatKey: seatKey}
	}
	return nil
}

func (m *RedisManager) Release(ctx context.Context, eventID, seatKey, holderID string) (bool, error) {
	keys := []string{seatKey, holderIndexKey(eventID, holderID)}

	result, err := releaseScript.Run(ctx, m.redis, keys, holderID).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to execute lease release: %w", err)
	}
	return result == 1, nil
}

func (m *RedisManager) ExtendAll(ctx context.Context, eventID string, seatKeys []string, holderID string, ttl time.Duration) error {
	if len(seatKeys) == 0 {
		return nil
	}

	keys := make([]string, 0, len(seatKeys)+1)
	keys = append(keys, seatKeys...)
	keys = append(keys, holderIndexKey(eventID, holderID))
	args := []interface{}{holderID, strconv.FormatInt(ttl.Milliseconds(), 10)}

	result, err := extendScript.Run(ctx, m.redis, keys, args...).Slice()
	if err != nil {
		return fmt.Errorf("failed to execute lease extend: %w", err)
	}
	if len(result) != 2 {
		return fmt.Errorf("unexpected result format from lease extend script")
	}

	success, ok := result[0].(int64)
	if !ok {
		return fmt.Errorf("invalid success flag in lease extend result")
	}
	if success == 0 {
		seatKey, _ := result[1].(string)
		return &ConflictError{SeatKey: seatKey}
	}
	return nil
}

// Holders batch-reads all lease holders in one MGET round trip.
func (m *RedisManager) Holders(ctx context.Context, seatKeys []string) ([]string, error) {
	if len(seatKeys) == 0 {
		return nil, nil
	}

	values, err := m.redis.MGet(ctx, seatKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read lease holders: %w", err)
	}

	holders := make([]string, len(values))
	for i, value := range values {
		if s, ok := value.(string); ok {
			holders[i] = s
		}
	}
	return holders, nil
}

func (m *RedisManager) HolderKeys(ctx context.Context, eventID, holderID string) ([]string, error) {
	members, err := m.redis.SMembers(ctx, holderIndexKey(eventID, holderID)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read holder index: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	// The index can lag behind lease TTL expiry, so filter against the
	// live leases.
	holders, err := m.Holders(ctx, members)
	if err != nil {
		return nil, err
	}

	var live []string
	for i, member := range members {
		if holders[i] == holderID {
			live = append(live, member)
		}
	}
	return live, nil
}
