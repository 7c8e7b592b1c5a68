package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tidwall/gjson"

	"github.com/evacchi/droolsjbpm-knowledge/internal/timer"
	"github.com/evacchi/droolsjbpm-knowledge/pkg/api"
)

type (
	// Store keeps snapshots of timers in Redis: one JSON document per timer
	// in a hash, and the last allocated timer id in a plain key
	Store struct {
		client *redis.Client
		prefix string
	}

	record struct {
		ID                int64          `json:"id"`
		ProcessInstanceID int64          `json:"processInstanceId"`
		SessionID         string         `json:"sessionId"`
		DelayMS           int64          `json:"delayMs"`
		PeriodMS          int64          `json:"periodMs"`
		RepeatLimit       int            `json:"repeatLimit"`
		CronExpression    string         `json:"cronExpression,omitempty"`
		Activated         time.Time      `json:"activated"`
		LastTriggered     *time.Time     `json:"lastTriggered,omitempty"`
		ProcessID         string         `json:"processId,omitempty"`
		Params            map[string]any `json:"params,omitempty"`
	}
)

const (
	timersKey  = "timers"
	timerIDKey = "timer-id"
)

var ErrDecodeTimer = errors.New("failed to decode timer")

// New creates a store writing under prefix
func New(client *redis.Client, prefix string) *Store {
	return &Store{
		client: client,
		prefix: prefix,
	}
}

// Save replaces the stored snapshot with timers and the id counter
func (s *Store) Save(
	ctx context.Context, timers []timer.TimerInstance, lastID int64,
) error {
	fields := make([]any, 0, len(timers)*2)
	for i := range timers {
		data, err := json.Marshal(toRecord(&timers[i]))
		if err != nil {
			return err
		}
		fields = append(fields, timerField(timers[i].ID), data)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(timersKey))
		if len(fields) > 0 {
			pipe.HSet(ctx, s.key(timersKey), fields...)
		}
		pipe.Set(ctx, s.key(timerIDKey), lastID, 0)
		return nil
	})
	return err
}

// Put stores a single timer, leaving the rest of the snapshot alone
func (s *Store) Put(ctx context.Context, t *timer.TimerInstance) error {
	data, err := json.Marshal(toRecord(t))
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, s.key(timersKey), timerField(t.ID), data).Err()
}

// Delete removes a stored timer
func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.client.HDel(ctx, s.key(timersKey), timerField(id)).Err()
}

// Load returns every stored timer, ordered by id, and the id counter
func (s *Store) Load(ctx context.Context) ([]timer.TimerInstance, int64, error) {
	return s.load(ctx, func(string) bool { return true })
}

// LoadSession returns the stored timers owned by sessionID and the id
// counter
func (s *Store) LoadSession(
	ctx context.Context, sessionID api.SessionID,
) ([]timer.TimerInstance, int64, error) {
	return s.load(ctx, func(raw string) bool {
		return gjson.Get(raw, "sessionId").String() == string(sessionID)
	})
}

func (s *Store) load(
	ctx context.Context, keep func(raw string) bool,
) ([]timer.TimerInstance, int64, error) {
	raw, err := s.client.HGetAll(ctx, s.key(timersKey)).Result()
	if err != nil {
		return nil, 0, err
	}
	lastID, err := s.client.Get(ctx, s.key(timerIDKey)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, err
	}

	res := make([]timer.TimerInstance, 0, len(raw))
	for field, data := range raw {
		if !gjson.Valid(data) {
			return nil, 0, fmt.Errorf("%w: %s", ErrDecodeTimer, field)
		}
		if !keep(data) {
			continue
		}
		var rec record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, 0, fmt.Errorf("%w: %s: %w", ErrDecodeTimer, field, err)
		}
		res = append(res, rec.toTimer())
	}
	sortByID(res)
	return res, lastID, nil
}

func (s *Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + ":" + name
}

func timerField(id int64) string {
	return strconv.FormatInt(id, 10)
}

func toRecord(t *timer.TimerInstance) record {
	rec := record{
		ID:                t.ID,
		ProcessInstanceID: int64(t.ProcessInstanceID),
		SessionID:         string(t.SessionID),
		DelayMS:           t.Delay.Milliseconds(),
		PeriodMS:          t.Period.Milliseconds(),
		RepeatLimit:       t.RepeatLimit,
		CronExpression:    t.CronExpression,
		Activated:         t.Activated,
		ProcessID:         t.ProcessID,
		Params:            t.Params,
	}
	if t.HasFired() {
		last := t.LastTriggered
		rec.LastTriggered = &last
	}
	return rec
}

func (r *record) toTimer() timer.TimerInstance {
	t := timer.TimerInstance{
		ID:                r.ID,
		ProcessInstanceID: api.ProcessInstanceID(r.ProcessInstanceID),
		SessionID:         api.SessionID(r.SessionID),
		Delay:             time.Duration(r.DelayMS) * time.Millisecond,
		Period:            time.Duration(r.PeriodMS) * time.Millisecond,
		RepeatLimit:       r.RepeatLimit,
		CronExpression:    r.CronExpression,
		Activated:         r.Activated,
		ProcessID:         r.ProcessID,
		Params:            r.Params,
	}
	if r.LastTriggered != nil {
		t.LastTriggered = *r.LastTriggered
	}
	return t
}
