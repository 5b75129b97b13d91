package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/xtding233/galton-board/internal/galton"
)

// DefaultKeep is how many run ids the recent list retains.
const DefaultKeep = 100

// Record is one finished simulation as stored in Redis.
type Record struct {
	ID        string            `json:"id"`
	Slots     int               `json:"slots"`
	Requested int               `json:"requested"`
	Balls     int               `json:"balls"`
	Bias      float64           `json:"bias"`
	Workers   int               `json:"workers"`
	Strategy  string            `json:"strategy"`
	Counts    galton.SlotCounts `json:"counts"`
	Elapsed   time.Duration     `json:"elapsed"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewRecord captures cfg and its result under a fresh run id.
func NewRecord(cfg galton.Config, res galton.Result) Record {
	strategy := string(cfg.Strategy)
	if strategy == "" {
		strategy = string(galton.StrategyLocal)
	}
	return Record{
		ID:        uuid.NewString(),
		Slots:     len(res.Counts),
		Requested: cfg.Balls,
		Balls:     int(res.Counts.Total()),
		Bias:      cfg.Bias,
		Workers:   res.Plan.Workers,
		Strategy:  strategy,
		Counts:    res.Counts,
		Elapsed:   res.Elapsed,
		CreatedAt: time.Now().UTC(),
	}
}

// Store keeps run records in Redis, namespaced so several boards can share
// one server. Safe for concurrent use.
type Store struct {
	rdb       *redis.Client
	namespace string
	keep      int64
}

// NewStore connects a store for namespace. keep <= 0 means DefaultKeep.
func NewStore(opts *redis.Options, namespace string, keep int) (*Store, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}
	if keep <= 0 {
		keep = DefaultKeep
	}
	return &Store{rdb: redis.NewClient(opts), namespace: namespace, keep: int64(keep)}, nil
}

func (s *Store) runKey(id string) string {
	return fmt.Sprintf("galton:%s:run:%s", s.namespace, id)
}

func (s *Store) listKey() string {
	return fmt.Sprintf("galton:%s:runs", s.namespace)
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Ping verifies Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Save writes r as a hash and pushes its id onto the recent list. Runs that
// fall off the list keep their hash until it is overwritten or expired by Redis.
func (s *Store) Save(ctx context.Context, r Record) error {
	if _, err := uuid.Parse(r.ID); err != nil {
		return fmt.Errorf("invalid run id %q: %w", r.ID, err)
	}
	counts, err := json.Marshal(r.Counts)
	if err != nil {
		return fmt.Errorf("failed to serialize counts: %w", err)
	}
	hash := map[string]any{
		"id":         r.ID,
		"slots":      r.Slots,
		"requested":  r.Requested,
		"balls":      r.Balls,
		"bias":       strconv.FormatFloat(r.Bias, 'g', -1, 64),
		"workers":    r.Workers,
		"strategy":   r.Strategy,
		"counts":     string(counts),
		"elapsed_ns": int64(r.Elapsed),
		"created_at": r.CreatedAt.Format(time.RFC3339Nano),
	}

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, s.runKey(r.ID), hash)
	pipe.LPush(ctx, s.listKey(), r.ID)
	pipe.LTrim(ctx, s.listKey(), 0, s.keep-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write run to Redis: %w", err)
	}
	return nil
}

// Get returns the run with id. Returns redis.Nil if it doesn't exist;
// use IsNotFound to check.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	data, err := s.rdb.HGetAll(ctx, s.runKey(id)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("failed to read run from Redis: %w", err)
	}
	if len(data) == 0 {
		return Record{}, redis.Nil
	}
	r, err := hashToRecord(data)
	if err != nil {
		return Record{}, fmt.Errorf("failed to deserialize run %s: %w", id, err)
	}
	return r, nil
}

// Recent returns up to n of the newest runs, newest first. Ids whose hash is
// gone are skipped.
func (s *Store) Recent(ctx context.Context, n int) ([]Record, error) {
	if n <= 0 {
		return nil, nil
	}
	ids, err := s.rdb.LRange(ctx, s.listKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		r, err := s.Get(ctx, id)
		if IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// IsNotFound reports whether err means the run does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}

func hashToRecord(h map[string]string) (Record, error) {
	var r Record
	var err error
	atoi := func(field string) int {
		if err != nil {
			return 0
		}
		var v int
		v, err = strconv.Atoi(h[field])
		if err != nil {
			err = fmt.Errorf("field %s: %w", field, err)
		}
		return v
	}

	r.ID = h["id"]
	r.Strategy = h["strategy"]
	r.Slots = atoi("slots")
	r.Requested = atoi("requested")
	r.Balls = atoi("balls")
	r.Workers = atoi("workers")
	if err != nil {
		return Record{}, err
	}
	if r.Bias, err = strconv.ParseFloat(h["bias"], 64); err != nil {
		return Record{}, fmt.Errorf("field bias: %w", err)
	}
	ns, err := strconv.ParseInt(h["elapsed_ns"], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("field elapsed_ns: %w", err)
	}
	r.Elapsed = time.Duration(ns)
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, h["created_at"]); err != nil {
		return Record{}, fmt.Errorf("field created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(h["counts"]), &r.Counts); err != nil {
		return Record{}, fmt.Errorf("field counts: %w", err)
	}
	return r, nil
}
