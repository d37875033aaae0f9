package redisx

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type State int

const (
	StateNew State = iota
	StateInFlight
	StateDone
)

const pendingMarker = "pending"

type Idempotency struct{ rdb redis.Cmdable }

func NewIdempotency(rdb redis.Cmdable) *Idempotency { return &Idempotency{rdb: rdb} }

func key(k string) string { return fmt.Sprintf(KeyIdemOrderItemCreate, k) }

// Begin reserves k. StateNew means the caller owns it and must Complete or
// Release; StateDone returns the stored result.
func (s *Idempotency) Begin(ctx context.Context, k string) (State, []byte, error) {
	ok, err := s.rdb.SetNX(ctx, key(k), pendingMarker, TTLInFlight).Result()
	if err != nil {
		return StateNew, nil, err
	}
	if ok {
		return StateNew, nil, nil
	}
	b, err := s.rdb.Get(ctx, key(k)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		// expired between SETNX and GET
		return s.Begin(ctx, k)
	case err != nil:
		return StateNew, nil, err
	case string(b) == pendingMarker:
		return StateInFlight, nil, nil
	}
	return StateDone, b, nil
}

func (s *Idempotency) Complete(ctx context.Context, k string, result []byte) error {
	return s.rdb.Set(ctx, key(k), result, TTLIdempotency).Err()
}

// Release drops the reservation so the client may retry after a failure.
func (s *Idempotency) Release(ctx context.Context, k string) error {
	return s.rdb.Del(ctx, key(k)).Err()
}
