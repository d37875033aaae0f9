package redisx

import "time"

const (
	// idem:order-item:create:{Idempotency-Key} -> "pending" | stored response body
	KeyIdemOrderItemCreate = "idem:order-item:create:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLInFlight    = 30 * time.Second
)
