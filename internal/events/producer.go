package events

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

var (
	ErrBufferFull = errors.New("events: producer buffer full")
	ErrClosed     = errors.New("events: producer closed")
)

// Writer is the subset of *kafka.Writer the producer needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer queues messages in memory and writes them from one goroutine so
// Publish never waits on the broker.
type Producer struct {
	w       Writer
	service string
	inbox   chan kafka.Message
	done    chan struct{}
	once    sync.Once

	mu     sync.RWMutex // guards closed and sends on inbox
	closed bool
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func NewProducer(w Writer, service string, buf int) *Producer {
	p := &Producer{
		w:       w,
		service: service,
		inbox:   make(chan kafka.Message, buf),
		done:    make(chan struct{}),
	}
	go p.loop()
	return p
}

func (p *Producer) loop() {
	defer close(p.done)
	for m := range p.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := p.w.WriteMessages(ctx, m); err != nil {
			log.Printf("[events] write key=%s: %v", m.Key, err)
		}
		cancel()
	}
	if err := p.w.Close(); err != nil {
		log.Printf("[events] close writer: %v", err)
	}
}

// Publish wraps payload in an Envelope keyed by key. It drops the event and
// returns ErrBufferFull instead of blocking when the queue is full, and
// ErrClosed once Close has been called.
func (p *Producer) Publish(ctx context.Context, key, eventType string, payload any) error {
	env, err := NewEnvelope(p.service, eventType, key, payload)
	if err != nil {
		return err
	}
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: b,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.inbox <- msg:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close flushes queued messages and closes the writer. Safe to call twice.
func (p *Producer) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.inbox)
		p.mu.Unlock()
	})
	<-p.done
}

// Noop is used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, string, any) error { return nil }

func (Noop) Close() {}
