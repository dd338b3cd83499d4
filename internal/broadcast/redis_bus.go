package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

const resubscribeDelay = time.Second

// RedisBus carries storage events between processes over Redis pub/sub.
// Every key maps to the channel "<prefix>:<key>"; one pattern subscription
// per process receives all of them.
type RedisBus struct {
	client     rueidis.Client
	prefix     string
	origin     string
	dispatcher *dispatcher
	logger     *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed sync.Once
}

func NewRedisBus(client rueidis.Client, prefix, origin string, logger *zap.Logger) *RedisBus {
	if origin == "" {
		origin = uuid.NewString()
	}

	return &RedisBus{
		client:     client,
		prefix:     prefix,
		origin:     origin,
		dispatcher: newDispatcher(defaultQueueSize, logger),
		logger:     logger.With(zap.String("origin", origin)),
	}
}

func (b *RedisBus) Origin() string { return b.origin }

func (b *RedisBus) Publish(ctx context.Context, key, newValue string) error {
	payload, err := json.Marshal(Event{Key: key, NewValue: newValue, Origin: b.origin})
	if err != nil {
		return err
	}

	cmd := b.client.B().Publish().Channel(b.channel(key)).Message(string(payload)).Build()
	return b.client.Do(ctx, cmd).Error()
}

func (b *RedisBus) Subscribe(key string, handler Handler) func() {
	return b.dispatcher.subscribe(key, handler)
}

// Start runs the pattern subscription in the background until Close.
func (b *RedisBus) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	b.wg.Add(1)
	go b.receiveLoop(ctx)
}

func (b *RedisBus) receiveLoop(ctx context.Context) {
	defer b.wg.Done()

	cmd := b.client.B().Psubscribe().Pattern(b.prefix + ":*").Build()

	for {
		err := b.client.Receive(ctx, cmd, func(msg rueidis.PubSubMessage) {
			b.handleMessage(msg.Message)
		})
		if ctx.Err() != nil {
			return
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			b.logger.Warn("redis subscription dropped", zap.Error(err))
		}

		select {
		case <-time.After(resubscribeDelay):
		case <-ctx.Done():
			return
		}
	}
}

func (b *RedisBus) handleMessage(payload string) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		b.logger.Warn("discarding malformed storage event", zap.Error(err))
		return
	}
	if ev.Origin == b.origin {
		return
	}
	b.dispatcher.enqueue(ev)
}

func (b *RedisBus) Close() error {
	b.closed.Do(func() {
		if b.cancel != nil {
			b.cancel()
		}
		b.wg.Wait()
		b.dispatcher.close()
	})
	return nil
}

func (b *RedisBus) channel(key string) string {
	return b.prefix + ":" + key
}
