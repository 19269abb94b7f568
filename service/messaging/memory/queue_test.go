package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type testPayload struct {
	PID  int
	Kind string
}

func TestQueue(t *testing.T) {
	queue := NewQueue[testPayload]()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.NoError(t, queue.Publish(ctx, &testPayload{PID: i, Kind: "created"}))
	}
	assert.Equal(t, 3, queue.Size())

	for i := 0; i < 3; i++ {
		message, err := queue.Consume(ctx)
		assert.NoError(t, err)
		assert.NotEmpty(t, message.ID())
		assert.Equal(t, i, message.T().PID)
		assert.NoError(t, message.Ack())
		assert.True(t, errors.Is(message.Ack(), ErrProcessed))
	}
	assert.Equal(t, 0, queue.Size())
}

func TestQueueConcurrency(t *testing.T) {
	queue := NewQueue[testPayload]()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	producers, perProducer := 5, 20
	var wg sync.WaitGroup
	consumed := make(chan int, producers*perProducer)
	for i := 0; i < producers; i++ {
		wg.Add(2)
		go func(producer int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				assert.NoError(t, queue.Publish(ctx, &testPayload{PID: producer*perProducer + j}))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				message, err := queue.Consume(ctx)
				if !assert.NoError(t, err) {
					return
				}
				assert.NoError(t, message.Ack())
				consumed <- message.T().PID
			}
		}()
	}
	wg.Wait()
	close(consumed)

	seen := map[int]bool{}
	for pid := range consumed {
		seen[pid] = true
	}
	assert.Len(t, seen, producers*perProducer)
	assert.Equal(t, 0, queue.Size())
}

func TestQueueContextCancellation(t *testing.T) {
	queue := NewQueue[testPayload]()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, queue.Publish(ctx, &testPayload{PID: 1}))

	timeoutCtx, cancelTimeout := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelTimeout()
	_, err := queue.Consume(timeoutCtx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	assert.NoError(t, queue.Publish(context.Background(), &testPayload{PID: 2}))
	message, err := queue.Consume(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, message.T().PID)
}
