package batch

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// progressBufferSize bounds the progress queue. Workers never block on
// progress reporting: when the buffer is full the oldest pending message is
// dropped (drop-oldest policy) and counted.
const progressBufferSize = 64

// drainBatchSize is how many queued messages the consumer drains per wake-up.
const drainBatchSize = 8

type progressMsg struct {
	objectID string
	status   Status
	reason   string
}

// progressBroker is a bounded, drop-oldest progress queue owned by the
// orchestrator. Producers are the workers; the single consumer logs messages
// in small batches so a slow log sink never stalls worker throughput.
type progressBroker struct {
	ch      chan progressMsg
	done    chan struct{}
	dropped atomic.Int64
	logger  *zerolog.Logger
}

func newProgressBroker(logger *zerolog.Logger) *progressBroker {
	return &progressBroker{
		ch:     make(chan progressMsg, progressBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// publish enqueues a message without ever blocking: if the buffer is full,
// the oldest queued message is discarded to make room.
func (b *progressBroker) publish(msg progressMsg) {
	for {
		select {
		case b.ch <- msg:
			return
		default:
		}
		select {
		case <-b.ch:
			b.dropped.Add(1)
		default:
		}
	}
}

// run consumes messages until the channel is closed, draining in batches.
// Call in a goroutine; close the broker with stop.
func (b *progressBroker) run() {
	defer close(b.done)
	for msg := range b.ch {
		batch := []progressMsg{msg}
	drain:
		for len(batch) < drainBatchSize {
			select {
			case m, ok := <-b.ch:
				if !ok {
					break drain
				}
				batch = append(batch, m)
			default:
				break drain
			}
		}
		b.log(batch)
	}
}

func (b *progressBroker) log(batch []progressMsg) {
	for _, msg := range batch {
		event := b.logger.Info()
		if msg.status == StatusFailed {
			event = b.logger.Warn()
		}
		event.
			Str("object_id", msg.objectID).
			Str("status", string(msg.status)).
			Str("reason", msg.reason).
			Msg("Asset processed")
	}
}

// stop closes the queue and waits for the consumer to finish draining.
func (b *progressBroker) stop() {
	close(b.ch)
	<-b.done
	if n := b.dropped.Load(); n > 0 {
		b.logger.Debug().Int64("dropped", n).Msg("Progress messages dropped under load")
	}
}
