package messaging

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/productlens/backend/internal/domain"
)

// DefaultBuffer is the number of undelivered messages held before new ones are dropped
const DefaultBuffer = 64

// Channel is a one-way, at-most-once message channel from the content side to
// the background component. Senders never block and never learn whether a
// message was delivered.
type Channel struct {
	messages chan domain.Message
	mutex    sync.RWMutex
	closed   bool
	dropped  atomic.Int64
}

// NewChannel creates a channel holding up to buffer pending messages
func NewChannel(buffer int) *Channel {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Channel{messages: make(chan domain.Message, buffer)}
}

// Notify sends a PRODUCT_DETECTED message for the tab. Delivery failures are logged only.
func (c *Channel) Notify(tabID string, record *domain.ProductRecord) {
	msg, err := domain.NewProductDetectedMessage(tabID, record)
	if err != nil {
		log.Printf("[Messaging] Failed to encode product message: %v", err)
		return
	}
	if err := c.Send(msg); err != nil {
		log.Printf("[Messaging] Dropped %s for tab %q: %v", msg.Type, tabID, err)
	}
}

// Send hands a message to the receiver without waiting. It returns
// domain.ErrDeliveryFailure when the receiver is gone or not keeping up.
func (c *Channel) Send(msg domain.Message) error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.closed {
		c.dropped.Add(1)
		return domain.ErrDeliveryFailure
	}

	select {
	case c.messages <- msg:
		return nil
	default:
		c.dropped.Add(1)
		return domain.ErrDeliveryFailure
	}
}

// Messages returns the receiving end of the channel
func (c *Channel) Messages() <-chan domain.Message {
	return c.messages
}

// Dropped returns the number of messages that could not be delivered
func (c *Channel) Dropped() int64 {
	return c.dropped.Load()
}

// Close stops accepting messages and closes the receiving end
func (c *Channel) Close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.messages)
}
