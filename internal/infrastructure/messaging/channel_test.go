package messaging

import (
	"testing"

	"github.com/productlens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() *domain.ProductRecord {
	return &domain.ProductRecord{
		Title:    "Sony WH-1000XM4",
		Price:    "$278.00",
		Features: []string{"Noise cancelling"},
		URL:      "https://www.amazon.com/dp/B0863TXGM3",
		Site:     domain.SiteAmazon,
	}
}

func TestNotify_DeliversProductDetected(t *testing.T) {
	ch := NewChannel(4)
	defer ch.Close()

	ch.Notify("42", testRecord())

	msg := <-ch.Messages()
	assert.Equal(t, domain.MessageProductDetected, msg.Type)
	assert.Equal(t, "42", msg.TabID)

	record, err := msg.ProductPayload()
	require.NoError(t, err)
	assert.Equal(t, "Sony WH-1000XM4", record.Title)
	assert.Equal(t, domain.SiteAmazon, record.Site)
}

func TestSend_DropsWhenFull(t *testing.T) {
	ch := NewChannel(1)
	defer ch.Close()

	require.NoError(t, ch.Send(domain.Message{Type: domain.MessageProductDetected}))

	err := ch.Send(domain.Message{Type: domain.MessageProductDetected})
	assert.ErrorIs(t, err, domain.ErrDeliveryFailure)
	assert.Equal(t, int64(1), ch.Dropped())
}

func TestNotify_NeverBlocksOrPanicsAfterClose(t *testing.T) {
	ch := NewChannel(1)
	ch.Close()
	ch.Close()

	ch.Notify("1", testRecord())

	assert.Equal(t, int64(1), ch.Dropped())
	_, open := <-ch.Messages()
	assert.False(t, open)
}

func TestNewChannel_DefaultBuffer(t *testing.T) {
	ch := NewChannel(0)
	defer ch.Close()
	assert.Equal(t, DefaultBuffer, cap(ch.messages))
}
