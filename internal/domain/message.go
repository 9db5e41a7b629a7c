package domain

import "encoding/json"

// MessageType tags messages exchanged between content and background components
type MessageType string

const (
	MessageProductDetected MessageType = "PRODUCT_DETECTED"
	MessageScrapeRequest   MessageType = "SCRAPE_REQUEST"
	MessageScrapeResponse  MessageType = "SCRAPE_RESPONSE"
	MessageScrapeError     MessageType = "SCRAPE_ERROR"
)

// Message is the envelope for one-way messages. Payload is decoded according to Type.
type Message struct {
	Type    MessageType     `json:"type"`
	TabID   string          `json:"tabId,omitempty"`
	URL     string          `json:"url,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewProductDetectedMessage wraps a record for delivery to the background component
func NewProductDetectedMessage(tabID string, record *ProductRecord) (Message, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: MessageProductDetected, TabID: tabID, Payload: payload}, nil
}

// ProductPayload decodes and validates a PRODUCT_DETECTED payload
func (m Message) ProductPayload() (*ProductRecord, error) {
	var record ProductRecord
	if err := json.Unmarshal(m.Payload, &record); err != nil {
		return nil, err
	}
	return NewProductRecord(record)
}
