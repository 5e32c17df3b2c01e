package events

import (
	"encoding/json"
	"time"

	"github.com/mmynk/receiptsplit/internal/models"
)

// SplitSavedEvent is the routing key of SplitSavedMessage.
const SplitSavedEvent = "split.saved"

// SplitSavedMessage announces a persisted split snapshot. Consumers fetch
// details through the share token.
type SplitSavedMessage struct {
	SplitID      string       `json:"splitId"`
	ReceiptID    string       `json:"receiptId"`
	CreatedBy    string       `json:"createdBy"`
	ShareToken   string       `json:"shareToken"`
	Participants int          `json:"participants"`
	Total        models.Money `json:"total"`
	Timestamp    time.Time    `json:"timestamp"`
}

// NewSplitSavedMessage builds the message for a stored split.
func NewSplitSavedMessage(split *models.Split) *SplitSavedMessage {
	return &SplitSavedMessage{
		SplitID:      split.ID,
		ReceiptID:    split.ReceiptID,
		CreatedBy:    split.CreatedBy,
		ShareToken:   split.ShareToken,
		Participants: len(split.Participants),
		Total:        models.Money(split.Meta.Total),
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SplitSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SplitSavedMessageFromJSON decodes a message body.
func SplitSavedMessageFromJSON(data []byte) (*SplitSavedMessage, error) {
	var msg SplitSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
