package types

import (
	"encoding/json"
	"time"
)

const DefaultContentType = "application/octet-stream"

// Transfer is the descriptor persisted next to every uploaded artifact. It is written once when
// the transfer is created and only read afterwards.
type Transfer struct {
	Id          string         `json:"id"`
	Filename    string         `json:"filename"`
	SizeBytes   int64          `json:"size"`
	ContentType string         `json:"contentType"`
	Sender      SenderIdentity `json:"sender"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// legacyTransfer covers descriptors which only carry a top-level email address.
type legacyTransfer struct {
	Id          string          `json:"id"`
	Filename    string          `json:"filename"`
	SizeBytes   int64           `json:"size"`
	ContentType string          `json:"contentType"`
	Sender      json.RawMessage `json:"sender,omitempty"`
	Email       string          `json:"email,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (t *Transfer) UnmarshalJSON(b []byte) error {
	raw := legacyTransfer{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	t.Id = raw.Id
	t.Filename = raw.Filename
	t.SizeBytes = raw.SizeBytes
	t.ContentType = raw.ContentType
	t.CreatedAt = raw.CreatedAt
	t.Sender = SenderIdentity{}
	if len(raw.Sender) > 0 && string(raw.Sender) != "null" {
		if err := json.Unmarshal(raw.Sender, &t.Sender); err != nil {
			return err
		}
	} else if raw.Email != "" {
		t.Sender = EmailSender(raw.Email)
	}
	if t.ContentType == "" {
		t.ContentType = DefaultContentType
	}
	return nil
}

func (t *Transfer) ObjectKey() string {
	return ObjectKey(t.Id, t.Filename)
}

func (t *Transfer) MetadataKey() string {
	return MetadataKey(t.Id)
}

const keyPrefix = "transfers/"

// MetadataFilename is the descriptor's name inside a transfer's prefix. No artifact may use it.
const MetadataFilename = "meta.json"

func ObjectKey(id string, filename string) string {
	return keyPrefix + id + "/" + filename
}

func MetadataKey(id string) string {
	return keyPrefix + id + "/" + MetadataFilename
}
