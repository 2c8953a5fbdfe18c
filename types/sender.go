package types

import (
	"encoding/json"
	"errors"
	"strings"
)

type SenderKind string

const (
	SenderKindEmail SenderKind = "email"
	SenderKindName  SenderKind = "name"
)

// SenderIdentity is either an email address or a free-text display name, never both. The value
// is kept exactly as given.
type SenderIdentity struct {
	kind  SenderKind
	value string
}

func EmailSender(address string) SenderIdentity {
	return SenderIdentity{kind: SenderKindEmail, value: address}
}

func DisplayNameSender(name string) SenderIdentity {
	return SenderIdentity{kind: SenderKindName, value: name}
}

func (s SenderIdentity) Kind() SenderKind {
	return s.kind
}

func (s SenderIdentity) IsZero() bool {
	return s.kind == "" || strings.TrimSpace(s.value) == ""
}

// Email returns the address and true when the identity can receive mail.
func (s SenderIdentity) Email() (string, bool) {
	if s.kind != SenderKindEmail || s.value == "" {
		return "", false
	}
	return s.value, true
}

func (s SenderIdentity) DisplayName() (string, bool) {
	if s.kind != SenderKindName || s.value == "" {
		return "", false
	}
	return s.value, true
}

// String is the human readable form, also used to derive bundle file names.
func (s SenderIdentity) String() string {
	return s.value
}

type senderJson struct {
	Kind  SenderKind `json:"kind"`
	Email string     `json:"email,omitempty"`
	Name  string     `json:"name,omitempty"`
}

func (s SenderIdentity) MarshalJSON() ([]byte, error) {
	v := senderJson{Kind: s.kind}
	switch s.kind {
	case SenderKindEmail:
		v.Email = s.value
	case SenderKindName:
		v.Name = s.value
	}
	return json.Marshal(v)
}

func (s *SenderIdentity) UnmarshalJSON(b []byte) error {
	v := senderJson{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v.Kind {
	case SenderKindEmail:
		*s = EmailSender(v.Email)
	case SenderKindName:
		*s = DisplayNameSender(v.Name)
	case "":
		// Kind omitted: infer from whichever field is present
		if v.Email != "" {
			*s = EmailSender(v.Email)
		} else {
			*s = DisplayNameSender(v.Name)
		}
	default:
		return errors.New("unknown sender kind: " + string(v.Kind))
	}
	return nil
}
