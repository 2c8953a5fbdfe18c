package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSenderVariants(t *testing.T) {
	e := EmailSender("ann@example.org")
	addr, ok := e.Email()
	assert.True(t, ok)
	assert.Equal(t, "ann@example.org", addr)
	_, ok = e.DisplayName()
	assert.False(t, ok)

	n := DisplayNameSender("Jean-Paul")
	_, ok = n.Email()
	assert.False(t, ok)
	name, ok := n.DisplayName()
	assert.True(t, ok)
	assert.Equal(t, "Jean-Paul", name)

	assert.True(t, SenderIdentity{}.IsZero())
	assert.True(t, EmailSender("   ").IsZero())

	padded := DisplayNameSender(" Ann ")
	name, _ = padded.DisplayName()
	assert.Equal(t, " Ann ", name)
}

func TestSenderJson(t *testing.T) {
	b, err := json.Marshal(EmailSender("ann@example.org"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"email","email":"ann@example.org"}`, string(b))

	var s SenderIdentity
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Ann"}`), &s))
	assert.Equal(t, SenderKindName, s.Kind())

	assert.Error(t, json.Unmarshal([]byte(`{"kind":"pigeon"}`), &s))
}

func TestTransferKeys(t *testing.T) {
	tr := &Transfer{Id: "AbCdEf12", Filename: "a.zip"}
	assert.Equal(t, "transfers/AbCdEf12/a.zip", tr.ObjectKey())
	assert.Equal(t, "transfers/AbCdEf12/meta.json", tr.MetadataKey())
}

func TestTransferLegacyEmail(t *testing.T) {
	var tr Transfer
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","filename":"f","size":1,"email":"bob@example.org","createdAt":"2024-01-02T03:04:05Z"}`), &tr))
	addr, ok := tr.Sender.Email()
	assert.True(t, ok)
	assert.Equal(t, "bob@example.org", addr)
	assert.Equal(t, DefaultContentType, tr.ContentType)
}
