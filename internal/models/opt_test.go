package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bioPatch struct {
	Name Opt[string] `json:"name"`
	Bio  Opt[string] `json:"bio"`
}

func TestOptDistinguishesAbsentNullAndValue(t *testing.T) {
	var p bioPatch
	require.NoError(t, json.Unmarshal([]byte(`{"bio":null}`), &p))

	assert.False(t, p.Name.Set)
	assert.True(t, p.Bio.Set)
	assert.True(t, p.Bio.Null)

	p = bioPatch{}
	require.NoError(t, json.Unmarshal([]byte(`{"name":"","bio":"hello"}`), &p))
	assert.True(t, p.Name.HasValue())
	assert.Equal(t, "", p.Name.Val)
	assert.Equal(t, "hello", p.Bio.Val)
}

func TestOptApplyTo(t *testing.T) {
	old := "old"
	dst := &old

	Opt[string]{}.ApplyTo(&dst)
	require.NotNil(t, dst)
	assert.Equal(t, "old", *dst)

	Some("new").ApplyTo(&dst)
	assert.Equal(t, "new", *dst)

	Null[string]().ApplyTo(&dst)
	assert.Nil(t, dst)
}

func TestConversationUnreadCounters(t *testing.T) {
	a, b := NormalizePair("u-b", "u-a")
	c := Conversation{UserAID: a, UserBID: b}

	c.IncrementUnread("u-a")
	c.IncrementUnread("u-a")
	assert.Equal(t, 2, c.UnreadFor("u-b"))
	assert.Equal(t, 0, c.UnreadFor("u-a"))

	c.DecrementUnread("u-a")
	assert.Equal(t, 0, c.UnreadA)

	c.ResetUnread("u-b")
	assert.Equal(t, 0, c.UnreadFor("u-b"))
	assert.Equal(t, "u-a", c.Peer("u-b"))
}
