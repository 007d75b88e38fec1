package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 9, 30, 15, 0, time.UTC)
}

func TestStore_Append(t *testing.T) {
	store := NewStore("", WithClock(fixedClock))

	t.Run("Appending text adds one self message with the text untouched", func(t *testing.T) {
		message := store.Append("hello  world")
		require.Equal(t, 1, store.Len())
		assert.Equal(t, "hello  world", message.Text)
		assert.True(t, message.Self)
		assert.Equal(t, DefaultAuthor, message.Author)
		assert.Equal(t, "09:30:15", message.Timestamp)
		assert.NotEmpty(t, message.ID)
	})

	t.Run("Messages keep insertion order and unique ids", func(t *testing.T) {
		store.Append("second")
		store.Append("third")
		messages := store.Messages()
		require.Len(t, messages, 3)
		assert.Equal(t, "second", messages[1].Text)
		assert.Equal(t, "third", messages[2].Text)

		seen := map[string]bool{}
		for _, m := range messages {
			assert.False(t, seen[m.ID], "duplicate id %s", m.ID)
			seen[m.ID] = true
		}
	})

	t.Run("Messages returns a copy", func(t *testing.T) {
		messages := store.Messages()
		messages[0] = nil
		assert.NotNil(t, store.Messages()[0])
	})
}

func TestStore_Subscribe(t *testing.T) {
	store := NewStore("tester")
	var lengths []int
	unsubscribe := store.Subscribe(func(messages []*Message) {
		lengths = append(lengths, len(messages))
	})

	store.Append("one")
	store.AppendMessage(NewMessage("Genie", "hi", time.Now(), false))
	assert.Equal(t, []int{1, 2}, lengths)

	unsubscribe()
	store.Append("three")
	assert.Equal(t, []int{1, 2}, lengths)
	assert.Equal(t, "tester", store.Messages()[0].Author)
	assert.False(t, store.Messages()[1].Self)
}
