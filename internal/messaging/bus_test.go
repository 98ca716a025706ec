package messaging

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-notes-sync/internal/logger"
	"github.com/MKhiriev/go-notes-sync/models"
)

func TestBus_FanOut(t *testing.T) {
	bus := NewBus(logger.Nop())
	a, unsubA := bus.Subscribe(1)
	b, unsubB := bus.Subscribe(1)
	defer unsubA()
	defer unsubB()

	require.NoError(t, bus.Notify(models.EventFileDownloaded, models.FileDownloadedEvent{ItemID: "n1"}))

	for _, ch := range []<-chan Message{a, b} {
		msg := <-ch
		assert.Equal(t, models.EventFileDownloaded, msg.Event)
		assert.False(t, msg.Timestamp.IsZero())

		var ev models.FileDownloadedEvent
		require.NoError(t, json.Unmarshal(msg.Data, &ev))
		assert.Equal(t, "n1", ev.ItemID)
	}
}

func TestBus_DropsWhenBufferFull(t *testing.T) {
	bus := NewBus(logger.Nop())
	ch, unsub := bus.Subscribe(1)
	defer unsub()

	require.NoError(t, bus.Notify("first", nil))
	require.NoError(t, bus.Notify("second", nil))

	msg := <-ch
	assert.Equal(t, "first", msg.Event)
	assert.Nil(t, msg.Data)
	assert.Len(t, ch, 0)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(logger.Nop())
	ch, unsub := bus.Subscribe(1)

	unsub()
	unsub()

	_, open := <-ch
	assert.False(t, open)
	require.NoError(t, bus.Notify("after", nil))
}

func TestBus_Close(t *testing.T) {
	bus := NewBus(logger.Nop())
	ch, unsub := bus.Subscribe(1)

	bus.Close()
	unsub()

	_, open := <-ch
	assert.False(t, open)
	assert.ErrorIs(t, bus.Notify("late", nil), ErrBusClosed)

	late, _ := bus.Subscribe(1)
	_, open = <-late
	assert.False(t, open)
}

func TestBus_UnmarshalablePayload(t *testing.T) {
	bus := NewBus(logger.Nop())
	err := bus.Notify("bad", map[string]any{"ch": make(chan int)})
	require.Error(t, err)
}
