package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel(t *testing.T) {
	assert.Equal(t, "hms.events.appointment.booked", Channel("appointment.booked"))
}

func TestInProcessBrokerDelivers(t *testing.T) {
	b := NewInProcessBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := b.Subscribe(ctx, "c")
	require.NoError(t, err)
	require.NoError(t, b.Publish(ctx, "c", []byte(`{"a":1}`)))
	require.NoError(t, b.Publish(ctx, "other", []byte(`ignored`)))

	select {
	case msg := <-msgs:
		assert.JSONEq(t, `{"a":1}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestInProcessBrokerClosed(t *testing.T) {
	b := NewInProcessBroker()
	require.NoError(t, b.Close())
	assert.ErrorIs(t, b.Publish(context.Background(), "c", nil), ErrBrokerClosed)

	_, err := b.Subscribe(context.Background(), "c")
	assert.ErrorIs(t, err, ErrBrokerClosed)
}
