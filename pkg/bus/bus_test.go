package bus_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adamnew123456/jobmon/pkg/bus"
)

func TestPublishDeliversInOrderToMatchingSubscriber(t *testing.T) {
	b := bus.New(0)
	sub := b.Subscribe("web")
	defer b.Unsubscribe(sub)

	b.Publish(bus.Record{Job: "web", Status: "RUNNING"})
	b.Publish(bus.Record{Job: "worker", Status: "RUNNING"})
	b.Publish(bus.Record{Job: "web", Status: "STOPPED"})

	ctx := context.Background()

	rec, err := sub.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, "RUNNING", rec.Status)

	rec, err = sub.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, "STOPPED", rec.Status)
}

func TestUnfilteredSubscriberSeesEveryJob(t *testing.T) {
	b := bus.New(0)
	sub := b.Subscribe("")
	defer b.Unsubscribe(sub)

	b.Publish(bus.Record{Job: "a", Status: "RUNNING"})
	b.Publish(bus.Record{Job: "b", Status: "RUNNING"})

	ctx := context.Background()
	first, err := sub.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", first.Job)

	second, err := sub.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, "b", second.Job)
}

func TestUnsubscribeIsIdempotentAndStopsDelivery(t *testing.T) {
	b := bus.New(0)
	sub := b.Subscribe("")

	b.Unsubscribe(sub)
	b.Unsubscribe(sub)

	b.Publish(bus.Record{Job: "a", Status: "RUNNING"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := sub.Recv(ctx)
	require.Error(t, err)
}

func TestSlowSubscriberIsDisconnectedAndOthersUnaffected(t *testing.T) {
	b := bus.New(4)

	slow := b.Subscribe("")
	fast := b.Subscribe("")
	defer b.Unsubscribe(fast)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// fast drains its own queue after every publish, so it never
	// accumulates a backlog; slow never reads at all, so its queue
	// grows without bound and eventually crosses the watermark.
	for i := 0; i < 10; i++ {
		b.Publish(bus.Record{Job: "a", Status: "RUNNING"})
		_, err := fast.Recv(ctx)
		require.NoError(t, err)
	}

	_, err := slow.Recv(ctx)
	require.ErrorIs(t, err, bus.ErrSlowSubscriber)
}

func TestRecvRespectsContextCancellation(t *testing.T) {
	b := bus.New(0)
	sub := b.Subscribe("")
	defer b.Unsubscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sub.Recv(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
