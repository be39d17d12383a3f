package syncstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe_DeliversInitialValueAndChanges(t *testing.T) {
	p := NewPublisher(false)

	initial, ch, unsubscribe := p.Subscribe()
	defer unsubscribe()
	assert.False(t, initial)

	p.Publish(true)
	assert.True(t, <-ch)

	p.Publish(false)
	assert.False(t, <-ch)
}

func TestPublish_CoalescesWhenSubscriberLags(t *testing.T) {
	p := NewPublisher(false)

	_, ch, unsubscribe := p.Subscribe()
	defer unsubscribe()

	// Subscriber consumes nothing in between: only the latest value is kept.
	p.Publish(true)
	p.Publish(false)
	p.Publish(true)

	assert.True(t, <-ch)
	select {
	case v := <-ch:
		t.Fatalf("unexpected extra value %v", v)
	default:
	}
}

func TestUnsubscribe_DetachesOnlyOneSubscriber(t *testing.T) {
	p := NewPublisher(true)

	_, ch1, unsub1 := p.Subscribe()
	_, ch2, unsub2 := p.Subscribe()
	defer unsub2()

	unsub1()
	unsub1() // double detach is harmless

	p.Publish(false)

	assert.False(t, <-ch2)

	_, open := <-ch1
	require.False(t, open, "detached channel should be closed")

	assert.False(t, p.Current())
}
