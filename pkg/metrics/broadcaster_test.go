package metrics

import "testing"

func TestBroadcasterDeliversToSubscriber(t *testing.T) {
	b := NewBroadcaster[int]()
	ch := b.Subscribe("a")
	b.Publish(42)
	select {
	case v := <-ch:
		if v != 42 {
			t.Fatalf("expected 42, got %d", v)
		}
	default:
		t.Fatal("expected a buffered event")
	}
}

func TestBroadcasterSurvivesZeroSubscribers(t *testing.T) {
	b := NewBroadcaster[string]()
	b.Publish("hello") // must not panic or block
}

func TestBroadcasterNeverBlocksOnFullSubscriber(t *testing.T) {
	b := NewBroadcaster[int]()
	b.Subscribe("slow")
	for i := 0; i < subscriberChannelBuffer+10; i++ {
		b.Publish(i) // must not block even once the buffer fills
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster[int]()
	ch := b.Subscribe("a")
	b.Unsubscribe("a")
	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
}
