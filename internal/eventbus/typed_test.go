package eventbus

import "testing"

type stepEvent struct {
	Step  int
	Asset string
}

func TestTypedBus_FanOutInOrder(t *testing.T) {
	bus := NewTyped[stepEvent]()
	a, b := bus.Subscribe(), bus.Subscribe()
	for i := 0; i < 3; i++ {
		bus.Publish(stepEvent{Step: i, Asset: "bat"})
	}
	for name, ch := range map[string]<-chan stepEvent{"a": a, "b": b} {
		for i := 0; i < 3; i++ {
			if ev := <-ch; ev.Step != i {
				t.Fatalf("subscriber %s: expected step %d got %+v", name, i, ev)
			}
		}
	}
	bus.Unsubscribe(a)
	if _, ok := <-a; ok {
		t.Fatalf("unsubscribed channel must be closed")
	}
	bus.Publish(stepEvent{Step: 3})
	if ev := <-b; ev.Step != 3 {
		t.Fatalf("remaining subscriber missed step 3: %+v", ev)
	}
}

func TestTypedBus_CountsDropsWhenFull(t *testing.T) {
	bus := NewTypedWithBuffer[int](2)
	ch := bus.Subscribe()
	for i := 0; i < 5; i++ {
		bus.Publish(i)
	}
	if got := bus.Dropped(); got != 3 {
		t.Fatalf("expected 3 dropped deliveries got %d", got)
	}
	if v := <-ch; v != 0 {
		t.Fatalf("expected the oldest buffered event first, got %d", v)
	}
}

func TestTypedBus_CloseKeepsBufferedEvents(t *testing.T) {
	bus := NewTyped[int]()
	ch := bus.Subscribe()
	bus.Publish(7)
	bus.Close()
	bus.Close()
	bus.Publish(8)

	if v, ok := <-ch; !ok || v != 7 {
		t.Fatalf("expected buffered 7 before close, got %d/%v", v, ok)
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after the buffer drained")
	}
	if bus.Dropped() != 0 {
		t.Fatalf("publish after close must not count as a drop")
	}
	if _, ok := <-bus.Subscribe(); ok {
		t.Fatalf("subscribing to a closed bus must return a closed channel")
	}
	bus.Unsubscribe(ch)
}
