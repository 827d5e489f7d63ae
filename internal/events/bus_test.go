package events

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan StreamStartedEvent, 1)

	unsub := bus.Subscribe(func(e StreamStartedEvent) {
		received <- e
	})
	defer unsub()

	bus.Publish(StreamStartedEvent{SessionID: "s1", Device: "/dev/video0", Width: 1920, Height: 1080, FPS: 60})

	select {
	case got := <-received:
		if got.SessionID != "s1" || got.Width != 1920 {
			t.Errorf("got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan ControlChangedEvent, 1)

	unsub := bus.Subscribe(func(e ControlChangedEvent) {
		received <- e
	})

	bus.Publish(ControlChangedEvent{Property: "zoom", Value: 120})
	<-received

	unsub()

	bus.Publish(ControlChangedEvent{Property: "zoom", Value: 130})
	select {
	case <-received:
		t.Fatal("received event after unsubscribe")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()

	started := make(chan bool, 1)
	stopped := make(chan bool, 1)

	defer bus.Subscribe(func(StreamStartedEvent) { started <- true })()
	defer bus.Subscribe(func(StreamStoppedEvent) { stopped <- true })()

	bus.Publish(StreamStoppedEvent{SessionID: "s1", Reason: "stopped"})
	<-stopped

	select {
	case <-started:
		t.Fatal("started subscriber received a stop event")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBus_UnknownHandlerType(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(string) {})
	unsub()
}

func TestBus_NilPublishIsNoop(t *testing.T) {
	var bus *Bus
	bus.Publish(PresetSavedEvent{ID: "A"})
}

func TestEventJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(ControlChangedEvent{Property: "pan", Value: -3600, Timestamp: "t"})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"prop":"pan","val":-3600,"timestamp":"t"}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

func TestEventTypesAreDistinct(t *testing.T) {
	all := []Event{
		StreamStartedEvent{}, StreamStoppedEvent{}, ControlChangedEvent{},
		PresetSavedEvent{}, PresetsReloadedEvent{}, DeviceChangedEvent{}, LogEntryEvent{}, StreamMetricsEvent{},
	}
	seen := make(map[uint32]bool)
	for _, e := range all {
		if seen[e.Type()] {
			t.Errorf("duplicate type id %d for %T", e.Type(), e)
		}
		seen[e.Type()] = true
	}
}

func TestFeed_MergesTypes(t *testing.T) {
	bus := New()
	feed := NewFeed(10)
	defer feed.Close()

	Forward[PresetSavedEvent](bus, feed)
	Forward[DeviceChangedEvent](bus, feed)

	bus.Publish(PresetSavedEvent{ID: "B", Zoom: 150})
	bus.Publish(DeviceChangedEvent{Action: "remove"})

	var saved, changed int
	for range 2 {
		select {
		case received := <-feed.C:
			switch ev := received.(type) {
			case PresetSavedEvent:
				if ev.ID != "B" || ev.Zoom != 150 {
					t.Errorf("got %+v", ev)
				}
				saved++
			case DeviceChangedEvent:
				changed++
			default:
				t.Errorf("unexpected %T", received)
			}
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for event")
		}
	}
	if saved != 1 || changed != 1 {
		t.Errorf("saved=%d changed=%d, want 1 each", saved, changed)
	}
}

func TestFeed_DropsWhenFull(t *testing.T) {
	bus := New()
	feed := NewFeed(1)
	defer feed.Close()
	Forward[DeviceChangedEvent](bus, feed)

	done := make(chan struct{})
	go func() {
		for range 3 {
			bus.Publish(DeviceChangedEvent{Action: "add"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full feed")
	}

	deadline := time.Now().Add(time.Second)
	for feed.Dropped() != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("Dropped = %d, want 2", feed.Dropped())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFeed_CloseUnsubscribes(t *testing.T) {
	bus := New()
	feed := NewFeed(4)
	Forward[ControlChangedEvent](bus, feed)
	feed.Close()

	bus.Publish(ControlChangedEvent{Property: "zoom", Value: 120})
	select {
	case ev := <-feed.C:
		t.Fatalf("received %+v after Close", ev)
	case <-time.After(20 * time.Millisecond):
	}

	// Forwarding to a closed feed or from a nil bus is ignored.
	Forward[ControlChangedEvent](bus, feed)
	Forward[ControlChangedEvent](nil, NewFeed(1))
}
