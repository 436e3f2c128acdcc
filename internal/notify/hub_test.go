package notify

import (
	"reflect"
	"testing"
)

func TestHubPublishOrder(t *testing.T) {
	var h Hub[int]
	var got []string

	h.Subscribe(func(v int) { got = append(got, "a") })
	h.Subscribe(func(v int) { got = append(got, "b") })

	h.Publish(1)

	if want := []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("delivery order = %v, want %v", got, want)
	}
}

func TestHubUnsubscribe(t *testing.T) {
	var h Hub[string]
	calls := 0

	unsub := h.Subscribe(func(string) { calls++ })
	h.Publish("first")
	unsub()
	unsub()
	h.Publish("second")

	if calls != 1 {
		t.Errorf("observer called %d times, want 1", calls)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d after unsubscribe, want 0", h.Len())
	}
}

func TestHubObserverMayUnsubscribeItself(t *testing.T) {
	var h Hub[int]
	calls := 0

	var unsub func()
	unsub = h.Subscribe(func(int) {
		calls++
		unsub()
	})

	h.Publish(1)
	h.Publish(2)

	if calls != 1 {
		t.Errorf("observer called %d times, want 1", calls)
	}
}
