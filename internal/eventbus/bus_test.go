package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New[string](0)
	ch := bus.Subscribe()
	bus.Publish("hello")
	v := <-ch
	if v != "hello" {
		t.Fatalf("expected hello got %v", v)
	}
	bus.Unsubscribe(ch)
}

func TestBusClose(t *testing.T) {
	bus := New[int](1)
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Publish(7)
	bus.Close()
	if v, ok := <-ch1; !ok || v != 7 {
		t.Fatalf("expected buffered 7 before close, got %v %v", v, ok)
	}
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	<-ch2
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
	bus.Publish(8)
}

func TestBusUnsubscribeAfterClose(t *testing.T) {
	bus := New[float64](0)
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := New[int](1)
	ch := bus.Subscribe()
	bus.Publish(1)
	bus.Publish(2)
	if bus.Dropped() != 1 {
		t.Fatalf("expected 1 dropped, got %d", bus.Dropped())
	}
	if v := <-ch; v != 1 {
		t.Fatalf("expected first event, got %d", v)
	}
}

func TestBusPublishWait(t *testing.T) {
	bus := New[int](1)
	ch := bus.Subscribe()
	if err := bus.PublishWait(context.Background(), 1); err != nil {
		t.Fatalf("publish: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := bus.PublishWait(ctx, 2); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	<-ch
	if err := bus.PublishWait(context.Background(), 3); err != nil {
		t.Fatalf("publish after drain: %v", err)
	}
	if v := <-ch; v != 3 {
		t.Fatalf("expected 3, got %d", v)
	}
}
