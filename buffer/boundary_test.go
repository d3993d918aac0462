package buffer

import (
	"testing"
	"time"
)

// A message is admitted only when available space strictly exceeds its size.
func TestSendEqualToAvailableBlocks(t *testing.T) {
	t.Parallel()
	b := MustNew(10)
	if err := b.Send("abc"); err != nil { // 4 bytes, 6 left
		t.Fatalf("send: %v", err)
	}
	if got := b.Avail(); got != 6 {
		t.Fatalf("expected 6 bytes available, got %d", got)
	}

	admitted := make(chan error, 1)
	go func() { admitted <- b.Send("hello") }() // 6 bytes

	select {
	case err := <-admitted:
		t.Fatalf("send of exactly the available size was admitted (err=%v)", err)
	case <-time.After(50 * time.Millisecond):
	}

	if msg, _, err := b.Receive(); err != nil || msg != "abc" {
		t.Fatalf("receive: (%q, %v)", msg, err)
	}
	select {
	case err := <-admitted:
		if err != nil {
			t.Fatalf("send after space freed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("sender not woken once space exceeded its size")
	}
	if got := b.Used(); got != 6 {
		t.Fatalf("expected 6 bytes used, got %d", got)
	}
	_ = b.Close()
}

func TestSendOneByteUnderAvailableAdmitted(t *testing.T) {
	t.Parallel()
	b := MustNew(10)
	_ = b.Send("abc")
	done := make(chan error, 1)
	go func() { done <- b.Send("hell") }() // 5 bytes, 6 available
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("send: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("send smaller than available space blocked")
	}
	if got := b.Avail(); got != 1 {
		t.Fatalf("expected 1 byte available, got %d", got)
	}
	_ = b.Close()
}
