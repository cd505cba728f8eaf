package events_test

import (
	"testing"

	"github.com/ardanlabs/btcgateway/foundation/events"
)

func Test_AcquireSendRelease(t *testing.T) {
	evts := events.New()

	ch1 := evts.Acquire("one")
	ch2 := evts.Acquire("two")

	if evts.Count() != 2 {
		t.Fatalf("Should have 2 subscribers, got %d", evts.Count())
	}

	evts.Send("tip")

	for i, ch := range []chan string{ch1, ch2} {
		if got := <-ch; got != "tip" {
			t.Logf("got: %s", got)
			t.Logf("exp: %s", "tip")
			t.Fatalf("Should receive the message on channel %d.", i)
		}
	}

	if err := evts.Release("one"); err != nil {
		t.Fatalf("Should be able to release a subscriber: %s", err)
	}

	if err := evts.Release("one"); err == nil {
		t.Fatalf("Should not be able to release a subscriber twice.")
	}

	if _, open := <-ch1; open {
		t.Fatalf("Should close the channel on release.")
	}

	evts.Shutdown()

	if evts.Count() != 0 {
		t.Fatalf("Should have no subscribers after shutdown, got %d", evts.Count())
	}

	if _, open := <-ch2; open {
		t.Fatalf("Should close the channel on shutdown.")
	}
}
