package packetfactory

import "testing"

func TestCreateDestroyTracksLiveCount(t *testing.T) {
	f := New(2)
	p1, err := f.Create(KindSnapshot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.LiveCount() != 1 {
		t.Fatalf("expected live count 1, got %d", f.LiveCount())
	}

	p2, err := f.Create(KindAck)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.LiveCount() != 2 {
		t.Fatalf("expected live count 2, got %d", f.LiveCount())
	}

	if _, err := f.Create(KindSnapshot); err != ErrExhausted {
		t.Fatalf("expected ErrExhausted at MaxPackets, got %v", err)
	}

	f.Destroy(p1)
	if f.LiveCount() != 1 {
		t.Fatalf("expected live count 1 after destroy, got %d", f.LiveCount())
	}
	f.Destroy(p2)
	if f.LiveCount() != 0 {
		t.Fatalf("expected live count 0 after destroy, got %d", f.LiveCount())
	}
}

func TestDestroyPanicsOnUnderflow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on Destroy with no live packets")
		}
	}()
	f := New(1)
	f.Destroy(&Packet{})
}
