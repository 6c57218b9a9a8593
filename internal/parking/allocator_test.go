package parking

import "testing"

func TestAllocatorYieldsSmallestSlot(t *testing.T) {
	a := NewSlotAllocator(5)

	for want := SlotID(1); want <= 5; want++ {
		got, ok := a.Acquire()
		if !ok {
			t.Fatalf("Expected a free slot, got none")
		}
		if got != want {
			t.Errorf("Expected slot %d, got %d", want, got)
		}
	}

	if _, ok := a.Acquire(); ok {
		t.Error("Expected exhaustion after acquiring all slots")
	}
}

func TestAllocatorPrefersFreedLowSlot(t *testing.T) {
	a := NewSlotAllocator(5)
	for i := 0; i < 5; i++ {
		a.Acquire()
	}

	a.Release(4)
	a.Release(2)

	got, _ := a.Acquire()
	if got != 2 {
		t.Errorf("Expected freed slot 2, got %d", got)
	}
	got, _ = a.Acquire()
	if got != 4 {
		t.Errorf("Expected freed slot 4, got %d", got)
	}
}

func TestAllocatorIgnoresDoubleRelease(t *testing.T) {
	a := NewSlotAllocator(3)
	s, _ := a.Acquire()

	a.Release(s)
	a.Release(s)

	if a.FreeCount() != 3 {
		t.Errorf("Expected 3 free slots after double release, got %d", a.FreeCount())
	}
}

func TestAllocatorIgnoresOutOfRangeRelease(t *testing.T) {
	a := NewSlotAllocator(3)

	a.Release(0)
	a.Release(4)

	if a.FreeCount() != 3 {
		t.Errorf("Expected 3 free slots, got %d", a.FreeCount())
	}
}

func TestAllocatorReset(t *testing.T) {
	a := NewSlotAllocator(4)
	a.Acquire()
	a.Acquire()

	a.Reset()

	if a.FreeCount() != 4 {
		t.Errorf("Expected all 4 slots free after reset, got %d", a.FreeCount())
	}
	got, _ := a.Acquire()
	if got != 1 {
		t.Errorf("Expected slot 1 after reset, got %d", got)
	}
}
