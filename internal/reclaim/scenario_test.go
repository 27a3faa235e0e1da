package reclaim

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// scenario is the shared payload type used across the end-to-end
// scenarios below, mirroring original_source/DataProtectorTest.cpp's
// Dingsbums: a live flag flipped on destruction so a reader can detect
// use-after-free.
type scenario struct {
	nr    int
	alive atomic.Bool
}

func newScenario(nr int) *scenario {
	s := &scenario{nr: nr}
	s.alive.Store(true)
	return s
}

// TestScenario_SingleReaderTenPublishes drives one reader through ten
// publishes, checking it observes a monotonically non-decreasing sequence
// of nr values with no destroyed-object reads.
func TestScenario_SingleReaderTenPublishes(t *testing.T) {
	g := NewGuardian[scenario](4, func(s *scenario) { s.alive.Store(false) })
	tk := Bind(4)

	last := -1
	done := make(chan struct{})
	var alarms, nullptrs atomic.Int64

	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			p := g.Lease(tk)
			if p == nil {
				nullptrs.Add(1)
			} else {
				if !p.alive.Load() {
					alarms.Add(1)
				}
				if p.nr < last {
					t.Errorf("observed nr go backwards: %d after %d", p.nr, last)
				}
				last = p.nr
			}
			g.Unlease(tk)
			time.Sleep(time.Microsecond)
		}
	}()

	for nr := 0; nr < 10; nr++ {
		g.Publish(newScenario(nr))
		time.Sleep(2 * time.Millisecond)
	}

	<-done
	g.Close()

	if alarms.Load() != 0 {
		t.Fatalf("alarmsSeen = %d, want 0", alarms.Load())
	}
	if nullptrs.Load() == 0 {
		t.Log("reader never observed a nil snapshot; acceptable if it started after the first publish")
	}
}

// TestScenario_ManyReadersOneWriterSCP drives many concurrent readers
// against a single Protector-guarded pointer swapped by one writer.
func TestScenario_ManyReadersOneWriterSCP(t *testing.T) {
	var live atomic.Pointer[scenario]
	live.Store(newScenario(0))

	p := NewProtector(8)
	var alarms, nullptrs atomic.Int64
	stop := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tk := Bind(8)
			for {
				select {
				case <-stop:
					return
				default:
				}
				g := p.Acquire(tk)
				v := live.Load()
				if v == nil {
					nullptrs.Add(1)
				} else if !v.alive.Load() {
					alarms.Add(1)
				}
				g.Release()
			}
		}()
	}

	for nr := 1; nr <= 20; nr++ {
		old := live.Load()
		live.Store(newScenario(nr))
		p.Drain()
		old.alive.Store(false)
	}

	close(stop)
	wg.Wait()

	if alarms.Load() != 0 {
		t.Fatalf("alarmsSeen = %d, want 0", alarms.Load())
	}
	if nullptrs.Load() != 0 {
		t.Fatalf("nullptrsSeen = %d, want 0 after first publish", nullptrs.Load())
	}
}

// TestScenario_ManyReadersOneWriterHSG drives many concurrent readers
// against a single Guardian published by one writer.
func TestScenario_ManyReadersOneWriterHSG(t *testing.T) {
	g := NewGuardian[scenario](8, func(s *scenario) { s.alive.Store(false) })
	var alarms, nullptrs atomic.Int64
	stop := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tk := Bind(8)
			for {
				select {
				case <-stop:
					return
				default:
				}
				p := g.Lease(tk)
				if p == nil {
					nullptrs.Add(1)
				} else if !p.alive.Load() {
					alarms.Add(1)
				}
				g.Unlease(tk)
			}
		}()
	}

	for nr := 1; nr <= 20; nr++ {
		g.Publish(newScenario(nr))
	}

	close(stop)
	wg.Wait()
	g.Close()

	if alarms.Load() != 0 {
		t.Fatalf("alarmsSeen = %d, want 0", alarms.Load())
	}
}

// TestScenario_OversubscribedSlots runs more reader goroutines than slots
// and checks correctness holds even with slot sharing, only contention.
func TestScenario_OversubscribedSlots(t *testing.T) {
	const slots = 4
	const readers = 8

	var live atomic.Pointer[scenario]
	live.Store(newScenario(0))

	p := NewProtector(slots)
	var alarms atomic.Int64
	stop := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tk := Bind(slots)
			for {
				select {
				case <-stop:
					return
				default:
				}
				g := p.Acquire(tk)
				if v := live.Load(); v != nil && !v.alive.Load() {
					alarms.Add(1)
				}
				g.Release()
			}
		}()
	}

	for nr := 1; nr <= 10; nr++ {
		old := live.Load()
		live.Store(newScenario(nr))
		p.Drain()
		old.alive.Store(false)
	}

	close(stop)
	wg.Wait()

	if alarms.Load() != 0 {
		t.Fatalf("alarmsSeen = %d, want 0 even with slot sharing", alarms.Load())
	}
}

// TestScenario_PublishNullThenDestroy checks that after nil is published
// as the final action, a reader's lease observes nil and Close completes
// without crashing.
func TestScenario_PublishNullThenDestroy(t *testing.T) {
	g := NewGuardian[scenario](4, func(s *scenario) { s.alive.Store(false) })
	tk := Bind(4)

	g.Publish(newScenario(1))
	g.Publish(nil)

	if p := g.Lease(tk); p != nil {
		t.Fatalf("expected nil snapshot after publishing nil, got %v", p)
	}
	g.Unlease(tk)
	g.Close()
}
