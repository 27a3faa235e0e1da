package reclaim

import "testing"

func TestTicketPoolGetPutReusesValidSlots(t *testing.T) {
	tp := NewTicketPool(8)

	tk := tp.Get()
	if tk.Slot() < 0 || tk.Slot() >= 8 {
		t.Fatalf("ticket slot %d out of range [0,8)", tk.Slot())
	}
	tp.Put(tk)

	tk2 := tp.Get()
	if tk2.Slot() < 0 || tk2.Slot() >= 8 {
		t.Fatalf("ticket slot %d out of range [0,8)", tk2.Slot())
	}
}

func TestTicketPoolUsableWithGuardian(t *testing.T) {
	tp := NewTicketPool(4)
	g := NewGuardian[int](4, nil)

	v := 42
	g.Publish(&v)

	tk := tp.Get()
	defer tp.Put(tk)

	if got := g.Lease(tk); got == nil || *got != 42 {
		t.Fatalf("expected leased value 42, got %v", got)
	}
	g.Unlease(tk)
}
