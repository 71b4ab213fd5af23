package mot

import "testing"

func TestDirectoryAlwaysFirst(t *testing.T) {
	dir := &Object{Body: []byte("directory body")}
	a := &Object{TransportID: 1, Priority: 5, Enabled: true, Body: []byte("object a")}
	c := NewCarousel(8)
	c.SetObjects(dir, []*Object{a})

	for i := 0; i < len(dir.packets); i++ {
		pkt := c.NextPacket()
		if pkt == nil {
			t.Fatalf("NextPacket() = nil, want directory packet %d", i)
		}
	}
	// Directory exhausted for this call cycle; subsequent call still
	// returns the directory first since it cycles back to its own start.
	pkt := c.NextPacket()
	if pkt == nil {
		t.Fatal("NextPacket() = nil after directory cycle")
	}
}

func TestWeightedRoundRobinDistribution(t *testing.T) {
	a := &Object{TransportID: 1, Priority: 1, Enabled: true, Body: make([]byte, 8)}
	b := &Object{TransportID: 2, Priority: 3, Enabled: true, Body: make([]byte, 8)}
	c := NewCarousel(8)
	c.SetObjects(nil, []*Object{a, b})

	counts := map[uint16]int{}
	const n = 400
	for i := 0; i < n; i++ {
		obj := c.pickWeighted()
		if obj == nil {
			t.Fatal("pickWeighted() = nil")
		}
		counts[obj.TransportID]++
	}
	ratio := float64(counts[2]) / float64(counts[1])
	if ratio < 2.5 || ratio > 3.5 {
		t.Errorf("priority ratio = %.2f, want close to 3.0 (counts=%v)", ratio, counts)
	}
}

func TestDisabledObjectExcluded(t *testing.T) {
	a := &Object{TransportID: 1, Priority: 5, Enabled: false, Body: make([]byte, 8)}
	b := &Object{TransportID: 2, Priority: 1, Enabled: true, Body: make([]byte, 8)}
	c := NewCarousel(8)
	c.SetObjects(nil, []*Object{a, b})

	for i := 0; i < 20; i++ {
		obj := c.pickWeighted()
		if obj == nil {
			t.Fatal("pickWeighted() = nil")
		}
		if obj.TransportID != 2 {
			t.Fatalf("pickWeighted() returned disabled object %d", obj.TransportID)
		}
	}
}

func TestPacketsPaddedToEightBytes(t *testing.T) {
	o := &Object{Body: make([]byte, 10)}
	o.rebuildPackets(8)
	for i, pkt := range o.packets {
		if len(pkt)%8 != 0 {
			t.Errorf("packet %d length = %d, want multiple of 8", i, len(pkt))
		}
	}
	if len(o.packets) != 2 {
		t.Fatalf("len(packets) = %d, want 2", len(o.packets))
	}
	if len(o.packets[1]) != 8 {
		t.Errorf("last packet length = %d, want 8 (2 bytes padded to 8)", len(o.packets[1]))
	}
}

func TestReloadPendingFlow(t *testing.T) {
	c := NewCarousel(8)
	if c.ReloadPending() {
		t.Fatal("ReloadPending() = true before FlagReload")
	}
	c.FlagReload()
	if !c.ReloadPending() {
		t.Fatal("ReloadPending() = false after FlagReload")
	}
	c.ApplyReload()
	if c.ReloadPending() {
		t.Fatal("ReloadPending() = true after ApplyReload")
	}
}

func TestNextPacketNilWhenEmpty(t *testing.T) {
	c := NewCarousel(8)
	if pkt := c.NextPacket(); pkt != nil {
		t.Errorf("NextPacket() = %v, want nil for empty carousel", pkt)
	}
}
