/*
DESCRIPTION
  mot.go implements the MOT (Multimedia Object Transfer) packet-mode
  carousel for Packet sub-channels: a per-component object table with
  priority-weighted round robin, a mandatory directory object, and an
  optional directory-watcher hook.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mot implements the packet-mode MOT object carousel.
package mot

// DirectoryTransportID is the transport id always reserved for the
// carousel's directory object.
const DirectoryTransportID = 0

// defaultPacketPayload is the MSC packet payload size NewCarousel uses
// when given a zero packetSize (packet mode's standard 96-byte packets,
// simplified to a flat payload size).
const defaultPacketPayload = 96

// Object is one carousel member: the directory (transport id 0, always
// present) or a content object.
type Object struct {
	TransportID uint16
	Priority    int // 0-9; higher transmits more often.
	Enabled     bool
	Body        []byte

	packets [][]byte
	dirPos  int // resume position within packets, advanced by the carousel.
}

// rebuildPackets slices Body into MSC packets of packetSize bytes, each
// padded to an 8-byte boundary.
func (o *Object) rebuildPackets(packetSize int) {
	o.packets = nil
	for i := 0; i < len(o.Body); i += packetSize {
		end := i + packetSize
		if end > len(o.Body) {
			end = len(o.Body)
		}
		chunk := o.Body[i:end]
		padded := make([]byte, (len(chunk)+7)/8*8)
		copy(padded, chunk)
		o.packets = append(o.packets, padded)
	}
}

// Carousel schedules Object bodies into per-tick MSC packets by a
// priority-weighted round robin: over many ticks, object i with priority
// p_i receives a share approximately p_i / sum(p_j).
type Carousel struct {
	packetSize    int
	objects       []*Object
	cursor        int
	reloadPending bool
}

// NewCarousel returns a carousel whose MSC packets are packetSize bytes
// before 8-byte padding. A zero packetSize uses the conventional 96-byte
// packet-mode payload.
func NewCarousel(packetSize int) *Carousel {
	if packetSize <= 0 {
		packetSize = defaultPacketPayload
	}
	return &Carousel{packetSize: packetSize}
}

// SetObjects replaces the carousel's object table. A directory object
// (transport id 0) is synthesised if dir is non-nil; it is always
// scheduled first, at the highest priority in use.
func (c *Carousel) SetObjects(dir *Object, objects []*Object) {
	c.objects = nil
	if dir != nil {
		dir.TransportID = DirectoryTransportID
		c.objects = append(c.objects, dir)
	}
	c.objects = append(c.objects, objects...)
	for _, o := range c.objects {
		o.rebuildPackets(c.packetSize)
	}
	c.cursor = 0
}

// NextPacket returns the next MSC packet to transmit, padded to an
// 8-byte boundary, or nil if the carousel has nothing to send. The
// directory object (if present) is always returned first; thereafter
// objects are visited in a priority-weighted round robin.
func (c *Carousel) NextPacket() []byte {
	if len(c.objects) == 0 {
		return nil
	}
	if dir := c.directory(); dir != nil && len(dir.packets) > 0 {
		pkt := dir.packets[c.dirCursor()]
		c.advanceDir(dir)
		return pkt
	}
	obj := c.pickWeighted()
	if obj == nil || len(obj.packets) == 0 {
		return nil
	}
	pkt := obj.packets[c.objCursor(obj)]
	c.advanceObj(obj)
	return pkt
}

func (c *Carousel) directory() *Object {
	if len(c.objects) > 0 && c.objects[0].TransportID == DirectoryTransportID {
		return c.objects[0]
	}
	return nil
}

// dirCursor/advanceDir/objCursor/advanceObj track per-object resume
// positions on the object itself, so content objects resume round-robin
// independently of the directory's own cycling.

func (c *Carousel) dirCursor() int {
	dir := c.directory()
	if dir.dirPos >= len(dir.packets) {
		dir.dirPos = 0
	}
	return dir.dirPos
}

func (c *Carousel) advanceDir(dir *Object) {
	dir.dirPos++
	if dir.dirPos >= len(dir.packets) {
		dir.dirPos = 0
	}
}

func (c *Carousel) objCursor(o *Object) int {
	if o.dirPos >= len(o.packets) {
		o.dirPos = 0
	}
	return o.dirPos
}

func (c *Carousel) advanceObj(o *Object) {
	o.dirPos++
	if o.dirPos >= len(o.packets) {
		o.dirPos = 0
	}
}

// pickWeighted selects the next content object by priority-weighted
// round robin using a monotonically increasing ticket counter.
func (c *Carousel) pickWeighted() *Object {
	total := 0
	for _, o := range c.objects {
		if o.Enabled && o.TransportID != DirectoryTransportID {
			total += o.Priority
		}
	}
	if total == 0 {
		return nil
	}
	ticket := c.cursor % total
	c.cursor++
	acc := 0
	for _, o := range c.objects {
		if !o.Enabled || o.TransportID == DirectoryTransportID {
			continue
		}
		acc += o.Priority
		if ticket < acc {
			return o
		}
	}
	return nil
}

// ObjectCount returns the number of objects currently scheduled,
// including the directory object if present, for the remote-control
// get_carousel_stats command.
func (c *Carousel) ObjectCount() int { return len(c.objects) }

// ReloadPending reports whether the directory watcher has flagged
// changed objects since the last ApplyReload.
func (c *Carousel) ReloadPending() bool { return c.reloadPending }

// FlagReload marks the carousel as needing a reload; the multiplexer
// core loop observes it between ticks and calls ApplyReload.
func (c *Carousel) FlagReload() { c.reloadPending = true }

// ApplyReload clears the reload-pending flag after the caller has
// re-applied SetObjects with refreshed bodies.
func (c *Carousel) ApplyReload() { c.reloadPending = false }
