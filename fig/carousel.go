/*
DESCRIPTION
  carousel.go schedules a list of FIG encoders into 30-byte FIBs by
  repetition rate, with a 5-second priority-sorted boost phase at startup.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package fig

import "sort"

// FIBPayloadSize is the FIB payload budget the carousel fills before the
// caller appends the 2-byte CRC.
const FIBPayloadSize = 30

// initialPhaseDurationMS is the priority-sorted boost window at startup.
const initialPhaseDurationMS = 5000

// entry tracks one registered encoder's last-emitted time.
type entry struct {
	enc          Encoder
	lastEmitted  int64 // ms; -1 if never emitted.
}

// Carousel schedules a fixed list of FIG encoders into successive FIBs.
type Carousel struct {
	entries     []*entry
	startTimeMS int64
	started     bool
}

// NewCarousel builds a carousel over encs, in the order given; that order
// is also the post-boost insertion order.
func NewCarousel(encs []Encoder) *Carousel {
	c := &Carousel{}
	for _, e := range encs {
		c.entries = append(c.entries, &entry{enc: e, lastEmitted: -1})
	}
	return c
}

// Start records nowMS as the beginning of the initial priority-boost
// phase. Callers should call it once before the first FillFIB.
func (c *Carousel) Start(nowMS int64) {
	c.startTimeMS = nowMS
	c.started = true
}

func (c *Carousel) inBoostPhase(nowMS int64) bool {
	return c.started && nowMS-c.startTimeMS < initialPhaseDurationMS
}

// FillFIB fills exactly FIBPayloadSize bytes of buf (which must have that
// length) by iterating the registered encoders in registration order
// (sorted by priority only during the initial boost phase), skipping any
// whose rate period has not elapsed, and pads the remainder with 0xFF.
func (c *Carousel) FillFIB(buf []byte, nowMS int64) {
	if len(buf) != FIBPayloadSize {
		panic("fig: FillFIB requires a 30-byte buffer")
	}
	order := c.entries
	if c.inBoostPhase(nowMS) {
		order = append([]*entry(nil), c.entries...)
		sort.SliceStable(order, func(i, j int) bool {
			return order[i].enc.Priority() < order[j].enc.Priority()
		})
	}

	pos := 0
	for _, e := range order {
		if e.lastEmitted >= 0 && nowMS-e.lastEmitted < int64(PeriodMS(e.enc.Rate())) {
			continue
		}
		remaining := FIBPayloadSize - pos
		if remaining < 2 {
			break
		}
		scratch := make([]byte, remaining)
		n, _ := e.enc.Fill(scratch, remaining)
		if n <= 0 {
			continue
		}
		copy(buf[pos:], scratch[:n])
		pos += n
		e.lastEmitted = nowMS
	}

	for ; pos < FIBPayloadSize; pos++ {
		buf[pos] = 0xFF
	}
}
