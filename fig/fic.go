/*
DESCRIPTION
  fic.go packs a Carousel's FIB output into the 96-byte Fast Information
  Channel for transmission Mode I.

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

import "github.com/ausocean/dabmux/internal/crc"

// FIBSize is a full FIB: 30 payload bytes + 2 CRC bytes.
const FIBSize = 30 + 2

// FICSizeModeI is the FIC size for transmission Mode I: 3 FIBs.
const FICSizeModeI = 3 * FIBSize

// FICEncoder assembles a Carousel's scheduled output into the FIC.
type FICEncoder struct {
	Carousel *Carousel
}

// NewFICEncoder builds a FIC encoder over carousel.
func NewFICEncoder(carousel *Carousel) *FICEncoder {
	return &FICEncoder{Carousel: carousel}
}

// EncodeFIC builds the 96-byte Mode I FIC for the given frame, driving
// the carousel with nowMS as the scheduling clock.
func (f *FICEncoder) EncodeFIC(nowMS int64) []byte {
	out := make([]byte, 0, FICSizeModeI)
	for i := 0; i < 3; i++ {
		fib := make([]byte, FIBPayloadSize)
		f.Carousel.FillFIB(fib, nowMS)
		out = append(out, fib...)
		fibCRC := crc.Stored16(fib)
		out = append(out, byte(fibCRC>>8), byte(fibCRC))
	}
	return out
}
