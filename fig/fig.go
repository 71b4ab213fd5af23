/*
DESCRIPTION
  fig.go defines the shared FIG encoder contract (§4.3): fill/repetition
  rate/priority/type+extension, implemented by one Go type per FIG variant
  in this package.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package fig implements the Fast Information Group encoders, the
// carousel that schedules them by repetition rate and priority, and the
// FIC encoder that packs scheduled FIGs into FIBs.
package fig

// RateClass is a FIG's declared repetition rate.
type RateClass int

const (
	RateEveryFrame RateClass = iota
	RateA
	RateB
	RateAB // dynamic: behaves as A while "hot", B otherwise.
	RateC
)

// Priority is a FIG's scheduling priority during the carousel's initial
// boost phase.
type Priority int

const (
	Critical Priority = iota
	High
	Normal
)

// PeriodMS returns the nominal re-transmission period for a rate class.
// RateAB's period reflects its "hot" state; callers with a dynamic
// encoder should consult the encoder, not this table, when the encoder
// knows it is momentarily idle or hot.
func PeriodMS(r RateClass) int {
	switch r {
	case RateEveryFrame:
		return 96
	case RateA:
		return 100
	case RateB:
		return 1000
	case RateAB:
		return 500
	case RateC:
		return 10000
	default:
		return 1000
	}
}

// Encoder is the capability set every FIG implementation provides.
// Iteration/resume state lives inside each implementation; Fill is called
// repeatedly across ticks and must pick up where it left off.
type Encoder interface {
	// Fill appends one contiguous FIG (2-byte header + payload) to buf,
	// provided budget bytes remain in the current FIB, and returns the
	// number of bytes written and whether this encoder's current content
	// is now fully transmitted (no more to emit until something changes).
	Fill(buf []byte, budget int) (written int, complete bool)
	Rate() RateClass
	Priority() Priority
	Type() byte
	Extension() byte
}

// header packs a FIG type/length byte and an extension/flags byte as
// shared by every FIG 0/x, FIG 1/x, FIG 2/x and FIG 6/x variant. Callers
// pass length as the number of bytes after the two header bytes; byte0 =
// type<<5 | (length+1)&0x1F, so the field counts every byte following
// byte0. byte1 = flags<<5 | extension&0x1F for FIG 0, or a narrower layout
// for FIG 1/2/6 callers that pack byte1 themselves.
func header(figType byte, length byte) byte {
	return figType<<5 | (length+1)&0x1F
}
