/*
DESCRIPTION
  crc.go provides the CRC primitives used throughout the ETI, FIC and EDI
  codecs: CRC-16 CCITT (as required by ETSI EN 300 799 / TS 102 693), and
  the smaller CRC-8 used by a handful of EDI header variants.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package crc provides CRC-16 CCITT and CRC-8 table-driven implementations,
// along with the DAB/EDI convention of storing CRCs bitwise-inverted.
package crc

// CCITT polynomial and initial value used by every CRC-16 in this module:
// ETI FIB CRC, ETI EOH/EOF CRC and EDI AF/PF header CRCs.
const (
	poly16 = 0x1021
	init16 = 0xFFFF
)

// table16 is the byte-at-a-time lookup table for CRC-16 CCITT (poly 0x1021,
// MSB first, no reflection).
var table16 = buildTable16()

func buildTable16() [256]uint16 {
	var t [256]uint16
	for i := 0; i < 256; i++ {
		crc := uint16(i) << 8
		for b := 0; b < 8; b++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ poly16
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return t
}

// CRC16 computes CRC-16 CCITT (poly 0x1021, init 0xFFFF, no reflection,
// no final XOR) over d. Callers that need the DAB/EDI "stored" form must
// invert the result themselves via Invert16, since not every caller of a
// raw CRC16 wants the inversion (e.g. comparing against a peer's CRC using
// the same convention is simplest done consistently).
func CRC16(d []byte) uint16 {
	crc := uint16(init16)
	for _, b := range d {
		crc = (crc << 8) ^ table16[byte(crc>>8)^b]
	}
	return crc
}

// Invert16 returns the bitwise-inverted form of a CRC-16, which is how DAB
// and EDI store every CRC-16 on the wire.
func Invert16(crc uint16) uint16 { return crc ^ 0xFFFF }

// Stored16 computes the CRC-16 CCITT of d and returns it in the
// bitwise-inverted form used for on-wire storage throughout ETI and EDI.
func Stored16(d []byte) uint16 { return Invert16(CRC16(d)) }

// table8 is the lookup table for the CRC-8 (poly 0x07, init 0x00) used by
// some short EDI header variants.
var table8 = buildTable8()

func buildTable8() [256]byte {
	var t [256]byte
	for i := 0; i < 256; i++ {
		crc := byte(i)
		for b := 0; b < 8; b++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ 0x07
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return t
}

// CRC8 computes an 8-bit CRC (poly 0x07, init 0x00) over d.
func CRC8(d []byte) byte {
	var crc byte
	for _, b := range d {
		crc = table8[crc^b]
	}
	return crc
}
