/*
DESCRIPTION
  eti.go encapsulates the fields of an ETI (Ensemble Transport Interface,
  ETSI EN 300 799) frame and provides Pack/Unpack for the whole frame and
  each of its constituent sections.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package eti packs and unpacks Ensemble Transport Interface frames per
// ETSI EN 300 799: SYNC, FC, one STC per sub-channel, EOH, FIC, MST, EOF
// and an optional TIST.
package eti

import (
	"encoding/binary"
	"fmt"

	"github.com/ausocean/dabmux/internal/crc"
)

// FSYNC alternates between these two values on successive frames (even,
// odd respectively), per ETSI EN 300 799 and spec scenario 4.
const (
	FsyncEven = 0x073AB6
	FsyncOdd  = 0xF8C549
)

// FICBytes is the size in bytes of the FIC section for transmission Mode I,
// the only mode this module implements end to end.
const FICBytes = 96

// HeadSize is the size in bytes of every fixed-width 4-byte ETI section
// (SYNC, FC, one STC, EOH, EOF, TIST).
const HeadSize = 4

// Sync is the 4-byte SYNC header: 1-byte ERR then 3-byte FSYNC.
type Sync struct {
	Err   byte // 0xFF = healthy.
	Fsync uint32
}

func (s Sync) pack(buf []byte) {
	buf[0] = s.Err
	buf[1] = byte(s.Fsync >> 16)
	buf[2] = byte(s.Fsync >> 8)
	buf[3] = byte(s.Fsync)
}

func unpackSync(d []byte) Sync {
	return Sync{
		Err:   d[0],
		Fsync: uint32(d[1])<<16 | uint32(d[2])<<8 | uint32(d[3]),
	}
}

// FC is the 4-byte Frame Characterization header.
type FC struct {
	FCT  byte // 8-bit frame counter mod 256.
	NST  byte // 7-bit sub-channel count.
	FICF byte // 1 bit; 1 when FIC is present.
	FL   uint16 // 11-bit frame length in 32-bit words.
	MID  byte   // 2-bit transmission mode.
	FP   byte   // 3-bit frame phase.
}

func (fc FC) pack(buf []byte) error {
	if fc.NST > 0x7F {
		return fmt.Errorf("eti: NST %d overflows 7 bits", fc.NST)
	}
	if fc.FL > 0x7FF {
		return fmt.Errorf("eti: FL %d overflows 11 bits", fc.FL)
	}
	if fc.MID > 0x03 {
		return fmt.Errorf("eti: MID %d overflows 2 bits", fc.MID)
	}
	if fc.FP > 0x07 {
		return fmt.Errorf("eti: FP %d overflows 3 bits", fc.FP)
	}
	flHi := byte((fc.FL >> 8) & 0x07)
	flLo := byte(fc.FL & 0xFF)
	buf[0] = fc.FCT
	buf[1] = (fc.FICF&0x01)<<7 | (fc.NST & 0x7F)
	buf[2] = (fc.FP&0x07)<<5 | (fc.MID&0x03)<<3 | flHi
	buf[3] = flLo
	return nil
}

func unpackFC(d []byte) FC {
	return FC{
		FCT:  d[0],
		FICF: (d[1] >> 7) & 0x01,
		NST:  d[1] & 0x7F,
		FP:   (d[2] >> 5) & 0x07,
		MID:  (d[2] >> 3) & 0x03,
		FL:   uint16(d[2]&0x07)<<8 | uint16(d[3]),
	}
}

// STC is a 4-byte sub-channel stream characterization header, one per
// sub-channel carried in the frame.
type STC struct {
	SCID         byte   // 6-bit sub-channel id.
	StartAddress uint16 // 10-bit CU start address.
	TPL          byte   // 6-bit protection profile encoding.
	STL          uint16 // 10-bit sub-channel length in 64-bit words.
}

func (s STC) pack(buf []byte) error {
	if s.SCID > 0x3F {
		return fmt.Errorf("eti: SCID %d overflows 6 bits", s.SCID)
	}
	if s.StartAddress > 0x3FF {
		return fmt.Errorf("eti: start address %d overflows 10 bits", s.StartAddress)
	}
	if s.TPL > 0x3F {
		return fmt.Errorf("eti: TPL %d overflows 6 bits", s.TPL)
	}
	if s.STL > 0x3FF {
		return fmt.Errorf("eti: STL %d overflows 10 bits", s.STL)
	}
	buf[0] = (s.SCID&0x3F)<<2 | byte(s.StartAddress>>8)&0x03
	buf[1] = byte(s.StartAddress & 0xFF)
	buf[2] = (s.TPL&0x3F)<<2 | byte(s.STL>>8)&0x03
	buf[3] = byte(s.STL & 0xFF)
	return nil
}

func unpackSTC(d []byte) STC {
	return STC{
		SCID:         (d[0] >> 2) & 0x3F,
		StartAddress: uint16(d[0]&0x03)<<8 | uint16(d[1]),
		TPL:          (d[2] >> 2) & 0x3F,
		STL:          uint16(d[2]&0x03)<<8 | uint16(d[3]),
	}
}

// EOH is the 4-byte End Of Header section: MNSC then its CRC, both
// big-endian, CRC stored bitwise-inverted.
type EOH struct {
	MNSC uint16
	CRC  uint16
}

func (e EOH) pack(buf []byte) {
	binary.BigEndian.PutUint16(buf[0:2], e.MNSC)
	binary.BigEndian.PutUint16(buf[2:4], e.CRC)
}

func unpackEOH(d []byte) EOH {
	return EOH{MNSC: binary.BigEndian.Uint16(d[0:2]), CRC: binary.BigEndian.Uint16(d[2:4])}
}

// EOF is the 4-byte End Of Frame section: the MST CRC then 16 reserved
// bits, both big-endian, CRC stored bitwise-inverted.
type EOF struct {
	CRC uint16
	RFU uint16
}

func (e EOF) pack(buf []byte) {
	binary.BigEndian.PutUint16(buf[0:2], e.CRC)
	binary.BigEndian.PutUint16(buf[2:4], e.RFU)
}

func unpackEOF(d []byte) EOF {
	return EOF{CRC: binary.BigEndian.Uint16(d[0:2]), RFU: binary.BigEndian.Uint16(d[2:4])}
}

// TIST is the optional 4-byte precision timestamp, in units of 1/16384000s.
type TIST struct {
	Value uint32
}

func (t TIST) pack(buf []byte) {
	binary.LittleEndian.PutUint32(buf, t.Value)
}

func unpackTIST(d []byte) TIST {
	return TIST{Value: binary.LittleEndian.Uint32(d)}
}

// Frame is a complete ETI frame as defined by ETSI EN 300 799.
type Frame struct {
	Sync    Sync
	FC      FC
	STCs    []STC
	EOH     EOH
	FIC     []byte // Exactly FICBytes when FC.FICF == 1, else empty.
	MST     []byte // Concatenation of padded per-sub-channel payloads.
	EOF     EOF
	TIST    *TIST // nil when TIST is not enabled.
}

// Empty returns a valid frame with 0 sub-channels, a zeroed FIC, mode set
// to mid, and FSYNC chosen for frameCount's parity (FsyncEven/FsyncOdd).
// TIST is included (zero-valued) iff withTIST is true.
func Empty(frameCount uint64, mid byte, withTIST bool) Frame {
	fsync := uint32(FsyncEven)
	if frameCount%2 != 0 {
		fsync = FsyncOdd
	}
	f := Frame{
		Sync: Sync{Err: 0xFF, Fsync: fsync},
		FC:   FC{FCT: byte(frameCount & 0xFF), NST: 0, FICF: 1, MID: mid, FP: 0},
		FIC:  make([]byte, FICBytes),
	}
	if withTIST {
		f.TIST = &TIST{}
	}
	return f
}

// WordLen computes FC.FL: NST (one word per STC) + FIC words + MST words
// (rounded up) + 1 for EOF.
func (f *Frame) WordLen() uint16 {
	ficWords := len(f.FIC) / 4
	mstWords := (len(f.MST) + 3) / 4
	return uint16(len(f.STCs) + ficWords + mstWords + 1)
}

// Finalize sets FC.NST/FL and computes the EOH and EOF CRCs over the
// current contents of the frame. Callers must call Finalize after setting
// STCs, FIC and MST and before Pack.
func (f *Frame) Finalize() error {
	f.FC.NST = byte(len(f.STCs))
	f.FC.FL = f.WordLen()

	header := make([]byte, 0, HeadSize+len(f.STCs)*HeadSize+2)
	fcBuf := make([]byte, HeadSize)
	if err := f.FC.pack(fcBuf); err != nil {
		return err
	}
	header = append(header, fcBuf...)
	for _, stc := range f.STCs {
		stcBuf := make([]byte, HeadSize)
		if err := stc.pack(stcBuf); err != nil {
			return err
		}
		header = append(header, stcBuf...)
	}
	header = append(header, byte(f.EOH.MNSC>>8), byte(f.EOH.MNSC))
	f.EOH.CRC = crc.Stored16(header)

	mstCRCData := make([]byte, 0, len(f.FIC)+len(f.MST))
	mstCRCData = append(mstCRCData, f.FIC...)
	mstCRCData = append(mstCRCData, f.MST...)
	f.EOF.CRC = crc.Stored16(mstCRCData)
	f.EOF.RFU = 0xFFFF

	return nil
}

// Pack serialises the frame in ETI wire order: SYNC, FC, STC*, EOH,
// FIC (if present), MST, EOF, TIST (if present).
func (f *Frame) Pack() ([]byte, error) {
	size := HeadSize*2 + len(f.STCs)*HeadSize + HeadSize*2
	if f.FC.FICF != 0 {
		size += len(f.FIC)
	}
	size += len(f.MST)
	if f.TIST != nil {
		size += HeadSize
	}
	buf := make([]byte, size)
	off := 0
	f.Sync.pack(buf[off:])
	off += HeadSize
	if err := f.FC.pack(buf[off:]); err != nil {
		return nil, err
	}
	off += HeadSize
	for _, stc := range f.STCs {
		if err := stc.pack(buf[off:]); err != nil {
			return nil, err
		}
		off += HeadSize
	}
	f.EOH.pack(buf[off:])
	off += HeadSize
	if f.FC.FICF != 0 {
		copy(buf[off:], f.FIC)
		off += len(f.FIC)
	}
	copy(buf[off:], f.MST)
	off += len(f.MST)
	f.EOF.pack(buf[off:])
	off += HeadSize
	if f.TIST != nil {
		f.TIST.pack(buf[off:])
	}
	return buf, nil
}

// Unpack parses an ETI frame from d. nst is read from the FC header to
// know how many STC sections to consume; withTIST tells Unpack whether a
// trailing TIST section is present (this isn't self-describing in the
// frame itself, matching the real ETI-NI wire format).
func Unpack(d []byte, withTIST bool) (Frame, error) {
	if len(d) < HeadSize*3 {
		return Frame{}, fmt.Errorf("eti: frame too short: %d bytes", len(d))
	}
	var f Frame
	off := 0
	f.Sync = unpackSync(d[off:])
	off += HeadSize
	f.FC = unpackFC(d[off:])
	off += HeadSize

	for i := 0; i < int(f.FC.NST); i++ {
		if off+HeadSize > len(d) {
			return Frame{}, fmt.Errorf("eti: truncated STC section %d", i)
		}
		f.STCs = append(f.STCs, unpackSTC(d[off:]))
		off += HeadSize
	}

	if off+HeadSize > len(d) {
		return Frame{}, fmt.Errorf("eti: truncated EOH")
	}
	f.EOH = unpackEOH(d[off:])
	off += HeadSize

	if f.FC.FICF != 0 {
		if off+FICBytes > len(d) {
			return Frame{}, fmt.Errorf("eti: truncated FIC")
		}
		f.FIC = append([]byte(nil), d[off:off+FICBytes]...)
		off += FICBytes
	}

	mstEnd := len(d) - HeadSize
	if withTIST {
		mstEnd -= HeadSize
	}
	if mstEnd < off {
		return Frame{}, fmt.Errorf("eti: frame shorter than header+EOF(+TIST) implies")
	}
	f.MST = append([]byte(nil), d[off:mstEnd]...)
	off = mstEnd

	f.EOF = unpackEOF(d[off:])
	off += HeadSize

	if withTIST {
		t := unpackTIST(d[off:])
		f.TIST = &t
	}

	return f, nil
}
