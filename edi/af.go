/*
DESCRIPTION
  af.go implements the AF (Application Framing) packet that wraps a TAG
  packet for EDI transport: a 10-byte header, the TAG payload, and a
  2-byte inverted CRC-16 over header+payload.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package edi

import (
	"encoding/binary"
	"fmt"

	"github.com/ausocean/dabmux/internal/crc"
)

// afHeaderLen is the fixed 10-byte AF header: "AF", 4-byte payload
// length, 2-byte sequence, 1-byte ar_cf, 1-byte PT.
const afHeaderLen = 10

// afCRCFlag is the bit of ar_cf that marks CRC as present; this encoder
// always sets it.
const afCRCFlag = 0x80

// afVersion is the major-revision field of ar_cf (bits 6-4), always 1 for
// this implementation.
const afVersion = 0x10

// AFPacket is one Application Framing packet carrying a TAG payload.
type AFPacket struct {
	Seq     uint16
	Payload []byte
}

// Assemble serialises the AF packet: "AF" + payload length (u32 BE) +
// seq (u16 BE) + ar_cf (0x90, CRC always enabled) + 'T' + payload + 2-byte
// inverted CRC-16 over header and payload.
func (p AFPacket) Assemble() []byte {
	buf := make([]byte, afHeaderLen+len(p.Payload)+2)
	buf[0], buf[1] = 'A', 'F'
	binary.BigEndian.PutUint32(buf[2:6], uint32(len(p.Payload)))
	binary.BigEndian.PutUint16(buf[6:8], p.Seq)
	buf[8] = afCRCFlag | afVersion
	buf[9] = 'T'
	copy(buf[afHeaderLen:], p.Payload)
	c := crc.Stored16(buf[:afHeaderLen+len(p.Payload)])
	binary.BigEndian.PutUint16(buf[afHeaderLen+len(p.Payload):], c)
	return buf
}

// ParseAF parses an assembled AF packet, validating its CRC.
func ParseAF(d []byte) (AFPacket, error) {
	if len(d) < afHeaderLen+2 {
		return AFPacket{}, fmt.Errorf("edi: AF packet too short: %d bytes", len(d))
	}
	if d[0] != 'A' || d[1] != 'F' {
		return AFPacket{}, fmt.Errorf("edi: invalid AF sync bytes")
	}
	plen := binary.BigEndian.Uint32(d[2:6])
	if uint32(len(d)) != afHeaderLen+plen+2 {
		return AFPacket{}, fmt.Errorf("edi: AF payload length mismatch: header says %d, have %d", plen, len(d)-afHeaderLen-2)
	}
	want := binary.BigEndian.Uint16(d[afHeaderLen+plen:])
	got := crc.Stored16(d[:afHeaderLen+plen])
	if got != want {
		return AFPacket{}, fmt.Errorf("edi: invalid AF CRC")
	}
	return AFPacket{
		Seq:     binary.BigEndian.Uint16(d[6:8]),
		Payload: append([]byte(nil), d[afHeaderLen:afHeaderLen+plen]...),
	}, nil
}
