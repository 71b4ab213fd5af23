/*
DESCRIPTION
  pft.go implements the PFT (Protection, Fragmentation and Transport)
  layer: straight striping of an AF packet into PF fragments, or
  Reed-Solomon protected fragmentation when FEC is enabled, per §4.8 and
  ETSI TS 102 821.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pft fragments AF packets into PF fragments for transports that
// cannot carry an AF packet whole, optionally protecting them with
// Reed-Solomon forward error correction.
package pft

import (
	"fmt"

	"github.com/klauspost/reedsolomon"

	"github.com/ausocean/dabmux/internal/crc"
)

// fixedHeaderLen is the Psync+Pseq+Findex+Fcount+flags/Plen header every
// fragment carries ahead of its optional FEC/Addr fields and CRC.
const fixedHeaderLen = 12

// Config controls how an AF packet is sliced into fragments.
type Config struct {
	FEC             bool
	FECM            int // parity fragment count when FEC is enabled.
	MaxFragmentSize int
}

// DefaultConfig returns the conventional 1400-byte, non-FEC fragment
// configuration.
func DefaultConfig() Config { return Config{MaxFragmentSize: 1400} }

// Fragment is one PF fragment.
type Fragment struct {
	PSeq    uint16
	FIndex  uint32 // 24-bit fragment index.
	FCount  uint32 // 24-bit total fragment count.
	FEC     bool
	Addr    bool
	RSk     byte
	RSz     byte
	Source  uint16
	Dest    uint16
	Payload []byte
}

// Assemble serialises the fragment: "PF", Pseq, Findex (24 bit), Fcount
// (24 bit), a flags+length word (FEC bit, Addr bit, 14-bit payload
// length), the optional RSk/RSz and Source/Dest fields, a CRC-16 over
// everything so far (inverted, as throughout this module), then payload.
func (f Fragment) Assemble() []byte {
	header := []byte{
		'P', 'F',
		byte(f.PSeq >> 8), byte(f.PSeq),
		byte(f.FIndex >> 16), byte(f.FIndex >> 8), byte(f.FIndex),
		byte(f.FCount >> 16), byte(f.FCount >> 8), byte(f.FCount),
	}
	flagsLen := uint16(len(f.Payload)) & 0x3FFF
	if f.FEC {
		flagsLen |= 0x8000
	}
	if f.Addr {
		flagsLen |= 0x4000
	}
	header = append(header, byte(flagsLen>>8), byte(flagsLen))
	if f.FEC {
		header = append(header, f.RSk, f.RSz)
	}
	if f.Addr {
		header = append(header, byte(f.Source>>8), byte(f.Source), byte(f.Dest>>8), byte(f.Dest))
	}
	c := crc.Stored16(header)
	header = append(header, byte(c>>8), byte(c))
	return append(header, f.Payload...)
}

// Parse parses an assembled fragment, validating its header CRC.
func Parse(d []byte) (Fragment, error) {
	if len(d) < fixedHeaderLen+2 || d[0] != 'P' || d[1] != 'F' {
		return Fragment{}, fmt.Errorf("pft: invalid sync or fragment too short")
	}
	var f Fragment
	f.PSeq = uint16(d[2])<<8 | uint16(d[3])
	f.FIndex = uint32(d[4])<<16 | uint32(d[5])<<8 | uint32(d[6])
	f.FCount = uint32(d[7])<<16 | uint32(d[8])<<8 | uint32(d[9])
	flagsLen := uint16(d[10])<<8 | uint16(d[11])
	f.FEC = flagsLen&0x8000 != 0
	f.Addr = flagsLen&0x4000 != 0
	plen := int(flagsLen & 0x3FFF)

	off := fixedHeaderLen
	if f.FEC {
		if off+2 > len(d) {
			return Fragment{}, fmt.Errorf("pft: truncated FEC fields")
		}
		f.RSk, f.RSz = d[off], d[off+1]
		off += 2
	}
	if f.Addr {
		if off+4 > len(d) {
			return Fragment{}, fmt.Errorf("pft: truncated addr fields")
		}
		f.Source = uint16(d[off])<<8 | uint16(d[off+1])
		f.Dest = uint16(d[off+2])<<8 | uint16(d[off+3])
		off += 4
	}
	if off+2 > len(d) {
		return Fragment{}, fmt.Errorf("pft: truncated CRC")
	}
	wantCRC := uint16(d[off])<<8 | uint16(d[off+1])
	if gotCRC := crc.Stored16(d[:off]); gotCRC != wantCRC {
		return Fragment{}, fmt.Errorf("pft: invalid header CRC")
	}
	off += 2
	if off+plen > len(d) {
		return Fragment{}, fmt.Errorf("pft: truncated payload")
	}
	f.Payload = append([]byte(nil), d[off:off+plen]...)
	return f, nil
}

// Fragmenter slices successive AF packets into fragments, owning the
// Pseq counter (16-bit, wraps).
type Fragmenter struct {
	config Config
	pseq   uint16
}

// NewFragmenter returns a Fragmenter using config, defaulting
// MaxFragmentSize to 1400 bytes when unset.
func NewFragmenter(config Config) *Fragmenter {
	if config.MaxFragmentSize <= 0 {
		config.MaxFragmentSize = 1400
	}
	return &Fragmenter{config: config}
}

// Fragment slices afPacket into fragments sharing one Pseq value. Without
// FEC this is straight striping, one fragment per MaxFragmentSize-byte
// chunk. With FEC, the chunks become Reed-Solomon data shards and FECM
// parity shards are appended, each carrying rs_k (data shard count) and
// rs_z (zero-padding applied to the final data shard) in its header.
func (fr *Fragmenter) Fragment(afPacket []byte) ([]Fragment, error) {
	size := fr.config.MaxFragmentSize
	n := (len(afPacket) + size - 1) / size
	if n == 0 {
		n = 1
	}
	pseq := fr.pseq
	fr.pseq++

	chunks := make([][]byte, n)
	for i := 0; i < n; i++ {
		start := i * size
		end := start + size
		if end > len(afPacket) {
			end = len(afPacket)
		}
		chunks[i] = afPacket[start:end]
	}

	if !fr.config.FEC {
		frags := make([]Fragment, n)
		for i, c := range chunks {
			frags[i] = Fragment{PSeq: pseq, FIndex: uint32(i), FCount: uint32(n), Payload: c}
		}
		return frags, nil
	}
	return fr.fragmentFEC(pseq, chunks)
}

func (fr *Fragmenter) fragmentFEC(pseq uint16, chunks [][]byte) ([]Fragment, error) {
	k := len(chunks)
	m := fr.config.FECM
	if m <= 0 {
		m = 1
	}

	shardLen := 0
	for _, c := range chunks {
		if len(c) > shardLen {
			shardLen = len(c)
		}
	}
	rsZ := shardLen - len(chunks[k-1])

	shards := make([][]byte, k+m)
	for i, c := range chunks {
		s := make([]byte, shardLen)
		copy(s, c)
		shards[i] = s
	}
	for i := k; i < k+m; i++ {
		shards[i] = make([]byte, shardLen)
	}

	enc, err := reedsolomon.New(k, m)
	if err != nil {
		return nil, fmt.Errorf("pft: reed-solomon setup failed: %w", err)
	}
	if err := enc.Encode(shards); err != nil {
		return nil, fmt.Errorf("pft: reed-solomon encode failed: %w", err)
	}

	total := k + m
	frags := make([]Fragment, total)
	for i, s := range shards {
		frags[i] = Fragment{
			PSeq:    pseq,
			FIndex:  uint32(i),
			FCount:  uint32(total),
			FEC:     true,
			RSk:     byte(k),
			RSz:     byte(rsZ),
			Payload: s,
		}
	}
	return frags, nil
}
