/*
DESCRIPTION
  charset.go implements the EBU-Latin character set codec (ETSI EN 300 401
  Table 2) and the short-label character mask used by FIG 1/x labels.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package charset converts between UTF-8 and the EBU-Latin charset used by
// DAB ensemble/service/component labels, and computes short-label masks.
package charset

import (
	"fmt"
	"strings"
)

// LongLabelLen and ShortLabelLen are the fixed widths of the two label
// forms carried in FIG type 1.
const (
	LongLabelLen  = 16
	ShortLabelLen = 8
)

// toUnicode holds the 0x80-0xFF extended half of EBU-Latin (ETSI EN 300 401
// Table 2); 0x00-0x7F is plain ASCII and is not tabulated. 0x0000 marks an
// unused code point.
var toUnicode = [128]rune{
	0x0000, 0x0104, 0x0112, 0x0122, 0x012A, 0x0136, 0x013B, 0x0145,
	0x014C, 0x0156, 0x015A, 0x0166, 0x016A, 0x0179, 0x017B, 0x017D,
	0x0105, 0x0113, 0x0123, 0x012B, 0x0137, 0x013C, 0x0146, 0x014D,
	0x0157, 0x015B, 0x0167, 0x016B, 0x017A, 0x017C, 0x017E, 0x0000,
	0x00A0, 0x00A1, 0x00A2, 0x00A3, 0x0024, 0x00A5, 0x0023, 0x00A7,
	0x00A4, 0x2018, 0x201C, 0x00AB, 0x2190, 0x2191, 0x2192, 0x2193,
	0x00B0, 0x00B1, 0x00B2, 0x00B3, 0x00D7, 0x00B5, 0x00B6, 0x00B7,
	0x00F7, 0x2019, 0x201D, 0x00BB, 0x00BC, 0x00BD, 0x00BE, 0x00BF,
	0x00C0, 0x00C1, 0x00C2, 0x00C3, 0x00C4, 0x00C5, 0x00C6, 0x00C7,
	0x00C8, 0x00C9, 0x00CA, 0x00CB, 0x00CC, 0x00CD, 0x00CE, 0x00CF,
	0x00D0, 0x00D1, 0x00D2, 0x00D3, 0x00D4, 0x00D5, 0x00D6, 0x0152,
	0x00D8, 0x00D9, 0x00DA, 0x00DB, 0x00DC, 0x00DD, 0x00DE, 0x00DF,
	0x00E0, 0x00E1, 0x00E2, 0x00E3, 0x00E4, 0x00E5, 0x00E6, 0x00E7,
	0x00E8, 0x00E9, 0x00EA, 0x00EB, 0x00EC, 0x00ED, 0x00EE, 0x00EF,
	0x00F0, 0x00F1, 0x00F2, 0x00F3, 0x00F4, 0x00F5, 0x00F6, 0x0153,
	0x00F8, 0x00F9, 0x00FA, 0x00FB, 0x00FC, 0x00FD, 0x00FE, 0x00FF,
}

// fromUnicode is the inverse of toUnicode, built once at init.
var fromUnicode = buildReverse()

func buildReverse() map[rune]byte {
	m := make(map[rune]byte, 256)
	for i := 0; i < 0x80; i++ {
		m[rune(i)] = byte(i)
	}
	for i, r := range toUnicode {
		if r == 0 {
			continue
		}
		m[r] = byte(0x80 + i)
	}
	return m
}

// Encode converts a UTF-8 string to EBU-Latin bytes, space-padded (or
// truncated) to exactly width bytes. Unmappable code points become 0x20.
func Encode(s string, width int) []byte {
	out := make([]byte, 0, width)
	for _, r := range s {
		if len(out) >= width {
			break
		}
		if r < 0x80 {
			out = append(out, byte(r))
			continue
		}
		if b, ok := fromUnicode[r]; ok {
			out = append(out, b)
			continue
		}
		out = append(out, ' ')
	}
	for len(out) < width {
		out = append(out, ' ')
	}
	return out[:width]
}

// Decode converts EBU-Latin bytes back to a UTF-8 string, dropping unused
// code points and trailing spaces.
func Decode(d []byte) string {
	var b strings.Builder
	for _, c := range d {
		if c < 0x80 {
			b.WriteByte(c)
			continue
		}
		r := toUnicode[c-0x80]
		if r == 0 {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

// ShortLabelMask computes the 16-bit big-endian character mask for long,
// such that bit 15-i is 1 iff the i-th character of long is also the next
// character of short, consumed left to right. It returns an error if
// short's characters do not appear, in order, within long.
func ShortLabelMask(long, short string) (uint16, error) {
	if short == "" {
		return 0, nil
	}
	longR := []rune(long)
	shortR := []rune(short)

	var mask uint16
	si := 0
	for li, c := range longR {
		if li >= LongLabelLen {
			break
		}
		if si < len(shortR) && c == shortR[si] {
			mask |= 1 << uint(15-li)
			si++
		}
	}
	if si != len(shortR) {
		return 0, fmt.Errorf("charset: short label %q characters not found in order within long label %q", short, long)
	}
	return mask, nil
}

// ShortLabelFromMask reconstructs the short label implied by mask applied
// to long, selecting the i-th long-label character wherever bit 15-i is set.
func ShortLabelFromMask(long string, mask uint16) string {
	longR := []rune(long)
	var b strings.Builder
	for li, c := range longR {
		if li >= LongLabelLen {
			break
		}
		if mask&(1<<uint(15-li)) != 0 {
			b.WriteRune(c)
		}
	}
	return b.String()
}
