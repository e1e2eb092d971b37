// Copyright 2026 The Zynqboot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bitstream reads the Xilinx .bit container format and converts
// its payload to the word order expected in a boot image partition.
package bitstream

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Info is the metadata carried by a .bit container header together with
// the raw configuration data.
type Info struct {
	Design string
	Part   string
	Date   string
	Time   string
	Data   []byte // raw bitstream, big-endian words
}

var magic = []byte{
	0x0f, 0xf0, 0x0f, 0xf0, 0x0f, 0xf0, 0x0f, 0xf0, 0x00,
}

type reader struct {
	b   []byte
	pos int
}

func (r *reader) take(n int) ([]byte, error) {
	if len(r.b)-r.pos < n {
		return nil, errors.New("truncated bitstream header")
	}
	p := r.b[r.pos : r.pos+n]
	r.pos += n
	return p, nil
}

func (r *reader) u16() (int, error) {
	p, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint16(p)), nil
}

func (r *reader) u32() (int, error) {
	p, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint32(p)), nil
}

// string records are length-prefixed and zero-terminated.
func (r *reader) str() (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	p, err := r.take(n)
	if err != nil {
		return "", err
	}
	if n > 0 && p[n-1] == 0 {
		p = p[:n-1]
	}
	return string(p), nil
}

// Parse decodes a .bit container: the fixed sync field followed by the
// tagged 'a' (design), 'b' (part), 'c' (date), 'd' (time) and 'e' (data)
// records.
func Parse(b []byte) (*Info, error) {
	r := &reader{b: b}
	n, err := r.u16()
	if err != nil {
		return nil, err
	}
	hdr, err := r.take(n)
	if err != nil {
		return nil, err
	}
	if n != len(magic) || string(hdr) != string(magic) {
		return nil, errors.New("not a Xilinx .bit file")
	}
	if n, err = r.u16(); err != nil {
		return nil, err
	}
	if n != 1 {
		return nil, errors.New("not a Xilinx .bit file")
	}
	info := new(Info)
	for {
		key, err := r.take(1)
		if err != nil {
			return nil, err
		}
		switch key[0] {
		case 'a':
			info.Design, err = r.str()
		case 'b':
			info.Part, err = r.str()
		case 'c':
			info.Date, err = r.str()
		case 'd':
			info.Time, err = r.str()
		case 'e':
			var n int
			if n, err = r.u32(); err != nil {
				return nil, err
			}
			if info.Data, err = r.take(n); err != nil {
				return nil, err
			}
			return info, nil
		default:
			err = fmt.Errorf("unknown bitstream record '%c'", key[0])
		}
		if err != nil {
			return nil, err
		}
	}
}

// ToBin converts a .bit container to the raw binary form used in boot
// image partitions: the container header is stripped and every 32-bit
// word is byte-swapped from the big-endian stream order.
func ToBin(b []byte) ([]byte, error) {
	info, err := Parse(b)
	if err != nil {
		return nil, err
	}
	if len(info.Data)%4 != 0 {
		return nil, fmt.Errorf(
			"bitstream length %d is not a multiple of 4", len(info.Data),
		)
	}
	out := make([]byte, len(info.Data))
	for i := 0; i < len(info.Data); i += 4 {
		out[i+0] = info.Data[i+3]
		out[i+1] = info.Data[i+2]
		out[i+2] = info.Data[i+1]
		out[i+3] = info.Data[i+0]
	}
	return out, nil
}
