// Copyright 2026 The Zynqboot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bitstream

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// mkBit builds a synthetic .bit container around the given data.
func mkBit(design, part string, data []byte) []byte {
	var b bytes.Buffer
	put16 := func(v int) {
		binary.Write(&b, binary.BigEndian, uint16(v))
	}
	str := func(key byte, s string) {
		b.WriteByte(key)
		put16(len(s) + 1)
		b.WriteString(s)
		b.WriteByte(0)
	}
	put16(len(magic))
	b.Write(magic)
	put16(1)
	str('a', design)
	str('b', part)
	str('c', "2026/08/25")
	str('d', "12:00:00")
	b.WriteByte('e')
	binary.Write(&b, binary.BigEndian, uint32(len(data)))
	b.Write(data)
	return b.Bytes()
}

func TestParse(t *testing.T) {
	data := []byte{0xaa, 0x99, 0x55, 0x66, 0x01, 0x02, 0x03, 0x04}
	bit := mkBit("top;UserID=0XFFFFFFFF", "7z010clg400", data)
	info, err := Parse(bit)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if info.Design != "top;UserID=0XFFFFFFFF" {
		t.Errorf("Design = %q", info.Design)
	}
	if info.Part != "7z010clg400" {
		t.Errorf("Part = %q", info.Part)
	}
	if info.Date != "2026/08/25" || info.Time != "12:00:00" {
		t.Errorf("Date/Time = %q/%q", info.Date, info.Time)
	}
	if !bytes.Equal(info.Data, data) {
		t.Errorf("Data = %x, want %x", info.Data, data)
	}
}

func TestToBin(t *testing.T) {
	data := []byte{0xaa, 0x99, 0x55, 0x66, 0x01, 0x02, 0x03, 0x04}
	out, err := ToBin(mkBit("top", "7z010", data))
	if err != nil {
		t.Fatalf("ToBin: %v", err)
	}
	want := []byte{0x66, 0x55, 0x99, 0xaa, 0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(out, want) {
		t.Errorf("ToBin = %x, want %x", out, want)
	}
}

func TestParseErrors(t *testing.T) {
	good := mkBit("top", "7z010", make([]byte, 8))
	for _, test := range []struct {
		name string
		b    []byte
	}{
		{"empty", nil},
		{"bad magic", append([]byte{0x00, 0x02, 0xde, 0xad}, good...)},
		{"truncated header", good[:10]},
		{"truncated data", good[:len(good)-4]},
	} {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Parse(test.b); err == nil {
				t.Error("Parse succeeded, want error")
			}
		})
	}
}

func TestToBinUnalignedData(t *testing.T) {
	if _, err := ToBin(mkBit("top", "7z010", make([]byte, 7))); err == nil {
		t.Error("ToBin accepted a bitstream with a partial trailing word")
	}
}
