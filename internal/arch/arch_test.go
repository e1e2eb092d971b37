// Copyright 2026 The Zynqboot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arch

import "testing"

func TestParseArch(t *testing.T) {
	for _, test := range []struct {
		name string
		want Arch
	}{
		{"zynq", Zynq},
		{"zynqmp", ZynqMP},
	} {
		a, err := ParseArch(test.name)
		if err != nil {
			t.Fatalf("ParseArch(%q): %v", test.name, err)
		}
		if a != test.want {
			t.Errorf("ParseArch(%q) = %v, want %v", test.name, a, test.want)
		}
		if a.String() != test.name {
			t.Errorf("%v.String() = %q, want %q", a, a.String(), test.name)
		}
	}
	if _, err := ParseArch("zynqultra"); err == nil {
		t.Error("ParseArch accepted an unknown architecture")
	}
}

// The geometry invariants the assembler relies on: ordered, aligned header
// regions with room for MaxNodes entries plus the partition header
// terminator, power of two alignment.
func TestProfileGeometry(t *testing.T) {
	for _, a := range []Arch{Zynq, ZynqMP} {
		p := a.Profile()
		if p.Arch != a || p.Name != a.String() {
			t.Errorf("%v: profile identifies as %v/%s", a, p.Arch, p.Name)
		}
		if p.Alignment == 0 || p.Alignment&(p.Alignment-1) != 0 {
			t.Errorf("%v: alignment %#x is not a power of two", a, p.Alignment)
		}
		if p.ImgHdrTabOff >= p.ImgHdrOff || p.ImgHdrOff >= p.PartHdrOff ||
			p.PartHdrOff >= p.PayloadsOff {
			t.Errorf("%v: header regions out of order", a)
		}
		if p.ImgHdrOff+uint32(p.MaxNodes)*p.ImgHdrEntry > p.PartHdrOff {
			t.Errorf("%v: image headers overflow into partition headers", a)
		}
		if p.PartHdrOff+uint32(p.MaxNodes+1)*p.PartHdrEntry > p.PayloadsOff {
			t.Errorf("%v: partition headers overflow into payloads", a)
		}
		if p.PayloadsOff%p.Alignment != 0 {
			t.Errorf("%v: payload region start %#x is not aligned", a, p.PayloadsOff)
		}
		if p.BootHdrChecksum.End <= p.BootHdrChecksum.Start {
			t.Errorf("%v: empty boot header checksum window", a)
		}
		if p.PartHdrChecksum.Pos != p.PartHdrEntry-4 {
			t.Errorf("%v: partition checksum at %#x, want last entry word",
				a, p.PartHdrChecksum.Pos)
		}
	}
}

func TestAlignUp(t *testing.T) {
	p := Zynq.Profile()
	for _, test := range []struct{ n, want uint32 }{
		{0, 0},
		{1, 0x40},
		{0x40, 0x40},
		{0x41, 0x80},
		{4096, 4096},
	} {
		if got := p.AlignUp(test.n); got != test.want {
			t.Errorf("AlignUp(%#x) = %#x, want %#x", test.n, got, test.want)
		}
	}
}
