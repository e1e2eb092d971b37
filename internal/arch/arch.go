// Copyright 2026 The Zynqboot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arch describes the boot image geometry of the supported Xilinx
// targets. The geometry is pure data: offsets of the header tables, table
// entry sizes, partition alignment and the checksum windows mandated by the
// boot ROM. All behavior lives in the bootrom package.
package arch

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Arch selects the target device family. The set is closed: adding a new
// target means adding a profile entry, not changing the assembler.
type Arch int

const (
	Zynq Arch = iota // Zynq-7000 (32-bit ARMv7)
	ZynqMP           // Zynq UltraScale+ MPSoC (ARMv8)
)

func (a Arch) String() string {
	switch a {
	case Zynq:
		return "zynq"
	case ZynqMP:
		return "zynqmp"
	}
	return fmt.Sprintf("arch(%d)", int(a))
}

// ParseArch converts a target name as used on the command line.
func ParseArch(name string) (Arch, error) {
	for a, p := range profiles {
		if p.Name == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown architecture: %s", name)
}

// ChecksumWindow describes one checksummed header structure: the boot ROM
// sums the 32-bit words in [Start, End) and expects the bitwise complement
// of the sum at Pos. All values are byte offsets from the structure start.
type ChecksumWindow struct {
	Start uint32
	End   uint32
	Pos   uint32
}

// Profile is the immutable geometry of one target's boot image.
type Profile struct {
	Arch Arch   `yaml:"-"`
	Name string `yaml:"name"`

	// Fixed layout of the header region. Payloads never start below
	// PayloadsOff, so it doubles as the header region size.
	ImgHdrTabOff uint32 `yaml:"imageHeaderTable"`
	ImgHdrOff    uint32 `yaml:"imageHeaders"`
	PartHdrOff   uint32 `yaml:"partitionHeaders"`
	PayloadsOff  uint32 `yaml:"payloads"`

	ImgHdrEntry  uint32 `yaml:"imageHeaderEntry"`
	PartHdrEntry uint32 `yaml:"partitionHeaderEntry"`

	// Alignment is the byte granularity of every partition start and end.
	Alignment uint32 `yaml:"alignment"`

	// MaxNodes bounds the partition count so the header tables never
	// overflow their fixed regions.
	MaxNodes int `yaml:"maxNodes"`

	// Checksum windows are identical for both targets but belong to the
	// profile so a new target can bring its own.
	BootHdrChecksum ChecksumWindow `yaml:"-"`
	PartHdrChecksum ChecksumWindow `yaml:"-"`
}

// Profile returns the geometry of the target. The arch set is closed, so
// the lookup cannot fail.
func (a Arch) Profile() *Profile {
	p, ok := profiles[a]
	if !ok {
		panic("arch: no profile for " + a.String())
	}
	return p
}

//go:embed profiles.yaml
var rawProfiles []byte

var profiles map[Arch]*Profile

func init() {
	var list []*Profile
	if err := yaml.Unmarshal(rawProfiles, &list); err != nil {
		panic("arch: bad profiles.yaml: " + err.Error())
	}
	profiles = make(map[Arch]*Profile, len(list))
	for _, p := range list {
		switch p.Name {
		case "zynq":
			p.Arch = Zynq
		case "zynqmp":
			p.Arch = ZynqMP
		default:
			panic("arch: unknown profile name: " + p.Name)
		}
		// Boot header: words 0x20..0x44 summed, complement at 0x48.
		p.BootHdrChecksum = ChecksumWindow{Start: 0x20, End: 0x48, Pos: 0x48}
		// Partition header: first 15 words summed, complement in word 15.
		p.PartHdrChecksum = ChecksumWindow{Start: 0, End: 0x3c, Pos: 0x3c}
		profiles[p.Arch] = p
	}
}

// AlignUp rounds n up to the profile's partition alignment.
func (p *Profile) AlignUp(n uint32) uint32 {
	a := p.Alignment
	return (n + a - 1) &^ (a - 1)
}
