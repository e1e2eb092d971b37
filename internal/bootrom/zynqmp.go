// Copyright 2026 The Zynqboot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bootrom

import (
	"github.com/zynqtools/zynqboot/internal/arch"
	"github.com/zynqtools/zynqboot/internal/bif"
)

// Zynq UltraScale+ boot header and partition header emission, field layout
// per UG1085 ch. 11. The checksum rule is the same inverted word sum as on
// Zynq; addresses widen to 64 bits and the partition attributes gain the
// destination CPU, exception level and TrustZone fields.

func writeZynqMPBootHeader(w writer, cfg *bif.Config, p *arch.Profile, plan []planEntry, payloads []*Payload) {
	w.fill32(0x00, 0x20, 0x14000000) // AArch64 interrupt table: b .
	w.put32(0x20, widthDetect)
	w.put32(0x24, imageID)
	w.put32(0x28, 0) // not encrypted

	var srcOff, imgLen, exec uint32
	if bl := cfg.Bootloader(); bl >= 0 {
		srcOff, imgLen = plan[bl].off, plan[bl].size
		_, exec = resolveAddrs(&cfg.Nodes[bl], payloads[bl])
	} else {
		srcOff = plan[0].off
	}
	w.put32(0x2c, exec)   // FSBL execution address
	w.put32(0x30, srcOff) // bootloader source offset
	w.put32(0x34, 0)      // PMU firmware image length: none embedded
	w.put32(0x38, 0)      // total PMU firmware length
	w.put32(0x3c, imgLen) // FSBL image length
	w.put32(0x40, imgLen) // total FSBL length
	w.put32(0x44, 0)      // FSBL image attributes
	w.checksum(0, p.BootHdrChecksum)

	// Obfuscated key 0x4c-0x68 and user defined words 0x6c-0x94 stay zero.
	w.put32(0x98, p.ImgHdrTabOff)
	w.put32(0x9c, p.PartHdrOff)

	// Secure header IV and key IV 0xa0-0xb4 stay zero. Register init
	// table: 256 (address, value) pairs at 0xb8.
	for off := uint32(0xb8); off < 0xb8+0x800; off += 8 {
		w.put32(off, 0xffffffff)
	}
}

func writeZynqMPPartHeader(w writer, base uint32, cfg *bif.Config, p *arch.Profile, i int, pe planEntry, pl *Payload) {
	n := &cfg.Nodes[i]
	load, exec := resolveAddrs(n, pl)
	next := uint32(0)
	if i+1 < len(cfg.Nodes) {
		next = (p.PartHdrOff + uint32(i+1)*p.PartHdrEntry) / 4
	}
	w.put32(base+0x00, (pe.size+3)/4) // encrypted data word length
	w.put32(base+0x04, (pe.size+3)/4) // unencrypted data word length
	w.put32(base+0x08, pe.padded/4)   // total words including padding
	w.put32(base+0x0c, next)
	w.put32(base+0x10, exec) // destination execution address, low word
	w.put32(base+0x14, 0)
	w.put32(base+0x18, load) // destination load address, low word
	w.put32(base+0x1c, 0)
	w.put32(base+0x20, pe.off/4)
	w.put32(base+0x24, zynqMPPartAttrs(n, pl))
	w.put32(base+0x28, 1) // section count
	w.put32(base+0x2c, 0) // no checksum table
	w.put32(base+0x30, (p.ImgHdrOff+uint32(i)*p.ImgHdrEntry)/4)
	w.put32(base+0x34, 0) // no authentication certificate
	w.put32(base+0x38, 0) // partition ID
}

var zynqMPCPU = map[string]uint32{
	"a53-0":       1,
	"a53-1":       2,
	"a53-2":       3,
	"a53-3":       4,
	"r5-0":        5,
	"r5-1":        6,
	"r5-lockstep": 7,
}

func zynqMPPartAttrs(n *bif.Node, pl *Payload) uint32 {
	attr := deviceAttr(n, pl) << 4
	if _, ok := n.Attr("trustzone"); ok {
		attr |= 1 // TrustZone secure
	}
	if a, ok := n.Attr("exception_level"); ok {
		attr |= uint32(a.Value[len(a.Value)-1]-'0') << 1
	}
	if a, ok := n.Attr("destination_cpu"); ok {
		attr |= zynqMPCPU[a.Value] << 8
	}
	if a, ok := n.Attr("partition_owner"); ok && a.Value == "uboot" {
		attr |= attrOwnerUBoot
	}
	return attr
}
