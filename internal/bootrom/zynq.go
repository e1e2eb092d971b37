// Copyright 2026 The Zynqboot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bootrom

import (
	"github.com/zynqtools/zynqboot/internal/arch"
	"github.com/zynqtools/zynqboot/internal/bif"
)

// Zynq-7000 boot header and partition header emission, field layout per
// UG585 ch. 6. Word offsets 0x20-0x44 of the boot header are covered by
// the header checksum at 0x48.

func writeZynqBootHeader(w writer, cfg *bif.Config, p *arch.Profile, plan []planEntry, payloads []*Payload) {
	w.fill32(0x00, 0x20, 0xeafffffe) // ARM interrupt table: b .
	w.put32(0x20, widthDetect)
	w.put32(0x24, imageID)
	w.put32(0x28, 0) // not encrypted
	w.put32(0x2c, 0x01010000)

	var srcOff, imgLen uint32
	if bl := cfg.Bootloader(); bl >= 0 {
		srcOff, imgLen = plan[bl].off, plan[bl].size
	} else {
		// No first-stage loader in the image (bit2bin style images meant
		// to be consumed by an already running system).
		srcOff = plan[0].off
	}
	w.put32(0x30, srcOff)
	w.put32(0x34, imgLen)
	w.put32(0x38, 0)
	w.put32(0x3c, 0) // start of execution, relative to the loader image
	w.put32(0x40, imgLen)
	w.put32(0x44, 1) // QSPI config word, must be 1
	w.checksum(0, p.BootHdrChecksum)

	// User defined words 0x4c-0x94 stay zero.
	w.put32(0x98, p.ImgHdrTabOff)
	w.put32(0x9c, p.PartHdrOff)

	// Register init table: 256 (address, value) pairs up to the image
	// header table; an unused pair is (0xffffffff, 0).
	for off := uint32(0xa0); off < p.ImgHdrTabOff; off += 8 {
		w.put32(off, 0xffffffff)
	}
}

func writeZynqPartHeader(w writer, base uint32, cfg *bif.Config, p *arch.Profile, i int, pe planEntry, pl *Payload) {
	n := &cfg.Nodes[i]
	load, exec := resolveAddrs(n, pl)
	w.put32(base+0x00, (pe.size+3)/4) // encrypted data word length
	w.put32(base+0x04, (pe.size+3)/4) // unencrypted data word length
	w.put32(base+0x08, pe.padded/4)   // total words including padding
	w.put32(base+0x0c, load)
	w.put32(base+0x10, exec)
	w.put32(base+0x14, pe.off/4)
	w.put32(base+0x18, zynqPartAttrs(n, pl))
	w.put32(base+0x1c, 1) // section count
	w.put32(base+0x20, 0) // no checksum table
	w.put32(base+0x24, (p.ImgHdrOff+uint32(i)*p.ImgHdrEntry)/4)
	w.put32(base+0x28, 0) // no authentication certificate
	// Words 0x2c-0x38 are reserved; the checksum in word 15 is stored by
	// the caller once the whole window is final.
}

// Partition attribute bits shared by both targets.
const (
	attrDevPS      = 1
	attrDevPL      = 2
	attrOwnerUBoot = 1 << 16
)

// deviceAttr resolves the destination device: an explicit BIF attribute
// wins, otherwise bitstream payloads go to the PL and everything else to
// the PS.
func deviceAttr(n *bif.Node, pl *Payload) uint32 {
	if a, ok := n.Attr("destination_device"); ok {
		if a.Value == "pl" {
			return attrDevPL
		}
		return attrDevPS
	}
	if pl.Bitstream {
		return attrDevPL
	}
	return attrDevPS
}

func zynqPartAttrs(n *bif.Node, pl *Payload) uint32 {
	attr := deviceAttr(n, pl) << 4
	if a, ok := n.Attr("partition_owner"); ok && a.Value == "uboot" {
		attr |= attrOwnerUBoot
	}
	return attr
}

// resolveAddrs picks the destination load and execution addresses of a
// partition: the addresses recovered from an ELF payload, overridden by an
// explicit [load=...] attribute.
func resolveAddrs(n *bif.Node, pl *Payload) (load, exec uint32) {
	if pl.HasAddrs {
		load, exec = pl.Load, pl.Entry
	}
	if v, ok := n.Load(); ok {
		load = v
		if !pl.HasAddrs {
			exec = v
		}
	}
	return
}
