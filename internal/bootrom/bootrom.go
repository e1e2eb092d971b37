// Copyright 2026 The Zynqboot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bootrom lays out and serializes Xilinx boot images: the fixed
// boot header, the image and partition header tables with their mandatory
// checksums, and the aligned partition payloads. The layout rules come
// from the target's arch.Profile; the payload bytes come from a caller
// supplied reader, so the package performs no I/O of its own.
package bootrom

import (
	"encoding/binary"
	"fmt"

	"github.com/zynqtools/zynqboot/internal/arch"
	"github.com/zynqtools/zynqboot/internal/bif"
)

// Payload is the resolved byte content of one config node, plus the
// destination addresses recovered by the loader (from an ELF image) when
// the BIF does not give them explicitly.
type Payload struct {
	Data      []byte
	Load      uint32 // destination load address
	Entry     uint32 // execution start address
	HasAddrs  bool   // Load/Entry are meaningful
	Bitstream bool   // payload is PL configuration data
}

// NodeReader yields the payload of the i-th config node. A read failure is
// reported back to the Assemble caller as a SourceUnavailable build error.
type NodeReader func(i int, n *bif.Node) (*Payload, error)

// BuildErrorKind classifies assembly failures.
type BuildErrorKind int

const (
	TooManyPartitions BuildErrorKind = iota + 1
	LayoutConflict
	SourceUnavailable
	BufferTooSmall
)

// BuildError is a failed Assemble call. All build errors are terminal for
// the call: nothing is retried and the output buffer content is undefined.
type BuildError struct {
	Kind BuildErrorKind
	Node int    // index of the offending node, -1 if not node-specific
	Path string // source path of the offending node, if any
	Msg  string
	Err  error // underlying cause for SourceUnavailable
}

func (e *BuildError) Error() string {
	s := e.Msg
	if e.Path != "" {
		s = e.Path + ": " + s
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *BuildError) Unwrap() error { return e.Err }

// Estimate computes an upper bound of the image size in bytes for buffer
// allocation. The sizes slice holds one payload size per config node. The
// estimate covers the fixed header region, every payload rounded up to the
// partition alignment and the per-node header table entries; it may exceed
// the assembled size but never under-counts it. A config with no nodes
// estimates to 0, meaning there is nothing to build.
func Estimate(cfg *bif.Config, p *arch.Profile, sizes []uint32) uint32 {
	if len(cfg.Nodes) == 0 {
		return 0
	}
	total := p.PayloadsOff
	for i := range cfg.Nodes {
		if off, ok := cfg.Nodes[i].Offset(); ok && off > total {
			total = off
		}
		total += p.AlignUp(sizes[i]) + p.PartHdrEntry + p.ImgHdrEntry
	}
	return total
}

// planEntry is the resolved layout of one partition. The plan is derived
// once per Assemble call and discarded with it.
type planEntry struct {
	off    uint32 // start offset of the payload in the image
	size   uint32 // payload bytes
	padded uint32 // size rounded up to the partition alignment
}

// Assemble serializes the boot image described by cfg into buf and returns
// the number of 32-bit words written. The buffer must be at least Estimate
// bytes long. Any failure abandons the buffer; its content is then
// unspecified and must not be persisted.
func Assemble(buf []byte, cfg *bif.Config, p *arch.Profile, read NodeReader) (uint32, error) {
	if len(cfg.Nodes) == 0 {
		return 0, &bif.ValidationError{Msg: "no boot image nodes defined"}
	}
	if len(cfg.Nodes) > p.MaxNodes {
		return 0, &BuildError{
			Kind: TooManyPartitions, Node: -1,
			Msg: fmt.Sprintf("%d nodes exceed the %s limit of %d",
				len(cfg.Nodes), p.Name, p.MaxNodes),
		}
	}

	payloads := make([]*Payload, len(cfg.Nodes))
	for i := range cfg.Nodes {
		n := &cfg.Nodes[i]
		pl, err := read(i, n)
		if err != nil {
			return 0, &BuildError{
				Kind: SourceUnavailable, Node: i, Path: n.Path,
				Msg: "cannot read node source", Err: err,
			}
		}
		payloads[i] = pl
	}

	// Plan pass: resolve every partition's start offset, either pinned by
	// the BIF or packed after the previous partition.
	plan := make([]planEntry, len(cfg.Nodes))
	cur := p.PayloadsOff
	for i := range cfg.Nodes {
		n := &cfg.Nodes[i]
		off := cur
		if pinned, ok := n.Offset(); ok {
			if pinned%p.Alignment != 0 {
				return 0, &BuildError{
					Kind: LayoutConflict, Node: i, Path: n.Path,
					Msg: fmt.Sprintf("offset 0x%x breaks the 0x%x alignment",
						pinned, p.Alignment),
				}
			}
			if pinned < cur {
				return 0, &BuildError{
					Kind: LayoutConflict, Node: i, Path: n.Path,
					Msg: fmt.Sprintf(
						"offset 0x%x overlaps the image contents ending at 0x%x",
						pinned, cur),
				}
			}
			off = pinned
		}
		size := uint32(len(payloads[i].Data))
		plan[i] = planEntry{off: off, size: size, padded: p.AlignUp(size)}
		cur = off + plan[i].padded
	}
	total := cur

	if uint32(len(buf)) < total {
		return 0, &BuildError{
			Kind: BufferTooSmall, Node: -1,
			Msg: fmt.Sprintf("output buffer holds %d of %d bytes",
				len(buf), total),
		}
	}

	w := writer{buf}
	clear(buf[:total])

	// Header emission. The boot header quirks are the only per-target
	// dispatch point; the header tables share one shape.
	switch p.Arch {
	case arch.Zynq:
		writeZynqBootHeader(w, cfg, p, plan, payloads)
	case arch.ZynqMP:
		writeZynqMPBootHeader(w, cfg, p, plan, payloads)
	}
	writeImageHeaderTable(w, cfg, p)
	writeImageHeaders(w, cfg, p)
	for i := range cfg.Nodes {
		base := p.PartHdrOff + uint32(i)*p.PartHdrEntry
		switch p.Arch {
		case arch.Zynq:
			writeZynqPartHeader(w, base, cfg, p, i, plan[i], payloads[i])
		case arch.ZynqMP:
			writeZynqMPPartHeader(w, base, cfg, p, i, plan[i], payloads[i])
		}
		w.checksum(base, p.PartHdrChecksum)
	}
	// Terminating all-zero partition header; only its checksum is set.
	w.checksum(p.PartHdrOff+uint32(len(cfg.Nodes))*p.PartHdrEntry,
		p.PartHdrChecksum)

	// Payload emission. The buffer was cleared up front, so the trailing
	// pad of every partition is already zero.
	for i := range plan {
		copy(buf[plan[i].off:], payloads[i].Data)
	}

	return total / 4, nil
}

const (
	widthDetect = 0xaa995566
	imageID     = 0x584c4e58 // "XNLX"

	imgHdrTabVersionZynq   = 0x01010000
	imgHdrTabVersionZynqMP = 0x01020000
)

// writer emits 32-bit words at absolute byte offsets in little-endian
// order, the word order the boot ROM reads.
type writer struct {
	b []byte
}

func (w writer) put32(off, v uint32) {
	binary.LittleEndian.PutUint32(w.b[off:], v)
}

func (w writer) get32(off uint32) uint32 {
	return binary.LittleEndian.Uint32(w.b[off:])
}

func (w writer) fill32(off, end, v uint32) {
	for ; off < end; off += 4 {
		w.put32(off, v)
	}
}

// checksum finalizes one checksummed structure at base: it sums the words
// in the window and stores the inverted sum at the checksum position. It
// must run after every other field in the window is written, the sum
// covers their final values.
func (w writer) checksum(base uint32, win arch.ChecksumWindow) {
	var sum uint32
	for off := base + win.Start; off < base+win.End; off += 4 {
		sum += w.get32(off)
	}
	w.put32(base+win.Pos, ^sum)
}

func writeImageHeaderTable(w writer, cfg *bif.Config, p *arch.Profile) {
	version := uint32(imgHdrTabVersionZynq)
	if p.Arch == arch.ZynqMP {
		version = imgHdrTabVersionZynqMP
	}
	base := p.ImgHdrTabOff
	w.put32(base+0x00, version)
	w.put32(base+0x04, uint32(len(cfg.Nodes)))
	w.put32(base+0x08, p.PartHdrOff/4)
	w.put32(base+0x0c, p.ImgHdrOff/4)
	w.put32(base+0x10, 0) // no header authentication
	w.fill32(base+0x14, base+p.ImgHdrEntry, 0xffffffff)
}

func writeImageHeaders(w writer, cfg *bif.Config, p *arch.Profile) {
	for i := range cfg.Nodes {
		base := p.ImgHdrOff + uint32(i)*p.ImgHdrEntry
		next := uint32(0)
		if i+1 < len(cfg.Nodes) {
			next = (p.ImgHdrOff + uint32(i+1)*p.ImgHdrEntry) / 4
		}
		w.put32(base+0x00, next)
		w.put32(base+0x04, (p.PartHdrOff+uint32(i)*p.PartHdrEntry)/4)
		w.put32(base+0x08, 0)
		w.put32(base+0x0c, 1) // one partition per image
		putName(w, base+0x10, base+p.ImgHdrEntry, cfg.Nodes[i].Path)
	}
}

// putName packs an image name the way the boot ROM expects: four bytes per
// word in reversed order, a zero terminator word, 0xffffffff padding up to
// end. Names too long for the entry are truncated.
func putName(w writer, off, end uint32, name string) {
	max := int(end-off)/4 - 1 // keep room for the terminator word
	for i := 0; i < len(name) && i/4 < max; i += 4 {
		var v uint32
		for k := 0; k < 4; k++ {
			v <<= 8
			if i+k < len(name) {
				v |= uint32(name[i+k])
			}
		}
		w.put32(off, v)
		off += 4
	}
	w.put32(off, 0)
	w.fill32(off+4, end, 0xffffffff)
}
