// Copyright 2026 The Zynqboot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bif parses the BIF boot image description language:
//
//	the_ROM_image:
//	{
//		[bootloader]fsbl.elf
//		[destination_device=pl]fpga.bit
//		[load=0x3000000, offset=0x500000]uImage.bin
//	}
//
// The parser is a pure function of the source text and the target
// architecture; it performs no I/O and knows nothing about the binary
// layout of the resulting image.
package bif

import (
	"fmt"

	"github.com/zynqtools/zynqboot/internal/arch"
)

// Attr is one node attribute as written in the BIF source. The attribute
// set is open on the data model side: nodes carry whatever key/value pairs
// the parser accepted, and consumers decode only the keys they understand.
type Attr struct {
	Key   string
	Value string // raw value text, empty for flag attributes
	Num   uint32 // decoded value of numeric attributes
}

// Node is one artifact reference in parse order. Nodes are read-only after
// parsing; derived values (resolved offsets, sizes, checksums) never get
// written back into them.
type Node struct {
	Path  string
	Attrs []Attr
}

// Attr returns the named attribute, if present.
func (n *Node) Attr(key string) (Attr, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a, true
		}
	}
	return Attr{}, false
}

// Bootloader reports whether the node carries the [bootloader] marker.
func (n *Node) Bootloader() bool {
	_, ok := n.Attr("bootloader")
	return ok
}

// Load returns the explicit destination load address, if one was given.
// An absent attribute is distinct from an explicit zero.
func (n *Node) Load() (uint32, bool) {
	a, ok := n.Attr("load")
	return a.Num, ok
}

// Offset returns the pinned on-disk byte offset of the partition, if one
// was given.
func (n *Node) Offset() (uint32, bool) {
	a, ok := n.Attr("offset")
	return a.Num, ok
}

// Config is the parser output: the image name and the ordered node list.
// Node order is significant, it fixes the on-disk partition order.
type Config struct {
	Arch  arch.Arch
	Name  string
	Nodes []Node
}

// Bootloader returns the index of the bootloader node or -1.
func (c *Config) Bootloader() int {
	for i := range c.Nodes {
		if c.Nodes[i].Bootloader() {
			return i
		}
	}
	return -1
}

// ParseError locates a syntax error in the BIF source.
type ParseError struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
}

// ValidationError reports a semantic rule violation in an otherwise
// well-formed BIF description.
type ValidationError struct {
	File string
	Msg  string
}

func (e *ValidationError) Error() string {
	if e.File == "" {
		return e.Msg
	}
	return e.File + ": " + e.Msg
}

// attrDef describes one recognized attribute keyword. Anything outside
// this vocabulary is a parse error, not a silent skip.
type attrDef struct {
	flag   bool     // no value allowed
	num    bool     // value must parse as a 32-bit unsigned integer
	zynqMP bool     // keyword legal for ZynqMP only
	values []string // allowed values, nil means any
}

var attrDefs = map[string]attrDef{
	"bootloader":         {flag: true},
	"load":               {num: true},
	"offset":             {num: true},
	"destination_device": {values: []string{"ps", "pl"}},
	"partition_owner":    {values: []string{"fsbl", "uboot"}},
	"destination_cpu": {zynqMP: true, values: []string{
		"a53-0", "a53-1", "a53-2", "a53-3", "r5-0", "r5-1", "r5-lockstep",
	}},
	"exception_level": {zynqMP: true, values: []string{
		"el-0", "el-1", "el-2", "el-3",
	}},
	"trustzone": {flag: true, zynqMP: true},
}

func (c *Config) validate(file string) error {
	if len(c.Nodes) == 0 {
		return &ValidationError{file, "no boot image nodes defined"}
	}
	bl := -1
	for i := range c.Nodes {
		if !c.Nodes[i].Bootloader() {
			continue
		}
		if bl >= 0 {
			return &ValidationError{file, fmt.Sprintf(
				"multiple bootloader nodes: %s and %s",
				c.Nodes[bl].Path, c.Nodes[i].Path,
			)}
		}
		bl = i
	}
	if c.Arch == arch.Zynq && bl > 0 {
		return &ValidationError{file, fmt.Sprintf(
			"bootloader %s must be the first node on zynq",
			c.Nodes[bl].Path,
		)}
	}
	return nil
}
