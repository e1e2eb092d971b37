// Copyright 2026 The Zynqboot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bif

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zynqtools/zynqboot/internal/arch"
)

func TestParse(t *testing.T) {
	for _, test := range []struct {
		name string
		arch arch.Arch
		src  string
		want *Config
	}{
		{
			name: "minimal single entry",
			arch: arch.Zynq,
			src:  "all:{ loader.elf }",
			want: &Config{
				Arch: arch.Zynq, Name: "all",
				Nodes: []Node{{Path: "loader.elf"}},
			},
		},
		{
			name: "typical zynq image",
			arch: arch.Zynq,
			src: "the_ROM_image:\n" +
				"{\n" +
				"\t[bootloader]fsbl.elf\n" +
				"\t[destination_device=pl]fpga.bit\n" +
				"\t[load=0x3000000, offset=0x500000]uImage.bin\n" +
				"}\n",
			want: &Config{
				Arch: arch.Zynq, Name: "the_ROM_image",
				Nodes: []Node{
					{Path: "fsbl.elf", Attrs: []Attr{{Key: "bootloader"}}},
					{Path: "fpga.bit", Attrs: []Attr{
						{Key: "destination_device", Value: "pl"},
					}},
					{Path: "uImage.bin", Attrs: []Attr{
						{Key: "load", Value: "0x3000000", Num: 0x3000000},
						{Key: "offset", Value: "0x500000", Num: 0x500000},
					}},
				},
			},
		},
		{
			name: "comments and decimal values",
			arch: arch.Zynq,
			src: "// boot image\n" +
				"all: { /* the loader */ [offset=64]boot/loader.bin }\n",
			want: &Config{
				Arch: arch.Zynq, Name: "all",
				Nodes: []Node{{Path: "boot/loader.bin", Attrs: []Attr{
					{Key: "offset", Value: "64", Num: 64},
				}}},
			},
		},
		{
			name: "zynqmp attributes",
			arch: arch.ZynqMP,
			src: "image:\n{\n" +
				"\t[bootloader, destination_cpu=a53-0]fsbl.elf\n" +
				"\t[exception_level=el-2, trustzone]bl31.elf\n" +
				"}\n",
			want: &Config{
				Arch: arch.ZynqMP, Name: "image",
				Nodes: []Node{
					{Path: "fsbl.elf", Attrs: []Attr{
						{Key: "bootloader"},
						{Key: "destination_cpu", Value: "a53-0"},
					}},
					{Path: "bl31.elf", Attrs: []Attr{
						{Key: "exception_level", Value: "el-2"},
						{Key: "trustzone"},
					}},
				},
			},
		},
		{
			name: "bootloader not required",
			arch: arch.ZynqMP,
			src:  "all:\n{\n\tu-boot.elf\n\t[load=0x10000000]image.ub\n}\n",
			want: &Config{
				Arch: arch.ZynqMP, Name: "all",
				Nodes: []Node{
					{Path: "u-boot.elf"},
					{Path: "image.ub", Attrs: []Attr{
						{Key: "load", Value: "0x10000000", Num: 0x10000000},
					}},
				},
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			got, err := Parse("test.bif", []byte(test.src), test.arch)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Parse diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		arch arch.Arch
		src  string
		line int
		col  int
		msg  string
	}{
		{
			name: "missing colon",
			arch: arch.Zynq,
			src:  "all { loader.elf }",
			line: 1, col: 5, msg: "expected ':'",
		},
		{
			name: "missing closing brace",
			arch: arch.Zynq,
			src:  "all:{ loader.elf\n",
			line: 2, col: 1, msg: "missing '}'",
		},
		{
			name: "trailing garbage",
			arch: arch.Zynq,
			src:  "all:{ loader.elf } extra",
			line: 1, col: 20, msg: "after closing '}'",
		},
		{
			name: "unknown attribute",
			arch: arch.Zynq,
			src:  "all:{ [checksum=md5]loader.elf }",
			line: 1, col: 8, msg: "unknown attribute: checksum",
		},
		{
			name: "zynqmp attribute on zynq",
			arch: arch.Zynq,
			src:  "all:{ [destination_cpu=a53-0]loader.elf }",
			line: 1, col: 8, msg: "only valid for zynqmp",
		},
		{
			name: "bad numeric value",
			arch: arch.Zynq,
			src:  "all:{ [load=banana]loader.elf }",
			line: 1, col: 13, msg: "bad value for attribute load",
		},
		{
			name: "numeric value overflow",
			arch: arch.Zynq,
			src:  "all:{ [load=0x100000000]loader.elf }",
			line: 1, col: 13, msg: "bad value for attribute load",
		},
		{
			name: "bad enum value",
			arch: arch.Zynq,
			src:  "all:{ [destination_device=dram]loader.elf }",
			line: 1, col: 27, msg: "bad value for attribute destination_device",
		},
		{
			name: "duplicate attribute",
			arch: arch.Zynq,
			src:  "all:{ [load=1, load=2]loader.elf }",
			line: 1, col: 16, msg: "duplicate attribute: load",
		},
		{
			name: "unterminated comment",
			arch: arch.Zynq,
			src:  "all:{ /* loader.elf }",
			line: 1, col: 7, msg: "unterminated comment",
		},
		{
			name: "missing path after attributes",
			arch: arch.Zynq,
			src:  "all:{ [bootloader] }",
			line: 1, col: 20, msg: "expected file path",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse("test.bif", []byte(test.src), test.arch)
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			pe, ok := err.(*ParseError)
			if !ok {
				t.Fatalf("got %T (%v), want *ParseError", err, err)
			}
			if pe.Line != test.line || pe.Col != test.col {
				t.Errorf("error at %d:%d, want %d:%d (%v)",
					pe.Line, pe.Col, test.line, test.col, pe)
			}
			if !strings.Contains(pe.Msg, test.msg) {
				t.Errorf("error %q does not mention %q", pe.Msg, test.msg)
			}
		})
	}
}

func TestValidation(t *testing.T) {
	for _, test := range []struct {
		name string
		arch arch.Arch
		src  string
		msg  string
	}{
		{
			name: "empty image",
			arch: arch.Zynq,
			src:  "all:{ }",
			msg:  "no boot image nodes",
		},
		{
			name: "duplicate bootloader",
			arch: arch.Zynq,
			src:  "all:{ [bootloader]a.elf [bootloader]b.elf }",
			msg:  "multiple bootloader nodes",
		},
		{
			name: "zynq bootloader not first",
			arch: arch.Zynq,
			src:  "all:{ u-boot.elf [bootloader]fsbl.elf }",
			msg:  "must be the first node",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse("test.bif", []byte(test.src), test.arch)
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			ve, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("got %T (%v), want *ValidationError", err, err)
			}
			if !strings.Contains(ve.Msg, test.msg) {
				t.Errorf("error %q does not mention %q", ve.Msg, test.msg)
			}
		})
	}
}

// A bootloader placed late is legal on zynqmp, the position rule is zynq
// specific.
func TestZynqMPBootloaderPosition(t *testing.T) {
	cfg, err := Parse(
		"test.bif",
		[]byte("all:{ pmufw.elf [bootloader]fsbl.elf }"),
		arch.ZynqMP,
	)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cfg.Bootloader(); got != 1 {
		t.Errorf("Bootloader() = %d, want 1", got)
	}
}
