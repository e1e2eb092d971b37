// Copyright 2026 The Zynqboot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package image implements the boot image generation commands. One Main
// serves all of them, the command name selects the input mode and the
// output format.
package image

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/marcinbor85/gohex"

	"github.com/zynqtools/zynqboot/internal/arch"
	"github.com/zynqtools/zynqboot/internal/bif"
	"github.com/zynqtools/zynqboot/internal/bootrom"
	"github.com/zynqtools/zynqboot/internal/source"
	"github.com/zynqtools/zynqboot/internal/util"
)

const (
	DescrBin     = "generate a boot image from a BIF description"
	DescrParse   = "check the BIF grammar, but don't generate any files"
	DescrBit2Bin = "wrap a single bitstream file in a boot image"
	DescrHex     = "generate a boot image in the Intel HEX format"
)

// Process exit codes, one per error kind.
const (
	exitUsage      = 1
	exitParse      = 2
	exitValidation = 3
	exitBuild      = 4
)

func fatal(err error) {
	var pe *bif.ParseError
	var ve *bif.ValidationError
	var be *bootrom.BuildError
	code := exitUsage
	switch {
	case errors.As(err, &pe):
		code = exitParse
	case errors.As(err, &ve):
		code = exitValidation
	case errors.As(err, &be):
		code = exitBuild
	}
	util.FatalCode(code, "", err)
}

// baseAddr converts the -base flag value of the hex command.
func baseAddr(v uint) (uint32, error) {
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("the base address %#x doesn't fit in 32 bits", v)
	}
	return uint32(v), nil
}

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\n  %s [OPTIONS] INPUT [OUTPUT]\nOptions:\n",
			cmd,
		)
		fs.PrintDefaults()
	}
	archName := fs.String(
		"arch", "zynq",
		"target `architecture`: zynq or zynqmp",
	)
	var base *uint
	if cmd == "hex" {
		base = fs.Uint(
			"base", 0,
			"base `address` of the image in the HEX output",
		)
	}
	fs.Parse(args)
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		os.Exit(exitUsage)
	}
	a, err := arch.ParseArch(*archName)
	util.FatalErr("", err)

	inSuffix := ".bif"
	if cmd == "bit2bin" {
		inSuffix = ".bit"
	}
	outSuffix := ".bin"
	if cmd == "hex" {
		outSuffix = ".hex"
	}
	in, out := util.InOutFiles(fs.Arg(0), inSuffix, fs.Arg(1), outSuffix)

	var cfg *bif.Config
	if cmd == "bit2bin" {
		// Synthesize the minimal one-entry BIF around the named file, so
		// a raw bitstream needs no user authored description.
		src := fmt.Sprintf("all:\n{\n\t%s\n}\n", in)
		cfg, err = bif.Parse("<bit2bin>", []byte(src), a)
	} else {
		var src []byte
		src, err = os.ReadFile(in)
		util.FatalErr("", err)
		cfg, err = bif.Parse(in, src, a)
	}
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Nodes found in the %s file:\n", in)
	for i := range cfg.Nodes {
		n := &cfg.Nodes[i]
		fmt.Printf(" %s", n.Path)
		if n.Bootloader() {
			fmt.Print(" (bootloader)")
		}
		fmt.Println()
		if v, ok := n.Load(); ok {
			fmt.Printf("  load:   %08x\n", v)
		}
		if v, ok := n.Offset(); ok {
			fmt.Printf("  offset: %08x\n", v)
		}
	}
	if cmd == "parse" {
		fmt.Println("The BIF description has a correct syntax")
		return
	}

	loader := source.NewLoader()
	sizes := make([]uint32, len(cfg.Nodes))
	for i := range cfg.Nodes {
		sizes[i], err = loader.Size(&cfg.Nodes[i])
		util.FatalErr("", err)
	}
	prof := a.Profile()
	est := bootrom.Estimate(cfg, prof, sizes)
	if est == 0 {
		util.Fatal("nothing to build")
	}
	buf := make([]byte, est)
	words, err := bootrom.Assemble(buf, cfg, prof, loader.Payload)
	if err != nil {
		fatal(err)
	}
	img := buf[:4*words]

	if cmd == "hex" {
		addr, err := baseAddr(*base)
		util.FatalErr("", err)
		mem := gohex.NewMemory()
		mem.AddBinary(addr, img)
		of, err := os.Create(out)
		util.FatalErr("", err)
		defer of.Close()
		util.FatalErr("dumpintelhex", mem.DumpIntelHex(of, 16))
	} else {
		util.FatalErr("", os.WriteFile(out, img, 0o666))
	}
	fmt.Println("All done, quitting")
}
