// Copyright 2026 The Zynqboot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Zynqboot generates boot images for Xilinx Zynq and ZynqMP based
// platforms from BIF descriptions.
package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/zynqtools/zynqboot/internal/cmd/image"
)

const version = "zynqboot 1.0"

type tool struct {
	descr string
	main  func(cmd string, args []string)
}

var tools = map[string]tool{
	"bin":     {image.DescrBin, image.Main},
	"bit2bin": {image.DescrBit2Bin, image.Main},
	"hex":     {image.DescrHex, image.Main},
	"parse":   {image.DescrParse, image.Main},
}

func printToolList() {
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	slices.Sort(names)
	maxLen := 0
	for _, k := range names {
		if maxLen < len(k) {
			maxLen = len(k)
		}
	}
	uw := os.Stderr
	fmt.Fprintf(uw, "%s\n\nUsage:\n  zynqboot COMMAND [ARGUMENTS]\n\n", version)
	uw.WriteString("Available commands:\n")
	for _, name := range names {
		fmt.Fprintf(uw, "  %*s  %s\n", maxLen, name, tools[name].descr)
	}
}

func main() {
	if len(os.Args) < 2 || os.Args[1] == "-h" {
		printToolList()
		return
	}
	tool, ok := tools[os.Args[1]]
	if !ok {
		printToolList()
		os.Exit(1)
	}
	tool.main(os.Args[1], os.Args[2:])
}
