// Copyright 2026 The Zynqboot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package source resolves BIF node references to payload bytes. ELF images
// are flattened to their loadable segments, .bit containers are stripped
// and byte-swapped, anything else is embedded verbatim.
package source

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/zynqtools/zynqboot/internal/bif"
	"github.com/zynqtools/zynqboot/internal/bitstream"
	"github.com/zynqtools/zynqboot/internal/bootrom"
)

type Loader struct {
	cache map[string]*bootrom.Payload
}

func NewLoader() *Loader {
	return &Loader{cache: make(map[string]*bootrom.Payload)}
}

// Payload loads and caches the resolved bytes of one node. The method
// value satisfies bootrom.NodeReader.
func (l *Loader) Payload(i int, n *bif.Node) (*bootrom.Payload, error) {
	if pl, ok := l.cache[n.Path]; ok {
		return pl, nil
	}
	var pl *bootrom.Payload
	switch strings.ToLower(filepath.Ext(n.Path)) {
	case ".elf":
		var err error
		if pl, err = loadELF(n.Path); err != nil {
			return nil, err
		}
	case ".bit":
		raw, err := os.ReadFile(n.Path)
		if err != nil {
			return nil, err
		}
		data, err := bitstream.ToBin(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.Path, err)
		}
		pl = &bootrom.Payload{Data: data, Bitstream: true}
	default:
		data, err := os.ReadFile(n.Path)
		if err != nil {
			return nil, err
		}
		pl = &bootrom.Payload{Data: data}
	}
	if uint64(len(pl.Data)) > math.MaxUint32 {
		return nil, fmt.Errorf("%s: payload too large", n.Path)
	}
	l.cache[n.Path] = pl
	return pl, nil
}

// Size returns the payload size used for estimation. Plain binaries are
// only stat'ed; ELF images must be flattened first because segment gaps
// can make the payload larger than the file, and the estimate must never
// under-count.
func (l *Loader) Size(n *bif.Node) (uint32, error) {
	switch strings.ToLower(filepath.Ext(n.Path)) {
	case ".elf", ".bit":
		pl, err := l.Payload(0, n)
		if err != nil {
			return 0, err
		}
		return uint32(len(pl.Data)), nil
	}
	fi, err := os.Stat(n.Path)
	if err != nil {
		return 0, err
	}
	if fi.Size() > math.MaxUint32 {
		return 0, fmt.Errorf("%s: payload too large", n.Path)
	}
	return uint32(fi.Size()), nil
}
