// Copyright 2026 The Zynqboot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package source

import (
	"debug/elf"
	"fmt"
	"io"
	"sort"

	"github.com/zynqtools/zynqboot/internal/bootrom"
)

// loadELF flattens the loadable segments of an ELF image into one
// contiguous payload. Gaps between segments are zero filled. The physical
// address of the first segment becomes the partition load address and the
// ELF entry point the execution address.
func loadELF(name string) (*bootrom.Payload, error) {
	f, err := elf.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	type seg struct {
		paddr uint64
		data  []byte
	}
	segs := make([]seg, 0, 4)
	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD || p.Filesz == 0 {
			continue
		}
		data := make([]byte, p.Filesz)
		if _, err := io.ReadFull(p.Open(), data); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		segs = append(segs, seg{p.Paddr, data})
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("%s: no loadable segments", name)
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].paddr < segs[j].paddr })

	base := segs[0].paddr
	end := base
	for _, s := range segs {
		if s.paddr < end {
			return nil, fmt.Errorf("%s: overlapping segments", name)
		}
		end = s.paddr + uint64(len(s.data))
	}
	data := make([]byte, end-base)
	for _, s := range segs {
		copy(data[s.paddr-base:], s.data)
	}
	return &bootrom.Payload{
		Data:     data,
		Load:     uint32(base),
		Entry:    uint32(f.Entry),
		HasAddrs: true,
	}, nil
}
