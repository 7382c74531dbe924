package main

import (
	"encoding/binary"
	"testing"

	"sigscan/config"
	"sigscan/memory"
	"sigscan/module"
)

func TestResolveModes(t *testing.T) {
	const base = memory.Address(0x400000)

	image := make([]byte, 0x80)
	// lea rcx, [rip+0x20]
	copy(image[0x10:], []byte{0x48, 0x8D, 0x0D})
	binary.LittleEndian.PutUint32(image[0x13:], 0x20)
	// Absolute address stored after a marker
	copy(image[0x30:], []byte{0xC0, 0xFF, 0xEE})
	binary.LittleEndian.PutUint64(image[0x33:], uint64(base)+0x60)

	m, err := module.New(module.Info{Name: "cli.exe", Base: base, Size: 0x80},
		module.WithReader(memory.NewBuffer(base, image)), module.WithPointerSize(8))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		sig   config.Signature
		exp   uint64
		match memory.Address
	}{
		{config.Signature{Pattern: "C0 FF EE", Offset: 3, Mode: config.ModeDeref}, 0x60, base + 0x30},
		{config.Signature{Pattern: "C0 FF EE", Offset: 3, Extra: 2, Mode: config.ModeDeref}, 0x62, base + 0x30},
		{config.Signature{Pattern: "48 8D 0D ? ? ? ?", Offset: 3, Extra: 7, Mode: config.ModeRelative}, 0x37, base + 0x10},
		{config.Signature{Pattern: "48 8D 0D", Extra: 1, Mode: config.ModeMatch}, 0x11, base + 0x10},
	}

	for _, tt := range tests {
		resolved, match, found, err := resolve(m, tt.sig)
		if err != nil {
			t.Fatal(err)
		}
		if !found || resolved != tt.exp || match != tt.match {
			t.Fatalf("%s %q: expected 0x%x at %s - got 0x%x at %s, %v", tt.sig.Mode, tt.sig.Pattern, tt.exp, tt.match.ToString(), resolved, match.ToString(), found)
		}
	}

	if _, _, found, err := resolve(m, config.Signature{Pattern: "AB CD EF", Mode: config.ModeDeref}); found || err != nil {
		t.Fatalf("expected absence - got %v, %v", found, err)
	}
}

func TestResolveScansOnce(t *testing.T) {
	const base = memory.Address(0x400000)

	image := make([]byte, 0x80)
	copy(image[0x30:], []byte{0xC0, 0xFF, 0xEE})
	binary.LittleEndian.PutUint64(image[0x33:], uint64(base)+0x60)
	buf := memory.NewBuffer(base, image)

	scans := 0
	reader := memory.ReaderFunc(func(addr memory.Address, size memory.Size) ([]byte, error) {
		if addr == base {
			scans++
		}
		return buf.ReadMemory(addr, size)
	})

	m, err := module.New(module.Info{Name: "cli.exe", Base: base, Size: 0x80},
		module.WithReader(reader), module.WithPointerSize(8))
	if err != nil {
		t.Fatal(err)
	}

	resolved, _, found, err := resolve(m, config.Signature{Pattern: "C0 FF EE", Offset: 3, Mode: config.ModeDeref})
	if err != nil || !found || resolved != 0x60 {
		t.Fatalf("expected 0x60 - got 0x%x, %v, %v", resolved, found, err)
	}
	if scans != 1 {
		t.Fatalf("expected 1 scan of the image - got %d", scans)
	}
}
