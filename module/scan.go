package module

import (
	"fmt"

	"sigscan/memory"
	"sigscan/pattern"
)

// findFirst scans the readable spans in ascending order and returns the lowest match
func (m *Module) findFirst(p pattern.Pattern) (memory.Address, bool, error) {
	for _, span := range m.spans {
		var addr memory.Address
		var found bool
		var err error

		if m.scanner.MaxDOP > 1 {
			addr, found, err = m.scanner.ScanParallel(m.reader, span.Base, span.End(), p)
		} else {
			addr, found, err = m.scanner.Scan(m.reader, span.Base, span.End(), p)
		}

		if err != nil {
			return 0, false, fmt.Errorf("scan of %s failed: %w", span, err)
		}
		if found {
			return addr, true, nil
		}
	}

	return 0, false, nil
}

// FindPattern returns the lowest address in the image where the signature matches
func (m *Module) FindPattern(text string) (memory.Address, bool, error) {
	p, err := pattern.Parse(text)
	if err != nil {
		return 0, false, err
	}

	addr, found, err := m.findFirst(p)
	if err != nil {
		return 0, false, err
	}

	if found {
		m.log.Debugln("Pattern", p.String(), "matched at", addr.ToString())
	} else {
		m.log.Debugln("Pattern", p.String(), "not found")
	}

	return addr, found, nil
}

// FindAll returns every address in the image where the signature matches, in ascending order
func (m *Module) FindAll(text string) ([]memory.Address, error) {
	p, err := pattern.Parse(text)
	if err != nil {
		return nil, err
	}

	var results []memory.Address
	for _, span := range m.spans {
		matches, err := m.scanner.ScanAll(m.reader, span.Base, span.End(), p)
		if err != nil {
			return nil, fmt.Errorf("scan of %s failed: %w", span, err)
		}
		results = append(results, matches...)
	}

	m.log.Debugln("Pattern", p.String(), "matched", len(results), "times")
	return results, nil
}

// PatternScan finds the signature and resolves the address stored next to it.
//
// The pointer-sized value v at match+offset is read and v-Base+extra is
// returned, i.e. the stored address made relative to the image. The match
// site itself is never returned; use FindPattern for that. Unsigned
// arithmetic wraps if v lies below Base.
//
// A signature without a match yields found == false and a nil error.
func (m *Module) PatternScan(text string, offset int, extra uint64) (uint64, bool, error) {
	match, found, err := m.FindPattern(text)
	if err != nil || !found {
		return 0, false, err
	}

	resolved, err := m.Resolve(match, offset, extra)
	if err != nil {
		return 0, false, err
	}
	return resolved, true, nil
}

// Resolve performs the PatternScan dereference for a match that is already known
func (m *Module) Resolve(match memory.Address, offset int, extra uint64) (uint64, error) {
	stored, err := m.ReadPointer(match.Add(int64(offset)))
	if err != nil {
		return 0, fmt.Errorf("failed to dereference match at %s%+d: %w", match.ToString(), offset, err)
	}

	resolved := stored - uint64(m.base) + extra
	m.log.Debugln("Resolved", match.ToString(), "via", memory.Address(stored).ToString(), "to offset", fmt.Sprintf("0x%X", resolved))

	return resolved, nil
}

// ResolveRelative finds the signature and decodes a RIP-relative operand.
//
// The signed 32-bit displacement d at match+dispOffset is read and
// (match-Base)+instrLen+d is returned, the image offset the instruction at
// the match refers to when instrLen is its length.
func (m *Module) ResolveRelative(text string, dispOffset int, instrLen int) (uint64, bool, error) {
	match, found, err := m.FindPattern(text)
	if err != nil || !found {
		return 0, false, err
	}

	resolved, err := m.ResolveRelativeAt(match, dispOffset, instrLen)
	if err != nil {
		return 0, false, err
	}
	return resolved, true, nil
}

// ResolveRelativeAt decodes the RIP-relative operand of the instruction at match
func (m *Module) ResolveRelativeAt(match memory.Address, dispOffset int, instrLen int) (uint64, error) {
	disp, err := m.readInt32(match.Add(int64(dispOffset)))
	if err != nil {
		return 0, fmt.Errorf("failed to read displacement of match at %s%+d: %w", match.ToString(), dispOffset, err)
	}

	target := match.Add(int64(instrLen) + int64(disp))
	return m.Relative(target), nil
}
