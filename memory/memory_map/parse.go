package memory_map

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Parse parses maps formatted text, e.g.
//
//	55d0c8e00000-55d0c8e02000 r--p 00000000 08:01 1234   /usr/bin/cat
//
// The result is sorted by address.
func Parse(r io.Reader) ([]MemoryMapItem, error) {
	var memoryMap []MemoryMapItem
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		// Parse address range (e.g., "00400000-0040b000")
		addrRange := strings.Split(fields[0], "-")
		if len(addrRange) != 2 {
			continue
		}

		startAddr, err := strconv.ParseUint(addrRange[0], 16, 64)
		if err != nil {
			continue
		}

		endAddr, err := strconv.ParseUint(addrRange[1], 16, 64)
		if err != nil || endAddr < startAddr {
			continue
		}

		memoryMap = append(memoryMap, MemoryMapItem{
			Address: startAddr,
			Size:    uint(endAddr - startAddr),
			Perms:   fields[1],
			Path:    pathField(line),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	Sort(memoryMap)

	return memoryMap, nil
}

// pathField returns everything after the fifth field verbatim, since the path
// may itself contain runs of spaces. The " (deleted)" marker of unlinked
// files is dropped.
func pathField(line string) string {
	rest := line
	for i := 0; i < 5; i++ {
		rest = strings.TrimLeft(rest, " \t")
		end := strings.IndexAny(rest, " \t")
		if end < 0 {
			return ""
		}
		rest = rest[end:]
	}

	rest = strings.TrimLeft(rest, " \t")
	return strings.TrimSuffix(rest, " (deleted)")
}
