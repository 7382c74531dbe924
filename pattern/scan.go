package pattern

import (
	"fmt"
	"runtime"
	"sync"

	"sigscan/memory"
)

// DefaultChunkSize is how much memory a scanner reads per call to the Reader
const DefaultChunkSize = memory.Size(1 << 20)

// Scanner drives Match over address ranges read through a memory.Reader
type Scanner struct {
	ChunkSize memory.Size
	MaxDOP    uint
}

// Option is a function that configures a Scanner
type Option func(*Scanner)

func WithChunkSize(size memory.Size) Option {
	return func(s *Scanner) {
		s.ChunkSize = size
	}
}

// WithMaxDOP sets the maximum degree of parallelism used by ScanParallel
func WithMaxDOP(maxdop uint) Option {
	return func(s *Scanner) {
		s.MaxDOP = maxdop
	}
}

func NewScanner(options ...Option) *Scanner {
	s := &Scanner{
		ChunkSize: DefaultChunkSize,
		MaxDOP:    1,
	}

	for _, opt := range options {
		opt(s)
	}

	if s.ChunkSize == 0 {
		s.ChunkSize = DefaultChunkSize
	}

	return s
}

// Scan finds the lowest address in [start, end) where p matches using a default Scanner
func Scan(r memory.Reader, start, end memory.Address, p Pattern) (memory.Address, bool, error) {
	return NewScanner().Scan(r, start, end, p)
}

// window is one read of a chunked scan. Matches may only start in
// [addr, addr+size-len(p)], so adjacent windows never report the same match.
type window struct {
	addr memory.Address
	size memory.Size
}

// windows splits [start, end) into reads of ChunkSize+len(p)-1 bytes
// starting every ChunkSize bytes, so a match spanning a boundary is seen whole
func (s *Scanner) windows(start, end memory.Address, p Pattern) ([]window, error) {
	if start > end {
		return nil, fmt.Errorf("%w: start %s is past end %s", memory.ErrInvalidRange, start.ToString(), end.ToString())
	}

	if len(p) == 0 || uint64(end-start) < uint64(len(p)) {
		return nil, nil
	}

	overlap := memory.Size(len(p) - 1)

	var result []window
	for pos := start; pos < end; pos += memory.Address(s.ChunkSize) {
		size := s.ChunkSize + overlap
		if remaining := memory.Size(end - pos); remaining < size {
			size = remaining
		}

		result = append(result, window{addr: pos, size: size})

		if pos+memory.Address(size) == end {
			break
		}
	}

	return result, nil
}

// Scan finds the lowest address in [start, end) where p matches.
// Memory past end is never read. Not finding a match is not an error.
func (s *Scanner) Scan(r memory.Reader, start, end memory.Address, p Pattern) (memory.Address, bool, error) {
	windows, err := s.windows(start, end, p)
	if err != nil {
		return 0, false, err
	}

	for _, w := range windows {
		data, err := r.ReadMemory(w.addr, w.size)
		if err != nil {
			return 0, false, fmt.Errorf("failed to read %s at %s: %w", w.size.ToString(), w.addr.ToString(), err)
		}

		if i, ok := Match(data, p); ok {
			return w.addr + memory.Address(i), true, nil
		}
	}

	return 0, false, nil
}

// ScanAll returns every address in [start, end) where p matches, in ascending order
func (s *Scanner) ScanAll(r memory.Reader, start, end memory.Address, p Pattern) ([]memory.Address, error) {
	windows, err := s.windows(start, end, p)
	if err != nil {
		return nil, err
	}

	var results []memory.Address
	for _, w := range windows {
		data, err := r.ReadMemory(w.addr, w.size)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s at %s: %w", w.size.ToString(), w.addr.ToString(), err)
		}

		for _, i := range MatchAll(data, p) {
			results = append(results, w.addr+memory.Address(i))
		}
	}

	return results, nil
}

// ScanParallel is Scan with the windows spread over at most MaxDOP workers.
// The result is identical to Scan: the lowest matching address wins, and a
// read error is only reported if it occurred below the lowest match.
func (s *Scanner) ScanParallel(r memory.Reader, start, end memory.Address, p Pattern) (memory.Address, bool, error) {
	maxdop := s.MaxDOP

	// Limit maxdop to number of CPUs if it's too large
	if numCPU := uint(runtime.NumCPU()); maxdop > numCPU {
		maxdop = numCPU
	}

	if maxdop <= 1 {
		return s.Scan(r, start, end, p)
	}

	windows, err := s.windows(start, end, p)
	if err != nil {
		return 0, false, err
	}

	type windowResult struct {
		addr  memory.Address
		found bool
		err   error
	}

	results := make([]windowResult, len(windows))

	// Index of the lowest window known to hold a match; later windows are skipped
	var bestMutex sync.Mutex
	best := len(windows)

	sem := make(chan struct{}, maxdop)
	var wg sync.WaitGroup

	for idx, w := range windows {
		wg.Add(1)

		// Acquire a semaphore slot
		sem <- struct{}{}

		go func(idx int, w window) {
			defer func() {
				<-sem
				wg.Done()
			}()

			bestMutex.Lock()
			skip := idx > best
			bestMutex.Unlock()
			if skip {
				return
			}

			data, err := r.ReadMemory(w.addr, w.size)
			if err != nil {
				results[idx].err = fmt.Errorf("failed to read %s at %s: %w", w.size.ToString(), w.addr.ToString(), err)
				return
			}

			if i, ok := Match(data, p); ok {
				results[idx] = windowResult{addr: w.addr + memory.Address(i), found: true}

				bestMutex.Lock()
				if idx < best {
					best = idx
				}
				bestMutex.Unlock()
			}
		}(idx, w)
	}

	wg.Wait()

	for _, res := range results {
		if res.err != nil {
			return 0, false, res.err
		}
		if res.found {
			return res.addr, true, nil
		}
	}

	return 0, false, nil
}
