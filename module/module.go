// Package module describes a loaded module image of the current process and
// resolves AOB signatures inside it.
package module

import (
	"fmt"
	"strconv"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	"sigscan/memory"
	"sigscan/pattern"
)

// DefaultMaxStringLength bounds ReadString when no smaller image bound applies
const DefaultMaxStringLength = 4096

// Module is an immutable snapshot of one loaded module. Base, size and spans
// are captured at construction and never refreshed, so a descriptor does not
// follow the module across an unload or reload.
type Module struct {
	name   string
	handle uintptr
	base   memory.Address
	size   memory.Size
	spans  []memory.Region

	reader          memory.Reader
	scanner         *pattern.Scanner
	pointerSize     int
	maxStringLength int
	log             *logger.Logger
}

type settings struct {
	locator         Locator
	reader          memory.Reader
	scanner         *pattern.Scanner
	pointerSize     int
	maxStringLength int
	log             *logger.Logger
}

// Option is a function that configures a Module
type Option func(*settings)

// WithLocator replaces the platform module locator used by FromName
func WithLocator(locator Locator) Option {
	return func(s *settings) {
		s.locator = locator
	}
}

// WithReader replaces the memory accessor, memory.Self() by default
func WithReader(reader memory.Reader) Option {
	return func(s *settings) {
		s.reader = reader
	}
}

func WithScanner(scanner *pattern.Scanner) Option {
	return func(s *settings) {
		s.scanner = scanner
	}
}

// WithPointerSize sets the width in bytes of stored addresses, 4 or 8
func WithPointerSize(size int) Option {
	return func(s *settings) {
		s.pointerSize = size
	}
}

func WithMaxStringLength(length int) Option {
	return func(s *settings) {
		s.maxStringLength = length
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(s *settings) {
		s.log = log
	}
}

func newSettings(options []Option) (*settings, error) {
	s := &settings{
		pointerSize:     strconv.IntSize / 8,
		maxStringLength: DefaultMaxStringLength,
	}

	for _, opt := range options {
		opt(s)
	}

	if s.pointerSize != 4 && s.pointerSize != 8 {
		return nil, fmt.Errorf("unsupported pointer size %d", s.pointerSize)
	}
	if s.maxStringLength <= 0 {
		return nil, fmt.Errorf("max string length must be positive, got %d", s.maxStringLength)
	}

	if s.locator == nil {
		s.locator = DefaultLocator()
	}
	if s.reader == nil {
		s.reader = memory.Self()
	}
	if s.scanner == nil {
		s.scanner = pattern.NewScanner()
	}

	return s, nil
}

// FromName locates name among the modules of the current process. An empty
// name selects the main executable. A missing module is an error wrapping
// ErrModuleNotFound; no descriptor is returned in that case.
func FromName(name string, options ...Option) (*Module, error) {
	s, err := newSettings(options)
	if err != nil {
		return nil, err
	}

	info, err := s.locator.Locate(name)
	if err != nil {
		return nil, err
	}

	return newModule(info, s)
}

// New builds a descriptor for an already located module or any other known memory region
func New(info Info, options ...Option) (*Module, error) {
	s, err := newSettings(options)
	if err != nil {
		return nil, err
	}

	return newModule(info, s)
}

func newModule(info Info, s *settings) (*Module, error) {
	if info.Base == 0 || info.Size == 0 {
		return nil, fmt.Errorf("%w: %s: empty image at %s", ErrModuleNotFound, info.Name, info.Base.ToString())
	}

	image := memory.Region{Base: info.Base, Size: info.Size}

	for _, span := range info.Spans {
		if !image.ContainsRange(span.Base, span.Size) {
			return nil, fmt.Errorf("%w: span %s of %s", memory.ErrOutOfRange, span, info.Name)
		}
	}

	// Scans walk the spans in order, so they must ascend and must not overlap
	spans := memory.MergeRegions(info.Spans)
	if len(spans) == 0 {
		spans = []memory.Region{image}
	}

	// Without an OS handle, offsets are taken from the base
	handle := info.Handle
	if handle == 0 {
		handle = uintptr(info.Base)
	}

	m := &Module{
		name:            info.Name,
		handle:          handle,
		base:            info.Base,
		size:            info.Size,
		spans:           spans,
		reader:          s.reader,
		scanner:         s.scanner,
		pointerSize:     s.pointerSize,
		maxStringLength: s.maxStringLength,
		log:             s.log,
	}

	if m.log == nil {
		m.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("module-%s", info.Name)))
	}

	m.log.Infoln("Module located at", m.base.ToString(), "size", m.size.ToString(), "spans", len(m.spans))

	return m, nil
}

func (m *Module) Name() string {
	return m.name
}

// Handle returns the OS handle the typed reads are relative to
func (m *Module) Handle() uintptr {
	return m.handle
}

func (m *Module) Base() memory.Address {
	return m.base
}

func (m *Module) Size() memory.Size {
	return m.size
}

// Region returns the image range [Base, Base+Size)
func (m *Module) Region() memory.Region {
	return memory.Region{Base: m.base, Size: m.size}
}

// Spans returns the readable parts of the image in ascending order
func (m *Module) Spans() []memory.Region {
	spans := make([]memory.Region, len(m.spans))
	copy(spans, m.spans)
	return spans
}

func (m *Module) PointerSize() int {
	return m.pointerSize
}

// Contains reports whether addr lies inside the image
func (m *Module) Contains(addr memory.Address) bool {
	return m.Region().Contains(addr)
}

// Relative converts an absolute address to an offset from the image base
func (m *Module) Relative(addr memory.Address) uint64 {
	return uint64(addr - m.base)
}

// Absolute converts an offset from the image base to an absolute address
func (m *Module) Absolute(offset uint64) memory.Address {
	return m.base + memory.Address(offset)
}

func (m *Module) String() string {
	return fmt.Sprintf("%s %s", m.name, m.Region())
}
