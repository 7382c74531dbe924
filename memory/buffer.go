package memory

// Buffer exposes a byte slice as memory mapped at a fixed base address
type Buffer struct {
	baseaddress Address
	data        []byte
}

var _ Reader = (*Buffer)(nil)

func NewBuffer(baseAddress Address, data []byte) *Buffer {
	return &Buffer{
		baseaddress: baseAddress,
		data:        data,
	}
}

func (b *Buffer) Data() []byte {
	return b.data
}

// Region returns the address range backed by the buffer
func (b *Buffer) Region() Region {
	return Region{Base: b.baseaddress, Size: Size(len(b.data))}
}

// ReadMemory returns a view into the buffer, not a copy
func (b *Buffer) ReadMemory(addr Address, size Size) ([]byte, error) {
	if err := b.Region().Check(addr, size); err != nil {
		return nil, err
	}
	offset := uint64(addr - b.baseaddress)
	return b.data[offset : offset+uint64(size)], nil
}
