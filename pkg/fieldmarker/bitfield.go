package fieldmarker

import "fmt"

// BitField8 packs eight flags into a byte, bit 0 first.
type BitField8 byte

// Get returns bit i. Indices outside 0..7 read as false.
func (b BitField8) Get(i int) bool {
	if i < 0 || i > 7 {
		return false
	}
	return b&(1<<uint(i)) != 0
}

// Set sets or clears bit i. Indices outside 0..7 are ignored.
func (b *BitField8) Set(i int, v bool) {
	if i < 0 || i > 7 {
		return
	}
	if v {
		*b |= 1 << uint(i)
	} else {
		*b &^= 1 << uint(i)
	}
}

// Pack builds a bitfield from eight flags.
func Pack(flags [8]bool) BitField8 {
	var b BitField8
	for i, v := range flags {
		b.Set(i, v)
	}
	return b
}

// Unpack expands the bitfield into eight flags.
func (b BitField8) Unpack() [8]bool {
	var flags [8]bool
	for i := range flags {
		flags[i] = b.Get(i)
	}
	return flags
}

func (b BitField8) String() string {
	return fmt.Sprintf("0x%02X", byte(b))
}
