package format

import "encoding/binary"

// Header fields are stored little-endian regardless of host byte order so
// a dumped address space reads the same everywhere.

// PutU64 writes a uint64 value to the buffer at the specified offset in little-endian format.
func PutU64(b []byte, off uint64, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// ReadU64 reads a uint64 value from the buffer at the specified offset in little-endian format.
func ReadU64(b []byte, off uint64) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

// ReadHeader decodes the header at off into its capacity and allocation tag.
func ReadHeader(b []byte, off uint64) (size uint64, allocated bool) {
	raw := ReadU64(b, off+SizeOffset)
	return raw & SizeMask, raw&AllocatedBit != 0
}

// PutHeader encodes a header at off.
func PutHeader(b []byte, off uint64, size uint64, allocated bool) {
	raw := size & SizeMask
	if allocated {
		raw |= AllocatedBit
	}
	PutU64(b, off+SizeOffset, raw)
}

// ReadLink returns the header address of the block following the free block
// at off, and false at the end of the list.
func ReadLink(b []byte, off uint64) (uint64, bool) {
	v := ReadU64(b, off+LinkOffset)
	if v == NoLink {
		return 0, false
	}
	return v - HeaderSize, true
}

// PutLink stores the forward link of the free block at off. ok=false writes
// the end-of-list marker.
func PutLink(b []byte, off uint64, next uint64, ok bool) {
	v := uint64(NoLink)
	if ok {
		v = next + HeaderSize
	}
	PutU64(b, off+LinkOffset, v)
}
