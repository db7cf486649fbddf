/*
 * CMPSC - Main storage
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package memory

// Storage is held as big endian words, a byte address selects the byte
// within the word starting at the most significant end.
type mem struct {
	mem  [4 * 1024 * 1024]uint32
	key  [8192]uint8
	size uint32
}

var memory mem

const (
	AMASK uint32 = 0x00ffffff // Mask address bits

	keyShift       = 11   // Storage key covers 2K block
	keyRef   uint8 = 0x04 // Reference bit
	keyChg   uint8 = 0x02 // Change bit
)

// Set size in K
func SetSize(k int) {
	if k > (16 * 1024) {
		k = 16 * 1024
	}
	memory.size = uint32(k * 1024)
}

// Return size of memory in bytes
func GetSize() uint32 {
	return memory.size
}

// Clear all of storage and storage keys.
func Clear() {
	clear(memory.mem[:])
	clear(memory.key[:])
}

// Check if address out of range
func CheckAddr(addr uint32) bool {
	return addr < memory.size
}

// Get a word from memory
func GetWord(addr uint32) (value uint32, error bool) {
	if addr >= memory.size {
		return 0, true
	}
	memory.key[addr>>keyShift] |= keyRef
	return memory.mem[addr>>2], false
}

// Put a word to memory
func PutWord(addr, data uint32) bool {
	if addr >= memory.size {
		return true
	}
	memory.key[addr>>keyShift] |= keyRef | keyChg
	memory.mem[addr>>2] = data
	return false
}

// Get a single byte.
func GetByte(addr uint32) (uint8, bool) {
	if addr >= memory.size {
		return 0, true
	}
	memory.key[addr>>keyShift] |= keyRef
	shift := 8 * (3 - (addr & 3))
	return uint8(memory.mem[addr>>2] >> shift), false
}

// Put a single byte.
func PutByte(addr uint32, data uint8) bool {
	if addr >= memory.size {
		return true
	}
	memory.key[addr>>keyShift] |= keyRef | keyChg
	shift := 8 * (3 - (addr & 3))
	word := &memory.mem[addr>>2]
	*word = (*word &^ (0xff << shift)) | (uint32(data) << shift)
	return false
}

// Fill buffer from memory starting at addr. Returns true if any part
// of the range is outside of storage, nothing is read in that case.
func GetBytes(addr uint32, buf []byte) bool {
	if !inRange(addr, len(buf)) {
		return true
	}
	for i := range buf {
		buf[i], _ = GetByte(addr + uint32(i))
	}
	return false
}

// Copy buffer into memory starting at addr. Returns true if any part
// of the range is outside of storage, nothing is stored in that case.
func PutBytes(addr uint32, buf []byte) bool {
	if !inRange(addr, len(buf)) {
		return true
	}
	for i, by := range buf {
		_ = PutByte(addr+uint32(i), by)
	}
	return false
}

func inRange(addr uint32, n int) bool {
	if n == 0 {
		return true
	}
	end := uint64(addr) + uint64(n) - 1
	return end < uint64(memory.size)
}

func GetKey(addr uint32) uint8 {
	if addr >= memory.size {
		return 0
	}
	return memory.key[addr>>keyShift]
}

func PutKey(addr uint32, key uint8) {
	if addr < memory.size {
		memory.key[addr>>keyShift] = key
	}
}
