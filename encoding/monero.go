package encoding

import (
	"errors"
	"fmt"
	"math/bits"
)

const (
	moneroAlphabet         = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	moneroFullBlockSize    = 8
	moneroFullEncodedBlock = 11
)

// moneroEncodedSizes[n] is the encoded length of an n-byte block.
var moneroEncodedSizes = [moneroFullBlockSize + 1]int{0, 2, 3, 5, 6, 7, 9, 10, 11}

var moneroIndex = func() [256]int8 {
	var idx [256]int8
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(moneroAlphabet); i++ {
		idx[moneroAlphabet[i]] = int8(i)
	}
	return idx
}()

var errMoneroOverflow = errors.New("block value overflows its decoded size")

// decodeMonero decodes the block-based base58 variant used by Monero addresses.
// Input is split into 11-character blocks that each decode to 8 bytes; the
// trailing block must have one of the lengths in moneroEncodedSizes.
func decodeMonero(text string) ([]byte, error) {
	if text == "" {
		return []byte{}, nil
	}

	fullBlocks := len(text) / moneroFullEncodedBlock
	lastEncoded := len(text) % moneroFullEncodedBlock
	lastDecoded := -1
	for size, encoded := range moneroEncodedSizes {
		if encoded == lastEncoded {
			lastDecoded = size
			break
		}
	}
	if lastDecoded < 0 {
		return nil, fmt.Errorf("invalid encoded length %d", len(text))
	}

	out := make([]byte, 0, fullBlocks*moneroFullBlockSize+lastDecoded)
	for i := 0; i < fullBlocks; i++ {
		block := text[i*moneroFullEncodedBlock : (i+1)*moneroFullEncodedBlock]
		decoded, err := decodeMoneroBlock(block, moneroFullBlockSize)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		out = append(out, decoded...)
	}
	if lastEncoded > 0 {
		decoded, err := decodeMoneroBlock(text[fullBlocks*moneroFullEncodedBlock:], lastDecoded)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", fullBlocks, err)
		}
		out = append(out, decoded...)
	}
	return out, nil
}

func decodeMoneroBlock(block string, size int) ([]byte, error) {
	var value uint64
	for i := 0; i < len(block); i++ {
		digit := moneroIndex[block[i]]
		if digit < 0 {
			return nil, fmt.Errorf("invalid character %q at offset %d", block[i], i)
		}
		hi, lo := bits.Mul64(value, 58)
		if hi != 0 {
			return nil, errMoneroOverflow
		}
		sum, carry := bits.Add64(lo, uint64(digit), 0)
		if carry != 0 {
			return nil, errMoneroOverflow
		}
		value = sum
	}
	if size < moneroFullBlockSize && value >= uint64(1)<<(8*size) {
		return nil, errMoneroOverflow
	}

	out := make([]byte, size)
	for i := size - 1; i >= 0; i-- {
		out[i] = byte(value)
		value >>= 8
	}
	return out, nil
}
