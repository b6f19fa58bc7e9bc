package store

import "encoding/binary"

// Key namespaces. Each collection gets a one-byte prefix followed by the
// big-endian key so that prefix iteration returns entries in key order.
const (
	nsSequence byte = 's'
	nsLength   byte = 'l'
	nsGenome   byte = 'g'
)

func makeKey(ns byte, n int) []byte {
	k := make([]byte, 9)
	k[0] = ns
	binary.BigEndian.PutUint64(k[1:], uint64(n))
	return k
}

func sequenceKey(id int) []byte  { return makeKey(nsSequence, id) }
func lengthKey(id int) []byte    { return makeKey(nsLength, id) }
func genomeKey(index int) []byte { return makeKey(nsGenome, index) }

// keyIndex decodes the numeric part of a namespaced key.
func keyIndex(k []byte) int {
	if len(k) != 9 {
		return -1
	}
	return int(binary.BigEndian.Uint64(k[1:]))
}

func encodeLength(n int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(n))
	return b
}

func decodeLength(b []byte) int {
	if len(b) != 8 {
		return -1
	}
	return int(binary.BigEndian.Uint64(b))
}
