package store

import (
	"encoding/binary"
	"math"
)

// EncodeEmbedding packs a float32 vector into little-endian bytes for
// the memories.embedding BLOB column.
func EncodeEmbedding(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// DecodeEmbedding unpacks a memories.embedding BLOB back into a float32
// vector. Malformed (non-multiple-of-4-length) input decodes as far as
// it can and drops the trailing partial word.
func DecodeEmbedding(raw []byte) []float32 {
	n := len(raw) / 4
	vec := make([]float32, n)
	for i := 0; i < n; i++ {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return vec
}
