package tacit

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
)

// rowKey is a fixed-size fingerprint of one row, used to compare rows by
// content without pairwise walks.
type rowKey [sha256.Size]byte

// rowKeys fingerprints every row of v.
func rowKeys(v Value) []rowKey {
	rows := v.Rows()
	keys := make([]rowKey, len(rows))
	var buf bytes.Buffer
	for i, r := range rows {
		buf.Reset()
		encodeValue(&buf, r)
		keys[i] = sha256.Sum256(buf.Bytes())
	}
	return keys
}

// Fingerprint returns a deterministic hex digest of v's kind, shape and
// elements. Equal values have equal fingerprints.
func Fingerprint(v Value) string {
	var buf bytes.Buffer
	encodeValue(&buf, v)
	sum := sha256.Sum256(buf.Bytes())
	return fmt.Sprintf("%x", sum[:])
}

// encodeValue writes a canonical byte form of v. NaNs share one encoding
// and negative zero encodes as zero.
func encodeValue(w *bytes.Buffer, v Value) {
	var scratch [8]byte
	putInt := func(n uint64) {
		binary.LittleEndian.PutUint64(scratch[:], n)
		w.Write(scratch[:])
	}

	w.WriteByte(byte(v.kind))
	putInt(uint64(len(v.shape)))
	for _, d := range v.shape {
		putInt(uint64(d))
	}
	switch v.kind {
	case KindNum:
		for _, x := range v.nums {
			switch {
			case math.IsNaN(x):
				putInt(0x7ff8000000000001)
			case x == 0:
				putInt(0)
			default:
				putInt(math.Float64bits(x))
			}
		}
	case KindChar:
		for _, r := range v.chars {
			putInt(uint64(r))
		}
	case KindBox:
		for _, b := range v.boxes {
			encodeValue(w, b)
		}
	case KindFunc:
		for _, f := range v.funcs {
			putInt(f.id)
		}
	default:
		panic(fmt.Sprintf("unhandled kind %d", v.kind))
	}
}

// classify numbers each row by the order its value first appears.
func classify(v Value) Value {
	keys := rowKeys(v)
	seen := make(map[rowKey]int, len(keys))
	out := make([]int, len(keys))
	for i, k := range keys {
		c, ok := seen[k]
		if !ok {
			c = len(seen)
			seen[k] = c
		}
		out[i] = c
	}
	return indexValue(out)
}

// deduplicate keeps the first occurrence of every row.
func deduplicate(v Value) Value {
	keys := rowKeys(v)
	seen := make(map[rowKey]struct{}, len(keys))
	idx := make([]int, 0, len(keys))
	for i, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		idx = append(idx, i)
	}
	return v.gather(idx)
}
