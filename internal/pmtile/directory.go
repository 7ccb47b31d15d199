package pmtile

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"io"

	"github.com/valpere/mvtfilter/internal/errs"
)

// Entry is one directory entry: a Hilbert tile-id plus its byte range in
// the tile-data section, with run-length compression for contiguous
// identical tiles.
type Entry struct {
	TileID    uint64
	Offset    uint64
	Length    uint32
	RunLength uint32
}

// ZxyToID converts (z, x, y) tile coordinates to their Hilbert curve index.
func ZxyToID(z uint8, x, y uint32) uint64 {
	if z == 0 {
		return 0
	}
	acc := (uint64(1)<<(uint64(z)*2) - 1) / 3
	n := uint32(z - 1)
	for s := uint32(1) << n; s > 0; s >>= 1 {
		rx := s & x
		ry := s & y
		acc += uint64((3*rx)^ry) << n
		x, y = rotate(s, x, y, rx, ry)
		n--
	}
	return acc
}

func rotate(n, x, y, rx, ry uint32) (uint32, uint32) {
	if ry == 0 {
		if rx != 0 {
			x = n - 1 - x
			y = n - 1 - y
		}
		return y, x
	}
	return x, y
}

// IDToZxy is the inverse of ZxyToID: it recovers (z, x, y) from a Hilbert
// tile-id. It first finds z by walking the per-zoom tile-id ranges
// ZxyToID's accumulator produces, then inverse-Hilbert-decodes the
// position within that zoom using the standard d2xy algorithm.
func IDToZxy(id uint64) (z uint8, x, y uint32) {
	var acc uint64
	for z = 0; z < 32; z++ {
		numTiles := uint64(1) << (uint64(z) * 2)
		if acc+numTiles > id {
			break
		}
		acc += numTiles
	}
	if z == 0 {
		return 0, 0, 0
	}
	t := id - acc
	n := uint32(1) << uint32(z)
	for s := uint32(1); s < n; s *= 2 {
		rx := uint32(1 & (t / 2))
		ry := uint32(1 & (t ^ uint64(rx)))
		x, y = rotate(s, x, y, rx, ry)
		x += s * rx
		y += s * ry
		t /= 4
	}
	return z, x, y
}

// SerializeEntries encodes a directory (sorted by TileID) using the PMTiles
// v3 layout: uvarint entry count, delta-encoded tile-ids, run-lengths,
// lengths, then offsets (0 meaning "contiguous with the previous entry").
// The whole section is optionally gzip-compressed.
func SerializeEntries(entries []Entry, compression Compression) []byte {
	var buf bytes.Buffer
	var w io.WriteCloser
	switch compression {
	case CompressionNone:
		w = nopCloser{&buf}
	case CompressionGzip:
		gz, _ := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		w = gz
	default:
		w = nopCloser{&buf}
	}

	tmp := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(tmp, uint64(len(entries)))
	w.Write(tmp[:n])

	var lastID uint64
	for _, e := range entries {
		n = binary.PutUvarint(tmp, e.TileID-lastID)
		w.Write(tmp[:n])
		lastID = e.TileID
	}
	for _, e := range entries {
		n = binary.PutUvarint(tmp, uint64(e.RunLength))
		w.Write(tmp[:n])
	}
	for _, e := range entries {
		n = binary.PutUvarint(tmp, uint64(e.Length))
		w.Write(tmp[:n])
	}
	for i, e := range entries {
		if i > 0 && e.Offset == entries[i-1].Offset+uint64(entries[i-1].Length) {
			n = binary.PutUvarint(tmp, 0)
		} else {
			n = binary.PutUvarint(tmp, e.Offset+1)
		}
		w.Write(tmp[:n])
	}
	w.Close()
	return buf.Bytes()
}

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

// DeserializeEntries decodes a directory section previously produced by
// SerializeEntries, inverting each of its four column passes in order.
func DeserializeEntries(data []byte, compression Compression) ([]Entry, error) {
	r := io.Reader(bytes.NewReader(data))
	if compression == CompressionGzip {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errs.New(errs.CodeArchive, "decompress directory", err)
		}
		defer gz.Close()
		r = gz
	}
	br := newByteReader(r)

	count, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, errs.New(errs.CodeArchive, "read directory entry count", err)
	}
	entries := make([]Entry, count)

	var lastID uint64
	for i := range entries {
		delta, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, errs.New(errs.CodeArchive, "read directory tile-id", err)
		}
		lastID += delta
		entries[i].TileID = lastID
	}
	for i := range entries {
		rl, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, errs.New(errs.CodeArchive, "read directory run-length", err)
		}
		entries[i].RunLength = uint32(rl)
	}
	for i := range entries {
		l, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, errs.New(errs.CodeArchive, "read directory length", err)
		}
		entries[i].Length = uint32(l)
	}
	for i := range entries {
		off, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, errs.New(errs.CodeArchive, "read directory offset", err)
		}
		if off == 0 {
			if i == 0 {
				return nil, errs.New(errs.CodeArchive, "first directory entry cannot be contiguous-offset", nil)
			}
			entries[i].Offset = entries[i-1].Offset + uint64(entries[i-1].Length)
		} else {
			entries[i].Offset = off - 1
		}
	}
	return entries, nil
}

// byteReader adapts an io.Reader to io.ByteReader, which binary.ReadUvarint
// requires and gzip.Reader/bytes.Reader don't both already satisfy through
// a common interface.
type byteReader struct {
	r   io.Reader
	buf [1]byte
}

func newByteReader(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return &byteReader{r: r}
}

func (b *byteReader) ReadByte() (byte, error) {
	_, err := io.ReadFull(b.r, b.buf[:])
	if err != nil {
		return 0, err
	}
	return b.buf[0], nil
}
