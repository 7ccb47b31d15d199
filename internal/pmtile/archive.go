package pmtile

import (
	"bytes"
	"compress/gzip"
	"io"
	"sort"

	"github.com/valpere/mvtfilter/internal/errs"
)

// TileEntry is one resolved directory entry: its Hilbert id decoded back to
// (z, x, y), in the order it appears in the archive's directory.
type TileEntry struct {
	Zoom uint8
	X, Y uint32
	ID   uint64
}

// Reader opens a PMTiles v3 archive held entirely in memory (the tool
// operates on whole files, never partial range requests) and exposes its
// header, metadata, directory, and per-tile decompressed bytes.
//
// This is this project's own minimal Reader; the upstream
// github.com/protomaps/go-pmtiles/pmtiles package targets HTTP range-request
// serving and its high-level API surface was not verified against the pack,
// so only the wire-format primitives (header.go, directory.go) are adapted
// from it.
type Reader struct {
	data    []byte
	header  Header
	entries []Entry
}

// Open parses a complete PMTiles archive from data.
func Open(data []byte) (*Reader, error) {
	header, err := DeserializeHeader(data)
	if err != nil {
		return nil, err
	}
	if header.TileType != TileTypeMVT {
		return nil, errs.New(errs.CodeArchive, "archive tile type is not MVT", nil)
	}

	rootDir := slice(data, header.RootOffset, header.RootLength)
	entries, err := DeserializeEntries(rootDir, header.InternalCompression)
	if err != nil {
		return nil, errs.New(errs.CodeArchive, "decode root directory", err)
	}

	resolved := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.RunLength == 0 {
			leafDir := slice(data, header.LeafDirectoryOffset+e.Offset, uint64(e.Length))
			leafEntries, err := DeserializeEntries(leafDir, header.InternalCompression)
			if err != nil {
				return nil, errs.New(errs.CodeArchive, "decode leaf directory", err)
			}
			resolved = append(resolved, leafEntries...)
			continue
		}
		resolved = append(resolved, e)
	}

	return &Reader{data: data, header: header, entries: resolved}, nil
}

func slice(data []byte, offset, length uint64) []byte {
	if offset+length > uint64(len(data)) {
		return nil
	}
	return data[offset : offset+length]
}

// Header returns the archive's parsed header.
func (r *Reader) Header() Header { return r.header }

// Metadata returns the archive's decompressed metadata JSON bytes.
func (r *Reader) Metadata() ([]byte, error) {
	raw := slice(r.data, r.header.MetadataOffset, r.header.MetadataLength)
	return decompress(raw, r.header.InternalCompression)
}

// Entries returns the archive's directory entries, resolved to (z, x, y)
// and expanded from any run-length-compressed runs, in directory order.
func (r *Reader) Entries() []TileEntry {
	out := make([]TileEntry, 0, len(r.entries))
	for _, e := range r.entries {
		run := e.RunLength
		if run == 0 {
			run = 1
		}
		for i := uint32(0); i < run; i++ {
			id := e.TileID + uint64(i)
			z, x, y := IDToZxy(id)
			out = append(out, TileEntry{Zoom: z, X: x, Y: y, ID: id})
		}
	}
	return out
}

// GetTile returns the decompressed bytes for the tile at id, or ok=false if
// the archive has no entry for it.
func (r *Reader) GetTile(id uint64) (data []byte, ok bool, err error) {
	i := sort.Search(len(r.entries), func(i int) bool {
		e := r.entries[i]
		run := e.RunLength
		if run == 0 {
			run = 1
		}
		return e.TileID+uint64(run) > id
	})
	if i >= len(r.entries) {
		return nil, false, nil
	}
	e := r.entries[i]
	if id < e.TileID {
		return nil, false, nil
	}
	raw := slice(r.data, r.header.TileDataOffset+e.Offset, uint64(e.Length))
	out, err := decompress(raw, r.header.TileCompression)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func decompress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone, CompressionUnknown:
		return data, nil
	case CompressionGzip:
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errs.New(errs.CodeCompression, "gunzip section", err)
		}
		defer gz.Close()
		return io.ReadAll(gz)
	default:
		return nil, errs.New(errs.CodeCompression, "unsupported internal compression", nil)
	}
}

// Writer accumulates tiles in enumeration order and serializes a new
// PMTiles v3 archive carrying the same tile type, compression, zoom range,
// bounds, and (overridden) metadata as the source archive.
type Writer struct {
	header   Header
	metadata []byte
	tileData bytes.Buffer
	entries  []Entry
}

// NewWriter creates a Writer seeded from the source archive's header (minus
// the offset/length/count fields, which are recomputed at Finalize) and the
// already-override-merged metadata JSON.
func NewWriter(header Header, metadata []byte) *Writer {
	return &Writer{header: header, metadata: metadata}
}

// AddTile appends one tile's bytes (already compressed per the archive's
// tile_compression) to the archive, coalescing it into the previous entry's
// run if it is byte-identical and contiguous in id.
func (w *Writer) AddTile(id uint64, data []byte) error {
	offset := uint64(w.tileData.Len())
	if n := len(w.entries); n > 0 {
		last := &w.entries[n-1]
		if last.TileID+uint64(last.RunLength) == id &&
			last.Length == uint32(len(data)) &&
			bytes.Equal(w.tileData.Bytes()[last.Offset:last.Offset+uint64(last.Length)], data) {
			last.RunLength++
			return nil
		}
	}
	if _, err := w.tileData.Write(data); err != nil {
		return errs.New(errs.CodeArchive, "append tile bytes", err)
	}
	w.entries = append(w.entries, Entry{TileID: id, Offset: offset, Length: uint32(len(data)), RunLength: 1})
	return nil
}

// Finalize serializes the complete archive: header, root directory,
// metadata, then tile data, and returns it as a single byte slice. It must
// be called exactly once.
func (w *Writer) Finalize() ([]byte, error) {
	compressedMeta, err := gzipBytes(w.metadata)
	if err != nil {
		return nil, errs.New(errs.CodeCompression, "compress metadata", err)
	}
	dir := SerializeEntries(w.entries, CompressionGzip)

	h := w.header
	h.InternalCompression = CompressionGzip
	h.RootOffset = HeaderLenBytes
	h.RootLength = uint64(len(dir))
	h.MetadataOffset = h.RootOffset + h.RootLength
	h.MetadataLength = uint64(len(compressedMeta))
	h.LeafDirectoryOffset = h.MetadataOffset + h.MetadataLength
	h.LeafDirectoryLength = 0
	h.TileDataOffset = h.LeafDirectoryOffset
	h.TileDataLength = uint64(w.tileData.Len())

	var addressed uint64
	for _, e := range w.entries {
		run := e.RunLength
		if run == 0 {
			run = 1
		}
		addressed += uint64(run)
	}
	h.AddressedTilesCount = addressed
	h.TileEntriesCount = uint64(len(w.entries))
	h.TileContentsCount = uint64(len(w.entries))
	h.Clustered = true

	var out bytes.Buffer
	out.Write(SerializeHeader(h))
	out.Write(dir)
	out.Write(compressedMeta)
	out.Write(w.tileData.Bytes())
	return out.Bytes(), nil
}

func gzipBytes(data []byte) ([]byte, error) {
	var b bytes.Buffer
	w, err := gzip.NewWriterLevel(&b, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
