// Package pmtile implements the subset of the PMTiles v3 container format
// this tool needs: reading an archive's header, directory, and tile bytes,
// and writing a new archive with the same shape but rewritten tile content.
//
// Adapted from the wire layout of github.com/protomaps/go-pmtiles/pmtiles
// (BSD-3-Clause); the high-level Reader/Writer in archive.go is this
// project's own, since no single upstream type covers the streaming
// read-transform-write flow this tool needs.
package pmtile

import (
	"encoding/binary"

	"github.com/valpere/mvtfilter/internal/errs"
)

// Compression identifies the compression applied to individual tiles and to
// the internal metadata/directory sections.
type Compression uint8

const (
	CompressionUnknown Compression = 0
	CompressionNone    Compression = 1
	CompressionGzip    Compression = 2
	CompressionBrotli  Compression = 3
	CompressionZstd    Compression = 4
)

// TileType identifies the format of individual tile contents.
type TileType uint8

const (
	TileTypeUnknown TileType = 0
	TileTypeMVT     TileType = 1
	TileTypePNG     TileType = 2
	TileTypeJPEG    TileType = 3
	TileTypeWebP    TileType = 4
	TileTypeAVIF    TileType = 5
)

// HeaderLenBytes is the fixed size of the binary PMTiles v3 header.
const HeaderLenBytes = 127

// Header is the binary PMTiles v3 header.
type Header struct {
	SpecVersion         uint8
	RootOffset          uint64
	RootLength          uint64
	MetadataOffset       uint64
	MetadataLength       uint64
	LeafDirectoryOffset uint64
	LeafDirectoryLength uint64
	TileDataOffset      uint64
	TileDataLength      uint64
	AddressedTilesCount uint64
	TileEntriesCount    uint64
	TileContentsCount   uint64
	Clustered           bool
	InternalCompression Compression
	TileCompression     Compression
	TileType            TileType
	MinZoom             uint8
	MaxZoom             uint8
	MinLonE7            int32
	MinLatE7            int32
	MaxLonE7            int32
	MaxLatE7            int32
	CenterZoom          uint8
	CenterLonE7         int32
	CenterLatE7         int32
}

// SerializeHeader encodes h into its fixed 127-byte wire form.
func SerializeHeader(h Header) []byte {
	b := make([]byte, HeaderLenBytes)
	copy(b[0:7], "PMTiles")
	b[7] = 3
	binary.LittleEndian.PutUint64(b[8:16], h.RootOffset)
	binary.LittleEndian.PutUint64(b[16:24], h.RootLength)
	binary.LittleEndian.PutUint64(b[24:32], h.MetadataOffset)
	binary.LittleEndian.PutUint64(b[32:40], h.MetadataLength)
	binary.LittleEndian.PutUint64(b[40:48], h.LeafDirectoryOffset)
	binary.LittleEndian.PutUint64(b[48:56], h.LeafDirectoryLength)
	binary.LittleEndian.PutUint64(b[56:64], h.TileDataOffset)
	binary.LittleEndian.PutUint64(b[64:72], h.TileDataLength)
	binary.LittleEndian.PutUint64(b[72:80], h.AddressedTilesCount)
	binary.LittleEndian.PutUint64(b[80:88], h.TileEntriesCount)
	binary.LittleEndian.PutUint64(b[88:96], h.TileContentsCount)
	if h.Clustered {
		b[96] = 0x1
	}
	b[97] = uint8(h.InternalCompression)
	b[98] = uint8(h.TileCompression)
	b[99] = uint8(h.TileType)
	b[100] = h.MinZoom
	b[101] = h.MaxZoom
	binary.LittleEndian.PutUint32(b[102:106], uint32(h.MinLonE7))
	binary.LittleEndian.PutUint32(b[106:110], uint32(h.MinLatE7))
	binary.LittleEndian.PutUint32(b[110:114], uint32(h.MaxLonE7))
	binary.LittleEndian.PutUint32(b[114:118], uint32(h.MaxLatE7))
	b[118] = h.CenterZoom
	binary.LittleEndian.PutUint32(b[119:123], uint32(h.CenterLonE7))
	binary.LittleEndian.PutUint32(b[123:127], uint32(h.CenterLatE7))
	return b
}

// DeserializeHeader decodes the fixed 127-byte header from the front of a
// PMTiles archive.
func DeserializeHeader(d []byte) (Header, error) {
	var h Header
	if len(d) < HeaderLenBytes {
		return h, errs.New(errs.CodeArchive, "truncated PMTiles header", nil)
	}
	if string(d[0:7]) != "PMTiles" {
		return h, errs.New(errs.CodeArchive, "missing PMTiles magic", nil)
	}
	h.SpecVersion = d[7]
	if h.SpecVersion != 3 {
		return h, errs.New(errs.CodeArchive, "unsupported PMTiles spec version (only v3 is supported)", nil)
	}
	h.RootOffset = binary.LittleEndian.Uint64(d[8:16])
	h.RootLength = binary.LittleEndian.Uint64(d[16:24])
	h.MetadataOffset = binary.LittleEndian.Uint64(d[24:32])
	h.MetadataLength = binary.LittleEndian.Uint64(d[32:40])
	h.LeafDirectoryOffset = binary.LittleEndian.Uint64(d[40:48])
	h.LeafDirectoryLength = binary.LittleEndian.Uint64(d[48:56])
	h.TileDataOffset = binary.LittleEndian.Uint64(d[56:64])
	h.TileDataLength = binary.LittleEndian.Uint64(d[64:72])
	h.AddressedTilesCount = binary.LittleEndian.Uint64(d[72:80])
	h.TileEntriesCount = binary.LittleEndian.Uint64(d[80:88])
	h.TileContentsCount = binary.LittleEndian.Uint64(d[88:96])
	h.Clustered = d[96] == 0x1
	h.InternalCompression = Compression(d[97])
	h.TileCompression = Compression(d[98])
	h.TileType = TileType(d[99])
	h.MinZoom = d[100]
	h.MaxZoom = d[101]
	h.MinLonE7 = int32(binary.LittleEndian.Uint32(d[102:106]))
	h.MinLatE7 = int32(binary.LittleEndian.Uint32(d[106:110]))
	h.MaxLonE7 = int32(binary.LittleEndian.Uint32(d[110:114]))
	h.MaxLatE7 = int32(binary.LittleEndian.Uint32(d[114:118]))
	h.CenterZoom = d[118]
	h.CenterLonE7 = int32(binary.LittleEndian.Uint32(d[119:123]))
	h.CenterLatE7 = int32(binary.LittleEndian.Uint32(d[123:127]))
	return h, nil
}
