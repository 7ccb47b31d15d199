package pmtile

import "testing"

func TestZxyIDRoundTrip(t *testing.T) {
	cases := []struct{ z uint8; x, y uint32 }{
		{0, 0, 0},
		{1, 0, 0},
		{1, 1, 1},
		{5, 3, 7},
		{14, 8362, 5956},
		{22, 1000000, 2000000},
	}
	for _, c := range cases {
		id := ZxyToID(c.z, c.x, c.y)
		z, x, y := IDToZxy(id)
		if z != c.z || x != c.x || y != c.y {
			t.Errorf("round trip (%d,%d,%d) -> id %d -> (%d,%d,%d)", c.z, c.x, c.y, id, z, x, y)
		}
	}
}

func TestSerializeDeserializeEntriesRoundTrip(t *testing.T) {
	entries := []Entry{
		{TileID: 0, Offset: 0, Length: 100, RunLength: 1},
		{TileID: 1, Offset: 100, Length: 50, RunLength: 3},
		{TileID: 10, Offset: 500, Length: 20, RunLength: 1},
	}
	for _, compression := range []Compression{CompressionNone, CompressionGzip} {
		encoded := SerializeEntries(entries, compression)
		decoded, err := DeserializeEntries(encoded, compression)
		if err != nil {
			t.Fatalf("DeserializeEntries() error = %v", err)
		}
		if len(decoded) != len(entries) {
			t.Fatalf("got %d entries, want %d", len(decoded), len(entries))
		}
		for i, e := range entries {
			if decoded[i] != e {
				t.Errorf("entry %d = %+v, want %+v", i, decoded[i], e)
			}
		}
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		SpecVersion:         3,
		RootOffset:          127,
		RootLength:          42,
		TileType:            TileTypeMVT,
		TileCompression:     CompressionGzip,
		InternalCompression: CompressionGzip,
		MinZoom:             0,
		MaxZoom:             14,
		Clustered:           true,
		MinLonE7:            -1800000000,
		MaxLonE7:            1800000000,
	}
	encoded := SerializeHeader(h)
	if len(encoded) != HeaderLenBytes {
		t.Fatalf("serialized header length = %d, want %d", len(encoded), HeaderLenBytes)
	}
	decoded, err := DeserializeHeader(encoded)
	if err != nil {
		t.Fatalf("DeserializeHeader() error = %v", err)
	}
	if decoded != h {
		t.Errorf("decoded header = %+v, want %+v", decoded, h)
	}
}

func TestDeserializeHeaderRejectsBadMagic(t *testing.T) {
	bad := make([]byte, HeaderLenBytes)
	copy(bad, "NOTPMTIL")
	if _, err := DeserializeHeader(bad); err == nil {
		t.Fatal("expected error for bad magic")
	}
}
