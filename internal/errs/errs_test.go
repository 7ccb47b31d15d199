package errs

import (
	"errors"
	"testing"
)

func TestErrorFormatsWithAndWithoutCause(t *testing.T) {
	bare := New(CodeConfig, "missing input", nil)
	want := "CONFIG_ERROR: missing input"
	if bare.Error() != want {
		t.Errorf("Error() = %q, want %q", bare.Error(), want)
	}

	cause := errors.New("stat failed")
	wrapped := New(CodeArchive, "read archive", cause)
	wantWrapped := "ARCHIVE_ERROR: read archive: stat failed"
	if wrapped.Error() != wantWrapped {
		t.Errorf("Error() = %q, want %q", wrapped.Error(), wantWrapped)
	}
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("boom")
	wrapped := New(CodeTileDecode, "decode tile", cause)
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}
