// Copyright 2025 momentics@gmail.com
// License: Apache 2.0

// innerbuf_test.go - retention cap of the inner frame buffer pool.
package layer8

import (
	"bytes"
	"testing"
)

func TestReleaseInnerBufCap(t *testing.T) {
	small := new(bytes.Buffer)
	small.Grow(1024)
	small.WriteString("leftover")
	if !releaseInnerBuf(small) {
		t.Fatal("small buffer not retained")
	}
	if small.Len() != 0 {
		t.Fatalf("retained buffer holds %d bytes, want 0", small.Len())
	}

	big := new(bytes.Buffer)
	big.Grow(maxRetainedInnerBuf + 1)
	if releaseInnerBuf(big) {
		t.Fatalf("buffer of cap %d retained, cap is %d", big.Cap(), maxRetainedInnerBuf)
	}
}
