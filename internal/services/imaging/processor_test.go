package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()

	// RGBA on purpose: the decoder must collapse the alpha channel.
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 200, A: 128})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeUpload_CollapsesAlpha(t *testing.T) {
	mat, err := DecodeUpload(pngBytes(t))
	if err != nil {
		t.Fatalf("DecodeUpload failed: %v", err)
	}
	defer mat.Close()

	if mat.Channels() != 3 {
		t.Errorf("Expected 3-channel image, got %d channels", mat.Channels())
	}

	if mat.Rows() != 8 || mat.Cols() != 8 {
		t.Errorf("Expected 8x8 image, got %dx%d", mat.Cols(), mat.Rows())
	}
}

func TestDecodeUpload_InvalidBytes(t *testing.T) {
	if _, err := DecodeUpload([]byte("definitely not an image")); err == nil {
		t.Error("Expected error for invalid image bytes")
	}

	if _, err := DecodeUpload(nil); err == nil {
		t.Error("Expected error for empty payload")
	}
}

func TestDecode_RepeatedFailuresNeedNoCleanup(t *testing.T) {
	// Every error branch returns the zero Mat, which owns no native
	// allocation; callers bail on error without a Close, so a burst of
	// malformed requests must not require any cleanup from them.
	for i := 0; i < 100; i++ {
		if _, err := DecodeUpload([]byte("garbage payload")); err == nil {
			t.Fatal("Expected error for invalid image bytes")
		}
		if _, err := DecodeUpload(nil); err == nil {
			t.Fatal("Expected error for empty payload")
		}
		if _, err := DecodeBase64("notbase64!!!"); err == nil {
			t.Fatal("Expected error for malformed base64")
		}
	}
}

func TestStripDataURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"data:image/png;base64,AAAA", "AAAA"},
		{"data:image/jpeg;base64,QUJD,rest", "QUJD,rest"}, // only the first segment goes
		{"AAAA", "AAAA"},
		{",", ""},
	}

	for _, tt := range tests {
		if got := StripDataURL(tt.input); got != tt.expected {
			t.Errorf("StripDataURL(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestDecodeBase64_WithDataURLPrefix(t *testing.T) {
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t))

	mat, err := DecodeBase64(payload)
	if err != nil {
		t.Fatalf("DecodeBase64 failed: %v", err)
	}
	defer mat.Close()

	if mat.Channels() != 3 {
		t.Errorf("Expected 3-channel image, got %d channels", mat.Channels())
	}
}

func TestDecodeBase64_Malformed(t *testing.T) {
	if _, err := DecodeBase64("notbase64!!!"); err == nil {
		t.Error("Expected error for malformed base64")
	}

	// Valid base64 that does not decode to an image.
	if _, err := DecodeBase64(base64.StdEncoding.EncodeToString([]byte("plain text"))); err == nil {
		t.Error("Expected error for non-image base64 payload")
	}
}
