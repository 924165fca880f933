package imaging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"gocv.io/x/gocv"
)

// DecodeUpload decodes raw image bytes into a 3-channel BGR Mat. Alpha
// channels are collapsed by the color decode. On success the caller owns
// the Mat and must Close it; on error the returned Mat is the zero value
// and holds no native allocation.
func DecodeUpload(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.Mat{}, errors.New("empty image payload")
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to decode image: %w", err)
	}

	if mat.Empty() {
		mat.Close()
		return gocv.Mat{}, errors.New("decoded image is empty")
	}

	return mat, nil
}

// StripDataURL removes a data-URL prefix ("data:image/...;base64,") from a
// base64 payload. Everything up to and including the first comma is dropped;
// strings without a comma pass through unchanged.
func StripDataURL(payload string) string {
	if idx := strings.Index(payload, ","); idx >= 0 {
		return payload[idx+1:]
	}
	return payload
}

// DecodeBase64 decodes a base64-encoded image (optionally data-URL-prefixed)
// into a 3-channel BGR Mat. The error contract matches DecodeUpload.
func DecodeBase64(payload string) (gocv.Mat, error) {
	raw, err := base64.StdEncoding.DecodeString(StripDataURL(payload))
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to decode base64 image: %w", err)
	}

	return DecodeUpload(raw)
}
