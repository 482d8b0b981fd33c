// Package barcode renders code128 barcodes and QR codes as PNG images.
package barcode

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"regexp"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/qr"
)

type Kind string

const (
	Code128 Kind = "code128"
	QR      Kind = "qr"
)

var (
	ErrUnknownKind = errors.New("unknown barcode kind")
	ErrEmptyValue  = errors.New("barcode value is empty")
)

// Size limits in pixels.
const (
	MaxSize        = 2000
	DefaultWidth   = 300
	DefaultHeight  = 100
	DefaultQRSize  = 256
	filenameLayout = "20060102_150405"
)

// DefaultSize returns the default width and height for kind.
func DefaultSize(kind Kind) (int, int) {
	if kind == QR {
		return DefaultQRSize, DefaultQRSize
	}
	return DefaultWidth, DefaultHeight
}

// Render encodes value and scales it to w x h. A zero size takes the default.
func Render(kind Kind, value string, w, h int) ([]byte, error) {
	if value == "" {
		return nil, ErrEmptyValue
	}
	dw, dh := DefaultSize(kind)
	if w <= 0 {
		w = dw
	}
	if h <= 0 {
		h = dh
	}
	if w > MaxSize || h > MaxSize {
		return nil, fmt.Errorf("barcode size %dx%d exceeds %d", w, h, MaxSize)
	}

	var (
		bc  barcode.Barcode
		err error
	)
	switch kind {
	case Code128:
		bc, err = code128.Encode(value)
	case QR:
		bc, err = qr.Encode(value, qr.M, qr.Auto)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}

	// a barcode cannot be scaled below its module count
	if b := bc.Bounds(); w < b.Dx() {
		w = b.Dx()
	}
	if b := bc.Bounds(); h < b.Dy() {
		h = b.Dy()
	}
	scaled, err := barcode.Scale(bc, w, h)
	if err != nil {
		return nil, fmt.Errorf("scale %s: %w", kind, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename returns <kind>_<value>_<yyyyMMdd_HHmmss>.png with the value made
// safe for a file name.
func Filename(kind Kind, value string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s.png", kind, unsafeChars.ReplaceAllString(value, "-"), at.Format(filenameLayout))
}
