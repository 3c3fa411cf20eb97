// Package security screens files before they reach the parser. A path with
// a source extension can still hold a disguised binary; rejecting it here
// keeps garbage out of both the grammar and the fallback classifier.
package security

import (
	"bytes"
	"fmt"
)

const headerSize = 64 * 1024

// SourceValidator rejects files whose content cannot be JavaScript or
// TypeScript source. Small files pass unchecked; the scan is meant to catch
// large foreign blobs, not to lint.
type SourceValidator struct {
	// Threshold is the size in bytes above which content is inspected.
	Threshold int
}

// NewSourceValidator returns a validator with the default 256 KiB threshold.
func NewSourceValidator() *SourceValidator {
	return &SourceValidator{Threshold: 256 * 1024}
}

// binarySignatures are file-format magic prefixes that can never begin a
// source file.
var binarySignatures = [][]byte{
	{0x89, 0x50, 0x4E, 0x47},       // PNG
	{0xFF, 0xD8, 0xFF},             // JPEG
	{0x47, 0x49, 0x46, 0x38},       // GIF
	{0x25, 0x50, 0x44, 0x46, 0x2D}, // PDF
	{0x50, 0x4B, 0x03, 0x04},       // ZIP
	{0x4D, 0x5A},                   // PE executable
	{0x7F, 0x45, 0x4C, 0x46},       // ELF
	{0x1F, 0x8B},                   // gzip
}

// Check inspects content read from path and reports an error when it looks
// like a non-source file wearing a source extension.
func (v *SourceValidator) Check(path string, content []byte) error {
	if len(content) <= v.Threshold {
		return nil
	}

	header := content
	if len(header) > headerSize {
		header = header[:headerSize]
	}

	for _, sig := range binarySignatures {
		if bytes.HasPrefix(header, sig) {
			return fmt.Errorf("%s: content matches a binary file signature", path)
		}
	}
	if binaryRatio(header) > 0.3 {
		return fmt.Errorf("%s: content is mostly non-printable bytes", path)
	}
	return nil
}

// binaryRatio measures the share of control bytes outside tab, LF and CR.
func binaryRatio(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	n := 0
	for _, b := range data {
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			n++
		}
	}
	return float64(n) / float64(len(data))
}
