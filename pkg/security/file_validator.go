package security

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileCheck is the outcome of inspecting an uploaded file.
type FileCheck struct {
	Valid        bool
	Extension    string
	DetectedMIME string
	Error        string
}

// Magic byte signatures keyed by lowercase extension.
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".gif":  {{0x47, 0x49, 0x46, 0x38, 0x37, 0x61}, {0x47, 0x49, 0x46, 0x38, 0x39, 0x61}},
	".webp": {{0x52, 0x49, 0x46, 0x46}},
	".pdf":  {{0x25, 0x50, 0x44, 0x46}},
	".doc":  {{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},
	".docx": {{0x50, 0x4B, 0x03, 0x04}},
}

// Extensions without a signature are checked by sniffed MIME only.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
	".json": true,
}

// application/octet-stream is deliberately absent.
var allowedMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,

	"application/pdf":           true,
	"application/msword":        true,
	"application/x-ole-storage": true,
	"application/zip":           true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,

	"text/plain":       true,
	"application/json": true,
}

// InspectFile checks the extension whitelist, the magic bytes and the sniffed MIME type.
func InspectFile(filename string, data []byte) FileCheck {
	mime := mimetype.Detect(data)
	// drop parameters such as "; charset=utf-8"
	detected, _, _ := strings.Cut(mime.String(), ";")
	check := FileCheck{DetectedMIME: strings.TrimSpace(detected)}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		check.Error = "file has no extension"
		return check
	}
	check.Extension = ext

	if !allowedExtensions[ext] {
		check.Error = "file extension not allowed: " + ext
		return check
	}

	if sigs, ok := magicBytes[ext]; ok && !hasSignature(data, sigs) {
		check.Error = "file content does not match extension"
		return check
	}

	if !mimeAllowed(mime) {
		check.Error = "file type not allowed: " + check.DetectedMIME
		return check
	}

	check.Valid = true
	return check
}

func mimeAllowed(mime *mimetype.MIME) bool {
	// mimetype reports the most specific type; accept when it or any parent is allowed
	for m := mime; m != nil; m = m.Parent() {
		base, _, _ := strings.Cut(m.String(), ";")
		if allowedMIMEs[strings.TrimSpace(base)] {
			return true
		}
	}
	return false
}

func hasSignature(data []byte, sigs [][]byte) bool {
	if len(data) < 4 {
		return false
	}
	for _, sig := range sigs {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// CheckExtension is a cheap pre-check run before the body is read.
func CheckExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return errors.New("file has no extension")
	}
	if !allowedExtensions[ext] {
		return errors.New("file extension not allowed: " + ext)
	}
	return nil
}

func IsImageExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}
	return false
}
