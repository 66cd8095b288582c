package service

import (
	"strings"

	"github.com/eswarnandha-a/sece-space/internal/storage"
)

// Extensions whose objects must be retrieved through the raw storage
// class. Images pass through FixURL unchanged.
var documentExtensions = map[string]bool{
	"pdf": true, "doc": true, "docx": true, "txt": true, "rtf": true,
	"odt": true, "xls": true, "xlsx": true, "ppt": true, "pptx": true,
}

// FixURL is a compatibility shim for legacy objects whose stored
// delivery URL encodes the wrong storage class (documents uploaded
// through the image-oriented path). It is a total function: any input
// yields a string, never a panic, and unrecognized shapes come back
// unchanged or with only a safe force-download decoration appended.
func FixURL(rawURL, filename string) string {
	if rawURL == "" || filename == "" {
		return rawURL
	}

	ext := strings.ToLower(extensionOf(filename))
	if !documentExtensions[ext] {
		return rawURL
	}

	// Documents stored under the image class: rewrite to the raw class
	// delivery path, preserving the object key and restoring the real
	// file extension.
	if idx := strings.Index(rawURL, "/image/upload/"); idx >= 0 {
		if publicID, ok := storage.PublicIDFromURL(rawURL); ok {
			return rawURL[:idx] + "/raw/upload/" + publicID + "." + ext
		}
		return forceDownload(rawURL)
	}

	// Already raw but missing the extension.
	if strings.Contains(rawURL, "/raw/upload/") {
		if !strings.Contains(rawURL, "."+ext) {
			return rawURL + "." + ext
		}
		return rawURL
	}

	// Unrecognized shape: decorate rather than guess a new path.
	return forceDownload(rawURL)
}

// forceDownload appends a force-download query hint, idempotently.
func forceDownload(rawURL string) string {
	if strings.Contains(rawURL, "fl_attachment") {
		return rawURL
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + "fl_attachment=true"
}

func extensionOf(filename string) string {
	if dot := strings.LastIndex(filename, "."); dot >= 0 && dot < len(filename)-1 {
		return filename[dot+1:]
	}
	return ""
}
