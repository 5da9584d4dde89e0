// Package workspace holds the client-side state model for the DocManager
// workspace: the uploaded-document set, chat sessions, and view
// navigation, kept consistent under asynchronous, partially-failing
// network operations. The package has no UI imports; presentation layers
// observe it through Controller.Snapshot and the event channel.
package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Origin tells where a document record came from.
type Origin int

const (
	// OriginLocalPending is a freshly submitted file whose upload has
	// not resolved yet.
	OriginLocalPending Origin = iota
	// OriginLocalUploaded is a locally submitted file the server has
	// confirmed.
	OriginLocalUploaded
	// OriginServerKnown is a file discovered via /files reconciliation.
	// Upload status is not meaningful for these records.
	OriginServerKnown
)

func (o Origin) String() string {
	switch o {
	case OriginLocalPending:
		return "local-pending"
	case OriginLocalUploaded:
		return "local-uploaded"
	case OriginServerKnown:
		return "server-known"
	}
	return "unknown"
}

// Status is the upload lifecycle state of a local record.
type Status int

const (
	StatusUploading Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusUploading:
		return "uploading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Document is the client-side record for an uploaded or server-known
// file. ID is stable for the record's lifetime and unique within the
// active set. Size and UploadedAt are display metadata only.
type Document struct {
	ID         string
	Name       string
	Origin     Origin
	Status     Status
	Size       int64
	UploadedAt time.Time

	// Preview, when set, is exclusively owned by this record and must
	// be released when the record is removed or the handle replaced.
	Preview *Preview
}

// FileBlob is a file handed to the upload coordinator: the display name
// plus the raw bytes to send.
type FileBlob struct {
	Name string
	Data []byte
}

// Preview is a transient local handle for an image preview: a temp file
// on disk owned by exactly one Document. Release is idempotent.
type Preview struct {
	path     string
	released bool
}

// NewPreview materializes blob data as a temp file for preview display.
func NewPreview(name string, data []byte) (*Preview, error) {
	f, err := os.CreateTemp("", "docmanager-preview-*"+filepath.Ext(name))
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, err
	}
	return &Preview{path: f.Name()}, nil
}

// Path returns the on-disk location of the preview, or "" after release.
func (p *Preview) Path() string {
	if p == nil || p.released {
		return ""
	}
	return p.path
}

// Release deletes the backing file. Safe to call more than once.
func (p *Preview) Release() {
	if p == nil || p.released {
		return
	}
	p.released = true
	os.Remove(p.path)
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".svg":  true,
}

func isImage(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}
