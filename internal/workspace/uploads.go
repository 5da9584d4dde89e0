package workspace

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docmanager/internal/api"
)

// UploadCoordinator drives per-file asynchronous uploads and keeps the
// document set consistent: optimistic inserts before any network call,
// per-record status transitions, and name-keyed reconciliation against
// the server's file list.
//
// All exported methods are safe for concurrent use. Network calls run in
// their own goroutines; completions re-acquire the lock and are dropped
// when the generation they were issued against has moved on.
type UploadCoordinator struct {
	backend api.Service
	log     *zap.Logger
	notify  notifyFunc
	timeout time.Duration

	mu       sync.Mutex
	docs     []*Document
	activeID string
	gen      uint64 // bumped on every document-set mutation
}

// NewUploadCoordinator wires an upload coordinator to the backend.
func NewUploadCoordinator(backend api.Service, log *zap.Logger, notify notifyFunc) *UploadCoordinator {
	if log == nil {
		log = zap.NewNop()
	}
	if notify == nil {
		notify = func(EventKind) {}
	}
	return &UploadCoordinator{
		backend: backend,
		log:     log,
		notify:  notify,
		timeout: api.DefaultTimeout,
	}
}

type uploadTask struct {
	id   string
	name string
	data []byte
}

// Submit inserts one uploading record per blob synchronously, then
// starts one independent upload per record. The caller observes results
// through state updates; one file's failure never blocks or rolls back
// its siblings.
func (u *UploadCoordinator) Submit(blobs []FileBlob) {
	if len(blobs) == 0 {
		return
	}

	tasks := make([]uploadTask, 0, len(blobs))
	u.mu.Lock()
	for _, b := range blobs {
		// A name collision (re-upload, or a server-known file of the
		// same name) updates the existing record in place; the set
		// never holds two records with one name.
		doc := u.findByNameLocked(b.Name)
		if doc == nil {
			doc = &Document{ID: uuid.NewString(), Name: b.Name}
			u.docs = append(u.docs, doc)
		}
		doc.Origin = OriginLocalPending
		doc.Status = StatusUploading
		doc.Size = int64(len(b.Data))
		doc.UploadedAt = time.Now()
		doc.Preview.Release()
		doc.Preview = nil
		if isImage(b.Name) {
			if p, err := NewPreview(b.Name, b.Data); err == nil {
				doc.Preview = p
			} else {
				u.log.Warn("preview creation failed", zap.String("file", b.Name), zap.Error(err))
			}
		}
		tasks = append(tasks, uploadTask{id: doc.ID, name: b.Name, data: b.Data})
	}
	u.gen++
	u.mu.Unlock()
	u.notify(EventDocumentsChanged)

	for _, t := range tasks {
		go u.runUpload(t)
	}
}

func (u *UploadCoordinator) runUpload(t uploadTask) {
	ctx, cancel := context.WithTimeout(context.Background(), u.timeout)
	defer cancel()

	err := u.backend.Upload(ctx, t.name, bytes.NewReader(t.data))

	u.mu.Lock()
	doc := u.findLocked(t.id)
	if doc == nil {
		// Deleted while in flight; nothing to transition.
		u.mu.Unlock()
		return
	}
	if err != nil {
		doc.Status = StatusError
		u.log.Warn("upload failed", zap.String("file", t.name), zap.Error(err))
	} else {
		doc.Status = StatusSuccess
		doc.Origin = OriginLocalUploaded
	}
	u.gen++
	u.mu.Unlock()
	u.notify(EventDocumentsChanged)
}

// Refresh reconciles the document set with the server's /files list.
// Names matching an existing record are left as-is; unmatched server
// names are appended as server-known records. The fetched list is
// discarded if the document set changed while the request was in flight.
func (u *UploadCoordinator) Refresh() {
	u.mu.Lock()
	issued := u.gen
	u.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), u.timeout)
		defer cancel()

		names, err := u.backend.ListFiles(ctx)
		if err != nil {
			// Degrade to the previous list rather than surfacing an error.
			u.log.Warn("file list fetch failed", zap.Error(err))
			return
		}

		u.mu.Lock()
		if u.gen != issued {
			u.mu.Unlock()
			u.log.Debug("discarding stale file list", zap.Uint64("issued_gen", issued))
			return
		}
		known := make(map[string]bool, len(u.docs))
		for _, d := range u.docs {
			known[d.Name] = true
		}
		added := false
		for _, name := range names {
			if known[name] {
				continue
			}
			u.docs = append(u.docs, &Document{
				ID:     uuid.NewString(),
				Name:   name,
				Origin: OriginServerKnown,
				Status: StatusSuccess,
			})
			added = true
		}
		if added {
			u.gen++
		}
		u.mu.Unlock()
		if added {
			u.notify(EventDocumentsChanged)
		}
	}()
}

// Delete removes a record optimistically, releases its preview handle,
// and issues a best-effort server delete keyed by filename. Deleting the
// active document clears the selection; a failed server delete is not
// rolled back.
func (u *UploadCoordinator) Delete(id string) {
	u.mu.Lock()
	idx := -1
	for i, d := range u.docs {
		if d.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		u.mu.Unlock()
		return
	}
	doc := u.docs[idx]
	u.docs = append(u.docs[:idx], u.docs[idx+1:]...)
	if u.activeID == id {
		u.activeID = ""
	}
	doc.Preview.Release()
	name := doc.Name
	u.gen++
	u.mu.Unlock()
	u.notify(EventDocumentsChanged)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), u.timeout)
		defer cancel()
		if err := u.backend.DeleteFile(ctx, name); err != nil {
			u.log.Warn("server delete failed", zap.String("file", name), zap.Error(err))
		}
	}()
}

// SetActive selects a document by id. Unknown ids clear the selection.
func (u *UploadCoordinator) SetActive(id string) {
	u.mu.Lock()
	if u.findLocked(id) != nil {
		u.activeID = id
	} else {
		u.activeID = ""
	}
	u.mu.Unlock()
	u.notify(EventDocumentsChanged)
}

// Documents returns a copy of the current document set in insertion
// order.
func (u *UploadCoordinator) Documents() []Document {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]Document, len(u.docs))
	for i, d := range u.docs {
		out[i] = *d
	}
	return out
}

// Active returns a copy of the selected document, or false when nothing
// is selected.
func (u *UploadCoordinator) Active() (Document, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.activeID == "" {
		return Document{}, false
	}
	if d := u.findLocked(u.activeID); d != nil {
		return *d, true
	}
	return Document{}, false
}

func (u *UploadCoordinator) findLocked(id string) *Document {
	for _, d := range u.docs {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (u *UploadCoordinator) findByNameLocked(name string) *Document {
	for _, d := range u.docs {
		if d.Name == name {
			return d
		}
	}
	return nil
}
