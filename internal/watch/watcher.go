// Package watch feeds files dropped into a local folder straight into
// the upload coordinator, so a watched directory behaves like a
// drag-and-drop target.
package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"docmanager/internal/workspace"
)

// Submitter receives the files discovered by the watcher. Satisfied by
// *workspace.UploadCoordinator.
type Submitter interface {
	Submit(blobs []workspace.FileBlob)
}

// settleDelay is how long a path must stay quiet before it is read.
// Editors and downloads write in bursts; submitting on the first event
// would upload half a file.
const settleDelay = 500 * time.Millisecond

// Watcher monitors one directory and submits newly written files.
type Watcher struct {
	dir       string
	submitter Submitter
	log       *zap.Logger

	fw      *fsnotify.Watcher
	mu      sync.Mutex
	pending map[string]*time.Timer
	done    chan struct{}
	wg      sync.WaitGroup
}

// New creates a watcher for dir. Start must be called to begin watching.
func New(dir string, submitter Submitter, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		dir:       dir,
		submitter: submitter,
		log:       log,
		pending:   make(map[string]*time.Timer),
		done:      make(chan struct{}),
	}
}

// Start begins watching. It fails if the directory cannot be watched.
func (w *Watcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return err
	}
	w.fw = fw
	w.wg.Add(1)
	go w.loop()
	w.log.Info("watching folder", zap.String("dir", w.dir))
	return nil
}

// Stop ends watching and waits for the event loop to exit. Settle timers
// still pending are cancelled.
func (w *Watcher) Stop() {
	if w.fw == nil {
		return
	}
	close(w.done)
	w.fw.Close()
	w.wg.Wait()
	w.mu.Lock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.schedule(event.Name)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

// schedule (re)arms the settle timer for a path, so a file is submitted
// once after its last write.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Reset(settleDelay)
		return
	}
	w.pending[path] = time.AfterFunc(settleDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.submit(path)
	})
}

func (w *Watcher) submit(path string) {
	select {
	case <-w.done:
		return
	default:
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		w.log.Warn("failed to read watched file", zap.String("path", path), zap.Error(err))
		return
	}
	w.log.Info("auto-uploading watched file", zap.String("path", path))
	w.submitter.Submit([]workspace.FileBlob{{Name: filepath.Base(path), Data: data}})
}
