package token

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/notate-dashboard/internal/errors"
	"github.com/rs/zerolog/log"
)

const defaultPollInterval = 500 * time.Millisecond

// FileStore keeps the token in a single file readable only by the current
// user. Other processes sharing the file are detected by polling it.
type FileStore struct {
	path     string
	interval time.Duration

	mu       sync.Mutex // guards the file and lastSeen
	lastSeen []byte     // nil when the file is absent

	subs    subscribers
	stopMu  sync.Mutex
	stop    chan struct{}
	stopped chan struct{}
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store at path. A non-positive interval uses the default.
func NewFileStore(path string, interval time.Duration) *FileStore {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	fs := &FileStore{path: path, interval: interval}
	fs.lastSeen, _ = fs.read()
	return fs
}

func (f *FileStore) Get(_ context.Context) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return "", false, apperrors.Wrapf(err, "read token file %s", f.path)
	}
	if data == nil {
		return "", false, nil
	}
	tok := string(bytes.TrimSpace(data))
	if tok == "" {
		return "", false, nil
	}
	return tok, true, nil
}

func (f *FileStore) Set(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return apperrors.Wrapf(err, "create token dir")
	}

	// write then rename so readers never see a half written token
	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+SlotName+"-*")
	if err != nil {
		return apperrors.Wrapf(err, "create temp token file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(token); err != nil {
		tmp.Close()
		return apperrors.Wrapf(err, "write token file")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return apperrors.Wrapf(err, "chmod token file")
	}
	if err := tmp.Close(); err != nil {
		return apperrors.Wrapf(err, "close token file")
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return apperrors.Wrapf(err, "replace token file")
	}

	f.lastSeen = []byte(token)
	return nil
}

func (f *FileStore) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return apperrors.Wrapf(err, "remove token file")
	}
	f.lastSeen = nil
	return nil
}

// Subscribe starts the poller with the first subscriber and stops it when the
// last one unsubscribes.
func (f *FileStore) Subscribe(fn func()) func() {
	remove, first := f.subs.add(fn)
	if first {
		f.startWatch()
	}
	return func() {
		if remove() {
			f.stopWatch()
		}
	}
}

// Close stops the poller regardless of remaining subscribers
func (f *FileStore) Close() error {
	f.stopWatch()
	return nil
}

func (f *FileStore) startWatch() {
	f.stopMu.Lock()
	defer f.stopMu.Unlock()
	if f.stop != nil {
		return
	}
	f.stop = make(chan struct{})
	f.stopped = make(chan struct{})
	go f.watch(f.stop, f.stopped)
}

func (f *FileStore) stopWatch() {
	f.stopMu.Lock()
	defer f.stopMu.Unlock()
	if f.stop == nil {
		return
	}
	close(f.stop)
	<-f.stopped
	f.stop, f.stopped = nil, nil
}

func (f *FileStore) watch(stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if f.poll() {
				f.subs.notify()
			}
		}
	}
}

// poll reports whether the file differs from the last value this store read or wrote
func (f *FileStore) poll() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		log.Warn().Err(err).Str("path", f.path).Msg("token file poll failed")
		return false
	}
	if (data == nil) == (f.lastSeen == nil) && bytes.Equal(data, f.lastSeen) {
		return false
	}
	f.lastSeen = data
	return true
}

// read returns nil, nil when the file does not exist
func (f *FileStore) read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}
