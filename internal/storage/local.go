package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/roomledger/internal/config"
	"go.uber.org/zap"
)

// PublicPrefix is the URL path under which stored files are served.
const PublicPrefix = "/uploads"

var ErrOutsideRoot = errors.New("storage: path outside upload root")

// Local stores documents on the local filesystem below a root directory and
// hands out public paths of the form /uploads/<folder>/<name>.
type Local struct {
	root string
	log  *zap.Logger
}

func NewLocal(cfg config.Config, log *zap.Logger) (*Local, error) {
	return NewLocalAt(cfg.UploadDir, log)
}

func NewLocalAt(root string, log *zap.Logger) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Local{root: abs, log: log.Named("storage.local")}, nil
}

func (l *Local) Root() string {
	return l.root
}

// Save copies r into folder under a fresh ULID name that keeps the
// lower-cased extension of filename, and returns the public path.
func (l *Local) Save(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	segments := make([]string, 0, 4)
	for _, part := range strings.Split(folder, "/") {
		if s := slug.Make(part); s != "" {
			segments = append(segments, s)
		}
	}
	name := strings.ToLower(ulid.Make().String()) + strings.ToLower(filepath.Ext(filename))
	rel := path.Join(append(segments, name)...)

	target := filepath.Join(l.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(target)
		return "", err
	}

	return PublicPrefix + "/" + rel, nil
}

// Remove deletes the files behind the given public paths. Missing files are
// ignored; the first other failure is returned after trying every path.
func (l *Local) Remove(ctx context.Context, paths ...string) error {
	var firstErr error
	for _, p := range paths {
		target, err := l.resolve(p)
		if err == nil {
			err = os.Remove(target)
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			l.log.Warn("remove document failed", zap.String("path", p), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (l *Local) resolve(public string) (string, error) {
	cleaned := path.Clean("/" + public)
	if !strings.HasPrefix(cleaned, PublicPrefix+"/") {
		return "", ErrOutsideRoot
	}
	rel := strings.TrimPrefix(cleaned, PublicPrefix+"/")
	target := filepath.Join(l.root, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, l.root+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return target, nil
}
