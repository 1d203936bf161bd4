// Package media resolves the installation medium to a runnable setup
// executable, mounting a disk image when needed and guaranteeing the mount is
// released exactly once on every exit path.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sqlsweden/sqlZetup/internal/logger"
	zetuperrors "github.com/sqlsweden/sqlZetup/pkg/errors"
)

// Mounter mounts and dismounts disk images. The Windows implementation
// shells out to the OS facilities; tests inject fakes.
type Mounter interface {
	// Mount attaches the image read-only and returns the drive letter,
	// e.g. "F:".
	Mount(ctx context.Context, imagePath string) (string, error)
	// Dismount detaches the image. Best effort; callers log but do not fail
	// the run on a dismount error.
	Dismount(ctx context.Context, imagePath string) error
}

// Media is the resolved installer: the path to setup.exe plus the mount
// handle when the source was a disk image.
type Media struct {
	SetupPath string

	imagePath string
	mounted   bool
	mounter   Mounter
	log       *logger.Logger
	release   sync.Once
}

// Mounted reports whether a disk image is attached.
func (m *Media) Mounted() bool { return m.mounted }

// Release dismounts the disk image if one was mounted. Safe to call multiple
// times and from cleanup paths; only the first call acts.
func (m *Media) Release() {
	m.release.Do(func() {
		if !m.mounted {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := m.mounter.Dismount(ctx, m.imagePath); err != nil {
			m.log.Error(err, "failed to dismount installation medium")
			return
		}
		m.log.WithFields(map[string]any{"image": m.imagePath}).Info("installation medium dismounted")
	})
}

// Locator resolves an installer path to usable Media.
type Locator struct {
	mounter Mounter
	log     *logger.Logger

	stat func(string) (os.FileInfo, error)
}

// NewLocator creates a Locator.
func NewLocator(mounter Mounter, log *logger.Logger) *Locator {
	return &Locator{mounter: mounter, log: log, stat: os.Stat}
}

// Locate branches on the medium's extension: a disk image is mounted and the
// setup program at its root returned; an executable is returned unchanged.
// Any other extension is a fatal input error.
func (l *Locator) Locate(ctx context.Context, path string) (*Media, error) {
	if _, err := l.stat(path); err != nil {
		return nil, zetuperrors.NewPreconditionError("media",
			fmt.Sprintf("installation medium %s is not accessible", path), err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".iso":
		drive, err := l.mounter.Mount(ctx, path)
		if err != nil {
			return nil, zetuperrors.NewPreconditionError("media",
				fmt.Sprintf("cannot mount disk image %s", path), err)
		}
		l.log.WithFields(map[string]any{"image": path, "drive": drive}).Info("disk image mounted")
		return &Media{
			SetupPath: drive + `\setup.exe`,
			imagePath: path,
			mounted:   true,
			mounter:   l.mounter,
			log:       l.log,
		}, nil
	case ".exe":
		return &Media{SetupPath: path, log: l.log}, nil
	default:
		return nil, zetuperrors.NewPreconditionError("media",
			fmt.Sprintf("unsupported installation medium type %q", filepath.Ext(path)), nil)
	}
}
