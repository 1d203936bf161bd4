package media

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sqlsweden/sqlZetup/internal/logger"
	zetuperrors "github.com/sqlsweden/sqlZetup/pkg/errors"
)

type fakeMounter struct {
	drive      string
	mountErr   error
	mounts     int
	dismounts  int
	dismounted []string
}

func (f *fakeMounter) Mount(ctx context.Context, imagePath string) (string, error) {
	f.mounts++
	if f.mountErr != nil {
		return "", f.mountErr
	}
	return f.drive, nil
}

func (f *fakeMounter) Dismount(ctx context.Context, imagePath string) error {
	f.dismounts++
	f.dismounted = append(f.dismounted, imagePath)
	return nil
}

type fakeFileInfo struct{}

func (fakeFileInfo) Name() string       { return "media" }
func (fakeFileInfo) Size() int64        { return 1 }
func (fakeFileInfo) Mode() fs.FileMode  { return 0 }
func (fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (fakeFileInfo) IsDir() bool        { return false }
func (fakeFileInfo) Sys() any           { return nil }

func testLocator(t *testing.T, mounter Mounter) *Locator {
	t.Helper()
	log, err := logger.New(logger.Options{Level: "disabled"})
	require.NoError(t, err)

	l := NewLocator(mounter, log)
	l.stat = func(string) (os.FileInfo, error) { return fakeFileInfo{}, nil }
	return l
}

func TestLocateISOMountsAndResolvesSetup(t *testing.T) {
	t.Parallel()

	mounter := &fakeMounter{drive: "F:"}
	l := testLocator(t, mounter)

	m, err := l.Locate(context.Background(), `C:\media\SQLServer2022-x64-ENU-Dev.iso`)
	require.NoError(t, err)
	require.Equal(t, `F:\setup.exe`, m.SetupPath)
	require.True(t, m.Mounted())
	require.Equal(t, 1, mounter.mounts)
}

func TestLocateExePassthrough(t *testing.T) {
	t.Parallel()

	mounter := &fakeMounter{}
	l := testLocator(t, mounter)

	m, err := l.Locate(context.Background(), `C:\media\setup.exe`)
	require.NoError(t, err)
	require.Equal(t, `C:\media\setup.exe`, m.SetupPath)
	require.False(t, m.Mounted())
	require.Equal(t, 0, mounter.mounts)

	// Releasing an unmounted medium is a no-op.
	m.Release()
	require.Equal(t, 0, mounter.dismounts)
}

func TestLocateUnsupportedExtension(t *testing.T) {
	t.Parallel()

	l := testLocator(t, &fakeMounter{})

	_, err := l.Locate(context.Background(), `C:\media\setup.msi`)
	require.Error(t, err)

	var precond *zetuperrors.PreconditionError
	require.True(t, errors.As(err, &precond))
	require.Equal(t, "media", precond.Check)
}

func TestLocateMissingMedium(t *testing.T) {
	t.Parallel()

	l := testLocator(t, &fakeMounter{})
	l.stat = func(string) (os.FileInfo, error) { return nil, os.ErrNotExist }

	_, err := l.Locate(context.Background(), `C:\media\missing.iso`)
	require.Error(t, err)
}

func TestLocateMountFailure(t *testing.T) {
	t.Parallel()

	mounter := &fakeMounter{mountErr: errors.New("image in use")}
	l := testLocator(t, mounter)

	_, err := l.Locate(context.Background(), `C:\media\SQLServer.iso`)
	require.Error(t, err)
}

func TestReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	mounter := &fakeMounter{drive: "F:"}
	l := testLocator(t, mounter)

	m, err := l.Locate(context.Background(), `C:\media\SQLServer.iso`)
	require.NoError(t, err)

	m.Release()
	m.Release()
	m.Release()
	require.Equal(t, 1, mounter.dismounts)
	require.Equal(t, []string{`C:\media\SQLServer.iso`}, mounter.dismounted)
}

func TestLocateCaseInsensitiveExtension(t *testing.T) {
	t.Parallel()

	mounter := &fakeMounter{drive: "G:"}
	l := testLocator(t, mounter)

	m, err := l.Locate(context.Background(), `C:\media\SQLSERVER.ISO`)
	require.NoError(t, err)
	require.Equal(t, `G:\setup.exe`, m.SetupPath)
}
