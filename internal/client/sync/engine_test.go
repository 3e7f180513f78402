package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mirrorbox/mirrorbox/internal/disksdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploadCall struct {
	Name      string
	Overwrite bool
}

// fakeStore keeps a simulated remote folder state so consecutive cycles
// observe the effects of earlier ones.
type fakeStore struct {
	remote  disksdk.RemoteListing
	listErr error
	uploads []uploadCall
	deletes []string
}

func newFakeStore(remote disksdk.RemoteListing) *fakeStore {
	if remote == nil {
		remote = disksdk.RemoteListing{}
	}
	return &fakeStore{remote: remote}
}

func (f *fakeStore) ListFolder(ctx context.Context) (disksdk.RemoteListing, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	// each cycle owns and consumes its listing, so hand out a copy
	listing := make(disksdk.RemoteListing, len(f.remote))
	for name, modified := range f.remote {
		listing[name] = modified
	}
	return listing, nil
}

func (f *fakeStore) Upload(ctx context.Context, localPath, name string, overwrite bool) error {
	f.uploads = append(f.uploads, uploadCall{Name: name, Overwrite: overwrite})
	// the backend stamps uploads with its own clock, at or after the local mtime
	f.remote[name] = time.Now()
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, name string) error {
	f.deletes = append(f.deletes, name)
	delete(f.remote, name)
	return nil
}

func writeLocalFile(t *testing.T, dir, name string, modified time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("content of "+name), 0o644))
	require.NoError(t, os.Chtimes(path, modified, modified))
}

func TestSync_UploadsNewLocalFile(t *testing.T) {
	dir := t.TempDir()
	modified := time.Now().Add(-time.Hour)
	writeLocalFile(t, dir, "a.txt", modified)

	store := newFakeStore(nil)
	engine := NewEngine(dir, store)

	result, err := engine.Sync(t.Context())
	require.NoError(t, err)

	assert.Equal(t, &SyncResult{Uploaded: 1}, result)
	require.Len(t, store.uploads, 1)
	assert.Equal(t, uploadCall{Name: "a.txt", Overwrite: false}, store.uploads[0])
	assert.False(t, store.remote["a.txt"].Before(modified), "remote mtime must be >= local mtime at snapshot")
}

func TestSync_OverwritesOlderRemoteFile(t *testing.T) {
	dir := t.TempDir()
	writeLocalFile(t, dir, "a.txt", time.Now().Add(-time.Hour))

	store := newFakeStore(disksdk.RemoteListing{
		"a.txt": time.Now().Add(-2 * time.Hour),
	})
	engine := NewEngine(dir, store)

	result, err := engine.Sync(t.Context())
	require.NoError(t, err)

	assert.Equal(t, &SyncResult{Overwritten: 1}, result)
	require.Len(t, store.uploads, 1)
	assert.Equal(t, uploadCall{Name: "a.txt", Overwrite: true}, store.uploads[0])
}

func TestSync_DeletesRemoteOnlyFiles(t *testing.T) {
	dir := t.TempDir()
	modified := time.Now().Add(-time.Hour)
	writeLocalFile(t, dir, "a.txt", modified)

	store := newFakeStore(disksdk.RemoteListing{
		"a.txt": modified,
		"b.txt": time.Now().Add(-3 * time.Hour),
	})
	engine := NewEngine(dir, store)

	result, err := engine.Sync(t.Context())
	require.NoError(t, err)

	assert.Equal(t, &SyncResult{Deleted: 1}, result)
	assert.Empty(t, store.uploads, "same-age file must not be re-uploaded")
	assert.Equal(t, []string{"b.txt"}, store.deletes)
	assert.NotContains(t, store.deletes, "a.txt", "locally present files are never deleted")
}

func TestSync_RemoteWinsTies(t *testing.T) {
	dir := t.TempDir()
	modified := time.Now().Add(-time.Hour).Truncate(time.Second)
	writeLocalFile(t, dir, "a.txt", modified)

	store := newFakeStore(disksdk.RemoteListing{"a.txt": modified})
	engine := NewEngine(dir, store)

	result, err := engine.Sync(t.Context())
	require.NoError(t, err)

	assert.Equal(t, &SyncResult{}, result)
	assert.Empty(t, store.uploads)
	assert.Empty(t, store.deletes)
}

func TestSync_NewerRemoteIsLeftAlone(t *testing.T) {
	dir := t.TempDir()
	writeLocalFile(t, dir, "a.txt", time.Now().Add(-2*time.Hour))

	store := newFakeStore(disksdk.RemoteListing{
		"a.txt": time.Now().Add(-time.Hour),
	})
	engine := NewEngine(dir, store)

	result, err := engine.Sync(t.Context())
	require.NoError(t, err)
	assert.Equal(t, &SyncResult{}, result)
	assert.Empty(t, store.uploads)
}

func TestSync_SecondCycleIsANoop(t *testing.T) {
	dir := t.TempDir()
	writeLocalFile(t, dir, "a.txt", time.Now().Add(-time.Hour))
	writeLocalFile(t, dir, "b.txt", time.Now().Add(-30*time.Minute))

	store := newFakeStore(disksdk.RemoteListing{
		"stale.txt": time.Now().Add(-5 * time.Hour),
	})
	engine := NewEngine(dir, store)

	first, err := engine.Sync(t.Context())
	require.NoError(t, err)
	assert.Equal(t, &SyncResult{Uploaded: 2, Deleted: 1}, first)

	second, err := engine.Sync(t.Context())
	require.NoError(t, err)
	assert.Equal(t, &SyncResult{}, second, "no changes means an all-zero cycle")
}

func TestSync_SkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeLocalFile(t, dir, "a.txt", time.Now().Add(-time.Hour))

	store := newFakeStore(nil)
	engine := NewEngine(dir, store)

	result, err := engine.Sync(t.Context())
	require.NoError(t, err)

	assert.Equal(t, &SyncResult{Uploaded: 1}, result)
	require.Len(t, store.uploads, 1)
	assert.Equal(t, "a.txt", store.uploads[0].Name)
}

func TestSync_ListFailureAbortsBeforeAnyAction(t *testing.T) {
	dir := t.TempDir()
	writeLocalFile(t, dir, "a.txt", time.Now().Add(-time.Hour))

	store := newFakeStore(nil)
	store.listErr = fmt.Errorf("list folder: %w", disksdk.ErrUnauthorized)
	engine := NewEngine(dir, store)

	_, err := engine.Sync(t.Context())
	assert.ErrorIs(t, err, disksdk.ErrUnauthorized)
	assert.Empty(t, store.uploads)
	assert.Empty(t, store.deletes)
}

func TestSync_MissingLocalFolderFails(t *testing.T) {
	engine := NewEngine(filepath.Join(t.TempDir(), "gone"), newFakeStore(nil))

	_, err := engine.Sync(t.Context())
	assert.Error(t, err)
}
