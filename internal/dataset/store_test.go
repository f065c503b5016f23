// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/gallery/internal/auth"
	"github.com/tomtom215/gallery/internal/blobstore"
	"github.com/tomtom215/gallery/internal/models"
)

type testEnv struct {
	dir    string
	mirror string
	blobs  *blobstore.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	blobs, err := blobstore.New(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	return &testEnv{dir: dir, mirror: filepath.Join(dir, "db.json"), blobs: blobs}
}

func (e *testEnv) store(opts ...func(*Options)) *Store {
	o := Options{MirrorPath: e.mirror}
	for _, fn := range opts {
		fn(&o)
	}
	s := New(o, e.blobs)
	s.likes = func() int { return 7 }
	return s
}

func (e *testEnv) putBlob(t *testing.T, name string) {
	t.Helper()
	_, err := e.blobs.Put(name, strings.NewReader("img:"+name))
	require.NoError(t, err)
}

func (e *testEnv) writeMirror(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(e.mirror, []byte(content), 0o600))
}

func sampleDataset() models.Dataset {
	return models.Dataset{
		Users: []models.User{{ID: "u1", Username: "alice", Email: "alice@example.com", Password: "hash"}},
		Photos: []models.Photo{
			{ID: "p1", Title: "One", Filename: "one.jpg", Path: "/uploads/one.jpg", UserID: "u1", Likes: 1},
			{ID: "p2", Title: "Two", Filename: "two.jpg", Path: "/uploads/two.jpg", UserID: "u1"},
		},
		UserLikes: []models.Like{{UserID: "u1", PhotoID: "p1"}},
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		wantErr error
	}{
		{"missing", nil, ErrMirrorMissing},
		{"empty", strPtr(""), ErrMirrorEmpty},
		{"whitespace", strPtr("  \n\t"), ErrMirrorEmpty},
		{"not json", strPtr("{users:"), ErrMirrorInvalid},
		{"missing photos", strPtr(`{"users": []}`), ErrMirrorInvalid},
		{"missing users", strPtr(`{"photos": []}`), ErrMirrorInvalid},
		{"null users", strPtr(`{"users": null, "photos": []}`), ErrMirrorInvalid},
		{"bad photo", strPtr(`{"users": [], "photos": [{"id": "1", "filename": "../x.jpg", "userId": "u"}]}`), ErrMirrorInvalid},
		{"negative likes", strPtr(`{"users": [], "photos": [{"id": "1", "filename": "x.jpg", "userId": "u", "likes": -1}]}`), ErrMirrorInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.content != nil {
				env.writeMirror(t, *tt.content)
			}
			s := env.store()

			err := s.Load()
			require.ErrorIs(t, err, tt.wantErr)
			require.False(t, s.Ready())
			require.Empty(t, s.Snapshot().Photos)
		})
	}
}

func strPtr(s string) *string { return &s }

func TestLoadWithoutUserLikes(t *testing.T) {
	env := newTestEnv(t)
	env.writeMirror(t, `{"users": [], "photos": [{"id": "1", "filename": "a.jpg", "userId": "u", "likes": 3}]}`)
	s := env.store()

	require.NoError(t, s.Load())
	ds := s.Snapshot()
	require.NotNil(t, ds.UserLikes)
	require.Empty(t, ds.UserLikes)
	require.Equal(t, 3, ds.Photos[0].Likes)
}

func TestSaveRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	s := env.store()
	require.NoError(t, s.Replace(sampleDataset()))

	data, err := os.ReadFile(env.mirror)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "{\n  \""), "mirror should be indented with two spaces")

	reloaded := env.store()
	require.NoError(t, reloaded.Load())
	require.Equal(t, s.Snapshot(), reloaded.Snapshot())

	_, err = os.Stat(env.mirror + ".tmp")
	require.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestSaveIgnoresLeftoverTempFile(t *testing.T) {
	env := newTestEnv(t)
	s := env.store()
	require.NoError(t, s.Replace(sampleDataset()))

	// Simulate a crash mid-write: garbage in the temp file, mirror intact.
	require.NoError(t, os.WriteFile(env.mirror+".tmp", []byte(`{"users": [`), 0o600))

	reloaded := env.store()
	require.NoError(t, reloaded.Load())
	require.Len(t, reloaded.Snapshot().Photos, 2)

	require.NoError(t, reloaded.Save())
	data, err := os.ReadFile(env.mirror)
	require.NoError(t, err)
	require.True(t, json.Valid(data))
}

func TestConcurrentSaves(t *testing.T) {
	env := newTestEnv(t)
	s := env.store()
	require.NoError(t, s.Replace(models.NewDataset()))

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.AddPhoto(models.Photo{Filename: fmt.Sprintf("p%d.jpg", i), UserID: "u"})
			assert.NoError(t, err)
			assert.NoError(t, s.Save())
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(env.mirror)
	require.NoError(t, err)
	ds, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, ds.Photos, 25)
}

func TestInitializeDefault(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"b.png", "a.jpg", "sunset.jpg", "notes.txt"} {
		env.putBlob(t, name)
	}
	s := env.store(func(o *Options) {
		o.Admin = AdminSeed{Username: "root", Email: "root@example.com", Password: "s3cret"}
	})
	fixed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.InitializeDefault())
	require.True(t, s.Ready())

	ds := s.Snapshot()
	require.Len(t, ds.Users, 1)
	admin := ds.Users[0]
	require.Equal(t, DefaultAdminID, admin.ID)
	require.Equal(t, "root", admin.Username)
	require.True(t, admin.IsAdmin)
	require.True(t, auth.CheckPassword(admin.Password, "s3cret"))

	require.Len(t, ds.Photos, 2)
	require.Equal(t, "1", ds.Photos[0].ID)
	require.Equal(t, "a.jpg", ds.Photos[0].Filename)
	require.Equal(t, "A", ds.Photos[0].Title)
	require.Equal(t, "Description for A", ds.Photos[0].Description)
	require.Equal(t, DefaultCategory, ds.Photos[0].Category)
	require.Equal(t, "/uploads/a.jpg", ds.Photos[0].Path)
	require.Equal(t, fixed, ds.Photos[0].UploadDate)

	require.Equal(t, "2", ds.Photos[1].ID)
	require.Equal(t, "B", ds.Photos[1].Title)
	require.Equal(t, fixed.Add(-24*time.Hour), ds.Photos[1].UploadDate)
	require.NotEqual(t, ds.Photos[0].Title, ds.Photos[1].Title)
	require.Empty(t, ds.UserLikes)

	// Persisted.
	reloaded := env.store()
	require.NoError(t, reloaded.Load())
	require.Len(t, reloaded.Snapshot().Photos, 2)
}

func TestInitializeDefaultLikesRange(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 10; i++ {
		env.putBlob(t, fmt.Sprintf("img-%02d.jpg", i))
	}
	s := New(Options{MirrorPath: env.mirror}, env.blobs)

	require.NoError(t, s.InitializeDefault())
	for _, p := range s.Photos() {
		require.GreaterOrEqual(t, p.Likes, 0)
		require.Less(t, p.Likes, 20)
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := map[string]string{
		"a.jpg":                   "A",
		"golden_gate-bridge.jpg":  "Golden Gate Bridge",
		"photo-1700000000-42.png": "Photo 1700000000 42",
		"already Title.webp":      "Already Title",
		"élan_vital.gif":          "Élan Vital",
		"mIxEd.jpeg":              "MIxEd",
		"--odd__name--.jpg":       "Odd Name",
	}
	for in, want := range tests {
		require.Equal(t, want, TitleFromFilename(in), in)
	}
}

func TestInitializeDefaultTitlesAreDistinct(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"a.jpg", "a.png", "a.gif", "a-2.webp", "__.jpg"} {
		env.putBlob(t, name)
	}
	s := env.store()

	require.NoError(t, s.InitializeDefault())
	titles := map[string]string{}
	for _, p := range s.Photos() {
		prev, dup := titles[p.Title]
		require.False(t, dup, "%s and %s share title %q", prev, p.Filename, p.Title)
		titles[p.Title] = p.Filename
	}
	require.Len(t, titles, 5)
	require.Contains(t, titles, "A")
	require.Contains(t, titles, "A 2")
	require.Contains(t, titles, "Photo")
}

func TestUniqueTitle(t *testing.T) {
	taken := map[string]bool{}
	require.Equal(t, "A", uniqueTitle("A", taken))
	require.Equal(t, "A 2", uniqueTitle("A", taken))
	require.Equal(t, "A 2 2", uniqueTitle("A 2", taken))
	require.Equal(t, "A 3", uniqueTitle("A", taken))
	require.Equal(t, "Photo", uniqueTitle("", taken))
}

func TestOpenFallsBackOnCorruptMirror(t *testing.T) {
	env := newTestEnv(t)
	env.putBlob(t, "a.jpg")
	env.writeMirror(t, "{not json")
	s := env.store()

	require.NoError(t, s.Open())
	require.True(t, s.Ready())
	require.Len(t, s.Photos(), 1)

	data, err := os.ReadFile(env.mirror)
	require.NoError(t, err)
	require.True(t, json.Valid(data), "corrupt mirror should be replaced by defaults")
}

func TestOpenRemovesSamplesOnFirstRun(t *testing.T) {
	env := newTestEnv(t)
	env.putBlob(t, "city.jpg")
	env.putBlob(t, "mine.jpg")
	s := env.store()

	require.NoError(t, s.Open())
	require.False(t, env.blobs.Exists("city.jpg"))
	require.True(t, env.blobs.Exists("mine.jpg"))
}

func TestOpenKeepsSamplesWhenMirrorExists(t *testing.T) {
	env := newTestEnv(t)
	env.putBlob(t, "city.jpg")
	require.NoError(t, env.store().Replace(models.NewDataset()))

	require.NoError(t, env.store().Open())
	require.True(t, env.blobs.Exists("city.jpg"))
}

func TestOpenForceReinit(t *testing.T) {
	env := newTestEnv(t)
	env.putBlob(t, "one.jpg")
	env.putBlob(t, "two.jpg")
	require.NoError(t, env.store().Replace(sampleDataset()))

	s := env.store(func(o *Options) { o.ForceReinit = true })
	require.NoError(t, s.Open())

	ds := s.Snapshot()
	require.Equal(t, DefaultAdminID, ds.Users[0].ID)
	require.Equal(t, "1", ds.Photos[0].ID)
}

func TestReconcilePersists(t *testing.T) {
	env := newTestEnv(t)
	env.putBlob(t, "one.jpg")
	require.NoError(t, env.store().Replace(sampleDataset()))

	s := env.store()
	require.NoError(t, s.Open())
	photos := s.Photos()
	require.Len(t, photos, 1)
	require.Equal(t, "p1", photos[0].ID)

	// A fresh load must not resurrect the dropped record.
	reloaded := env.store()
	require.NoError(t, reloaded.Load())
	require.Len(t, reloaded.Photos(), 1)
}

func TestReconcileReturnsRemoved(t *testing.T) {
	env := newTestEnv(t)
	s := env.store()
	require.NoError(t, s.Replace(sampleDataset()))

	removed, err := s.ReconcileAgainstBlobStore()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"one.jpg", "two.jpg"}, removed)
	require.Empty(t, s.MissingBlobs())
}

func TestSnapshotIsolation(t *testing.T) {
	env := newTestEnv(t)
	s := env.store()
	require.NoError(t, s.Replace(sampleDataset()))

	snap := s.Snapshot()
	snap.Photos[0].Title = "mutated"
	snap.Users = nil

	fresh := s.Snapshot()
	require.Equal(t, "One", fresh.Photos[0].Title)
	require.Len(t, fresh.Users, 1)
}

func TestExclusiveHoldsOffMutate(t *testing.T) {
	env := newTestEnv(t)
	s := env.store()

	entered := make(chan struct{})
	release := make(chan struct{})
	exclusiveDone := make(chan error, 1)
	go func() {
		exclusiveDone <- s.Exclusive(func() error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	mutated := make(chan error, 1)
	go func() {
		mutated <- s.Mutate(func() error {
			_, err := s.AddUser(models.User{Username: "late", Email: "late@example.com", Password: "x"})
			return err
		})
	}()

	select {
	case <-mutated:
		t.Fatal("Mutate ran inside an Exclusive section")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-exclusiveDone)
	select {
	case err := <-mutated:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Mutate never ran after Exclusive returned")
	}
	require.Len(t, s.Users(), 1)
}

func TestMutateSectionsRunConcurrently(t *testing.T) {
	env := newTestEnv(t)
	s := env.store()

	inside := make(chan struct{})
	outer := make(chan error, 1)
	go func() {
		outer <- s.Mutate(func() error {
			<-inside
			return nil
		})
	}()

	// A second shared section must not wait for the first.
	done := make(chan error, 1)
	go func() { done <- s.Mutate(func() error { return nil }) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("shared sections serialized")
	}

	close(inside)
	require.NoError(t, <-outer)
}
