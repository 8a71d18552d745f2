package publish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/readmepro/internal/profile"
	"github.com/kalambet/readmepro/internal/readme"
	"github.com/kalambet/readmepro/internal/storage"
)

type fakePusher struct {
	ok       bool
	username string
	content  string
	token    string
	calls    int
}

func (f *fakePusher) CreateOrUpdateReadme(_ context.Context, username, content, token string) bool {
	f.calls++
	f.username, f.content, f.token = username, content, token
	return f.ok
}

type fakeRecorder struct {
	compiles int
	results  []string
}

func (r *fakeRecorder) ObserveCompile(time.Duration) { r.compiles++ }
func (r *fakeRecorder) IncPublish(result string) { r.results = append(r.results, result) }

func testStore(t *testing.T) *storage.Store {
	t.Helper()
	st, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestPublish_Success(t *testing.T) {
	st := testStore(t)
	pusher := &fakePusher{ok: true}
	rec := &fakeRecorder{}
	svc := NewService(pusher, st, rec)

	s := profile.Initial()
	s.Username = "alice"
	s.Name = "Alice"

	got, err := svc.Publish(context.Background(), s, "tok")
	require.NoError(t, err)

	want := readme.Compile(s)
	sum := sha256.Sum256([]byte(want))
	assert.Equal(t, want, pusher.content)
	assert.Equal(t, "alice", pusher.username)
	assert.Equal(t, "tok", pusher.token)
	assert.Equal(t, storage.PublishSucceeded, got.Status)
	assert.Equal(t, hex.EncodeToString(sum[:]), got.ContentSHA256)
	assert.Equal(t, len(want), got.ContentBytes)
	assert.Equal(t, 1, rec.compiles)
	assert.Equal(t, []string{"success"}, rec.results)

	stored, err := st.GetPublish(got.ID)
	require.NoError(t, err)
	assert.Equal(t, got.ContentSHA256, stored.ContentSHA256)
}

func TestPublish_Failure(t *testing.T) {
	st := testStore(t)
	svc := NewService(&fakePusher{ok: false}, st, nil)

	s := profile.Initial()
	s.Username = "bob"

	got, err := svc.Publish(context.Background(), s, "tok")
	require.ErrorIs(t, err, ErrPublishFailed)
	assert.Equal(t, storage.PublishFailed, got.Status)

	list, err := st.ListPublishes("bob", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, storage.PublishFailed, list[0].Status)
	assert.NotEmpty(t, list[0].Error)
}

func TestPublish_Preconditions(t *testing.T) {
	pusher := &fakePusher{ok: true}
	svc := NewService(pusher, nil, nil)

	_, err := svc.Publish(context.Background(), profile.Initial(), "tok")
	assert.ErrorIs(t, err, ErrNoUsername)

	s := profile.Initial()
	s.Username = "alice"
	_, err = svc.Publish(context.Background(), s, "")
	assert.ErrorIs(t, err, ErrNoToken)

	assert.Zero(t, pusher.calls)
}
