package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/intakebot/core/database/redistest"
)

func TestCloneIsDeep(t *testing.T) {
	s := New(time.Now())
	s.Answers = []string{"Жилое"}
	s.SetFlag("mount_scheme", true)
	s.AddAttachment(Attachment{Kind: KindPhoto, FileID: "f1"})

	c := s.Clone()
	c.Answers[0] = "changed"
	c.Flags["mount_scheme"] = false
	c.Attachments[0].FileID = "f2"

	assert.Equal(t, "Жилое", s.Answers[0])
	assert.True(t, s.Flags["mount_scheme"])
	assert.Equal(t, "f1", s.Attachments[0].FileID)
}

func TestAddAttachmentCap(t *testing.T) {
	s := New(time.Now())
	for i := 0; i < MaxAttachments; i++ {
		require.True(t, s.AddAttachment(Attachment{Kind: KindDocument, FileID: "doc"}))
	}
	assert.False(t, s.AddAttachment(Attachment{Kind: KindPhoto, FileID: "extra"}))
	assert.Len(t, s.Attachments, MaxAttachments)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, time.Minute)
	defer store.Close()

	_, ok, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	s := New(time.Now())
	s.State = StateAreaInput
	require.NoError(t, store.Put(ctx, 7, s))

	s.State = StateAttachments // mutations after Put must not leak into the store
	got, ok, err := store.Get(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StateAreaInput, got.State)

	got.Answers = append(got.Answers, "75")
	again, _, _ := store.Get(ctx, 7)
	assert.Empty(t, again.Answers)

	require.NoError(t, store.Clear(ctx, 7))
	_, ok, _ = store.Get(ctx, 7)
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestMemoryStoreEvictsAfterTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(20*time.Millisecond, time.Minute)
	require.NoError(t, store.Put(ctx, 1, New(time.Now())))

	require.Eventually(t, func() bool {
		_, ok, _ := store.Get(ctx, 1)
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestLockerSerializesSameUser(t *testing.T) {
	l := NewLocker()
	var (
		inside  atomic.Int32
		overlap atomic.Bool
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(42)
			defer unlock()
			if inside.Add(1) > 1 {
				overlap.Store(true)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()

	assert.False(t, overlap.Load())
	assert.Zero(t, l.Held())
}

func TestLockerDoesNotBlockOtherUsers(t *testing.T) {
	l := NewLocker()
	unlockA := l.Lock(1)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := l.Lock(2)
		unlock()
		unlock() // second call is a no-op
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for another user blocked")
	}
	assert.Equal(t, 1, l.Held())
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, srv := redistest.NewClient()
	defer client.Close()

	store := NewRedisStore(client, time.Minute)
	s := New(time.Now().UTC().Truncate(time.Second))
	s.State = StateFlagPrompt
	s.PendingFlag = "inrush"
	s.Answers = []string{"Коммерческое", "120"}
	s.Cursor = 2
	require.NoError(t, store.Put(ctx, 99, s))
	assert.Equal(t, time.Minute, srv.TTL(redisKey(99)))

	got, ok, err := store.Get(ctx, 99)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, s, got)

	require.NoError(t, store.Clear(ctx, 99))
	_, ok, err = store.Get(ctx, 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreDropsUndecodableSession(t *testing.T) {
	ctx := context.Background()
	client, srv := redistest.NewClient()
	defer client.Close()
	srv.Set(redisKey(5), `{"state":`)

	store := NewRedisStore(client, time.Minute)
	got, ok, err := store.Get(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
	_, present := srv.Value(redisKey(5))
	assert.False(t, present)
}

func TestRedisStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	client, srv := redistest.NewClient()
	defer client.Close()
	srv.FailWith(errors.New("connection refused"))

	store := NewRedisStore(client, time.Minute)
	_, _, err := store.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, store.Put(ctx, 1, New(time.Now())), ErrUnavailable)
	assert.ErrorIs(t, store.Clear(ctx, 1), ErrUnavailable)
}
