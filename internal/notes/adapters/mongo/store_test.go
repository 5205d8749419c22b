package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"technotes/internal/notes/domain/entities"
	"technotes/pkg/logger"
)

func TestObjectID(t *testing.T) {
	oid := bson.NewObjectID()

	got, ok := objectID(oid.Hex())
	require.True(t, ok)
	assert.Equal(t, oid, got)

	for _, id := range []string{"", "abc", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		_, ok := objectID(id)
		assert.False(t, ok, id)
	}
}

func TestNoteDocRoundTrip(t *testing.T) {
	completed := true
	note := entities.NewNote("user-1", "T1", "x")
	note.Completed = &completed

	doc := toNoteDoc(note)
	doc.ID = bson.NewObjectID()
	got := doc.entity()

	assert.Equal(t, doc.ID.Hex(), got.ID)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "T1", got.Title)
	assert.Equal(t, "x", got.Text)
	require.NotNil(t, got.Completed)
	assert.True(t, *got.Completed)
	assert.Equal(t, note.CreatedAt, got.CreatedAt)
}

func TestUserDocKeepsPasswordHash(t *testing.T) {
	user := entities.NewUser("alice", "hash", []string{"Employee"})

	doc := toUserDoc(user)
	doc.ID = bson.NewObjectID()
	got := doc.entity()

	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, []string{"Employee"}, got.Roles)
	assert.True(t, got.Active)
	assert.Equal(t, doc.ID.Hex(), got.ID)
}

func TestIsUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "deadline", err: fmt.Errorf("find: %w", context.DeadlineExceeded), want: true},
		{name: "canceled", err: context.Canceled, want: true},
		{name: "disconnected", err: mongo.ErrClientDisconnected, want: true},
		{name: "no documents", err: mongo.ErrNoDocuments, want: false},
		{name: "other", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUnavailable(tt.err))
		})
	}
}

func TestDuplicateKeyDetection(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	other := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 121, Message: "validation"}}}

	assert.True(t, mongo.IsDuplicateKeyError(dup))
	assert.False(t, mongo.IsDuplicateKeyError(other))
}

func TestStoreErrorWritesEventsLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storeErrLog.log")
	events, closeEvents, err := logger.NewFileLogger(path)
	require.NoError(t, err)

	wrapped := storeError(context.Background(), events, "listing notes", context.DeadlineExceeded)
	require.NoError(t, closeEvents())

	require.ErrorIs(t, wrapped, entities.ErrUnavailable)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), msgStoreUnavailable)
	assert.Contains(t, string(content), "listing notes")
}

func TestStoreErrorKeepsOtherErrors(t *testing.T) {
	wrapped := storeError(context.Background(), logger.NewNop(), "decoding notes", errors.New("bad document"))

	require.Error(t, wrapped)
	assert.NotErrorIs(t, wrapped, entities.ErrUnavailable)
}

func TestConnectRejectsInvalidURI(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	store, err := Connect(ctx, "not-a-mongo-uri", "technotes", 100*time.Millisecond, nil)

	require.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), errConnect)
}
