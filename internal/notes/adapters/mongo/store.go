// Package mongo реализует хранилище документов на MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"technotes/internal/notes/domain/entities"
	"technotes/internal/notes/ports/repositories"
	"technotes/pkg/logger"
)

const (
	notesCollection = "notes"
	usersCollection = "users"

	msgStoreUnavailable = "store unavailable"
	msgConnecting       = "connecting to MongoDB"
	msgConnected        = "successfully connected to MongoDB"
	msgDisconnecting    = "disconnecting from MongoDB"

	errConnect       = "failed to connect to MongoDB"
	errPing          = "failed to ping MongoDB"
	errCreateIndexes = "failed to create indexes"
)

// Store держит клиент MongoDB и обе коллекции.
type Store struct {
	client *mongo.Client
	notes  *mongo.Collection
	users  *mongo.Collection
	events *logger.Logger
}

// Connect подключается к MongoDB, проверяет соединение и создает уникальные индексы.
// events получает записи о недоступности хранилища; nil отключает их.
func Connect(ctx context.Context, uri, database string, timeout time.Duration, events *logger.Logger) (*Store, error) {
	log := logger.Log(ctx)
	log.Info(ctx, msgConnecting, zap.String("database", database))

	if events == nil {
		events = logger.NewNop()
	}

	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetConnectTimeout(timeout).SetServerSelectionTimeout(timeout)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		log.Error(ctx, errConnect, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errConnect, err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		log.Error(ctx, errPing, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errPing, err)
	}

	db := client.Database(database)
	s := &Store{
		client: client,
		notes:  db.Collection(notesCollection),
		users:  db.Collection(usersCollection),
		events: events,
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	log.Info(ctx, msgConnected)
	return s, nil
}

// ensureIndexes обеспечивает уникальность заголовков и имен на стороне хранилища.
func (s *Store) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	if _, err := s.notes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "title", Value: 1}},
		Options: unique,
	}); err != nil {
		return fmt.Errorf("%s: %w", errCreateIndexes, err)
	}
	if _, err := s.notes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}},
	}); err != nil {
		return fmt.Errorf("%s: %w", errCreateIndexes, err)
	}
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: unique,
	}); err != nil {
		return fmt.Errorf("%s: %w", errCreateIndexes, err)
	}
	return nil
}

// NoteRepository возвращает коллекцию заметок.
func (s *Store) NoteRepository() repositories.NoteRepository {
	return &NoteRepository{coll: s.notes, events: s.events}
}

// UserRepository возвращает коллекцию пользователей.
func (s *Store) UserRepository() repositories.UserRepository {
	return &UserRepository{coll: s.users, notes: s.notes, events: s.events}
}

// Ping проверяет доступность сервера.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close отключает клиента.
func (s *Store) Close(ctx context.Context) error {
	logger.Log(ctx).Info(ctx, msgDisconnecting)
	return s.client.Disconnect(ctx)
}

// storeError оборачивает ошибку драйвера. Ошибки сети и таймауты
// становятся entities.ErrUnavailable и пишутся в журнал событий хранилища.
func storeError(ctx context.Context, events *logger.Logger, op string, err error) error {
	if isUnavailable(err) {
		events.Error(ctx, msgStoreUnavailable, zap.String("operation", op), zap.Error(err))
		return fmt.Errorf("%s: %w: %w", op, entities.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUnavailable(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		mongo.IsTimeout(err) ||
		mongo.IsNetworkError(err)
}

// objectID разбирает идентификатор. Строка не в формате ObjectID
// не может быть ключом документа.
func objectID(id string) (bson.ObjectID, bool) {
	oid, err := bson.ObjectIDFromHex(id)
	return oid, err == nil
}
