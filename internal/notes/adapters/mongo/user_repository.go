package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"technotes/internal/notes/domain/entities"
	"technotes/pkg/logger"
)

type userDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Username  string        `bson:"username"`
	Password  string        `bson:"password"`
	Roles     []string      `bson:"roles"`
	Active    bool          `bson:"active"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func toUserDoc(user *entities.User) userDoc {
	return userDoc{
		Username:  user.Username,
		Password:  user.PasswordHash,
		Roles:     user.Roles,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func (d *userDoc) entity() *entities.User {
	return &entities.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.Password,
		Roles:        d.Roles,
		Active:       d.Active,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// UserRepository реализует repositories.UserRepository поверх коллекции users.
type UserRepository struct {
	coll   *mongo.Collection
	notes  *mongo.Collection
	events *logger.Logger
}

// List возвращает всех пользователей в порядке вставки.
func (r *UserRepository) List(ctx context.Context) ([]*entities.User, error) {
	return r.find(ctx, "List", bson.D{})
}

// FindByIDs возвращает найденных пользователей; неизвестные id пропускаются.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	oids := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, ok := objectID(id); ok {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []*entities.User{}, nil
	}
	return r.find(ctx, "FindByIDs", bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}})
}

func (r *UserRepository) find(ctx context.Context, method string, filter bson.D) ([]*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", method))

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		log.Error(ctx, "failed to query users", zap.Error(err))
		return nil, storeError(ctx, r.events, "querying users", err)
	}

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		log.Error(ctx, "failed to decode users", zap.Error(err))
		return nil, storeError(ctx, r.events, "decoding users", err)
	}

	users := make([]*entities.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].entity())
	}
	return users, nil
}

// FindByID находит пользователя по ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

// FindByUsername находит пользователя по точному совпадению имени.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.D) (*entities.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entities.ErrUserNotFound
		}
		logger.Log(ctx).Error(ctx, "error finding user", zap.Error(err))
		return nil, storeError(ctx, r.events, "querying user", err)
	}
	return doc.entity(), nil
}

// Create вставляет пользователя и возвращает его с присвоенным ID.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	doc := toUserDoc(user)
	doc.ID = bson.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, entities.ErrDuplicateUsername
		}
		logger.Log(ctx).Error(ctx, "error creating user", zap.Error(err))
		return nil, storeError(ctx, r.events, "creating user", err)
	}

	return doc.entity(), nil
}

// Update перезаписывает изменяемые поля пользователя.
func (r *UserRepository) Update(ctx context.Context, user *entities.User) (*entities.User, error) {
	oid, ok := objectID(user.ID)
	if !ok {
		return nil, entities.ErrUserNotFound
	}

	set := bson.D{
		{Key: "username", Value: user.Username},
		{Key: "password", Value: user.PasswordHash},
		{Key: "roles", Value: user.Roles},
		{Key: "active", Value: user.Active},
		{Key: "updatedAt", Value: user.UpdatedAt},
	}

	var doc userDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	switch {
	case err == nil:
		return doc.entity(), nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, entities.ErrUserNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, entities.ErrDuplicateUsername
	default:
		logger.Log(ctx).Error(ctx, "error updating user", zap.Error(err))
		return nil, storeError(ctx, r.events, "updating user", err)
	}
}

// DeleteWithoutNotes удаляет пользователя, если у него нет заметок.
// Проверка и удаление выполняются двумя запросами и не атомарны.
func (r *UserRepository) DeleteWithoutNotes(ctx context.Context, id string) error {
	hasNotes, err := notesExist(ctx, r.notes, r.events, id)
	if err != nil {
		return err
	}
	if hasNotes {
		return entities.ErrUserHasNotes
	}

	oid, ok := objectID(id)
	if !ok {
		return entities.ErrUserNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		logger.Log(ctx).Error(ctx, "error deleting user", zap.Error(err))
		return storeError(ctx, r.events, "deleting user", err)
	}
	if res.DeletedCount == 0 {
		return entities.ErrUserNotFound
	}
	return nil
}
