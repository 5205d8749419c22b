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

type noteDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	User      string        `bson:"user"`
	Title     string        `bson:"title"`
	Text      string        `bson:"text"`
	Completed *bool         `bson:"completed,omitempty"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func toNoteDoc(note *entities.Note) noteDoc {
	return noteDoc{
		User:      note.UserID,
		Title:     note.Title,
		Text:      note.Text,
		Completed: note.Completed,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

func (d *noteDoc) entity() *entities.Note {
	return &entities.Note{
		ID:        d.ID.Hex(),
		UserID:    d.User,
		Title:     d.Title,
		Text:      d.Text,
		Completed: d.Completed,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// NoteRepository реализует repositories.NoteRepository поверх коллекции notes.
type NoteRepository struct {
	coll   *mongo.Collection
	events *logger.Logger
}

// List возвращает все заметки в порядке вставки.
func (r *NoteRepository) List(ctx context.Context) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", "List"))

	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		log.Error(ctx, "failed to list notes", zap.Error(err))
		return nil, storeError(ctx, r.events, "listing notes", err)
	}

	var docs []noteDoc
	if err := cursor.All(ctx, &docs); err != nil {
		log.Error(ctx, "failed to decode notes", zap.Error(err))
		return nil, storeError(ctx, r.events, "decoding notes", err)
	}

	notes := make([]*entities.Note, 0, len(docs))
	for i := range docs {
		notes = append(notes, docs[i].entity())
	}
	return notes, nil
}

// FindByID находит заметку по ID.
func (r *NoteRepository) FindByID(ctx context.Context, id string) (*entities.Note, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, entities.ErrNoteNotFound
	}
	return r.findOne(ctx, "FindByID", bson.D{{Key: "_id", Value: oid}})
}

// FindByTitle находит заметку по точному совпадению заголовка.
func (r *NoteRepository) FindByTitle(ctx context.Context, title string) (*entities.Note, error) {
	return r.findOne(ctx, "FindByTitle", bson.D{{Key: "title", Value: title}})
}

func (r *NoteRepository) findOne(ctx context.Context, method string, filter bson.D) (*entities.Note, error) {
	var doc noteDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entities.ErrNoteNotFound
		}
		logger.Log(ctx).Error(ctx, "error finding note", zap.String("method", method), zap.Error(err))
		return nil, storeError(ctx, r.events, "querying note", err)
	}
	return doc.entity(), nil
}

// ExistsByUser сообщает, есть ли у пользователя заметки.
func (r *NoteRepository) ExistsByUser(ctx context.Context, userID string) (bool, error) {
	return notesExist(ctx, r.coll, r.events, userID)
}

func notesExist(ctx context.Context, coll *mongo.Collection, events *logger.Logger, userID string) (bool, error) {
	count, err := coll.CountDocuments(ctx, bson.D{{Key: "user", Value: userID}}, options.Count().SetLimit(1))
	if err != nil {
		return false, storeError(ctx, events, "counting user notes", err)
	}
	return count > 0, nil
}

// Create вставляет заметку и возвращает ее с присвоенным ID.
func (r *NoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	doc := toNoteDoc(note)
	doc.ID = bson.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, entities.ErrDuplicateTitle
		}
		logger.Log(ctx).Error(ctx, "error creating note", zap.Error(err))
		return nil, storeError(ctx, r.events, "creating note", err)
	}

	return doc.entity(), nil
}

// Update перезаписывает изменяемые поля заметки.
func (r *NoteRepository) Update(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	oid, ok := objectID(note.ID)
	if !ok {
		return nil, entities.ErrNoteNotFound
	}

	set := bson.D{
		{Key: "user", Value: note.UserID},
		{Key: "title", Value: note.Title},
		{Key: "text", Value: note.Text},
		{Key: "completed", Value: note.Completed},
		{Key: "updatedAt", Value: note.UpdatedAt},
	}

	var doc noteDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	switch {
	case err == nil:
		return doc.entity(), nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, entities.ErrNoteNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, entities.ErrDuplicateTitle
	default:
		logger.Log(ctx).Error(ctx, "error updating note", zap.Error(err))
		return nil, storeError(ctx, r.events, "updating note", err)
	}
}

// Delete удаляет заметку по ID.
func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return entities.ErrNoteNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		logger.Log(ctx).Error(ctx, "error deleting note", zap.Error(err))
		return storeError(ctx, r.events, "deleting note", err)
	}
	if res.DeletedCount == 0 {
		return entities.ErrNoteNotFound
	}
	return nil
}
