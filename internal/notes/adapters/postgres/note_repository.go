package postgres

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"technotes/internal/notes/domain/entities"
	"technotes/internal/notes/ports/repositories"
	"technotes/pkg/logger"
)

const notesTable = "notes"

var noteColumns = []string{"id", "user_id", "title", "text", "completed", "created_at", "updated_at"}

const noteReturning = "RETURNING id, user_id, title, text, completed, created_at, updated_at"

// NoteRepository реализует интерфейс repositories.NoteRepository.
type NoteRepository struct {
	pool   PgxPoolInterface
	events *logger.Logger
}

// NewNoteRepository создает новый репозиторий заметок.
func NewNoteRepository(pool PgxPoolInterface, events *logger.Logger) repositories.NoteRepository {
	if events == nil {
		events = logger.NewNop()
	}
	return &NoteRepository{pool: pool, events: events}
}

// List возвращает все заметки в порядке создания.
func (r *NoteRepository) List(ctx context.Context) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", "List"))

	query, args, err := psql.Select(noteColumns...).
		From(notesTable).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, storeError(ctx, r.events, "building notes query", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		log.Error(ctx, "failed to list notes", zap.Error(err))
		return nil, storeError(ctx, r.events, "listing notes", err)
	}
	defer rows.Close()

	notes := make([]*entities.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			log.Error(ctx, "failed to scan note", zap.Error(err))
			return nil, storeError(ctx, r.events, "scanning note", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		log.Error(ctx, "error iterating rows", zap.Error(err))
		return nil, storeError(ctx, r.events, "iterating notes", err)
	}

	return notes, nil
}

// FindByID находит заметку по ID.
func (r *NoteRepository) FindByID(ctx context.Context, id string) (*entities.Note, error) {
	if !validID(id) {
		return nil, entities.ErrNoteNotFound
	}
	return r.findOne(ctx, "FindByID", squirrel.Eq{"id": id})
}

// FindByTitle находит заметку по точному совпадению заголовка.
func (r *NoteRepository) FindByTitle(ctx context.Context, title string) (*entities.Note, error) {
	return r.findOne(ctx, "FindByTitle", squirrel.Eq{"title": title})
}

func (r *NoteRepository) findOne(ctx context.Context, method string, where squirrel.Eq) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", method))

	query, args, err := psql.Select(noteColumns...).
		From(notesTable).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, storeError(ctx, r.events, "building note query", err)
	}

	note, err := scanNote(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "note not found")
			return nil, entities.ErrNoteNotFound
		}
		log.Error(ctx, "error finding note", zap.Error(err))
		return nil, storeError(ctx, r.events, "querying note", err)
	}

	return note, nil
}

// ExistsByUser сообщает, есть ли у пользователя хотя бы одна заметка.
func (r *NoteRepository) ExistsByUser(ctx context.Context, userID string) (bool, error) {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", "ExistsByUser"))

	query, args, err := psql.Select().
		Column(squirrel.Expr("EXISTS (SELECT 1 FROM notes WHERE user_id = ?)", userID)).
		ToSql()
	if err != nil {
		return false, storeError(ctx, r.events, "building exists query", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		log.Error(ctx, "error checking user notes", zap.Error(err))
		return false, storeError(ctx, r.events, "checking user notes", err)
	}

	return exists, nil
}

// Create сохраняет новую заметку. Повтор заголовка дает entities.ErrDuplicateTitle.
func (r *NoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", "Create"))

	query, args, err := psql.Insert(notesTable).
		Columns("user_id", "title", "text", "created_at", "updated_at").
		Values(note.UserID, note.Title, note.Text, note.CreatedAt, note.UpdatedAt).
		Suffix(noteReturning).
		ToSql()
	if err != nil {
		return nil, storeError(ctx, r.events, "building insert", err)
	}

	created, err := scanNote(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			log.Debug(ctx, "duplicate note title", zap.String("title", note.Title))
			return nil, entities.ErrDuplicateTitle
		}
		log.Error(ctx, "error creating note", zap.Error(err))
		return nil, storeError(ctx, r.events, "creating note", err)
	}

	return created, nil
}

// Update перезаписывает изменяемые поля заметки.
func (r *NoteRepository) Update(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", "Update"))

	if !validID(note.ID) {
		return nil, entities.ErrNoteNotFound
	}

	query, args, err := psql.Update(notesTable).
		Set("user_id", note.UserID).
		Set("title", note.Title).
		Set("text", note.Text).
		Set("completed", note.Completed).
		Set("updated_at", note.UpdatedAt).
		Where(squirrel.Eq{"id": note.ID}).
		Suffix(noteReturning).
		ToSql()
	if err != nil {
		return nil, storeError(ctx, r.events, "building update", err)
	}

	updated, err := scanNote(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, entities.ErrNoteNotFound
		case isUniqueViolation(err):
			log.Debug(ctx, "duplicate note title", zap.String("title", note.Title))
			return nil, entities.ErrDuplicateTitle
		}
		log.Error(ctx, "error updating note", zap.Error(err))
		return nil, storeError(ctx, r.events, "updating note", err)
	}

	return updated, nil
}

// Delete удаляет заметку по ID.
func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", "Delete"))

	if !validID(id) {
		return entities.ErrNoteNotFound
	}

	query, args, err := psql.Delete(notesTable).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return storeError(ctx, r.events, "building delete", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		log.Error(ctx, "error deleting note", zap.Error(err))
		return storeError(ctx, r.events, "deleting note", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrNoteNotFound
	}

	return nil
}

func scanNote(row pgx.Row) (*entities.Note, error) {
	var note entities.Note
	err := row.Scan(
		&note.ID,
		&note.UserID,
		&note.Title,
		&note.Text,
		&note.Completed,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &note, nil
}
