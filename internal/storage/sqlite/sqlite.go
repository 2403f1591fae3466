package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/fenggwsx/DocuMind/internal/config"
	"github.com/fenggwsx/DocuMind/internal/storage"
)

// Store is a GORM-backed SQLite implementation of storage.Store.
type Store struct {
	db *gorm.DB
}

var _ storage.Store = (*Store)(nil)

type userModel struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Email     string `gorm:"uniqueIndex"`
	Password  string
	Company   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type documentModel struct {
	ID        string `gorm:"primaryKey"`
	OwnerID   string `gorm:"index"`
	Title     string
	Summary   string
	Type      string
	FileName  string
	FileSize  string
	IsPublic  bool `gorm:"index"`
	CreatedAt time.Time
}

type paragraphModel struct {
	ID         uint   `gorm:"primaryKey"`
	DocumentID string `gorm:"index:idx_paragraph_position,priority:1"`
	Position   int    `gorm:"index:idx_paragraph_position,priority:2"`
	Text       string
}

// documentRow is a document joined with its owner's display name.
type documentRow struct {
	documentModel
	OwnerName string
}

// NewStore opens a SQLite database at the provided path.
func NewStore(cfg config.DatabaseConfig) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate applies schema updates.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&userModel{}, &documentModel{}, &paragraphModel{})
}

// CreateUser stores a new user record. The email must be unused.
func (s *Store) CreateUser(ctx context.Context, user *storage.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&userModel{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return storage.ErrDuplicate
		}
		model := userModel{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			Password:  user.Password,
			Company:   user.Company,
			CreatedAt: user.CreatedAt,
			UpdatedAt: user.UpdatedAt,
		}
		return tx.Create(&model).Error
	})
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	return s.findUser(ctx, "email = ?", email)
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*storage.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *Store) findUser(ctx context.Context, query string, arg string) (*storage.User, error) {
	var model userModel
	if err := s.db.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		return nil, translate(err)
	}
	return &storage.User{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		Password:  model.Password,
		Company:   model.Company,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

// CreateDocument stores a document and its paragraphs atomically.
func (s *Store) CreateDocument(ctx context.Context, doc *storage.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := documentModel{
			ID:        doc.ID,
			OwnerID:   doc.OwnerID,
			Title:     doc.Title,
			Summary:   doc.Summary,
			Type:      doc.Type,
			FileName:  doc.FileName,
			FileSize:  doc.FileSize,
			IsPublic:  doc.IsPublic,
			CreatedAt: doc.CreatedAt,
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		if len(doc.Paragraphs) == 0 {
			return nil
		}
		paragraphs := make([]paragraphModel, len(doc.Paragraphs))
		for i, text := range doc.Paragraphs {
			paragraphs[i] = paragraphModel{DocumentID: doc.ID, Position: i, Text: text}
		}
		return tx.Create(&paragraphs).Error
	})
}

// GetDocument returns a document with its paragraphs in order.
func (s *Store) GetDocument(ctx context.Context, id string) (*storage.Document, error) {
	db := s.db.WithContext(ctx)
	var rows []documentRow
	err := s.withOwner(db).
		Where("document_models.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, storage.ErrNotFound
	}
	row := rows[0]
	var paragraphs []paragraphModel
	if err := db.Where("document_id = ?", id).Order("position").Find(&paragraphs).Error; err != nil {
		return nil, err
	}
	doc := toDocument(row)
	doc.Paragraphs = make([]string, len(paragraphs))
	for i, p := range paragraphs {
		doc.Paragraphs[i] = p.Text
	}
	return &doc, nil
}

// ListVisibleDocuments returns the owner's documents plus public ones.
func (s *Store) ListVisibleDocuments(ctx context.Context, ownerID string) ([]storage.Document, error) {
	var rows []documentRow
	err := s.withOwner(s.db.WithContext(ctx)).
		Where("document_models.owner_id = ? OR document_models.is_public = ?", ownerID, true).
		Order("document_models.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	docs := make([]storage.Document, len(rows))
	for i, row := range rows {
		docs[i] = toDocument(row)
	}
	return docs, nil
}

func (s *Store) withOwner(db *gorm.DB) *gorm.DB {
	return db.Model(&documentModel{}).
		Select("document_models.*, user_models.name AS owner_name").
		Joins("LEFT JOIN user_models ON user_models.id = document_models.owner_id")
}

func toDocument(row documentRow) storage.Document {
	return storage.Document{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		OwnerName: row.OwnerName,
		Title:     row.Title,
		Summary:   row.Summary,
		Type:      row.Type,
		FileName:  row.FileName,
		FileSize:  row.FileSize,
		IsPublic:  row.IsPublic,
		CreatedAt: row.CreatedAt,
	}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}
	return err
}
