package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("duplicate")
)

// User represents a persisted account record.
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	Company   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Document is a stored document. Paragraphs is only populated by GetDocument.
type Document struct {
	ID         string
	OwnerID    string
	OwnerName  string
	Title      string
	Summary    string
	Type       string
	FileName   string
	FileSize   string
	IsPublic   bool
	Paragraphs []string
	CreatedAt  time.Time
}

// Store defines persistence operations used by the server.
type Store interface {
	Close() error
	Migrate(ctx context.Context) error

	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)

	CreateDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, id string) (*Document, error)
	// ListVisibleDocuments returns the owner's documents and everyone's
	// public documents, newest first.
	ListVisibleDocuments(ctx context.Context, ownerID string) ([]Document, error)
}
