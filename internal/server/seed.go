package server

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fenggwsx/DocuMind/internal/auth"
	"github.com/fenggwsx/DocuMind/internal/fixtures"
	"github.com/fenggwsx/DocuMind/internal/storage"
)

// SeedDemo creates the demo owner and the fixture documents when missing.
// It is safe to run on every start.
func (a *App) SeedDemo(ctx context.Context) error {
	owner, err := a.store.GetUserByEmail(ctx, fixtures.DemoOwner.Email)
	if errors.Is(err, storage.ErrNotFound) {
		owner, err = a.createDemoOwner(ctx)
	}
	if err != nil {
		return err
	}

	created := 0
	for _, fixture := range fixtures.Documents {
		if _, err := a.store.GetDocument(ctx, fixture.ID); err == nil {
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		uploaded, err := time.Parse(time.DateOnly, fixture.UploadDate)
		if err != nil {
			uploaded = time.Now().UTC()
		}
		doc := &storage.Document{
			ID:         fixture.ID,
			OwnerID:    owner.ID,
			Title:      fixture.Title,
			Summary:    fixture.Summary,
			Type:       fixture.Type,
			FileSize:   fixture.FileSize,
			IsPublic:   fixture.IsPublic,
			Paragraphs: append([]string(nil), fixture.Paragraphs...),
			CreatedAt:  uploaded,
		}
		if err := a.store.CreateDocument(ctx, doc); err != nil {
			return err
		}
		created++
	}
	if created > 0 {
		a.logger.Info("seeded demo documents", "count", created, "owner", owner.Email)
	}
	return nil
}

func (a *App) createDemoOwner(ctx context.Context) (*storage.User, error) {
	hashed, err := auth.HashPassword(fixtures.DemoOwner.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	owner := &storage.User{
		ID:        uuid.NewString(),
		Name:      fixtures.DemoOwner.Name,
		Email:     fixtures.DemoOwner.Email,
		Password:  hashed,
		Company:   fixtures.DemoOwner.Company,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.CreateUser(ctx, owner); err != nil {
		return nil, err
	}
	return owner, nil
}
