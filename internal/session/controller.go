package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fenggwsx/DocuMind/internal/protocol"
)

func newID() string {
	return uuid.NewString()
}

// Controller drives the reducer synchronously: every operation reduces its
// event and runs the resulting effects until none remain.
type Controller struct {
	mu     sync.Mutex
	state  State
	runner Runner
	now    func() time.Time
	newID  func() string

	authErr error
}

// Option customises a Controller.
type Option func(*Controller)

// WithClock overrides the time source used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
		c.runner.Clock = now
	}
}

// WithIDs overrides the message ID generator.
func WithIDs(next func() string) Option {
	return func(c *Controller) {
		c.newID = next
		c.runner.NewID = next
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.runner.Timeout = d
	}
}

// NewController returns a logged-out controller.
func NewController(auth Authenticator, backend Backend, catalog Catalog, opts ...Option) *Controller {
	c := &Controller{
		state:  NewState(catalog),
		runner: Runner{Auth: auth, Backend: backend},
		now:    time.Now,
		newID:  newID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Dispatch reduces ev and runs effects to quiescence.
func (c *Controller) Dispatch(ctx context.Context, ev Event) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authErr = nil
	queue := []Event{ev}
	for len(queue) > 0 {
		var effects []Effect
		if failed, ok := queue[0].(AuthFailed); ok {
			c.authErr = failed.Err
		}
		c.state, effects = Reduce(c.state, queue[0])
		queue = queue[1:]
		for _, eff := range effects {
			if result := c.runner.Run(ctx, eff); result != nil {
				queue = append(queue, result)
			}
		}
	}
	return c.state.clone()
}

// Login signs in and, on success, loads the library.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, LoginSubmitted{Email: email, Password: password})
}

// Register creates an account and signs in.
func (c *Controller) Register(ctx context.Context, form RegisterSubmitted) error {
	return c.authenticate(ctx, form)
}

// Logout clears the session.
func (c *Controller) Logout(ctx context.Context) {
	c.Dispatch(ctx, LogoutRequested{})
}

// FetchLibrary reloads the document list.
func (c *Controller) FetchLibrary(ctx context.Context) State {
	return c.Dispatch(ctx, LibraryRequested{})
}

// OpenDocument loads doc and switches to the read or chat view.
func (c *Controller) OpenDocument(ctx context.Context, doc protocol.DocumentSummary, mode OpenMode) State {
	return c.Dispatch(ctx, OpenDocumentRequested{Document: doc, Mode: mode, MessageID: c.newID(), At: c.now()})
}

// SendChatMessage asks the assistant about the active document.
func (c *Controller) SendChatMessage(ctx context.Context, text string) State {
	return c.Dispatch(ctx, ChatSubmitted{Text: text, MessageID: c.newID(), At: c.now()})
}

// UploadDocument uploads a file and refreshes the library.
func (c *Controller) UploadDocument(ctx context.Context, fileName string, data []byte) State {
	return c.upload(ctx, fileName, data, false)
}

// UploadPublicDocument uploads a document every user can open.
func (c *Controller) UploadPublicDocument(ctx context.Context, fileName string, data []byte) State {
	return c.upload(ctx, fileName, data, true)
}

func (c *Controller) upload(ctx context.Context, fileName string, data []byte, public bool) State {
	return c.Dispatch(ctx, UploadRequested{FileName: fileName, Data: data, Public: public, PlaceholderID: c.newID(), At: c.now()})
}

// JumpToReference highlights a paragraph of the active document.
func (c *Controller) JumpToReference(ctx context.Context, index int) State {
	return c.Dispatch(ctx, ReferenceRequested{Index: index})
}

// JoinGroup enters an existing group.
func (c *Controller) JoinGroup(ctx context.Context, groupID string) State {
	return c.Dispatch(ctx, GroupJoinRequested{GroupID: groupID, MessageID: c.newID(), At: c.now()})
}

// CreateGroup adds a group and joins it. ID, MessageID and At are filled in.
func (c *Controller) CreateGroup(ctx context.Context, req GroupCreateRequested) State {
	req.ID = c.newID()
	req.MessageID = c.newID()
	req.At = c.now()
	return c.Dispatch(ctx, req)
}

// Navigate switches screens.
func (c *Controller) Navigate(ctx context.Context, view View) State {
	return c.Dispatch(ctx, NavigateRequested{View: view, MessageID: c.newID(), At: c.now()})
}

// SendGroupMessage posts into the active group.
func (c *Controller) SendGroupMessage(ctx context.Context, text string) State {
	return c.Dispatch(ctx, GroupMessageSubmitted{Text: text, MessageID: c.newID(), At: c.now()})
}

// SendSupportMessage asks the support assistant.
func (c *Controller) SendSupportMessage(ctx context.Context, text string) State {
	return c.Dispatch(ctx, SupportMessageSubmitted{Text: text, MessageID: c.newID(), ReplyID: c.newID(), At: c.now()})
}

// ToggleTheme flips the user's theme.
func (c *Controller) ToggleTheme(ctx context.Context) State {
	return c.Dispatch(ctx, ThemeToggled{})
}

// DismissError clears the last error.
func (c *Controller) DismissError(ctx context.Context) State {
	return c.Dispatch(ctx, ErrorDismissed{})
}

func (c *Controller) authenticate(ctx context.Context, ev Event) error {
	s := c.Dispatch(ctx, ev)
	if s.Authenticated() {
		return nil
	}
	c.mu.Lock()
	err := c.authErr
	c.mu.Unlock()
	switch {
	case err != nil:
		return err
	case s.LastError != "":
		return &ValidationError{Message: s.LastError}
	default:
		return errors.New("session: sign-in already in progress")
	}
}
