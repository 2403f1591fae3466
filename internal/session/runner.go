package session

import (
	"context"
	"errors"
	"time"

	"github.com/fenggwsx/DocuMind/internal/protocol"
)

// DefaultTimeout bounds every backend call made by the Runner.
const DefaultTimeout = 30 * time.Second

// Authenticator is the identity provider.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (protocol.Identity, error)
	SignUp(ctx context.Context, req protocol.SignUpRequest) (protocol.Identity, error)
	// Token returns the bearer token of the signed-in account, or "".
	Token() string
	// SignOut revokes token. A token issued after it must stay valid.
	SignOut(ctx context.Context, token string) error
}

// Backend is the document-and-chat service.
type Backend interface {
	Library(ctx context.Context) ([]protocol.DocumentSummary, error)
	Content(ctx context.Context, docID string) ([]string, error)
	Ask(ctx context.Context, docID, question string) (protocol.ChatResponse, error)
	Upload(ctx context.Context, fileName string, data []byte, public bool) error
}

// Runner performs effects and turns their outcome into result events.
type Runner struct {
	Auth    Authenticator
	Backend Backend
	Timeout time.Duration
	// Clock and NewID stamp assistant messages. Both default when nil.
	Clock func() time.Time
	NewID func() string
}

// Prepare binds eff to the current session before it runs asynchronously.
// SignOut captures the token to revoke so that a later sign-in is not
// revoked in its place.
func (r Runner) Prepare(eff Effect) Effect {
	if e, ok := eff.(SignOut); ok && e.Token == "" {
		e.Token = r.Auth.Token()
		return e
	}
	return eff
}

// Run executes eff and returns the event reporting its outcome. SignOut has
// no outcome and yields nil.
func (r Runner) Run(ctx context.Context, eff Effect) Event {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch e := eff.(type) {
	case SignIn:
		identity, err := r.Auth.SignIn(ctx, e.Email, e.Password)
		if err != nil {
			return AuthFailed{Tag: e.Tag, Err: classify("sign in", err)}
		}
		return AuthSucceeded{Tag: e.Tag, Identity: identity}
	case SignUp:
		identity, err := r.Auth.SignUp(ctx, e.Request)
		if err != nil {
			return AuthFailed{Tag: e.Tag, Err: classify("sign up", err)}
		}
		return AuthSucceeded{Tag: e.Tag, Identity: identity}
	case SignOut:
		_ = r.Auth.SignOut(ctx, r.Prepare(e).(SignOut).Token)
		return nil
	case FetchLibrary:
		docs, err := r.Backend.Library(ctx)
		if err != nil {
			return LibraryFailed{Tag: e.Tag, Err: classify("library", err)}
		}
		return LibraryLoaded{Tag: e.Tag, Documents: docs}
	case FetchContent:
		content, err := r.Backend.Content(ctx, e.DocID)
		if err != nil {
			return DocumentFailed{Tag: e.Tag, DocID: e.DocID, Err: classify("doc content", err)}
		}
		return DocumentLoaded{Tag: e.Tag, DocID: e.DocID, Content: content}
	case Ask:
		resp, err := r.Backend.Ask(ctx, e.DocID, e.Question)
		if err != nil {
			return AnswerFailed{Tag: e.Tag, DocID: e.DocID, Err: classify("chat", err), MessageID: r.id(), At: r.now()}
		}
		return AnswerReceived{
			Tag:            e.Tag,
			DocID:          e.DocID,
			Answer:         resp.Answer,
			ReferenceIndex: resp.ReferenceIndex,
			MessageID:      r.id(),
			At:             r.now(),
		}
	case Upload:
		if err := r.Backend.Upload(ctx, e.FileName, e.Data, e.Public); err != nil {
			return UploadFailed{Tag: e.Tag, Err: classify("upload", err)}
		}
		return UploadSucceeded{Tag: e.Tag}
	}
	return nil
}

func (r Runner) now() time.Time {
	if r.Clock != nil {
		return r.Clock()
	}
	return time.Now()
}

func (r Runner) id() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return newID()
}

// classify keeps typed errors and wraps anything else as a transport failure.
func classify(op string, err error) error {
	var validation *ValidationError
	var authErr *AuthError
	var backend *BackendError
	var transport *TransportError
	if errors.As(err, &validation) || errors.As(err, &authErr) || errors.As(err, &backend) || errors.As(err, &transport) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}
