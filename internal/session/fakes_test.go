package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fenggwsx/DocuMind/internal/protocol"
)

type fakeAuth struct {
	mu       sync.Mutex
	identity protocol.Identity
	err      error
	signIns  int
	signUps  []protocol.SignUpRequest
	signOuts int
	revoked  []string
	token    string
}

func (f *fakeAuth) SignIn(_ context.Context, email, _ string) (protocol.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signIns++
	if f.err != nil {
		return protocol.Identity{}, f.err
	}
	f.token = "token-" + email
	identity := f.identity
	if identity.Email == "" {
		identity.Email = email
	}
	return identity, nil
}

func (f *fakeAuth) SignUp(_ context.Context, req protocol.SignUpRequest) (protocol.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signUps = append(f.signUps, req)
	if f.err != nil {
		return protocol.Identity{}, f.err
	}
	f.token = "token-" + req.Email
	return protocol.Identity{UID: f.identity.UID, Email: req.Email, Name: req.Name}, nil
}

func (f *fakeAuth) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeAuth) SignOut(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	f.revoked = append(f.revoked, token)
	if f.token == token {
		f.token = ""
	}
	return nil
}

func (f *fakeAuth) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signIns + len(f.signUps)
}

type askCall struct {
	docID    string
	question string
}

type fakeBackend struct {
	mu sync.Mutex

	docs         []protocol.DocumentSummary
	libraryErr   error
	libraryCalls int

	content      map[string][]string
	contentCalls []string

	answer protocol.ChatResponse
	askErr error
	asks   []askCall

	uploadErr error
	uploads   []string
	public    []bool
}

func (f *fakeBackend) Library(context.Context) ([]protocol.DocumentSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.libraryCalls++
	if f.libraryErr != nil {
		return nil, f.libraryErr
	}
	return append([]protocol.DocumentSummary(nil), f.docs...), nil
}

func (f *fakeBackend) Content(_ context.Context, docID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contentCalls = append(f.contentCalls, docID)
	content, ok := f.content[docID]
	if !ok {
		return nil, &BackendError{Status: 404, Message: "Document not found"}
	}
	return content, nil
}

func (f *fakeBackend) Ask(_ context.Context, docID, question string) (protocol.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asks = append(f.asks, askCall{docID: docID, question: question})
	if f.askErr != nil {
		return protocol.ChatResponse{}, f.askErr
	}
	return f.answer, nil
}

func (f *fakeBackend) Upload(_ context.Context, fileName string, _ []byte, public bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, fileName)
	f.public = append(f.public, public)
	return f.uploadErr
}

func (f *fakeBackend) networkCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.libraryCalls + len(f.contentCalls) + len(f.asks) + len(f.uploads)
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)
}

var manual = []string{
	"Servo motors require inspection every 2,000 operating hours.",
	"Lubricate the gear train with approved grease only.",
	"Maintenance is required every 500 hours or quarterly, whichever comes first.",
	"Replace the backup battery annually.",
}

func testCatalog() Catalog {
	return Catalog{
		Groups: []Group{{
			ID:              "g-1",
			Name:            "Robotics Maintenance",
			Members:         12,
			Active:          true,
			RelatedDocID:    "doc-1",
			RelatedDocTitle: "Robot Manual",
			Visibility:      VisibilityPublic,
		}},
		History: map[string][]ChatMessage{
			"g-1": {{ID: "h-1", Sender: SenderOther, SenderName: "Sarah Connors", Text: "Has anyone changed the battery?"}},
		},
		Support: SupportScript{
			Replies:  []SupportReply{{Keywords: []string{"password"}, Reply: "Reset it from Settings."}},
			Fallback: "We will get back to you.",
		},
	}
}

func newTestController(auth *fakeAuth, backend *fakeBackend) *Controller {
	return NewController(auth, backend, testCatalog(), WithClock(fixedClock), WithIDs(sequentialIDs()))
}

func ownedDoc() protocol.DocumentSummary {
	return protocol.DocumentSummary{ID: "doc-1", Title: "Robot Manual", OwnerID: "u-1", OwnerName: "Ada"}
}

func publicDoc() protocol.DocumentSummary {
	return protocol.DocumentSummary{ID: "doc-2", Title: "Safety Guide", OwnerID: "u-2", OwnerName: "Jane Doe", IsPublic: true}
}

func newFakes() (*fakeAuth, *fakeBackend) {
	auth := &fakeAuth{identity: protocol.Identity{UID: "u-1", Name: "Ada"}}
	backend := &fakeBackend{
		docs: []protocol.DocumentSummary{ownedDoc(), publicDoc()},
		content: map[string][]string{
			"doc-1": manual,
			"doc-2": {"Wear eye protection.", "Keep the cell closed while running."},
		},
	}
	return auth, backend
}
