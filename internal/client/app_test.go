package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenggwsx/DocuMind/internal/config"
	"github.com/fenggwsx/DocuMind/internal/protocol"
	"github.com/fenggwsx/DocuMind/internal/session"
)

type fakeService struct {
	docs      []protocol.DocumentSummary
	content   map[string][]string
	uploaded  map[string][]byte
	public    map[string]bool
	revoked   []string
	questions []string
	token     string
}

func (f *fakeService) SignIn(ctx context.Context, email, password string) (protocol.Identity, error) {
	if password != "secret1" {
		return protocol.Identity{}, &session.AuthError{Kind: session.AuthInvalidCredentials}
	}
	f.token = "tok"
	return protocol.Identity{UID: "u-1", Email: email, Name: "Ada"}, nil
}

func (f *fakeService) SignUp(ctx context.Context, req protocol.SignUpRequest) (protocol.Identity, error) {
	f.token = "tok"
	return protocol.Identity{UID: "u-9", Email: req.Email, Name: req.Name}, nil
}

func (f *fakeService) Token() string { return f.token }

func (f *fakeService) SignOut(ctx context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	if f.token == token {
		f.token = ""
	}
	return nil
}

func (f *fakeService) Library(ctx context.Context) ([]protocol.DocumentSummary, error) {
	return append([]protocol.DocumentSummary(nil), f.docs...), nil
}

func (f *fakeService) Content(ctx context.Context, docID string) ([]string, error) {
	content, ok := f.content[docID]
	if !ok {
		return nil, &session.BackendError{Status: 404, Message: "Document not found"}
	}
	return content, nil
}

func (f *fakeService) Ask(ctx context.Context, docID, question string) (protocol.ChatResponse, error) {
	f.questions = append(f.questions, question)
	ref := 1
	return protocol.ChatResponse{Answer: "Every 400 hours.", ReferenceIndex: &ref}, nil
}

func (f *fakeService) Upload(ctx context.Context, fileName string, data []byte, public bool) error {
	if f.uploaded == nil {
		f.uploaded = make(map[string][]byte)
		f.public = make(map[string]bool)
	}
	f.uploaded[fileName] = data
	f.public[fileName] = public
	f.docs = append(f.docs, protocol.DocumentSummary{ID: "doc-new", Title: fileName, OwnerID: "u-1", IsPublic: public})
	return nil
}

func newTestApp(t *testing.T, svc *fakeService) *App {
	t.Helper()
	var n int
	ids := func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	clock := func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	runner := session.Runner{Auth: svc, Backend: svc, Timeout: time.Second, Clock: clock, NewID: ids}
	cfg := config.ClientConfig{CommandPrefix: '/'}
	catalog := session.Catalog{
		Groups: []session.Group{{ID: "g-1", Name: "Omega Review", Description: "Propulsion", Visibility: session.VisibilityPublic}},
	}
	a := NewApp(cfg, runner, catalog)
	a.now = clock
	a.newID = ids
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return a
}

// drive runs cmd and feeds every resulting event back into the app.
func drive(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			drive(t, a, c)
		}
	case eventMsg:
		_, next := a.Update(msg)
		drive(t, a, next)
	}
}

func submit(t *testing.T, a *App, line string) {
	t.Helper()
	a.input.SetValue(line)
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drive(t, a, cmd)
}

func manualService() *fakeService {
	return &fakeService{
		docs: []protocol.DocumentSummary{{ID: "doc-1", Title: "Omega Manual", OwnerID: "u-1", OwnerName: "Ada", IsPublic: true}},
		content: map[string][]string{
			"doc-1": {"Introduction.", "The core needs flushing every 400 hours."},
		},
	}
}

func TestLoginLoadsLibrary(t *testing.T) {
	a := newTestApp(t, manualService())
	submit(t, a, "/login ada@example.com secret1")

	if !a.state.Authenticated() || a.state.View != session.ViewDashboard {
		t.Fatalf("expected dashboard after login, got %s", a.state.View)
	}
	if len(a.state.Documents) != 1 {
		t.Fatalf("library not loaded: %+v", a.state.Documents)
	}
	if !strings.Contains(a.View(), "Welcome back, Ada") {
		t.Fatalf("dashboard not rendered:\n%s", a.View())
	}
}

func TestLoginFailureShowsMessage(t *testing.T) {
	a := newTestApp(t, manualService())
	submit(t, a, "/login ada@example.com wrong")

	if a.state.Authenticated() || a.logLine.level != logLevelError {
		t.Fatalf("expected login error, got %+v", a.logLine)
	}
	if a.logLine.body != session.MsgInvalidCredentials {
		t.Fatalf("unexpected message %q", a.logLine.body)
	}
}

func TestOpenChatAndJumpToReference(t *testing.T) {
	svc := manualService()
	a := newTestApp(t, svc)
	submit(t, a, "/login ada@example.com secret1")
	submit(t, a, "/open 1 chat")
	if a.state.View != session.ViewDocumentChat || a.state.ActiveDocument == nil {
		t.Fatalf("document not opened: view=%s", a.state.View)
	}

	submit(t, a, "how often is the core flushed?")
	if len(svc.questions) != 1 || svc.questions[0] != "how often is the core flushed?" {
		t.Fatalf("unexpected questions %v", svc.questions)
	}
	last := a.state.ChatMessages[len(a.state.ChatMessages)-1]
	if last.Sender != session.SenderAssistant || !last.HasReference() {
		t.Fatalf("unexpected answer %+v", last)
	}
	if !strings.Contains(a.View(), "/ref 2") {
		t.Fatalf("reference hint missing:\n%s", a.View())
	}

	submit(t, a, "/ref")
	if a.state.View != session.ViewDocumentRead || a.state.Highlight != 1 {
		t.Fatalf("reference jump failed: view=%s highlight=%d", a.state.View, a.state.Highlight)
	}
}

func TestUploadReadsFile(t *testing.T) {
	svc := &fakeService{}
	a := newTestApp(t, svc)
	submit(t, a, "/login ada@example.com secret1")
	if !strings.Contains(a.renderLibrary(), "Your library is empty") {
		t.Fatalf("expected empty library text, got %q", a.renderLibrary())
	}

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("first\n\nsecond"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	submit(t, a, "/upload "+path)

	if string(svc.uploaded["notes.txt"]) != "first\n\nsecond" {
		t.Fatalf("upload not sent: %v", svc.uploaded)
	}
	if len(a.state.Documents) != 1 || a.state.Documents[0].ID != "doc-new" {
		t.Fatalf("library not refreshed: %+v", a.state.Documents)
	}
}

func TestUploadPublicFlag(t *testing.T) {
	svc := &fakeService{}
	a := newTestApp(t, svc)
	submit(t, a, "/login ada@example.com secret1")

	path := filepath.Join(t.TempDir(), "shared.txt")
	if err := os.WriteFile(path, []byte("open to all"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	submit(t, a, "/upload --public "+path)

	if !svc.public["shared.txt"] {
		t.Fatalf("upload not marked public: %v", svc.public)
	}
	if len(a.state.Documents) != 1 || !a.state.Documents[0].IsPublic {
		t.Fatalf("unexpected library %+v", a.state.Documents)
	}

	submit(t, a, "/upload --public")
	if a.logLine.level != logLevelError || !strings.Contains(a.logLine.body, "--public") {
		t.Fatalf("expected usage error, got %+v", a.logLine)
	}
}

func TestLogoutRevokesCapturedToken(t *testing.T) {
	svc := manualService()
	a := newTestApp(t, svc)
	submit(t, a, "/login ada@example.com secret1")

	a.input.SetValue("/logout")
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	// A new session starts before the sign-out command runs.
	svc.token = "tok-2"
	drive(t, a, cmd)

	if len(svc.revoked) != 1 || svc.revoked[0] != "tok" {
		t.Fatalf("unexpected revoked tokens %v", svc.revoked)
	}
	if svc.token != "tok-2" {
		t.Fatalf("newer token cleared, got %q", svc.token)
	}
}

func TestUploadMissingFile(t *testing.T) {
	a := newTestApp(t, &fakeService{})
	submit(t, a, "/login ada@example.com secret1")
	submit(t, a, "/upload "+filepath.Join(t.TempDir(), "missing.pdf"))
	if a.logLine.level != logLevelError || !strings.HasPrefix(a.logLine.body, "Read ") {
		t.Fatalf("expected read error, got %+v", a.logLine)
	}
}

func TestCommandsRequireSignIn(t *testing.T) {
	a := newTestApp(t, manualService())
	submit(t, a, "/library")
	if a.state.View != session.ViewLogin || a.logLine.level != logLevelError {
		t.Fatalf("library should need a session, view=%s", a.state.View)
	}
	submit(t, a, "hello")
	if !strings.HasPrefix(a.logLine.body, "Sign in first") {
		t.Fatalf("unexpected log %q", a.logLine.body)
	}
}

func TestGroupAndSupportMessages(t *testing.T) {
	a := newTestApp(t, manualService())
	submit(t, a, "/login ada@example.com secret1")

	submit(t, a, "/join 1")
	if a.state.ActiveGroup == nil || a.state.View != session.ViewGroupChat {
		t.Fatalf("group not joined")
	}
	submit(t, a, "hi all")
	last := a.state.ChatMessages[len(a.state.ChatMessages)-1]
	if last.Text != "hi all" || last.Sender != session.SenderUser {
		t.Fatalf("group message not posted: %+v", last)
	}

	submit(t, a, "/support")
	if a.state.View != session.ViewSupport || a.state.ActiveGroup != nil {
		t.Fatalf("support not entered")
	}
	submit(t, a, "billing")
	if got := a.state.ChatMessages[len(a.state.ChatMessages)-1]; got.Sender != session.SenderSupport {
		t.Fatalf("support did not reply: %+v", got)
	}
}

func TestRegisterParsesOptionalFields(t *testing.T) {
	a := newTestApp(t, manualService())
	submit(t, a, "/register Grace grace@example.com secret1 secret1 Navy Labs light")
	if a.state.User == nil {
		t.Fatalf("registration failed: %q", a.state.LastError)
	}
	if a.state.User.Company != "Navy Labs" || a.state.User.Theme != session.ThemeLight {
		t.Fatalf("unexpected user %+v", a.state.User)
	}
}

func TestTabCompletion(t *testing.T) {
	a := newTestApp(t, manualService())
	a.input.SetValue("/lo")
	a.input.CursorEnd()
	a.handleTabCompletion()
	if a.input.Value() != "/log" {
		t.Fatalf("unexpected completion %q", a.input.Value())
	}

	a.input.SetValue("/sup")
	a.input.CursorEnd()
	a.handleTabCompletion()
	if a.input.Value() != "/support " {
		t.Fatalf("unexpected completion %q", a.input.Value())
	}
}

func TestLongestCommonPrefix(t *testing.T) {
	if got := longestCommonPrefix([]string{"/read", "/ref", "/register"}); got != "/re" {
		t.Fatalf("unexpected prefix %q", got)
	}
	if got := longestCommonPrefix(nil); got != "" {
		t.Fatalf("unexpected prefix %q", got)
	}
}

func TestWrapLines(t *testing.T) {
	lines := wrapLines([]string{"the quick brown fox jumps"}, 10)
	want := []string{"the quick", "brown fox", "jumps"}
	if len(lines) != len(want) {
		t.Fatalf("unexpected wrap %q", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: got %q want %q", i, lines[i], want[i])
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	a := newTestApp(t, manualService())
	submit(t, a, "/frobnicate")
	if a.logLine.level != logLevelError || !strings.Contains(a.logLine.body, "/frobnicate") {
		t.Fatalf("unexpected log %+v", a.logLine)
	}
}
