package session

import (
	"errors"
	"testing"

	"github.com/fenggwsx/DocuMind/internal/protocol"
)

func mustLogin(t *testing.T) State {
	t.Helper()
	s, effects := Reduce(NewState(testCatalog()), LoginSubmitted{Email: "ada@example.com", Password: "secret1"})
	signIn, ok := effects[0].(SignIn)
	if len(effects) != 1 || !ok {
		t.Fatalf("expected sign in effect, got %#v", effects)
	}
	s, effects = Reduce(s, AuthSucceeded{Tag: signIn.Tag, Identity: protocol.Identity{UID: "u-1", Email: "ada@example.com", Name: "Ada"}})
	fetch, ok := effects[0].(FetchLibrary)
	if len(effects) != 1 || !ok {
		t.Fatalf("expected library fetch, got %#v", effects)
	}
	s, _ = Reduce(s, LibraryLoaded{Tag: fetch.Tag, Documents: []protocol.DocumentSummary{ownedDoc()}})
	return s
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := mustLogin(t)
	docs := len(s.Documents)
	_, _ = Reduce(s, UploadRequested{FileName: "a.txt", Data: []byte("x"), PlaceholderID: "p-1"})
	if len(s.Documents) != docs || s.IsLoading {
		t.Fatalf("input state was modified")
	}
}

func TestLoginValidationIsLocal(t *testing.T) {
	s, effects := Reduce(NewState(testCatalog()), LoginSubmitted{Email: " ", Password: "x"})
	if len(effects) != 0 || s.LastError != MsgMissingCredentials {
		t.Fatalf("expected local rejection, got %q %#v", s.LastError, effects)
	}
}

func TestLoginIgnoredWhileInFlight(t *testing.T) {
	s, effects := Reduce(NewState(testCatalog()), LoginSubmitted{Email: "a@b.c", Password: "secret1"})
	if len(effects) != 1 || !s.IsLoading {
		t.Fatalf("expected request in flight")
	}
	_, effects = Reduce(s, LoginSubmitted{Email: "a@b.c", Password: "secret1"})
	if len(effects) != 0 {
		t.Fatalf("second submission should be ignored")
	}
}

func TestStaleContentIsDiscarded(t *testing.T) {
	s := mustLogin(t)
	s, effects := Reduce(s, OpenDocumentRequested{Document: ownedDoc(), Mode: OpenRead, MessageID: "m-1"})
	fetch := effects[0].(FetchContent)

	s, _ = Reduce(s, NavigateRequested{View: ViewCommunity})
	if s.IsLoading {
		t.Fatalf("navigation should cancel the content fetch")
	}
	s, _ = Reduce(s, DocumentLoaded{Tag: fetch.Tag, DocID: "doc-1", Content: manual})
	if s.ActiveDocument != nil || s.View != ViewCommunity {
		t.Fatalf("stale content applied: view=%s", s.View)
	}
}

func TestStaleAnswerAfterLogout(t *testing.T) {
	s := mustLogin(t)
	s, effects := Reduce(s, OpenDocumentRequested{Document: ownedDoc(), Mode: OpenChat})
	s, _ = Reduce(s, DocumentLoaded{Tag: effects[0].(FetchContent).Tag, DocID: "doc-1", Content: manual})
	s, effects = Reduce(s, ChatSubmitted{Text: "hi", MessageID: "m-2"})
	ask := effects[0].(Ask)
	if !s.IsSending {
		t.Fatalf("expected IsSending")
	}

	s, effects = Reduce(s, LogoutRequested{})
	if _, ok := effects[0].(SignOut); !ok || len(effects) != 1 {
		t.Fatalf("expected sign out effect, got %#v", effects)
	}
	s, _ = Reduce(s, AnswerReceived{Tag: ask.Tag, DocID: "doc-1", Answer: "late"})
	if len(s.ChatMessages) != 0 || s.IsSending {
		t.Fatalf("late answer leaked into logged-out state")
	}

	s, effects = Reduce(s, LoginSubmitted{Email: "ada@example.com", Password: "secret1"})
	if effects[0].(SignIn).Tag <= ask.Tag {
		t.Fatalf("tags must keep increasing across sessions")
	}
}

func TestChatIgnoredWhileSending(t *testing.T) {
	s := mustLogin(t)
	s, effects := Reduce(s, OpenDocumentRequested{Document: ownedDoc(), Mode: OpenChat})
	s, _ = Reduce(s, DocumentLoaded{Tag: effects[0].(FetchContent).Tag, DocID: "doc-1", Content: manual})
	s, _ = Reduce(s, ChatSubmitted{Text: "first"})
	n := len(s.ChatMessages)
	s, effects = Reduce(s, ChatSubmitted{Text: "second"})
	if len(effects) != 0 || len(s.ChatMessages) != n {
		t.Fatalf("second question should be ignored while sending")
	}
}

func TestLibraryKeepsPendingPlaceholder(t *testing.T) {
	s := mustLogin(t)
	s, effects := Reduce(s, UploadRequested{FileName: "report.final.pdf", Data: []byte("%PDF"), PlaceholderID: "p-1"})
	upload := effects[0].(Upload)
	if s.Documents[0].Title != "report.final" || !s.Documents[0].Uploading || s.Documents[0].Summary != "Uploading…" {
		t.Fatalf("unexpected placeholder %+v", s.Documents[0])
	}

	s, effects = Reduce(s, LibraryRequested{})
	s, _ = Reduce(s, LibraryLoaded{Tag: effects[0].(FetchLibrary).Tag, Documents: []protocol.DocumentSummary{publicDoc()}})
	if len(s.Documents) != 2 || s.Documents[0].ID != "p-1" {
		t.Fatalf("placeholder dropped by refresh: %+v", s.Documents)
	}

	s, _ = Reduce(s, UploadFailed{Tag: upload.Tag, Err: &BackendError{Status: 413, Message: "File too large"}})
	if len(s.Documents) != 1 || s.Documents[0].ID != "doc-2" || s.LastError != "File too large" {
		t.Fatalf("unexpected documents after failure: %+v %q", s.Documents, s.LastError)
	}
}

func TestLibraryFailureKeepsPendingPlaceholder(t *testing.T) {
	s := mustLogin(t)
	s, effects := Reduce(s, UploadRequested{FileName: "notes.txt", Data: []byte("x"), Public: true, PlaceholderID: "p-1"})
	upload := effects[0].(Upload)
	if !upload.Public || !s.Documents[0].IsPublic {
		t.Fatalf("visibility not carried: %#v %+v", upload, s.Documents[0])
	}

	s, effects = Reduce(s, LibraryRequested{})
	s, _ = Reduce(s, LibraryFailed{Tag: effects[0].(FetchLibrary).Tag, Err: &TransportError{Op: "library", Err: errors.New("timeout")}})
	if s.LastError != MsgUnreachable || s.IsLoading {
		t.Fatalf("unexpected state %q loading=%v", s.LastError, s.IsLoading)
	}
	if len(s.Documents) != 2 || s.Documents[0].ID != "p-1" || !s.Documents[0].Uploading {
		t.Fatalf("placeholder dropped by failed refresh: %+v", s.Documents)
	}

	s, effects = Reduce(s, UploadSucceeded{Tag: upload.Tag})
	if _, ok := effects[0].(FetchLibrary); !ok || len(effects) != 1 {
		t.Fatalf("expected library refresh, got %#v", effects)
	}
}

func TestAuthFailureMessages(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&AuthError{Kind: AuthInvalidCredentials}, MsgInvalidCredentials},
		{&AuthError{Kind: AuthWeakPassword}, MsgWeakPassword},
		{&AuthError{Kind: AuthInvalidEmail}, MsgInvalidEmail},
		{&TransportError{Op: "sign in", Err: errors.New("timeout")}, MsgUnreachable},
		{&BackendError{Status: 500}, MsgBackendGeneric},
	}
	for _, tc := range cases {
		s, effects := Reduce(NewState(testCatalog()), LoginSubmitted{Email: "a@b.c", Password: "pw"})
		s, _ = Reduce(s, AuthFailed{Tag: effects[0].(SignIn).Tag, Err: tc.err})
		if s.LastError != tc.want || s.View != ViewLogin || s.User != nil || s.IsLoading {
			t.Fatalf("%v: got %q view=%s", tc.err, s.LastError, s.View)
		}
	}
}

func TestOwns(t *testing.T) {
	user := &User{UID: "u-1"}
	if !Owns(user, ownedDoc()) {
		t.Fatalf("owner not recognised")
	}
	if Owns(user, protocol.DocumentSummary{OwnerID: "user-1"}) {
		t.Fatalf("hard-coded identity must not grant ownership")
	}
	if Owns(nil, ownedDoc()) {
		t.Fatalf("anonymous session owns nothing")
	}
}

func TestErrorDismissed(t *testing.T) {
	s, _ := Reduce(NewState(testCatalog()), LoginSubmitted{})
	s, _ = Reduce(s, ErrorDismissed{})
	if s.LastError != "" {
		t.Fatalf("error not cleared")
	}
}
