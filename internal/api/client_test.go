package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fenggwsx/DocuMind/internal/protocol"
	"github.com/fenggwsx/DocuMind/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSignInStoresTokenForLaterCalls(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case protocol.PathSignIn:
			var req protocol.SignInRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode sign in: %v", err)
			}
			writeJSON(w, http.StatusOK, protocol.AuthResponse{
				Token: "tok-1",
				User:  protocol.Identity{UID: "u-1", Email: req.Email, Name: "Ada"},
			})
		case protocol.PathLibrary:
			gotAuth = r.Header.Get("Authorization")
			writeJSON(w, http.StatusOK, protocol.LibraryResponse{Documents: []protocol.DocumentSummary{{ID: "doc-1"}}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	identity, err := c.SignIn(context.Background(), "ada@example.com", "secret1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if identity.UID != "u-1" || c.Token() != "tok-1" {
		t.Fatalf("unexpected identity %+v token %q", identity, c.Token())
	}
	docs, err := c.Library(context.Background())
	if err != nil {
		t.Fatalf("library: %v", err)
	}
	if len(docs) != 1 || gotAuth != "Bearer tok-1" {
		t.Fatalf("unexpected library call docs=%v auth=%q", docs, gotAuth)
	}
}

func TestAuthErrorCodes(t *testing.T) {
	cases := []struct {
		status int
		code   protocol.ErrorCode
		want   session.AuthErrorKind
	}{
		{http.StatusUnauthorized, protocol.CodeInvalidCredentials, session.AuthInvalidCredentials},
		{http.StatusBadRequest, protocol.CodeInvalidEmail, session.AuthInvalidEmail},
		{http.StatusConflict, protocol.CodeEmailExists, session.AuthEmailInUse},
		{http.StatusBadRequest, protocol.CodeWeakPassword, session.AuthWeakPassword},
		{http.StatusUnauthorized, "", session.AuthInvalidCredentials},
		{http.StatusTeapot, "", session.AuthUnknown},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, tc.status, protocol.ErrorResponse{Error: "nope", Code: tc.code})
		}))
		c := NewClient(srv.URL, time.Second)
		_, err := c.SignUp(context.Background(), protocol.SignUpRequest{Name: "A", Email: "a@b.c", Password: "x"})
		srv.Close()

		var authErr *session.AuthError
		if !errors.As(err, &authErr) || authErr.Kind != tc.want {
			t.Fatalf("status %d code %q: got %v", tc.status, tc.code, err)
		}
	}
}

func TestBackendErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case protocol.PathDocContent:
			writeJSON(w, http.StatusNotFound, protocol.ErrorResponse{Error: "Document not found", Code: protocol.CodeNotFound})
		case protocol.PathChat:
			writeJSON(w, http.StatusInternalServerError, protocol.ErrorResponse{Error: "stack trace here"})
		default:
			w.WriteHeader(http.StatusOK)
			_, _ = io.WriteString(w, "{not json")
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL, time.Second)
	ctx := context.Background()

	_, err := c.Content(ctx, "doc-x")
	if got := session.UserMessage(err); got != "Document not found" {
		t.Fatalf("unexpected content error %q (%v)", got, err)
	}
	_, err = c.Ask(ctx, "doc-x", "why?")
	var backend *session.BackendError
	if !errors.As(err, &backend) || backend.Status != 500 || session.UserMessage(err) != session.MsgBackendGeneric {
		t.Fatalf("server error leaked: %v", err)
	}
	_, err = c.Library(ctx)
	var transport *session.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected transport error for bad body, got %v", err)
	}
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second)
	_, err := c.SignIn(context.Background(), "a@b.c", "secret1")
	var transport *session.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if session.UserMessage(err) != session.MsgUnreachable {
		t.Fatalf("unexpected message %q", session.UserMessage(err))
	}
}

func TestChatSendsDocID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req protocol.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode chat: %v", err)
		}
		if req.DocID != "doc-1" || req.FullDocumentText != "" || req.Question != "how often?" {
			t.Errorf("unexpected chat request %+v", req)
		}
		ref := 2
		writeJSON(w, http.StatusOK, protocol.ChatResponse{Answer: "every 400 hours", ReferenceIndex: &ref})
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, time.Second).Ask(context.Background(), "doc-1", "how often?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if resp.ReferenceIndex == nil || *resp.ReferenceIndex != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestUploadMultipart(t *testing.T) {
	var visibility []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile(protocol.UploadField)
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "notes.txt" || string(data) != "hello" {
			t.Errorf("unexpected upload %s %q", header.Filename, data)
		}
		visibility = append(visibility, r.FormValue(protocol.UploadPublicField))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if err := c.Upload(context.Background(), "notes.txt", []byte("hello"), false); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := c.Upload(context.Background(), "notes.txt", []byte("hello"), true); err != nil {
		t.Fatalf("public upload: %v", err)
	}
	if len(visibility) != 2 || visibility[0] != "" || visibility[1] != "true" {
		t.Fatalf("unexpected public fields %q", visibility)
	}
}

func TestSignOutClearsToken(t *testing.T) {
	var revoked string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == protocol.PathSignOut {
			revoked = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, protocol.AuthResponse{Token: "tok-2", User: protocol.Identity{UID: "u-2"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.SignIn(context.Background(), "a@b.c", "secret1"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if err := c.SignOut(context.Background(), c.Token()); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if c.Token() != "" || revoked != "Bearer tok-2" {
		t.Fatalf("token not revoked: local=%q server=%q", c.Token(), revoked)
	}
}

func TestSignOutKeepsNewerToken(t *testing.T) {
	var revoked string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == protocol.PathSignOut {
			revoked = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, protocol.AuthResponse{Token: "tok-2", User: protocol.Identity{UID: "u-2"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.SignIn(context.Background(), "a@b.c", "secret1"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if err := c.SignOut(context.Background(), "tok-1"); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if c.Token() != "tok-2" || revoked != "Bearer tok-1" {
		t.Fatalf("wrong token revoked: local=%q server=%q", c.Token(), revoked)
	}
}

func TestNonBackendErrorReplies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case protocol.PathLibrary:
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "<html>proxy error</html>")
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "no route"})
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL, time.Second)
	ctx := context.Background()

	_, err := c.Library(ctx)
	var transport *session.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected transport error for proxy reply, got %v", err)
	}
	if got := session.UserMessage(err); got != session.MsgUnreachable {
		t.Fatalf("unexpected message %q", got)
	}

	_, err = c.Content(ctx, "doc-x")
	if !errors.As(err, &transport) || session.UserMessage(err) != session.MsgUnreachable {
		t.Fatalf("expected transport error for unknown body, got %v", err)
	}
}
