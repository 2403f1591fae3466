// Package api is the HTTP client for the DocuMind backend. A single Client
// serves as both the identity provider and the document-and-chat backend of
// a session, sharing the bearer token between the two roles.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fenggwsx/DocuMind/internal/protocol"
	"github.com/fenggwsx/DocuMind/internal/session"
)

// Client calls the backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.Mutex
	token string
}

// APIError represents a non-2xx backend response.
type APIError struct {
	Status  int
	Message string
	Code    protocol.ErrorCode
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

var (
	_ session.Authenticator = (*Client)(nil)
	_ session.Backend       = (*Client)(nil)
)

// NewClient constructs a backend client. Requests are also bounded by the
// context deadline the caller passes in.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = session.DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SignIn authenticates with email and password and keeps the issued token.
func (c *Client) SignIn(ctx context.Context, email, password string) (protocol.Identity, error) {
	payload := protocol.SignInRequest{Email: email, Password: password}
	var resp protocol.AuthResponse
	if err := c.doJSON(ctx, "sign in", http.MethodPost, protocol.PathSignIn, "", payload, &resp); err != nil {
		return protocol.Identity{}, authError(err)
	}
	c.setToken(resp.Token)
	return resp.User, nil
}

// SignUp creates an account and keeps the issued token.
func (c *Client) SignUp(ctx context.Context, req protocol.SignUpRequest) (protocol.Identity, error) {
	var resp protocol.AuthResponse
	if err := c.doJSON(ctx, "sign up", http.MethodPost, protocol.PathSignUp, "", req, &resp); err != nil {
		return protocol.Identity{}, authError(err)
	}
	c.setToken(resp.Token)
	return resp.User, nil
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// SignOut asks the backend to revoke token. The local token is forgotten
// only while it is still token, so a session signed in meanwhile survives.
func (c *Client) SignOut(ctx context.Context, token string) error {
	c.mu.Lock()
	if c.token == token {
		c.token = ""
	}
	c.mu.Unlock()
	if token == "" {
		return nil
	}
	return c.doJSON(ctx, "sign out", http.MethodPost, protocol.PathSignOut, token, nil, nil)
}

// Library lists the documents visible to the signed-in user.
func (c *Client) Library(ctx context.Context) ([]protocol.DocumentSummary, error) {
	var resp protocol.LibraryResponse
	if err := c.doJSON(ctx, "library", http.MethodGet, protocol.PathLibrary, c.Token(), nil, &resp); err != nil {
		return nil, backendError(err)
	}
	if resp.Documents == nil {
		return []protocol.DocumentSummary{}, nil
	}
	return resp.Documents, nil
}

// Content returns the ordered paragraphs of a document.
func (c *Client) Content(ctx context.Context, docID string) ([]string, error) {
	payload := protocol.DocContentRequest{DocID: docID}
	var resp protocol.DocContentResponse
	if err := c.doJSON(ctx, "doc content", http.MethodPost, protocol.PathDocContent, c.Token(), payload, &resp); err != nil {
		return nil, backendError(err)
	}
	return resp.Content, nil
}

// Ask sends a question about the document docID.
func (c *Client) Ask(ctx context.Context, docID, question string) (protocol.ChatResponse, error) {
	payload := protocol.ChatRequest{Question: question, DocID: docID}
	var resp protocol.ChatResponse
	if err := c.doJSON(ctx, "chat", http.MethodPost, protocol.PathChat, c.Token(), payload, &resp); err != nil {
		return protocol.ChatResponse{}, backendError(err)
	}
	return resp, nil
}

// Upload posts data as a multipart file named fileName. A public upload is
// listed in every user's library.
func (c *Client) Upload(ctx context.Context, fileName string, data []byte, public bool) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if public {
		if err := writer.WriteField(protocol.UploadPublicField, strconv.FormatBool(public)); err != nil {
			return &session.TransportError{Op: "upload", Err: err}
		}
	}
	part, err := writer.CreateFormFile(protocol.UploadField, fileName)
	if err != nil {
		return &session.TransportError{Op: "upload", Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return &session.TransportError{Op: "upload", Err: err}
	}
	if err := writer.Close(); err != nil {
		return &session.TransportError{Op: "upload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+protocol.PathUpload, body)
	if err != nil {
		return &session.TransportError{Op: "upload", Err: err}
	}
	addAuthHeader(req, c.Token())
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return backendError(c.do("upload", req, nil))
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) doJSON(ctx context.Context, op, method, path, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return &session.TransportError{Op: op, Err: err}
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &session.TransportError{Op: op, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	addAuthHeader(req, token)
	return c.do(op, req, out)
}

func (c *Client) do(op string, req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &session.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// A reply without a well-formed error body did not come from the backend.
		var errResp protocol.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || strings.TrimSpace(errResp.Error) == "" {
			return &session.TransportError{Op: op, Err: fmt.Errorf("status %d", resp.StatusCode)}
		}
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(errResp.Error), Code: errResp.Code}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &session.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func addAuthHeader(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// authError classifies a sign-in or sign-up failure.
func authError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	kind := session.AuthUnknown
	switch apiErr.Code {
	case protocol.CodeInvalidCredentials:
		kind = session.AuthInvalidCredentials
	case protocol.CodeInvalidEmail:
		kind = session.AuthInvalidEmail
	case protocol.CodeEmailExists:
		kind = session.AuthEmailInUse
	case protocol.CodeWeakPassword:
		kind = session.AuthWeakPassword
	default:
		if apiErr.Status == http.StatusUnauthorized {
			kind = session.AuthInvalidCredentials
		}
	}
	return &session.AuthError{Kind: kind, Err: apiErr}
}

// backendError turns an APIError into a session.BackendError. Server-side
// failures get no message so the user sees the generic text.
func backendError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	msg := apiErr.Message
	if apiErr.Status >= http.StatusInternalServerError {
		msg = ""
	}
	return &session.BackendError{Status: apiErr.Status, Message: msg}
}
