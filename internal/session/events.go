package session

import (
	"time"

	"github.com/fenggwsx/DocuMind/internal/protocol"
)

// Event is anything that can move the state machine: user intents and
// results of effects.
type Event interface {
	event()
}

// LoginSubmitted is the login form submission.
type LoginSubmitted struct {
	Email    string
	Password string
}

// RegisterSubmitted is the registration form submission.
type RegisterSubmitted struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Company         string
	Theme           Theme
}

// AuthSucceeded carries the identity returned by the provider.
type AuthSucceeded struct {
	Tag      uint64
	Identity protocol.Identity
}

// AuthFailed carries a sign-in or sign-up failure.
type AuthFailed struct {
	Tag uint64
	Err error
}

// LogoutRequested clears the session.
type LogoutRequested struct{}

// LibraryRequested asks for a fresh document list.
type LibraryRequested struct{}

// LibraryLoaded replaces the document list.
type LibraryLoaded struct {
	Tag       uint64
	Documents []protocol.DocumentSummary
}

// LibraryFailed reports a library fetch failure.
type LibraryFailed struct {
	Tag uint64
	Err error
}

// OpenMode selects the view an opened document lands on.
type OpenMode string

const (
	OpenRead OpenMode = "read"
	OpenChat OpenMode = "chat"
)

// OpenDocumentRequested starts loading a document's content.
type OpenDocumentRequested struct {
	Document  protocol.DocumentSummary
	Mode      OpenMode
	MessageID string
	At        time.Time
}

// DocumentLoaded delivers the content of the document being opened.
type DocumentLoaded struct {
	Tag     uint64
	DocID   string
	Content []string
}

// DocumentFailed reports a content fetch failure.
type DocumentFailed struct {
	Tag   uint64
	DocID string
	Err   error
}

// ChatSubmitted is a question about the active document.
type ChatSubmitted struct {
	Text      string
	MessageID string
	At        time.Time
}

// AnswerReceived is the assistant's reply.
type AnswerReceived struct {
	Tag            uint64
	DocID          string
	Answer         string
	ReferenceIndex *int
	MessageID      string
	At             time.Time
}

// AnswerFailed reports a chat request failure.
type AnswerFailed struct {
	Tag       uint64
	DocID     string
	Err       error
	MessageID string
	At        time.Time
}

// UploadRequested starts an upload. Public uploads are listed for every user.
type UploadRequested struct {
	FileName      string
	Data          []byte
	Public        bool
	PlaceholderID string
	At            time.Time
}

// UploadSucceeded reports a stored upload.
type UploadSucceeded struct {
	Tag uint64
}

// UploadFailed reports a rejected or failed upload.
type UploadFailed struct {
	Tag uint64
	Err error
}

// ReferenceRequested jumps to a paragraph of the active document.
type ReferenceRequested struct {
	Index int
}

// GroupJoinRequested enters a group conversation.
type GroupJoinRequested struct {
	GroupID string
	At      time.Time
	// MessageID identifies the welcome notice seeded into the conversation.
	MessageID string
}

// GroupCreateRequested creates a group and joins it.
type GroupCreateRequested struct {
	ID           string
	Name         string
	Description  string
	Visibility   Visibility
	OrgName      string
	Tags         []string
	RelatedDocID string
	MessageID    string
	At           time.Time
}

// GroupMessageSubmitted posts into the active group.
type GroupMessageSubmitted struct {
	Text      string
	MessageID string
	At        time.Time
}

// SupportMessageSubmitted asks the support assistant.
type SupportMessageSubmitted struct {
	Text      string
	MessageID string
	ReplyID   string
	At        time.Time
}

// NavigateRequested switches screens.
type NavigateRequested struct {
	View      View
	MessageID string
	At        time.Time
}

// ThemeToggled flips between dark and light.
type ThemeToggled struct{}

// ErrorDismissed clears the last error.
type ErrorDismissed struct{}

func (LoginSubmitted) event()          {}
func (RegisterSubmitted) event()       {}
func (AuthSucceeded) event()           {}
func (AuthFailed) event()              {}
func (LogoutRequested) event()         {}
func (LibraryRequested) event()        {}
func (LibraryLoaded) event()           {}
func (LibraryFailed) event()           {}
func (OpenDocumentRequested) event()   {}
func (DocumentLoaded) event()          {}
func (DocumentFailed) event()          {}
func (ChatSubmitted) event()           {}
func (AnswerReceived) event()          {}
func (AnswerFailed) event()            {}
func (UploadRequested) event()         {}
func (UploadSucceeded) event()         {}
func (UploadFailed) event()            {}
func (ReferenceRequested) event()      {}
func (GroupJoinRequested) event()      {}
func (GroupCreateRequested) event()    {}
func (GroupMessageSubmitted) event()   {}
func (SupportMessageSubmitted) event() {}
func (NavigateRequested) event()       {}
func (ThemeToggled) event()            {}
func (ErrorDismissed) event()          {}
