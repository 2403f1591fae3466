package session

import (
	"time"

	"github.com/fenggwsx/DocuMind/internal/protocol"
)

// View enumerates the screens the controller can show.
type View string

const (
	ViewLogin        View = "login"
	ViewRegister     View = "register"
	ViewDashboard    View = "dashboard"
	ViewLibrary      View = "library"
	ViewCommunity    View = "community"
	ViewGroupChat    View = "group-chat"
	ViewUpload       View = "upload"
	ViewDocumentRead View = "document-read"
	ViewDocumentChat View = "document-chat"
	ViewSupport      View = "support"
)

// Views lists every valid view in navigation order.
var Views = []View{
	ViewLogin, ViewRegister, ViewDashboard, ViewLibrary, ViewCommunity,
	ViewGroupChat, ViewUpload, ViewDocumentRead, ViewDocumentChat, ViewSupport,
}

// Valid reports whether v is one of the enumerated views.
func (v View) Valid() bool {
	for _, known := range Views {
		if v == known {
			return true
		}
	}
	return false
}

func (v View) public() bool {
	return v == ViewLogin || v == ViewRegister
}

func (v View) document() bool {
	return v == ViewDocumentRead || v == ViewDocumentChat
}

// Theme is the user's colour preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Sender identifies who wrote a chat message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "ai"
	SenderOther     Sender = "other-user"
	SenderSupport   Sender = "support"
)

// Preferences holds notification and topic settings.
type Preferences struct {
	AISuggestions bool
	Topics        []string
}

// User is the authenticated account as seen by the client.
type User struct {
	UID          string
	Email        string
	Name         string
	Company      string
	Role         string
	Theme        Theme
	StorageUsed  int
	StorageLimit int
	Preferences  Preferences
}

// ChatMessage is one entry of a conversation.
type ChatMessage struct {
	ID          string
	Sender      Sender
	SenderName  string
	Text        string
	ReferenceID *int
	Timestamp   string
}

// HasReference reports whether the message points at a paragraph.
func (m ChatMessage) HasReference() bool {
	return m.ReferenceID != nil
}

// Visibility of a discussion group.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Group is a community discussion channel.
type Group struct {
	ID              string
	Name            string
	Description     string
	Members         int
	Active          bool
	RelatedDocID    string
	RelatedDocTitle string
	Visibility      Visibility
	OrgName         string
	Tags            []string
}

// ActiveDocument is an opened document with its paragraphs.
type ActiveDocument struct {
	protocol.DocumentSummary
	Content []string
}

// Catalog is the read-only community data seeded into each session.
type Catalog struct {
	Groups  []Group
	History map[string][]ChatMessage
	Support SupportScript
}

type requestKind int

const (
	kindAuth requestKind = iota
	kindLibrary
	kindContent
	kindChat
	kindUpload
	kindCount
)

// State is the single source of truth for the client.
type State struct {
	User           *User
	View           View
	Documents      []protocol.DocumentSummary
	ActiveDocument *ActiveDocument
	ActiveGroup    *Group
	Groups         []Group
	ChatMessages   []ChatMessage
	// Highlight is the paragraph selected by a reference jump, -1 when none.
	Highlight int
	IsLoading bool
	IsSending bool
	LastError string

	catalog     Catalog
	nextTag     uint64
	inflight    [kindCount]uint64
	opening     *openRequest
	registering *registration
	uploadID    string
}

type openRequest struct {
	doc       protocol.DocumentSummary
	mode      View
	messageID string
	at        time.Time
}

type registration struct {
	name    string
	company string
	theme   Theme
}

// NewState returns the logged-out state for a session backed by catalog.
func NewState(catalog Catalog) State {
	return State{
		View:      ViewLogin,
		Highlight: -1,
		catalog:   catalog,
	}
}

// Authenticated reports whether a user is logged in.
func (s State) Authenticated() bool {
	return s.User != nil
}

// Owns reports whether user owns doc.
func Owns(user *User, doc protocol.DocumentSummary) bool {
	if user == nil || user.UID == "" {
		return false
	}
	return doc.OwnerID == user.UID
}

// Paragraph returns the paragraph at index of the active document.
func (s State) Paragraph(index int) (string, bool) {
	if s.ActiveDocument == nil || index < 0 || index >= len(s.ActiveDocument.Content) {
		return "", false
	}
	return s.ActiveDocument.Content[index], true
}

func (s State) clone() State {
	next := s
	if s.User != nil {
		user := *s.User
		user.Preferences.Topics = append([]string(nil), s.User.Preferences.Topics...)
		next.User = &user
	}
	next.Documents = append([]protocol.DocumentSummary(nil), s.Documents...)
	if s.ActiveDocument != nil {
		doc := *s.ActiveDocument
		doc.Content = append([]string(nil), s.ActiveDocument.Content...)
		next.ActiveDocument = &doc
	}
	if s.ActiveGroup != nil {
		group := *s.ActiveGroup
		next.ActiveGroup = &group
	}
	next.Groups = append([]Group(nil), s.Groups...)
	next.ChatMessages = append([]ChatMessage(nil), s.ChatMessages...)
	return next
}

func (s *State) issue(kind requestKind) uint64 {
	s.nextTag++
	s.inflight[kind] = s.nextTag
	s.syncFlags()
	return s.nextTag
}

func (s *State) settle(kind requestKind, tag uint64) bool {
	if tag == 0 || s.inflight[kind] != tag {
		return false
	}
	s.inflight[kind] = 0
	s.syncFlags()
	return true
}

func (s *State) cancel(kind requestKind) {
	s.inflight[kind] = 0
	s.syncFlags()
}

func (s State) busy(kind requestKind) bool {
	return s.inflight[kind] != 0
}

func (s *State) syncFlags() {
	s.IsLoading = s.busy(kindAuth) || s.busy(kindLibrary) || s.busy(kindContent) || s.busy(kindUpload)
	s.IsSending = s.busy(kindChat)
}
