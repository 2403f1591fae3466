package session

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/fenggwsx/DocuMind/internal/protocol"
)

const (
	defaultRole      = "Member"
	registrantRole   = "Admin"
	defaultStorageMB = 1000
	uploadingSummary = "Uploading…"
)

// Reduce applies ev to s and returns the next state plus the effects to run.
// It never mutates s and performs no IO.
func Reduce(s State, ev Event) (State, []Effect) {
	next := s.clone()
	var effects []Effect
	switch e := ev.(type) {
	case LoginSubmitted:
		effects = next.onLogin(e)
	case RegisterSubmitted:
		effects = next.onRegister(e)
	case AuthSucceeded:
		effects = next.onAuthSucceeded(e)
	case AuthFailed:
		next.onAuthFailed(e)
	case LogoutRequested:
		effects = next.onLogout()
	case LibraryRequested:
		effects = next.onLibraryRequested()
	case LibraryLoaded:
		next.onLibraryLoaded(e)
	case LibraryFailed:
		next.onLibraryFailed(e)
	case OpenDocumentRequested:
		effects = next.onOpenDocument(e)
	case DocumentLoaded:
		next.onDocumentLoaded(e)
	case DocumentFailed:
		next.onDocumentFailed(e)
	case ChatSubmitted:
		effects = next.onChatSubmitted(e)
	case AnswerReceived:
		next.onAnswerReceived(e)
	case AnswerFailed:
		next.onAnswerFailed(e)
	case UploadRequested:
		effects = next.onUploadRequested(e)
	case UploadSucceeded:
		effects = next.onUploadSucceeded(e)
	case UploadFailed:
		next.onUploadFailed(e)
	case ReferenceRequested:
		next.onReference(e)
	case GroupJoinRequested:
		next.onGroupJoin(e)
	case GroupCreateRequested:
		next.onGroupCreate(e)
	case GroupMessageSubmitted:
		next.onGroupMessage(e)
	case SupportMessageSubmitted:
		next.onSupportMessage(e)
	case NavigateRequested:
		effects = next.onNavigate(e)
	case ThemeToggled:
		if next.User != nil {
			if next.User.Theme == ThemeLight {
				next.User.Theme = ThemeDark
			} else {
				next.User.Theme = ThemeLight
			}
		}
	case ErrorDismissed:
		next.LastError = ""
	default:
		return s, nil
	}
	return next, effects
}

func (s *State) onLogin(e LoginSubmitted) []Effect {
	if s.Authenticated() || s.busy(kindAuth) {
		return nil
	}
	email := strings.TrimSpace(e.Email)
	if email == "" || e.Password == "" {
		s.LastError = MsgMissingCredentials
		return nil
	}
	s.LastError = ""
	s.registering = nil
	tag := s.issue(kindAuth)
	return []Effect{SignIn{Tag: tag, Email: email, Password: e.Password}}
}

func (s *State) onRegister(e RegisterSubmitted) []Effect {
	if s.Authenticated() || s.busy(kindAuth) {
		return nil
	}
	if e.Password != e.ConfirmPassword {
		s.LastError = MsgPasswordMismatch
		return nil
	}
	name := strings.TrimSpace(e.Name)
	email := strings.TrimSpace(e.Email)
	if name == "" {
		s.LastError = MsgMissingName
		return nil
	}
	if email == "" || e.Password == "" {
		s.LastError = MsgMissingCredentials
		return nil
	}
	theme := e.Theme
	if theme != ThemeLight {
		theme = ThemeDark
	}
	company := strings.TrimSpace(e.Company)
	s.LastError = ""
	s.registering = &registration{name: name, company: company, theme: theme}
	tag := s.issue(kindAuth)
	return []Effect{SignUp{Tag: tag, Request: protocol.SignUpRequest{
		Name:     name,
		Email:    email,
		Password: e.Password,
		Company:  company,
	}}}
}

func (s *State) onAuthSucceeded(e AuthSucceeded) []Effect {
	if !s.settle(kindAuth, e.Tag) {
		return nil
	}
	name := strings.TrimSpace(e.Identity.Name)
	if name == "" {
		name, _, _ = strings.Cut(e.Identity.Email, "@")
	}
	user := &User{
		UID:          e.Identity.UID,
		Email:        e.Identity.Email,
		Name:         name,
		Role:         defaultRole,
		Theme:        ThemeDark,
		StorageLimit: defaultStorageMB,
		Preferences:  Preferences{AISuggestions: true},
	}
	if reg := s.registering; reg != nil {
		user.Name = reg.name
		user.Company = reg.company
		user.Theme = reg.theme
		user.Role = registrantRole
	}
	s.registering = nil
	s.User = user
	s.View = ViewDashboard
	s.LastError = ""
	s.Groups = cloneGroups(s.catalog.Groups)
	return s.requestLibrary()
}

func (s *State) onAuthFailed(e AuthFailed) {
	if !s.settle(kindAuth, e.Tag) {
		return
	}
	s.registering = nil
	s.LastError = UserMessage(e.Err)
}

func (s *State) onLogout() []Effect {
	wasAuthenticated := s.Authenticated()
	next := NewState(s.catalog)
	next.nextTag = s.nextTag
	*s = next
	if !wasAuthenticated {
		return nil
	}
	return []Effect{SignOut{}}
}

func (s *State) onLibraryRequested() []Effect {
	if !s.Authenticated() || s.busy(kindLibrary) {
		return nil
	}
	return s.requestLibrary()
}

func (s *State) requestLibrary() []Effect {
	tag := s.issue(kindLibrary)
	return []Effect{FetchLibrary{Tag: tag}}
}

func (s *State) onLibraryLoaded(e LibraryLoaded) {
	if !s.settle(kindLibrary, e.Tag) {
		return
	}
	docs := make([]protocol.DocumentSummary, 0, len(e.Documents)+1)
	if s.busy(kindUpload) {
		if placeholder, ok := s.placeholder(); ok {
			docs = append(docs, placeholder)
		}
	}
	for _, doc := range e.Documents {
		doc.Uploading = false
		docs = append(docs, doc)
	}
	s.Documents = docs
}

func (s *State) onLibraryFailed(e LibraryFailed) {
	if !s.settle(kindLibrary, e.Tag) {
		return
	}
	if !s.busy(kindUpload) {
		s.Documents = withoutPlaceholders(s.Documents)
	}
	s.LastError = UserMessage(e.Err)
}

func (s *State) onOpenDocument(e OpenDocumentRequested) []Effect {
	if !s.Authenticated() || s.busy(kindContent) || e.Document.Uploading {
		return nil
	}
	mode := ViewDocumentRead
	if e.Mode == OpenChat {
		mode = ViewDocumentChat
	}
	s.opening = &openRequest{doc: e.Document, mode: mode, messageID: e.MessageID, at: e.At}
	s.LastError = ""
	tag := s.issue(kindContent)
	return []Effect{FetchContent{Tag: tag, DocID: e.Document.ID}}
}

func (s *State) onDocumentLoaded(e DocumentLoaded) {
	if s.opening == nil || s.opening.doc.ID != e.DocID || !s.settle(kindContent, e.Tag) {
		return
	}
	req := s.opening
	s.opening = nil
	s.ActiveDocument = &ActiveDocument{
		DocumentSummary: req.doc,
		Content:         append([]string(nil), e.Content...),
	}
	s.ActiveGroup = nil
	s.cancel(kindChat)
	s.Highlight = -1
	s.ChatMessages = []ChatMessage{{
		ID:        req.messageID,
		Sender:    SenderAssistant,
		Text:      greeting(s.User, req.doc),
		Timestamp: stamp(req.at),
	}}
	s.View = req.mode
}

func (s *State) onDocumentFailed(e DocumentFailed) {
	if s.opening == nil || s.opening.doc.ID != e.DocID || !s.settle(kindContent, e.Tag) {
		return
	}
	s.opening = nil
	s.LastError = UserMessage(e.Err)
}

func greeting(user *User, doc protocol.DocumentSummary) string {
	if Owns(user, doc) {
		return fmt.Sprintf("Ready to discuss %s.", doc.Title)
	}
	return fmt.Sprintf("Viewing public document: %s. This is a read-only view; your private chat history is not loaded.", doc.Title)
}

func (s *State) onChatSubmitted(e ChatSubmitted) []Effect {
	question := strings.TrimSpace(e.Text)
	if question == "" || s.ActiveDocument == nil || s.busy(kindChat) {
		return nil
	}
	s.ChatMessages = append(s.ChatMessages, ChatMessage{
		ID:         e.MessageID,
		Sender:     SenderUser,
		SenderName: s.User.Name,
		Text:       e.Text,
		Timestamp:  stamp(e.At),
	})
	tag := s.issue(kindChat)
	return []Effect{Ask{Tag: tag, DocID: s.ActiveDocument.ID, Question: question}}
}

func (s *State) onAnswerReceived(e AnswerReceived) {
	if s.ActiveDocument == nil || s.ActiveDocument.ID != e.DocID || !s.settle(kindChat, e.Tag) {
		return
	}
	msg := ChatMessage{
		ID:        e.MessageID,
		Sender:    SenderAssistant,
		Text:      e.Answer,
		Timestamp: stamp(e.At),
	}
	if e.ReferenceIndex != nil {
		if _, ok := s.Paragraph(*e.ReferenceIndex); ok {
			ref := *e.ReferenceIndex
			msg.ReferenceID = &ref
		}
	}
	s.ChatMessages = append(s.ChatMessages, msg)
}

func (s *State) onAnswerFailed(e AnswerFailed) {
	if s.ActiveDocument == nil || s.ActiveDocument.ID != e.DocID || !s.settle(kindChat, e.Tag) {
		return
	}
	s.ChatMessages = append(s.ChatMessages, ChatMessage{
		ID:        e.MessageID,
		Sender:    SenderAssistant,
		Text:      "Sorry, I could not answer that. " + UserMessage(e.Err),
		Timestamp: stamp(e.At),
	})
}

func (s *State) onUploadRequested(e UploadRequested) []Effect {
	if !s.Authenticated() || s.busy(kindUpload) {
		return nil
	}
	if len(e.Data) == 0 {
		s.LastError = MsgEmptyFile
		return nil
	}
	name := filepath.Base(strings.TrimSpace(e.FileName))
	placeholder := protocol.DocumentSummary{
		ID:        e.PlaceholderID,
		Title:     titleFromFilename(name),
		OwnerID:   s.User.UID,
		OwnerName: s.User.Name,
		Summary:   uploadingSummary,
		FileSize:  humanize.Bytes(uint64(len(e.Data))),
		IsPublic:  e.Public,
		Uploading: true,
	}
	if !e.At.IsZero() {
		placeholder.UploadDate = e.At.Format(time.DateOnly)
	}
	s.Documents = append([]protocol.DocumentSummary{placeholder}, s.Documents...)
	s.uploadID = e.PlaceholderID
	s.LastError = ""
	if s.View == ViewUpload {
		s.View = ViewLibrary
	}
	tag := s.issue(kindUpload)
	return []Effect{Upload{Tag: tag, FileName: name, Data: e.Data, Public: e.Public}}
}

func (s *State) onUploadSucceeded(e UploadSucceeded) []Effect {
	if !s.settle(kindUpload, e.Tag) {
		return nil
	}
	s.uploadID = ""
	return s.requestLibrary()
}

func (s *State) onUploadFailed(e UploadFailed) {
	if !s.settle(kindUpload, e.Tag) {
		return
	}
	s.Documents = removeDocument(s.Documents, s.uploadID)
	s.uploadID = ""
	s.LastError = UserMessage(e.Err)
}

func (s *State) placeholder() (protocol.DocumentSummary, bool) {
	for _, doc := range s.Documents {
		if doc.ID == s.uploadID && doc.Uploading {
			return doc, true
		}
	}
	return protocol.DocumentSummary{}, false
}

func (s *State) onReference(e ReferenceRequested) {
	if _, ok := s.Paragraph(e.Index); !ok {
		s.LastError = MsgBadReference
		return
	}
	s.Highlight = e.Index
	s.View = ViewDocumentRead
	s.LastError = ""
}

func (s *State) onGroupJoin(e GroupJoinRequested) {
	if !s.Authenticated() {
		return
	}
	for _, group := range s.Groups {
		if group.ID == e.GroupID {
			s.enterGroup(group, e.MessageID, e.At)
			return
		}
	}
	s.LastError = MsgUnknownGroup
}

func (s *State) onGroupCreate(e GroupCreateRequested) {
	if !s.Authenticated() {
		return
	}
	name := strings.TrimSpace(e.Name)
	if name == "" {
		s.LastError = MsgMissingGroupName
		return
	}
	visibility := e.Visibility
	if visibility != VisibilityPrivate {
		visibility = VisibilityPublic
	}
	group := Group{
		ID:           e.ID,
		Name:         name,
		Description:  strings.TrimSpace(e.Description),
		Members:      1,
		Active:       true,
		RelatedDocID: e.RelatedDocID,
		Visibility:   visibility,
		OrgName:      strings.TrimSpace(e.OrgName),
		Tags:         append([]string(nil), e.Tags...),
	}
	for _, doc := range s.Documents {
		if doc.ID == e.RelatedDocID {
			group.RelatedDocTitle = doc.Title
			break
		}
	}
	s.Groups = append(s.Groups, group)
	s.enterGroup(group, e.MessageID, e.At)
}

func (s *State) enterGroup(group Group, messageID string, at time.Time) {
	s.dropDocument()
	active := group
	active.Tags = append([]string(nil), group.Tags...)
	s.ActiveGroup = &active
	welcome := fmt.Sprintf("Welcome to the %s channel.", group.Name)
	if group.RelatedDocTitle != "" {
		welcome = fmt.Sprintf("Welcome to the %s channel. This group is focused on %s.", group.Name, group.RelatedDocTitle)
	}
	history := s.catalog.History[group.ID]
	messages := make([]ChatMessage, 0, len(history)+1)
	messages = append(messages, ChatMessage{
		ID:        messageID,
		Sender:    SenderSupport,
		Text:      welcome,
		Timestamp: stamp(at),
	})
	messages = append(messages, history...)
	s.ChatMessages = messages
	s.View = ViewGroupChat
	s.LastError = ""
}

func (s *State) onGroupMessage(e GroupMessageSubmitted) {
	if strings.TrimSpace(e.Text) == "" || s.ActiveGroup == nil || s.View != ViewGroupChat {
		return
	}
	s.ChatMessages = append(s.ChatMessages, ChatMessage{
		ID:         e.MessageID,
		Sender:     SenderUser,
		SenderName: s.User.Name,
		Text:       e.Text,
		Timestamp:  stamp(e.At),
	})
}

func (s *State) onSupportMessage(e SupportMessageSubmitted) {
	if strings.TrimSpace(e.Text) == "" || !s.Authenticated() || s.View != ViewSupport {
		return
	}
	s.ChatMessages = append(s.ChatMessages,
		ChatMessage{
			ID:         e.MessageID,
			Sender:     SenderUser,
			SenderName: s.User.Name,
			Text:       e.Text,
			Timestamp:  stamp(e.At),
		},
		ChatMessage{
			ID:        e.ReplyID,
			Sender:    SenderSupport,
			Text:      s.catalog.Support.Answer(e.Text),
			Timestamp: stamp(e.At),
		},
	)
}

func (s *State) onNavigate(e NavigateRequested) []Effect {
	target := e.View
	if !target.Valid() {
		s.LastError = MsgUnavailableView
		return nil
	}
	if !s.Authenticated() {
		if !target.public() {
			s.LastError = MsgUnavailableView
			return nil
		}
		s.View = target
		s.LastError = ""
		return nil
	}
	switch {
	case target.public(),
		target.document() && s.ActiveDocument == nil,
		target == ViewGroupChat && s.ActiveGroup == nil:
		s.LastError = MsgUnavailableView
		return nil
	}
	if target == s.View {
		return nil
	}

	if s.busy(kindContent) {
		s.cancel(kindContent)
		s.opening = nil
	}
	switch {
	case s.View.document() && !target.document():
		s.dropDocument()
	case s.View == ViewGroupChat:
		s.ActiveGroup = nil
		s.ChatMessages = nil
	case s.View == ViewSupport:
		s.ChatMessages = nil
	}

	s.View = target
	s.LastError = ""
	switch target {
	case ViewSupport:
		s.ChatMessages = []ChatMessage{{
			ID:        e.MessageID,
			Sender:    SenderSupport,
			Text:      s.catalog.Support.greeting(),
			Timestamp: stamp(e.At),
		}}
	case ViewDashboard, ViewLibrary:
		if !s.busy(kindLibrary) {
			return s.requestLibrary()
		}
	}
	return nil
}

func (s *State) dropDocument() {
	s.ActiveDocument = nil
	s.opening = nil
	s.cancel(kindContent)
	s.cancel(kindChat)
	s.ChatMessages = nil
	s.Highlight = -1
}

func titleFromFilename(name string) string {
	title := strings.TrimSuffix(name, filepath.Ext(name))
	if strings.TrimSpace(title) == "" {
		return name
	}
	return title
}

func removeDocument(docs []protocol.DocumentSummary, id string) []protocol.DocumentSummary {
	out := docs[:0]
	for _, doc := range docs {
		if doc.ID == id && doc.Uploading {
			continue
		}
		out = append(out, doc)
	}
	return out
}

func withoutPlaceholders(docs []protocol.DocumentSummary) []protocol.DocumentSummary {
	out := docs[:0]
	for _, doc := range docs {
		if !doc.Uploading {
			out = append(out, doc)
		}
	}
	return out
}

func cloneGroups(groups []Group) []Group {
	out := make([]Group, len(groups))
	for i, group := range groups {
		group.Tags = append([]string(nil), group.Tags...)
		out[i] = group
	}
	return out
}

func stamp(at time.Time) string {
	if at.IsZero() {
		return ""
	}
	return at.Format("15:04")
}
