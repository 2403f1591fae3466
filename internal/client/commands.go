package client

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenggwsx/DocuMind/internal/protocol"
	"github.com/fenggwsx/DocuMind/internal/session"
)

type commandSpec struct {
	trigger     string
	usage       string
	description string
}

func (a *App) handleSubmit(value string) tea.Cmd {
	a.helpPage = false
	if strings.HasPrefix(value, string(a.cfg.CommandPrefix)) {
		return a.executeCommand(value)
	}
	return a.sendMessage(value)
}

func (a *App) executeCommand(raw string) tea.Cmd {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}

	name := strings.ToLower(strings.TrimPrefix(fields[0], string(a.cfg.CommandPrefix)))
	args := fields[1:]

	switch name {
	case "login":
		if len(args) < 2 {
			a.logErrorf("Usage: %s", a.usage("login"))
			return nil
		}
		if a.state.Authenticated() {
			a.logErrorf("Already signed in. Use %s first.", a.trigger("logout"))
			return nil
		}
		a.logf("Signing in as %s ...", args[0])
		return a.dispatch(session.LoginSubmitted{Email: args[0], Password: args[1]})
	case "register":
		return a.commandRegister(args)
	case "logout":
		if !a.requireUser() {
			return nil
		}
		cmd := a.dispatch(session.LogoutRequested{})
		a.logf("Signed out")
		return cmd
	case "dashboard":
		return a.navigate(session.ViewDashboard)
	case "library":
		return a.navigate(session.ViewLibrary)
	case "community":
		return a.navigate(session.ViewCommunity)
	case "support":
		return a.navigate(session.ViewSupport)
	case "read":
		return a.navigate(session.ViewDocumentRead)
	case "chat":
		return a.navigate(session.ViewDocumentChat)
	case "open":
		return a.commandOpen(args)
	case "ref":
		return a.commandReference(args)
	case "upload":
		return a.commandUpload(args)
	case "join":
		return a.commandJoin(args)
	case "create":
		return a.commandCreate(args)
	case "theme":
		if !a.requireUser() {
			return nil
		}
		cmd := a.dispatch(session.ThemeToggled{})
		a.logf("Theme set to %s", a.theme())
		return cmd
	case "help":
		a.helpPage = true
		a.updateViewportContent()
		a.logf("Showing command help. Press Esc to go back.")
		return nil
	case "quit", "exit":
		return tea.Quit
	default:
		a.logErrorf("Unknown command: %s", fields[0])
		return nil
	}
}

func (a *App) commandRegister(args []string) tea.Cmd {
	if len(args) < 4 {
		a.logErrorf("Usage: %s", a.usage("register"))
		return nil
	}
	if a.state.Authenticated() {
		a.logErrorf("Already signed in. Use %s first.", a.trigger("logout"))
		return nil
	}
	req := session.RegisterSubmitted{
		Name:            args[0],
		Email:           args[1],
		Password:        args[2],
		ConfirmPassword: args[3],
		Theme:           session.ThemeDark,
	}
	rest := args[4:]
	if n := len(rest); n > 0 {
		switch session.Theme(strings.ToLower(rest[n-1])) {
		case session.ThemeLight, session.ThemeDark:
			req.Theme = session.Theme(strings.ToLower(rest[n-1]))
			rest = rest[:n-1]
		}
	}
	req.Company = strings.Join(rest, " ")
	a.logf("Registering %s ...", req.Email)
	return a.dispatch(req)
}

func (a *App) commandOpen(args []string) tea.Cmd {
	if len(args) < 1 {
		a.logErrorf("Usage: %s", a.usage("open"))
		return nil
	}
	if !a.requireUser() {
		return nil
	}
	doc, ok := a.resolveDocument(args[0])
	if !ok {
		a.logErrorf("No document %s in your library", args[0])
		return nil
	}
	if doc.Uploading {
		a.logErrorf("%s is still uploading", doc.Title)
		return nil
	}
	mode := session.OpenRead
	if len(args) > 1 {
		switch session.OpenMode(strings.ToLower(args[1])) {
		case session.OpenRead:
		case session.OpenChat:
			mode = session.OpenChat
		default:
			a.logErrorf("Unknown open mode %s (use read or chat)", args[1])
			return nil
		}
	}
	a.logf("Opening %s ...", doc.Title)
	return a.dispatch(session.OpenDocumentRequested{
		Document:  doc,
		Mode:      mode,
		MessageID: a.newID(),
		At:        a.now(),
	})
}

// commandReference jumps to a paragraph. Paragraphs are numbered from 1 on
// screen; without an argument the latest reference in the chat is used.
func (a *App) commandReference(args []string) tea.Cmd {
	if !a.requireUser() {
		return nil
	}
	if len(args) == 0 {
		for i := len(a.state.ChatMessages) - 1; i >= 0; i-- {
			if msg := a.state.ChatMessages[i]; msg.HasReference() {
				return a.dispatch(session.ReferenceRequested{Index: *msg.ReferenceID})
			}
		}
		a.logErrorf("No reference to jump to")
		return nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		a.logErrorf("Invalid paragraph number: %s", args[0])
		return nil
	}
	return a.dispatch(session.ReferenceRequested{Index: n - 1})
}

func (a *App) commandUpload(args []string) tea.Cmd {
	if !a.requireUser() {
		return nil
	}
	if len(args) == 0 {
		return a.navigate(session.ViewUpload)
	}
	public := false
	if args[0] == "--public" {
		public = true
		args = args[1:]
	}
	if len(args) == 0 {
		a.logErrorf("Usage: %s", a.usage("upload"))
		return nil
	}
	path := strings.Join(args, " ")
	data, err := os.ReadFile(path)
	if err != nil {
		a.logErrorf("Read %s: %v", path, err)
		return nil
	}
	name := filepath.Base(path)
	a.logf("Uploading %s ...", name)
	return a.dispatch(session.UploadRequested{
		FileName:      name,
		Data:          data,
		Public:        public,
		PlaceholderID: a.newID(),
		At:            a.now(),
	})
}

func (a *App) commandJoin(args []string) tea.Cmd {
	if len(args) < 1 {
		a.logErrorf("Usage: %s", a.usage("join"))
		return nil
	}
	if !a.requireUser() {
		return nil
	}
	group, ok := a.resolveGroup(strings.Join(args, " "))
	if !ok {
		a.logErrorf("No group %s", strings.Join(args, " "))
		return nil
	}
	a.logf("Joined %s", group.Name)
	return a.dispatch(session.GroupJoinRequested{
		GroupID:   group.ID,
		MessageID: a.newID(),
		At:        a.now(),
	})
}

func (a *App) commandCreate(args []string) tea.Cmd {
	if len(args) < 1 {
		a.logErrorf("Usage: %s", a.usage("create"))
		return nil
	}
	if !a.requireUser() {
		return nil
	}
	req := session.GroupCreateRequested{
		ID:          a.newID(),
		Name:        args[0],
		Description: strings.Join(args[1:], " "),
		Visibility:  session.VisibilityPublic,
		MessageID:   a.newID(),
		At:          a.now(),
	}
	if doc := a.state.ActiveDocument; doc != nil {
		req.RelatedDocID = doc.ID
	}
	a.logf("Created group %s", req.Name)
	return a.dispatch(req)
}

// sendMessage routes plain text to the conversation on screen.
func (a *App) sendMessage(text string) tea.Cmd {
	if !a.requireUser() {
		return nil
	}
	switch a.state.View {
	case session.ViewDocumentChat:
		if a.state.IsSending {
			a.logErrorf("Still waiting for the previous answer")
			return nil
		}
		a.logf("Asking DocuMind AI ...")
		return a.dispatch(session.ChatSubmitted{Text: text, MessageID: a.newID(), At: a.now()})
	case session.ViewGroupChat:
		return a.dispatch(session.GroupMessageSubmitted{Text: text, MessageID: a.newID(), At: a.now()})
	case session.ViewSupport:
		return a.dispatch(session.SupportMessageSubmitted{
			Text:      text,
			MessageID: a.newID(),
			ReplyID:   a.newID(),
			At:        a.now(),
		})
	case session.ViewDocumentRead:
		a.logErrorf("Use %s to ask questions about this document", a.trigger("chat"))
	default:
		a.logErrorf("Open a document chat, a group or support before sending messages")
	}
	return nil
}

func (a *App) navigate(view session.View) tea.Cmd {
	if !a.requireUser() {
		return nil
	}
	prevErr := a.state.LastError
	cmd := a.dispatch(session.NavigateRequested{View: view, MessageID: a.newID(), At: a.now()})
	if a.state.View == view && (a.state.LastError == "" || a.state.LastError == prevErr) {
		a.logf("Switched to %s view", strings.ToUpper(string(view)))
	}
	return cmd
}

func (a *App) requireUser() bool {
	if !a.state.Authenticated() {
		a.logErrorf("Sign in first (use %s or %s)", a.trigger("login"), a.trigger("register"))
		return false
	}
	return true
}

// resolveDocument accepts a 1-based library position or a document ID.
func (a *App) resolveDocument(ref string) (protocol.DocumentSummary, bool) {
	docs := a.state.Documents
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(docs) {
			return docs[n-1], true
		}
		return protocol.DocumentSummary{}, false
	}
	for _, doc := range docs {
		if doc.ID == ref {
			return doc, true
		}
	}
	return protocol.DocumentSummary{}, false
}

// resolveGroup accepts a 1-based position, a group ID or a group name.
func (a *App) resolveGroup(ref string) (session.Group, bool) {
	groups := a.state.Groups
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(groups) {
			return groups[n-1], true
		}
		return session.Group{}, false
	}
	for _, group := range groups {
		if group.ID == ref || strings.EqualFold(group.Name, ref) {
			return group, true
		}
	}
	return session.Group{}, false
}

func (a *App) trigger(name string) string {
	return string(a.cfg.CommandPrefix) + name
}

func (a *App) usage(name string) string {
	for _, c := range a.commands {
		if c.trigger == a.trigger(name) {
			return c.usage
		}
	}
	return a.trigger(name)
}

func defaultCommands(prefix rune) []commandSpec {
	p := string(prefix)
	return []commandSpec{
		{trigger: p + "login", usage: p + "login <email> <password>", description: "Sign in to your account"},
		{trigger: p + "register", usage: p + "register <name> <email> <password> <confirm> [company] [dark|light]", description: "Create a new account"},
		{trigger: p + "logout", usage: p + "logout", description: "Sign out"},
		{trigger: p + "dashboard", usage: p + "dashboard", description: "Show the dashboard"},
		{trigger: p + "library", usage: p + "library", description: "List your documents"},
		{trigger: p + "open", usage: p + "open <n|id> [read|chat]", description: "Open a document"},
		{trigger: p + "read", usage: p + "read", description: "Read the open document"},
		{trigger: p + "chat", usage: p + "chat", description: "Chat about the open document"},
		{trigger: p + "ref", usage: p + "ref [n]", description: "Jump to a referenced paragraph"},
		{trigger: p + "upload", usage: p + "upload [--public] <path>", description: "Upload a document"},
		{trigger: p + "community", usage: p + "community", description: "Browse discussion groups"},
		{trigger: p + "join", usage: p + "join <n|id>", description: "Join a discussion group"},
		{trigger: p + "create", usage: p + "create <name> [description...]", description: "Create a discussion group"},
		{trigger: p + "support", usage: p + "support", description: "Talk to the support assistant"},
		{trigger: p + "theme", usage: p + "theme", description: "Toggle light and dark theme"},
		{trigger: p + "help", usage: p + "help", description: "Show command help"},
		{trigger: p + "quit", usage: p + "quit", description: "Exit the client"},
	}
}
