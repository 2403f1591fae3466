package client

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	figure "github.com/common-nighthawk/go-figure"
	"github.com/mattn/go-runewidth"

	"github.com/fenggwsx/DocuMind/internal/protocol"
	"github.com/fenggwsx/DocuMind/internal/session"
)

var homeBanner = buildHomeBanner()

type styleSet struct {
	title         lipgloss.Style
	view          lipgloss.Style
	statusOnline  lipgloss.Style
	statusOffline lipgloss.Style
	statusBusy    lipgloss.Style
	label         lipgloss.Style
	value         lipgloss.Style
	logLabel      lipgloss.Style
	logBody       lipgloss.Style
	logLabelError lipgloss.Style
	logBodyError  lipgloss.Style
	help          lipgloss.Style
	heading       lipgloss.Style
	highlight     lipgloss.Style
	muted         lipgloss.Style
	senderUser    lipgloss.Style
	senderAI      lipgloss.Style
	senderOther   lipgloss.Style
	senderSupport lipgloss.Style
}

func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.viewport.View())
	b.WriteString("\n")

	if a.showHelp && a.helpView != "" {
		b.WriteString(a.styles.help.Render(a.helpView))
		b.WriteString("\n")
	}

	b.WriteString(a.input.View())
	b.WriteString("\n")
	b.WriteString(a.logLineView())
	b.WriteString("\n")
	b.WriteString(a.statusLine())

	return b.String()
}

func (a *App) contentWidth() int {
	width := a.viewport.Width
	if width <= 0 {
		width = a.width
	}
	return width
}

func (a *App) updateViewportContent() {
	if a.helpPage {
		a.viewport.SetContent(a.renderHelpView())
		a.viewport.GotoTop()
		return
	}

	switch a.state.View {
	case session.ViewLogin, session.ViewRegister:
		a.viewport.SetContent(a.renderHome())
		a.viewport.GotoTop()
	case session.ViewDashboard:
		a.viewport.SetContent(a.renderDashboard())
		a.viewport.GotoTop()
	case session.ViewLibrary:
		a.viewport.SetContent(a.renderLibrary())
		a.viewport.GotoTop()
	case session.ViewUpload:
		a.viewport.SetContent(a.renderUpload())
		a.viewport.GotoTop()
	case session.ViewDocumentRead:
		content, offset := a.renderDocument()
		a.viewport.SetContent(content)
		a.viewport.SetYOffset(offset)
	case session.ViewCommunity:
		a.viewport.SetContent(a.renderCommunity())
		a.viewport.GotoTop()
	case session.ViewDocumentChat, session.ViewGroupChat, session.ViewSupport:
		a.viewport.SetContent(a.renderConversation())
		a.viewport.GotoBottom()
	}
}

func (a *App) updateViewportSize() {
	if a.height == 0 {
		return
	}
	const fixed = 3
	height := a.height - fixed - a.helpHeight
	if height < 3 {
		height = 3
	}
	a.viewport.Height = height
	a.viewport.Width = a.width
}

func (a *App) updateInputWidth() {
	width := a.width
	if width <= 0 {
		width = 60
	}
	promptWidth := lipgloss.Width(a.input.Prompt)
	usable := width - promptWidth - 1
	if usable < 10 {
		usable = 10
	}
	a.input.Width = usable
}

func (a *App) updateHelp() {
	value := a.input.Value()
	if value == "" || !strings.HasPrefix(value, string(a.cfg.CommandPrefix)) {
		a.showHelp = false
		a.helpView = ""
		a.helpHeight = 0
		return
	}

	token := value
	if idx := strings.IndexAny(value, " \t"); idx >= 0 {
		token = value[:idx]
	}

	bindings := a.matchingBindings(token)
	if len(bindings) == 0 {
		a.showHelp = false
		a.helpView = ""
		a.helpHeight = 0
		return
	}

	a.showHelp = true
	a.helper.Width = a.width
	view := a.helper.View(dynamicKeyMap{keys: bindings})
	view = strings.TrimRight(view, "\n")
	a.helpView = view
	a.helpHeight = countLines(view)
}

func (a *App) matchingBindings(prefix string) []key.Binding {
	prefix = strings.ToLower(prefix)
	var bindings []key.Binding
	for _, c := range a.commands {
		if strings.HasPrefix(strings.ToLower(c.trigger), prefix) {
			bindings = append(bindings, key.NewBinding(
				key.WithKeys(c.usage),
				key.WithHelp(c.usage, c.description),
			))
		}
	}
	return bindings
}

func (a *App) statusLine() string {
	status := "SIGNED OUT"
	statusStyle := a.styles.statusOffline
	switch {
	case a.state.IsSending:
		status, statusStyle = "THINKING", a.styles.statusBusy
	case a.state.IsLoading:
		status, statusStyle = "LOADING", a.styles.statusBusy
	case a.state.Authenticated():
		status, statusStyle = "SIGNED IN", a.styles.statusOnline
	}

	user := "-"
	if a.state.User != nil {
		user = a.state.User.Name
	}
	parts := []string{
		a.styles.title.Render("DocuMind"),
		a.styles.view.Render(strings.ToUpper(string(a.state.View))),
		statusStyle.Render(status),
		a.styles.label.Render("User") + ": " + a.styles.value.Render(user),
	}
	if doc := a.state.ActiveDocument; doc != nil {
		parts = append(parts, a.styles.label.Render("Doc")+": "+a.styles.value.Render(runewidth.Truncate(doc.Title, 32, "…")))
	}
	if group := a.state.ActiveGroup; group != nil {
		parts = append(parts, a.styles.label.Render("Group")+": "+a.styles.value.Render(group.Name))
	}

	return strings.Join(parts, " | ")
}

func (a *App) logLineView() string {
	labelStyle := a.styles.logLabel
	bodyStyle := a.styles.logBody
	if a.logLine.level == logLevelError {
		labelStyle = a.styles.logLabelError
		bodyStyle = a.styles.logBodyError
	}
	return labelStyle.Render(a.logLine.label) + " " + bodyStyle.Render(a.logLine.body)
}

func buildStyles(theme session.Theme) styleSet {
	base := lipgloss.NewStyle()
	text, muted := lipgloss.Color("15"), lipgloss.Color("8")
	if theme == session.ThemeLight {
		text, muted = lipgloss.Color("0"), lipgloss.Color("243")
	}
	return styleSet{
		title:         base.Foreground(lipgloss.Color("13")).Bold(true),
		view:          base.Foreground(lipgloss.Color("14")).Bold(true),
		statusOnline:  base.Foreground(lipgloss.Color("10")).Bold(true),
		statusOffline: base.Foreground(lipgloss.Color("9")).Bold(true),
		statusBusy:    base.Foreground(lipgloss.Color("11")).Bold(true),
		label:         base.Foreground(muted),
		value:         base.Foreground(text),
		logLabel:      base.Foreground(lipgloss.Color("11")).Bold(true),
		logBody:       base.Foreground(text),
		logLabelError: base.Foreground(lipgloss.Color("9")).Bold(true),
		logBodyError:  base.Foreground(lipgloss.Color("9")),
		help:          base.Foreground(lipgloss.Color("12")),
		heading:       base.Foreground(text).Bold(true).Underline(true),
		highlight:     base.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11")),
		muted:         base.Foreground(muted),
		senderUser:    base.Foreground(lipgloss.Color("12")).Bold(true),
		senderAI:      base.Foreground(lipgloss.Color("10")).Bold(true),
		senderOther:   base.Foreground(lipgloss.Color("13")).Bold(true),
		senderSupport: base.Foreground(lipgloss.Color("14")).Bold(true),
	}
}

func (a *App) renderHome() string {
	p := string(a.cfg.CommandPrefix)
	info := []string{
		"Upload manuals and reports, then ask questions about them.",
		"",
		fmt.Sprintf("Use %slogin <email> <password> to sign in.", p),
		fmt.Sprintf("Use %sregister <name> <email> <password> <confirm> to create an account.", p),
		fmt.Sprintf("Use %shelp to browse all commands.", p),
	}
	return homeBanner + "\n\n" + strings.Join(info, "\n")
}

func (a *App) renderDashboard() string {
	user := a.state.User
	if user == nil {
		return ""
	}
	var lines []string
	lines = append(lines, a.styles.heading.Render("Welcome back, "+user.Name), "")
	owned := 0
	for _, doc := range a.state.Documents {
		if session.Owns(user, doc) {
			owned++
		}
	}
	lines = append(lines,
		fmt.Sprintf("Documents in library: %d (%d yours)", len(a.state.Documents), owned),
		fmt.Sprintf("Discussion groups:    %d", len(a.state.Groups)),
		fmt.Sprintf("Storage:              %d / %d MB", user.StorageUsed, user.StorageLimit),
		"",
		a.styles.heading.Render("Recent documents"),
	)
	recent := a.state.Documents
	if len(recent) > 3 {
		recent = recent[:3]
	}
	if len(recent) == 0 {
		lines = append(lines, a.styles.muted.Render("Nothing here yet."))
	}
	for i, doc := range recent {
		lines = append(lines, fmt.Sprintf("%2d. %s", i+1, doc.Title))
	}
	lines = append(lines, "", a.styles.muted.Render(fmt.Sprintf("Use %slibrary, %scommunity or %ssupport to continue.",
		string(a.cfg.CommandPrefix), string(a.cfg.CommandPrefix), string(a.cfg.CommandPrefix))))
	return strings.Join(lines, "\n")
}

func (a *App) renderLibrary() string {
	docs := a.state.Documents
	if len(docs) == 0 {
		if a.state.IsLoading {
			return "Loading library ..."
		}
		return fmt.Sprintf("Your library is empty. Use %supload <path> to add a document.", string(a.cfg.CommandPrefix))
	}
	width := a.contentWidth()
	var lines []string
	lines = append(lines, a.styles.heading.Render("Library"), "")
	for i, doc := range docs {
		lines = append(lines, fmt.Sprintf("%2d. %s", i+1, doc.Title))
		lines = append(lines, a.styles.muted.Render("    "+a.describeDocument(doc)))
		for _, line := range wrapLines([]string{doc.Summary}, width-4) {
			lines = append(lines, "    "+line)
		}
	}
	lines = append(lines, "", a.styles.muted.Render(fmt.Sprintf("Use %sopen <n> [read|chat] to open a document.", string(a.cfg.CommandPrefix))))
	return strings.Join(lines, "\n")
}

func (a *App) describeDocument(doc protocol.DocumentSummary) string {
	visibility := "private"
	if doc.IsPublic {
		visibility = "public"
	}
	owner := doc.OwnerName
	if session.Owns(a.state.User, doc) {
		owner = "you"
	}
	parts := []string{visibility}
	for _, value := range []string{doc.Type, owner, doc.UploadDate, doc.FileSize} {
		if value != "" {
			parts = append(parts, value)
		}
	}
	if doc.Uploading {
		parts = append(parts, "uploading")
	}
	return strings.Join(parts, " · ")
}

func (a *App) renderUpload() string {
	return strings.Join([]string{
		a.styles.heading.Render("Upload a document"),
		"",
		fmt.Sprintf("Use %supload <path> to send a file to your library.", string(a.cfg.CommandPrefix)),
		"Text, Markdown, PDF and Word files are accepted.",
	}, "\n")
}

// renderDocument returns the paragraphs of the active document and the line
// offset of the highlighted paragraph.
func (a *App) renderDocument() (string, int) {
	doc := a.state.ActiveDocument
	if doc == nil {
		return "", 0
	}
	width := a.contentWidth()
	var lines []string
	lines = append(lines, a.styles.heading.Render(doc.Title), "")
	offset := 0
	for i, paragraph := range doc.Content {
		style := lipgloss.NewStyle()
		if i == a.state.Highlight {
			style = a.styles.highlight
			offset = len(lines)
		}
		label := fmt.Sprintf("¶%d ", i+1)
		labelWidth := runewidth.StringWidth(label)
		for j, line := range wrapLines([]string{paragraph}, width-labelWidth) {
			prefix := strings.Repeat(" ", labelWidth)
			if j == 0 {
				prefix = a.styles.muted.Render(label)
			}
			lines = append(lines, prefix+style.Render(line))
		}
		lines = append(lines, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n"), offset
}

func (a *App) renderCommunity() string {
	groups := a.state.Groups
	if len(groups) == 0 {
		return fmt.Sprintf("No groups yet. Use %screate <name> to start one.", string(a.cfg.CommandPrefix))
	}
	width := a.contentWidth()
	var lines []string
	lines = append(lines, a.styles.heading.Render("Community"), "")
	for i, group := range groups {
		meta := []string{string(group.Visibility), fmt.Sprintf("%d members", group.Members)}
		if group.OrgName != "" {
			meta = append(meta, group.OrgName)
		}
		if group.RelatedDocTitle != "" {
			meta = append(meta, group.RelatedDocTitle)
		}
		lines = append(lines, fmt.Sprintf("%2d. %s", i+1, group.Name))
		lines = append(lines, a.styles.muted.Render("    "+strings.Join(meta, " · ")))
		for _, line := range wrapLines([]string{group.Description}, width-4) {
			lines = append(lines, "    "+line)
		}
	}
	lines = append(lines, "", a.styles.muted.Render(fmt.Sprintf("Use %sjoin <n> to enter a group.", string(a.cfg.CommandPrefix))))
	return strings.Join(lines, "\n")
}

func (a *App) renderConversation() string {
	width := a.contentWidth()
	var lines []string
	switch a.state.View {
	case session.ViewDocumentChat:
		if doc := a.state.ActiveDocument; doc != nil {
			lines = append(lines, a.styles.heading.Render("Chat: "+doc.Title), "")
		}
	case session.ViewGroupChat:
		if group := a.state.ActiveGroup; group != nil {
			lines = append(lines, a.styles.heading.Render("Group: "+group.Name), "")
		}
	case session.ViewSupport:
		lines = append(lines, a.styles.heading.Render("DocuMind Support"), "")
	}

	if len(a.state.ChatMessages) == 0 {
		lines = append(lines, "No messages yet. Type and press Enter to send.")
	}
	for _, msg := range a.state.ChatMessages {
		name, style := a.senderLabel(msg)
		header := style.Render(name)
		if msg.Timestamp != "" {
			header = a.styles.muted.Render("["+msg.Timestamp+"]") + " " + header
		}
		lines = append(lines, header)
		lines = append(lines, wrapLines(strings.Split(msg.Text, "\n"), width)...)
		if msg.HasReference() {
			n := *msg.ReferenceID + 1
			lines = append(lines, a.styles.muted.Render(fmt.Sprintf("see ¶%d (%sref %d)", n, string(a.cfg.CommandPrefix), n)))
		}
		lines = append(lines, "")
	}
	if a.state.IsSending {
		lines = append(lines, a.styles.muted.Render("DocuMind AI is thinking ..."))
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func (a *App) senderLabel(msg session.ChatMessage) (string, lipgloss.Style) {
	switch msg.Sender {
	case session.SenderUser:
		return "You", a.styles.senderUser
	case session.SenderAssistant:
		return "DocuMind AI", a.styles.senderAI
	case session.SenderSupport:
		return "Support", a.styles.senderSupport
	default:
		name := msg.SenderName
		if name == "" {
			name = "Member"
		}
		return name, a.styles.senderOther
	}
}

func (a *App) renderHelpView() string {
	var b strings.Builder
	b.WriteString("DocuMind Commands\n\n")
	for _, c := range a.commands {
		b.WriteString(fmt.Sprintf("%-40s %s\n", c.usage, c.description))
	}
	b.WriteString("\nPlain text is sent to the open conversation. PgUp/PgDown scroll, Tab completes, Esc dismisses errors.")
	return b.String()
}

func buildHomeBanner() string {
	fig := figure.NewColorFigure("DOCUMIND", "3-d", "green", true)
	return strings.TrimRight(fig.String(), "\n")
}

func wrapLines(lines []string, width int) []string {
	if width <= 0 {
		return lines
	}
	const minWidth = 10
	if width < minWidth {
		width = minWidth
	}

	wrapped := make([]string, 0, len(lines))
	for _, line := range lines {
		segment := line
		if segment == "" {
			wrapped = append(wrapped, "")
			continue
		}
		for len(segment) > 0 {
			if runewidth.StringWidth(segment) <= width {
				wrapped = append(wrapped, segment)
				break
			}
			cut := wrapCutIndex(segment, width)
			part := strings.TrimRight(segment[:cut], " ")
			if part == "" && cut > 0 {
				part = segment[:cut]
			}
			wrapped = append(wrapped, part)
			segment = strings.TrimLeft(segment[cut:], " ")
		}
	}
	return wrapped
}

func wrapCutIndex(s string, limit int) int {
	var width int
	lastSpace := -1
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if width+rw > limit {
			if lastSpace >= 0 {
				return lastSpace + 1
			}
			if width == 0 {
				return i + len(string(r))
			}
			return i
		}
		width += rw
		if unicode.IsSpace(r) {
			lastSpace = i
		}
	}
	return len(s)
}

type dynamicKeyMap struct {
	keys []key.Binding
}

func (d dynamicKeyMap) ShortHelp() []key.Binding {
	return d.keys
}

func (d dynamicKeyMap) FullHelp() [][]key.Binding {
	if len(d.keys) == 0 {
		return [][]key.Binding{}
	}
	return [][]key.Binding{d.keys}
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
