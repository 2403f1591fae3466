package session

import "github.com/fenggwsx/DocuMind/internal/protocol"

// Effect describes a network call requested by the reducer. Effects carry the
// tag under which their result will be accepted.
type Effect interface {
	effect()
}

// SignIn authenticates with the identity provider.
type SignIn struct {
	Tag      uint64
	Email    string
	Password string
}

// SignUp registers with the identity provider.
type SignUp struct {
	Tag     uint64
	Request protocol.SignUpRequest
}

// SignOut invalidates the session server-side. Its outcome is ignored.
// Token is filled in by Runner.Prepare when the effect is scheduled.
type SignOut struct {
	Token string
}

// FetchLibrary lists the caller's documents.
type FetchLibrary struct {
	Tag uint64
}

// FetchContent loads a document's paragraphs.
type FetchContent struct {
	Tag   uint64
	DocID string
}

// Ask sends a question about a document.
type Ask struct {
	Tag      uint64
	DocID    string
	Question string
}

// Upload posts a file to the backend.
type Upload struct {
	Tag      uint64
	FileName string
	Data     []byte
	Public   bool
}

func (SignIn) effect()       {}
func (SignUp) effect()       {}
func (SignOut) effect()      {}
func (FetchLibrary) effect() {}
func (FetchContent) effect() {}
func (Ask) effect()          {}
func (Upload) effect()       {}
