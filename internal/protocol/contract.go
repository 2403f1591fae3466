package protocol

// HTTP paths served by the document-and-chat backend.
const (
	PathSignUp     = "/api/auth/signup"
	PathSignIn     = "/api/auth/signin"
	PathSignOut    = "/api/auth/signout"
	PathLibrary    = "/api/library/"
	PathDocContent = "/api/doc-content/"
	PathUpload     = "/api/upload/"
	PathChat       = "/api/chat/"
)

// Multipart form fields of an upload. UploadPublicField is optional and
// parsed as a boolean.
const (
	UploadField       = "file"
	UploadPublicField = "public"
)

// ErrorCode enumerates machine-readable failure reasons.
type ErrorCode string

const (
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidEmail       ErrorCode = "INVALID_EMAIL"
	CodeEmailExists        ErrorCode = "EMAIL_EXISTS"
	CodeWeakPassword       ErrorCode = "WEAK_PASSWORD"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeInvalidRequest     ErrorCode = "INVALID_REQUEST"
	CodeInternal           ErrorCode = "INTERNAL"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string    `json:"error"`
	Code   ErrorCode `json:"code,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

// DocumentSummary is the library listing entry for one document.
type DocumentSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	OwnerID    string `json:"ownerId"`
	OwnerName  string `json:"ownerName"`
	IsPublic   bool   `json:"isPublic"`
	Summary    string `json:"summary"`
	Type       string `json:"type,omitempty"`
	UploadDate string `json:"uploadDate,omitempty"`
	FileSize   string `json:"fileSize,omitempty"`

	// Uploading marks a client-side placeholder for an upload in flight.
	Uploading bool `json:"-"`
}

// LibraryResponse lists the documents visible to the caller.
type LibraryResponse struct {
	Documents []DocumentSummary `json:"documents"`
}

// DocContentRequest asks for the paragraphs of one document.
type DocContentRequest struct {
	DocID string `json:"doc_id"`
}

// DocContentResponse carries ordered paragraphs.
type DocContentResponse struct {
	Content []string `json:"content"`
}

// ChatRequest asks a question about a document.
//
// FullDocumentText is deprecated: it sends the joined document instead of
// letting the backend look the document up by DocID.
type ChatRequest struct {
	Question         string `json:"question"`
	DocID            string `json:"doc_id,omitempty"`
	FullDocumentText string `json:"full_document_text,omitempty"`
}

// ChatResponse is the answer with an optional paragraph index.
type ChatResponse struct {
	Answer         string `json:"answer"`
	ReferenceIndex *int   `json:"reference_index,omitempty"`
}

// SignUpRequest registers a new account.
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Company  string `json:"company,omitempty"`
}

// SignInRequest authenticates an existing account.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identity describes the authenticated account.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthResponse returns token and identity details to the client.
type AuthResponse struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expires_at"`
	User      Identity `json:"user"`
}
