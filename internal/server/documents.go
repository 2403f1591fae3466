package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"

	"github.com/fenggwsx/DocuMind/internal/protocol"
	"github.com/fenggwsx/DocuMind/internal/storage"
	"github.com/fenggwsx/DocuMind/internal/storage/files"
)

const summaryWidth = 160

var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".markdown": true, ".csv": true, ".log": true, "": true,
}

func (a *App) handleLibrary(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	docs, err := a.store.ListVisibleDocuments(r.Context(), claims.UserID)
	if err != nil {
		a.logger.Error("list documents", "uid", claims.UserID, "err", err)
		writeError(w, http.StatusInternalServerError, protocol.CodeInternal, "Could not load library", "")
		return
	}
	resp := protocol.LibraryResponse{Documents: make([]protocol.DocumentSummary, 0, len(docs))}
	for _, doc := range docs {
		resp.Documents = append(resp.Documents, toSummary(doc))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *App) handleDocContent(w http.ResponseWriter, r *http.Request) {
	var req protocol.DocContentRequest
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.DocID) == "" {
		writeError(w, http.StatusBadRequest, protocol.CodeInvalidRequest, "doc_id is required", "")
		return
	}
	doc, ok := a.visibleDocument(w, r, req.DocID)
	if !ok {
		return
	}
	content := doc.Paragraphs
	if content == nil {
		content = []string{}
	}
	writeJSON(w, http.StatusOK, protocol.DocContentResponse{Content: content})
}

// visibleDocument loads a document the caller may read. Private documents of
// other users are reported as missing.
func (a *App) visibleDocument(w http.ResponseWriter, r *http.Request, docID string) (*storage.Document, bool) {
	claims := claimsFrom(r.Context())
	doc, err := a.store.GetDocument(r.Context(), docID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, protocol.CodeNotFound, "Document not found", "")
		return nil, false
	case err != nil:
		a.logger.Error("load document", "doc", docID, "err", err)
		writeError(w, http.StatusInternalServerError, protocol.CodeInternal, "Could not load document", "")
		return nil, false
	case !doc.IsPublic && doc.OwnerID != claims.UserID:
		writeError(w, http.StatusNotFound, protocol.CodeNotFound, "Document not found", "")
		return nil, false
	}
	return doc, true
}

func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	owner, err := a.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, protocol.CodeUnauthorized, "Unauthorized", "Account no longer exists")
			return
		}
		a.logger.Error("load uploader", "uid", claims.UserID, "err", err)
		writeError(w, http.StatusInternalServerError, protocol.CodeInternal, "Could not store file", "")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, a.cfg.MaxUploadBytes+(1<<20))
	file, header, err := r.FormFile(protocol.UploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, protocol.CodeInvalidRequest, "File too large", "")
			return
		}
		writeError(w, http.StatusBadRequest, protocol.CodeInvalidRequest, "A file is required", "")
		return
	}
	defer file.Close()

	public := false
	if raw := strings.TrimSpace(r.FormValue(protocol.UploadPublicField)); raw != "" {
		if public, err = strconv.ParseBool(raw); err != nil {
			writeError(w, http.StatusBadRequest, protocol.CodeInvalidRequest, "Invalid public flag", "")
			return
		}
	}

	data, err := io.ReadAll(io.LimitReader(file, a.cfg.MaxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, protocol.CodeInvalidRequest, "Could not read upload", "")
		return
	}
	if int64(len(data)) > a.cfg.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, protocol.CodeInvalidRequest, "File too large", "")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, protocol.CodeInvalidRequest, "Please choose a non-empty file.", "")
		return
	}

	name := files.SafeFilename(header.Filename)
	docID := uuid.NewString()
	if _, err := a.files.Save(docID, name, bytes.NewReader(data)); err != nil {
		a.logger.Error("save upload", "doc", docID, "err", err)
		writeError(w, http.StatusInternalServerError, protocol.CodeInternal, "Could not store file", "")
		return
	}

	paragraphs := extractParagraphs(name, data)
	doc := &storage.Document{
		ID:         docID,
		OwnerID:    claims.UserID,
		OwnerName:  owner.Name,
		Title:      titleFromFilename(name),
		Summary:    summarize(paragraphs),
		Type:       documentType(name),
		FileName:   name,
		FileSize:   humanize.Bytes(uint64(len(data))),
		Paragraphs: paragraphs,
		IsPublic:   public,
		CreatedAt:  time.Now().UTC(),
	}
	if err := a.store.CreateDocument(r.Context(), doc); err != nil {
		_ = a.files.Delete(docID)
		a.logger.Error("create document", "doc", docID, "err", err)
		writeError(w, http.StatusInternalServerError, protocol.CodeInternal, "Could not save document", "")
		return
	}
	a.logger.Info("document uploaded", "doc", docID, "uid", claims.UserID, "file", name, "bytes", len(data), "paragraphs", len(paragraphs))
	writeJSON(w, http.StatusCreated, toSummary(*doc))
}

// extractParagraphs splits plain text on blank lines. Other formats are kept
// as-is and described by a single notice paragraph.
func extractParagraphs(name string, data []byte) []string {
	ext := strings.ToLower(filepath.Ext(name))
	if textExtensions[ext] && utf8.Valid(data) {
		if paragraphs := SplitParagraphs(string(data)); len(paragraphs) > 0 {
			return paragraphs
		}
	}
	return []string{fmt.Sprintf("%s was stored, but text extraction is not available for this file type.", name)}
}

// SplitParagraphs breaks text into trimmed, blank-line separated paragraphs.
// Lines inside a paragraph are joined with single spaces.
func SplitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = current[:0]
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return paragraphs
}

func summarize(paragraphs []string) string {
	if len(paragraphs) == 0 {
		return ""
	}
	return runewidth.Truncate(paragraphs[0], summaryWidth, "…")
}

func titleFromFilename(name string) string {
	title := strings.TrimSuffix(name, filepath.Ext(name))
	if strings.TrimSpace(title) == "" {
		return name
	}
	return title
}

func documentType(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	switch ext {
	case "":
		return "Document"
	case "txt", "md", "markdown":
		return "Text Document"
	default:
		return strings.ToUpper(ext) + " Document"
	}
}

func toSummary(doc storage.Document) protocol.DocumentSummary {
	summary := protocol.DocumentSummary{
		ID:        doc.ID,
		Title:     doc.Title,
		OwnerID:   doc.OwnerID,
		OwnerName: doc.OwnerName,
		IsPublic:  doc.IsPublic,
		Summary:   doc.Summary,
		Type:      doc.Type,
		FileSize:  doc.FileSize,
	}
	if !doc.CreatedAt.IsZero() {
		summary.UploadDate = doc.CreatedAt.Format(time.DateOnly)
	}
	return summary
}
