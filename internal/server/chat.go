package server

import (
	"net/http"
	"strings"

	"github.com/fenggwsx/DocuMind/internal/protocol"
)

func (a *App) handleChat(w http.ResponseWriter, r *http.Request) {
	var req protocol.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, protocol.CodeInvalidRequest, "Invalid request", "")
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, protocol.CodeInvalidRequest, "question is required", "")
		return
	}

	var paragraphs []string
	switch {
	case strings.TrimSpace(req.DocID) != "":
		doc, ok := a.visibleDocument(w, r, req.DocID)
		if !ok {
			return
		}
		paragraphs = doc.Paragraphs
	case strings.TrimSpace(req.FullDocumentText) != "":
		// Deprecated form: the caller sends the joined document itself.
		paragraphs = SplitParagraphs(req.FullDocumentText)
	default:
		writeError(w, http.StatusBadRequest, protocol.CodeInvalidRequest, "doc_id is required", "")
		return
	}

	writeJSON(w, http.StatusOK, Answer(paragraphs, question))
}
