package handlers

import "net/http"

// ImportQuestionsRequest is the admin bulk-import payload.
type ImportQuestionsRequest struct {
	Questions []string `json:"questions"`
}

// HandleImportQuestions bulk-imports question texts.
func (h *Handler) HandleImportQuestions(w http.ResponseWriter, r *http.Request) {
	var req ImportQuestionsRequest
	if err := decode(r, &req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}
	n, err := h.orch.ImportQuestions(r.Context(), req.Questions)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"imported": n})
}

// HandleRandomQuestion returns one random question from the bank.
func (h *Handler) HandleRandomQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.orch.RandomQuestion(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"id": q.ID, "text": q.Text})
}
