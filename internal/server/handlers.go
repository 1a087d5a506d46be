package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"GoSplit/internal/analysis"
	"GoSplit/internal/indexing"
	"GoSplit/internal/store"
	"GoSplit/internal/userdict"
)

// dictTimeout bounds dictionary administration calls.
const dictTimeout = 5 * time.Second

// Handler holds HTTP handlers for the GoSplit API.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler creates a new Handler backed by the given Service.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Analysis.
	mux.HandleFunc("POST /analyze", h.handleAnalyze)
	mux.HandleFunc("GET /analyzers", h.handleListAnalyzers)

	// Documents and postings.
	mux.HandleFunc("POST /documents", h.handleIndexDocument)
	mux.HandleFunc("GET /documents/{id}", h.handleGetDocument)
	mux.HandleFunc("DELETE /documents/{id}", h.handleDeleteDocument)
	mux.HandleFunc("GET /postings/{field}/{term}", h.handleGetPostings)
	mux.HandleFunc("GET /terms/{field}", h.handleListTerms)

	// User dictionary.
	mux.HandleFunc("GET /dictionary", h.handleListSplits)
	mux.HandleFunc("POST /dictionary", h.handleSetSplit)
	mux.HandleFunc("DELETE /dictionary/{surface}", h.handleRemoveSplit)
}

// --- Analysis ---

type tokenView struct {
	Term              string   `json:"term"`
	Start             int      `json:"start"`
	End               int      `json:"end"`
	Position          int      `json:"position"`
	PositionIncrement int      `json:"position_increment"`
	PositionLength    int      `json:"position_length"`
	Kind              string   `json:"kind"`
	POS               []string `json:"pos,omitempty"`
	BaseForm          string   `json:"base_form,omitempty"`
	Reading           string   `json:"reading,omitempty"`
}

func viewTokens(tokens []analysis.Token) []tokenView {
	out := make([]tokenView, len(tokens))
	for i, t := range tokens {
		v := tokenView{
			Term:              t.Term,
			Start:             t.Start,
			End:               t.End,
			Position:          t.Position,
			PositionIncrement: t.PositionIncrement,
			PositionLength:    t.PositionLength,
			Kind:              t.Kind.String(),
		}
		if m := t.Morpheme; m != nil {
			v.POS = m.PartOfSpeech()
			v.BaseForm = m.DictionaryForm()
			v.Reading = m.ReadingForm()
		}
		out[i] = v
	}
	return out
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		Analyzer string `json:"analyzer"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	start := time.Now()
	name, tokens, err := h.svc.Analyze(req.Analyzer, req.Text)
	if err != nil {
		if errors.Is(err, analysis.ErrUnknownAnalyzer) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"analyzer": name,
		"took_ms":  time.Since(start).Milliseconds(),
		"tokens":   viewTokens(tokens),
	})
}

func (h *Handler) handleListAnalyzers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"analyzers": h.svc.Registry.Names(),
		"default":   h.svc.DefaultAnalyzer,
	})
}

// --- Documents ---

func (h *Handler) handleIndexDocument(w http.ResponseWriter, r *http.Request) {
	var doc indexing.Document
	if err := decodeJSON(r, &doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := h.svc.Index(doc)
	if err != nil {
		switch {
		case errors.Is(err, indexing.ErrMissingID),
			errors.Is(err, indexing.ErrUnknownField),
			errors.Is(err, indexing.ErrDuplicateDoc):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, indexing.ErrBufferFull):
			writeError(w, http.StatusServiceUnavailable, "write buffer is full, retry later")
		default:
			h.logger.Error("index document failed", "id", doc.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "index failed: "+err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status":      "indexed",
		"id":          doc.ID,
		"terms":       res.Terms,
		"duration_ms": res.Duration.Milliseconds(),
	})
}

func (h *Handler) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Store.Document(r.PathValue("id"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.svc.Store.Document(id); err != nil && errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err := h.svc.Delete(id); err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "deleted",
		"id":     id,
	})
}

func (h *Handler) handleGetPostings(w http.ResponseWriter, r *http.Request) {
	field, term := r.PathValue("field"), r.PathValue("term")
	postings, err := h.svc.Store.Postings(field, term)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"field":    field,
		"term":     term,
		"doc_freq": len(postings),
		"postings": postings,
	})
}

func (h *Handler) handleListTerms(w http.ResponseWriter, r *http.Request) {
	field := r.PathValue("field")
	terms, err := h.svc.Store.Terms(field, r.URL.Query().Get("prefix"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	if terms == nil {
		terms = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"field": field,
		"terms": terms,
	})
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrChecksumMismatch):
		h.logger.Error("corrupt record", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		h.logger.Error("store request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// --- User dictionary ---

func (h *Handler) handleListSplits(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), dictTimeout)
	defer cancel()

	entries, err := h.svc.Splits(ctx)
	if err != nil {
		h.writeDictError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

func (h *Handler) handleSetSplit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Surface string   `json:"surface"`
		A       []string `json:"a"`
		B       []string `json:"b"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dictTimeout)
	defer cancel()

	if err := h.svc.SetSplit(ctx, req.Surface, req.A, req.B); err != nil {
		h.writeDictError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "stored",
		"surface": req.Surface,
	})
}

func (h *Handler) handleRemoveSplit(w http.ResponseWriter, r *http.Request) {
	surface := r.PathValue("surface")

	ctx, cancel := context.WithTimeout(r.Context(), dictTimeout)
	defer cancel()

	if err := h.svc.RemoveSplit(ctx, surface); err != nil {
		h.writeDictError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "removed",
		"surface": surface,
	})
}

func (h *Handler) writeDictError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoDictionary):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, userdict.ErrMalformedEntry), errors.Is(err, userdict.ErrUnsupportedMode):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("dictionary request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
