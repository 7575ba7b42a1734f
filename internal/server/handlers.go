package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/conneroisu/hyphen/internal/corpus"
	"github.com/conneroisu/hyphen/internal/dictionary"
	"github.com/conneroisu/hyphen/internal/errors"
	"github.com/conneroisu/hyphen/internal/htmltext"
	"github.com/conneroisu/hyphen/internal/hyphenate"
	"github.com/conneroisu/hyphen/internal/version"
)

// HyphenateRequest is the body of /api/hyphenate and /api/possibilities.
// Language falls back to the Accept-Language header, then to the default
// dictionary.
type HyphenateRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
	Mark     string `json:"mark,omitempty"`
	HTML     bool   `json:"html,omitempty"`
}

type HyphenateResponse struct {
	Result   string `json:"result"`
	Language string `json:"language"`
}

type PossibilitiesResponse struct {
	Language string `json:"language"`
	Offsets  []int  `json:"offsets"`
}

type DictionaryInfo struct {
	Language    string            `json:"language"`
	Source      string            `json:"source"`
	Fingerprint string            `json:"fingerprint"`
	Patterns    int               `json:"patterns"`
	Exceptions  int               `json:"exceptions"`
	Thresholds  corpus.Thresholds `json:"thresholds"`
	LoadedAt    time.Time         `json:"loaded_at"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHyphenate(w http.ResponseWriter, r *http.Request) {
	var req HyphenateRequest
	if !s.decode(w, r, &req) {
		return
	}
	resp, err := s.hyphenate(req, r.Header.Get("Accept-Language"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handlePossibilities(w http.ResponseWriter, r *http.Request) {
	var req HyphenateRequest
	if !s.decode(w, r, &req) {
		return
	}
	d, err := s.resolve(req.Language, r.Header.Get("Accept-Language"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, PossibilitiesResponse{
		Language: d.Language().String(),
		Offsets:  hyphenate.Possibilities(req.Text, d),
	})
}

func (s *Server) handleDictionaries(w http.ResponseWriter, r *http.Request) {
	list := s.registry.List()
	infos := make([]DictionaryInfo, 0, len(list))
	for _, d := range list {
		infos = append(infos, describe(d))
	}
	s.writeJSON(w, r, http.StatusOK, infos)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := version.Get()
	status := "healthy"
	if len(s.registry.List()) == 0 {
		status = "degraded"
	}
	s.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":       status,
		"timestamp":    time.Now().UTC(),
		"uptime":       time.Since(s.startedAt).Round(time.Second).String(),
		"version":      info.Short(),
		"dictionaries": len(s.registry.List()),
		"clients":      s.hub.Len(),
	})
}

// hyphenate serves both HTTP and WebSocket requests.
func (s *Server) hyphenate(req HyphenateRequest, accept string) (HyphenateResponse, error) {
	d, err := s.resolve(req.Language, accept)
	if err != nil {
		return HyphenateResponse{}, err
	}
	mark := req.Mark
	if mark == "" {
		mark = s.config.Hyphenation.Mark
	}

	resp := HyphenateResponse{Language: d.Language().String()}
	if !req.HTML {
		resp.Result = hyphenate.HyphenateWith(req.Text, d, mark)
		return resp, nil
	}

	resp.Result, err = htmltext.Rewrite(req.Text, func(lang string) hyphenate.Dictionary {
		if lang == "" {
			return d
		}
		if found, ok := s.registry.Lookup(lang); ok {
			return found
		}
		return nil
	}, mark)
	return resp, err
}

func (s *Server) resolve(lang, accept string) (*dictionary.Dictionary, error) {
	if lang != "" {
		return s.registry.Match(lang)
	}
	return s.registry.Match(accept)
}

func describe(d *dictionary.Dictionary) DictionaryInfo {
	return DictionaryInfo{
		Language:    d.Language().String(),
		Source:      d.Source,
		Fingerprint: d.Fingerprint,
		Patterns:    d.Corpus.PatternCount(),
		Exceptions:  d.Corpus.ExceptionCount(),
		Thresholds:  d.Corpus.Thresholds(),
		LoadedAt:    d.LoadedAt,
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, r, errors.Wrap(err, errors.ErrorTypeValidation, errors.CodeInvalidRequest,
			"invalid request body"))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), err, "Request failed", "request_id", RequestID(r.Context()))
	}

	resp := errorResponse{Error: err.Error(), RequestID: RequestID(r.Context())}
	var he *errors.HyphenError
	if errors.As(err, &he) {
		resp.Error = he.Message
		resp.Code = he.Code
	}
	s.writeJSON(w, r, status, resp)
}

func statusFor(err error) int {
	switch {
	case errors.HasCode(err, errors.CodeDictNotFound):
		return http.StatusNotFound
	case errors.IsValidation(err), errors.HasCode(err, errors.CodeHTMLParse):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
