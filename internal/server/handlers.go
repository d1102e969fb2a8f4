package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/analytics"
	errs "github.com/SheepTester-forks/curricular-analytics-graph/pkg/errors"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/pipeline"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/plan"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/render"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/view"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

type courseReport struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Term        *int    `json:"term,omitempty"`
	Credits     float64 `json:"credits"`
	Placeholder bool    `json:"placeholder,omitempty"`
	analytics.Metrics
}

type requisiteJSON struct {
	Source int    `json:"source"`
	Target int    `json:"target"`
	Type   string `json:"type,omitempty"`
}

type analyzeResponse struct {
	Kind       string          `json:"kind"`
	System     string          `json:"system"`
	Complexity float64         `json:"complexity"`
	Paths      int             `json:"paths"`
	Courses    []courseReport  `json:"courses"`
	Redundant  []requisiteJSON `json:"redundant"`
}

type scheduledCourse struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Credits float64 `json:"credits"`
}

type scheduledTerm struct {
	Index   int               `json:"index"`
	Name    string            `json:"name"`
	Credits float64           `json:"credits"`
	Courses []scheduledCourse `json:"courses"`
}

type scheduleResponse struct {
	Kind  string          `json:"kind"`
	Terms []scheduledTerm `json:"terms"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	src, err := readSource(w, r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	p, err := s.runner.Parse(r.Context(), src, opts)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	report, err := s.runner.Analyze(r.Context(), p, opts)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAnalyzeResponse(p, report))
}

func newAnalyzeResponse(p *plan.Plan, report *analytics.Report[int]) analyzeResponse {
	resp := analyzeResponse{
		Kind:       string(p.Kind),
		System:     string(report.System),
		Complexity: report.Total(),
		Paths:      len(report.Paths),
		Courses:    make([]courseReport, 0, p.Len()),
		Redundant:  make([]requisiteJSON, 0, len(report.Redundant)),
	}
	for _, id := range p.Nodes() {
		c, ok := p.Course(id)
		if !ok {
			continue
		}
		cr := courseReport{
			ID:          id,
			Name:        p.Label(id),
			Credits:     c.Credits,
			Placeholder: c.Placeholder,
			Metrics:     report.Get(id),
		}
		if !c.Placeholder {
			term := c.Term
			cr.Term = &term
		}
		resp.Courses = append(resp.Courses, cr)
	}
	for _, e := range report.Redundant {
		t, _ := p.RequisiteType(e.Source, e.Target)
		resp.Redundant = append(resp.Redundant, requisiteJSON{Source: e.Source, Target: e.Target, Type: string(t)})
	}
	return resp
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	src, err := readSource(w, r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	p, err := s.runner.Parse(r.Context(), src, opts)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	names, err := view.ParseTermNames(opts.TermNames)
	if err != nil {
		s.writeErr(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid term names"))
		return
	}

	resp := scheduleResponse{Kind: string(p.Kind), Terms: make([]scheduledTerm, len(p.Terms))}
	for i := range p.Terms {
		courses := p.TermCourses(i)
		term := scheduledTerm{
			Index:   i,
			Name:    names(nil, i),
			Credits: p.TermCredits(i),
			Courses: make([]scheduledCourse, len(courses)),
		}
		for j, c := range courses {
			term.Courses[j] = scheduledCourse{ID: c.ID, Name: p.Label(c.ID), Credits: c.Credits}
		}
		resp.Terms[i] = term
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	q := r.URL.Query()
	if kind := q.Get("type"); kind != "" {
		opts.Kind = kind
	}
	if sel := q.Get("select"); sel != "" {
		id, err := errs.ParseCourseID(sel)
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		opts.Select = &id
	}
	format := pipeline.FormatSVG
	if f := q.Get("format"); f != "" {
		format = f
	}
	opts.Formats = []string{format}

	src, err := readSource(w, r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	result, err := s.runner.Execute(r.Context(), src, opts)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	contentType := "application/json"
	if format != pipeline.FormatJSON {
		contentType = render.Format(format).ContentType()
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Cache", cacheStatus(result.CacheHit))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Artifacts[format])
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

// options applies query parameters over the server defaults.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := s.defaults
	opts.Logger = s.logger.With("request_id", RequestID(r.Context()))
	opts.Formats = nil
	opts.Select = nil

	q := r.URL.Query()
	for name, dst := range map[string]*string{
		"system":     &opts.System,
		"schedule":   &opts.Schedule,
		"redundant":  &opts.Redundant,
		"term_names": &opts.TermNames,
		"layout":     &opts.Layout,
		"metric":     &opts.Metric,
	} {
		if v := q.Get(name); v != "" {
			*dst = v
		}
	}
	for name, dst := range map[string]*float64{
		"width":  &opts.Width,
		"height": &opts.Height,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return opts, errs.New(errs.ErrCodeInvalidInput, "invalid %s: %q", name, v)
		}
		*dst = f
	}

	if isJSON(r) {
		opts.Input = pipeline.InputJSON
	}
	return opts, nil
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// readSource reads the request body, capped at errs.MaxBodyBytes.
func readSource(w http.ResponseWriter, r *http.Request) (pipeline.Source, error) {
	body := http.MaxBytesReader(w, r.Body, errs.MaxBodyBytes())
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pipeline.Source{}, errs.New(errs.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return pipeline.Source{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "read request body")
	}
	if len(data) == 0 {
		return pipeline.Source{}, errs.New(errs.ErrCodeInvalidInput, "request body is empty")
	}
	return pipeline.Source{Name: "request", Data: data}, nil
}

// statusFor maps a coded error to an HTTP status.
func statusFor(err error) int {
	if errs.IsInvalid(err) {
		return http.StatusBadRequest
	}
	switch errs.GetCode(err) {
	case errs.ErrCodeCycleDetected, errs.ErrCodeScheduleDeadlock:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeNotFound, errs.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := string(errs.GetCode(err))
	if code == "" {
		code = string(errs.ErrCodeInternal)
	}
	msg := errs.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err, "request_id", RequestID(r.Context()))
		msg = "Internal Server Error"
	}
	s.writeError(w, r, status, code, msg)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code, RequestID: RequestID(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
