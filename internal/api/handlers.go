package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ccsnap/internal/export"
	"ccsnap/internal/model"
	"ccsnap/internal/snap"
)

type createSnapshotRequest struct {
	Notes       string   `json:"notes"`
	Tags        []string `json:"tags"`
	TriggeredBy string   `json:"triggered_by"`
}

type addTagRequest struct {
	Name        string `json:"tag_name"`
	Type        string `json:"tag_type"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by"`
}

type addAnnotationRequest struct {
	Text      string `json:"annotation_text"`
	Type      string `json:"annotation_type"`
	CreatedBy string `json:"created_by"`
}

func decodeBody(r *http.Request, v any) error {
	if r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return invalid("invalid request body: %v", err)
	}
	return nil
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createSnapshotRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	snapshot, err := s.svc.CreateSnapshot(r.Context(), s.opts.Scan, snap.CreateRequest{
		TriggerType: model.TriggerAPI,
		TriggeredBy: req.TriggeredBy,
		Notes:       req.Notes,
		Tags:        req.Tags,
		Host:        s.opts.Host,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snapshot)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	query, err := parseListQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.svc.ListSnapshots(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if page.Items == nil {
		page.Items = []*model.Snapshot{}
	}
	writeJSON(w, http.StatusOK, page)
}

// parseListQuery reads the list filters from the query string:
// trigger, tag (repeatable), match=all|any, since, until (RFC 3339),
// q, sort=time|size, order=asc|desc, page and page_size.
func parseListQuery(r *http.Request) (snap.ListQuery, error) {
	v := r.URL.Query()
	var q snap.ListQuery

	if t := v.Get("trigger"); t != "" {
		q.TriggerType = model.TriggerType(t)
		if !q.TriggerType.Valid() {
			return q, invalid("invalid trigger %q", t)
		}
	}

	for _, tag := range v["tag"] {
		for _, name := range strings.Split(tag, ",") {
			if name = strings.TrimSpace(name); name != "" {
				q.Tags = append(q.Tags, name)
			}
		}
	}
	switch v.Get("match") {
	case "", "any":
	case "all":
		q.MatchAllTags = true
	default:
		return q, invalid("invalid match %q (want any or all)", v.Get("match"))
	}

	var err error
	if q.Since, err = parseTime(v.Get("since")); err != nil {
		return q, invalid("invalid since: %v", err)
	}
	if q.Until, err = parseTime(v.Get("until")); err != nil {
		return q, invalid("invalid until: %v", err)
	}

	q.Search = v.Get("q")

	switch sort := snap.SortField(v.Get("sort")); sort {
	case "", snap.SortByTime, snap.SortBySize:
		q.SortBy = sort
	default:
		return q, invalid("invalid sort %q (want time or size)", sort)
	}
	switch v.Get("order") {
	case "", "desc":
	case "asc":
		q.Ascending = true
	default:
		return q, invalid("invalid order %q (want asc or desc)", v.Get("order"))
	}

	if q.Page, err = parseInt(v.Get("page")); err != nil {
		return q, invalid("invalid page: %v", err)
	}
	if q.PageSize, err = parseInt(v.Get("page_size")); err != nil {
		return q, invalid("invalid page_size: %v", err)
	}
	return q, nil
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return n, nil
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.svc.GetSnapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteSnapshot(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddTag(w http.ResponseWriter, r *http.Request) {
	var req addTagRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.writeError(w, r, invalid("tag_name is required"))
		return
	}

	tag, err := s.svc.AddTag(r.Context(), chi.URLParam(r, "id"), snap.TagRequest{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (s *Server) handleAddAnnotation(w http.ResponseWriter, r *http.Request) {
	var req addAnnotationRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.writeError(w, r, invalid("annotation_text is required"))
		return
	}

	annotation, err := s.svc.AddAnnotation(r.Context(), chi.URLParam(r, "id"), snap.AnnotationRequest{
		Text:      req.Text,
		Type:      req.Type,
		CreatedBy: req.CreatedBy,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, annotation)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, badRequest{err: err})
		return
	}
	includeContent := false
	if v := r.URL.Query().Get("include_content"); v != "" {
		if includeContent, err = strconv.ParseBool(v); err != nil {
			s.writeError(w, r, invalid("invalid include_content %q", v))
			return
		}
	}

	snapshot, err := s.svc.GetSnapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	err = export.Write(r.Context(), &buf, snapshot, s.svc, export.Options{
		Format:         format,
		IncludeContent: includeContent,
		ExportedAt:     time.Now().UTC(),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "snapshot-"+snapshot.ID+"."+format.Extension()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from == "" || to == "" {
		s.writeError(w, r, invalid("from and to are required"))
		return
	}

	cmp, err := s.svc.CompareSnapshots(r.Context(), from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if cmp.Changes == nil {
		cmp.Changes = []*model.SnapshotChange{}
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	entry, err := s.svc.GetContent(r.Context(), model.ContentRef(chi.URLParam(r, "hash")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(entry.Content)))
	w.Header().Set("ETag", `"`+string(entry.ContentHash)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(entry.Content)
}
