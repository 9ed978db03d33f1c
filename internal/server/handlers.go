package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/famtree/pkg/buildinfo"
	apperrors "github.com/matzehuels/famtree/pkg/errors"
	"github.com/matzehuels/famtree/pkg/family"
	"github.com/matzehuels/famtree/pkg/render/nodelink"
)

// Member is the JSON form of a member.
type Member struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Gender    string     `json:"gender"`
	Relations []Relation `json:"relations"`
}

// Relation is the JSON form of a member's outgoing edge.
type Relation struct {
	Type   string `json:"type"`
	Target string `json:"target"`
}

// Link is the JSON form of an edge in the relationship list.
type Link struct {
	From string `json:"from"`
	Type string `json:"type"`
	To   string `json:"to"`
}

// AddMemberRequest is the body of POST /api/members.
type AddMemberRequest struct {
	Name   string `json:"name"`
	Gender string `json:"gender"`
}

// AddRelationRequest is the body of POST /api/relations.
type AddRelationRequest struct {
	From string `json:"from"`
	Type string `json:"type"`
	To   string `json:"to"`
}

func toMember(m family.Member) Member {
	rels := make([]Relation, len(m.Relations))
	for i, r := range m.Relations {
		rels[i] = Relation{Type: string(r.Kind), Target: r.Target}
	}
	return Member{ID: m.ID, Name: m.Name, Gender: string(m.Gender), Relations: rels}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"backend": s.editor.Backend(),
		"members": s.editor.Len(),
		"version": buildinfo.Short(),
	})
}

// =============================================================================
// Tree
// =============================================================================

func (s *Server) getTree(w http.ResponseWriter, r *http.Request) {
	data, err := s.editor.Snapshot()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondText(w, "application/json", data)
}

func (s *Server) putTree(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.respondError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	if err := s.editor.LoadSnapshot(r.Context(), data); err != nil {
		s.respondError(w, err)
		return
	}
	s.getTree(w, r)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	if err := s.editor.Refresh(r.Context()); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]int{"members": s.editor.Len()})
}

// =============================================================================
// Members
// =============================================================================

func (s *Server) listMembers(w http.ResponseWriter, r *http.Request) {
	members := s.editor.Members()
	out := make([]Member, len(members))
	for i, m := range members {
		out[i] = toMember(m)
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) addMember(w http.ResponseWriter, r *http.Request) {
	var req AddMemberRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	m, err := s.editor.AddMember(r.Context(), req.Name, req.Gender)
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Location", "/api/members/"+m.ID)
	s.respondJSON(w, http.StatusCreated, toMember(m))
}

func (s *Server) deleteMember(w http.ResponseWriter, r *http.Request) {
	if err := s.editor.DeleteMember(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Relations
// =============================================================================

func (s *Server) listRelations(w http.ResponseWriter, r *http.Request) {
	links := s.editor.Relationships()
	out := make([]Link, len(links))
	for i, l := range links {
		out[i] = Link{From: l.From, Type: string(l.Kind), To: l.To}
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) addRelation(w http.ResponseWriter, r *http.Request) {
	var req AddRelationRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.editor.AddRelation(r.Context(), req.From, req.To, family.Kind(req.Type)); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, Link(req))
}

func (s *Server) deleteRelation(w http.ResponseWriter, r *http.Request) {
	from := chi.URLParam(r, "from")
	kind := family.Kind(chi.URLParam(r, "type"))
	to := chi.URLParam(r, "to")
	if err := s.editor.DeleteRelation(r.Context(), from, kind, to); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Views
// =============================================================================

func (s *Server) hierarchy(w http.ResponseWriter, r *http.Request) {
	var (
		out string
		err error
	)
	if root := r.URL.Query().Get("root"); root != "" {
		out, err = s.editor.HierarchyFrom(root)
	} else {
		out, err = s.editor.Hierarchy()
	}
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondText(w, "text/plain; charset=utf-8", []byte(out))
}

func graphOptions(r *http.Request) nodelink.Options {
	detailed, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))
	return nodelink.Options{Detailed: detailed}
}

func (s *Server) graphDOT(w http.ResponseWriter, r *http.Request) {
	s.respondText(w, "text/vnd.graphviz; charset=utf-8", []byte(s.editor.DOT(graphOptions(r))))
}

func (s *Server) graphSVG(w http.ResponseWriter, r *http.Request) {
	svg, err := nodelink.RenderSVG(r.Context(), s.editor.DOT(graphOptions(r)))
	if err != nil {
		s.respondError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "render graph"))
		return
	}
	s.respondText(w, "image/svg+xml", svg)
}
