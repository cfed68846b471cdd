package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayazaki/hakoba/internal/platform/middleware"
	requestutil "github.com/ayazaki/hakoba/internal/platform/request"
	"github.com/ayazaki/hakoba/internal/platform/respond"
	"github.com/ayazaki/hakoba/internal/platform/sec"
)

// Gate derives the visibility predicate for a request. The access package
// provides the production implementation; it is injected here to keep the
// dependency flowing one way.
type Gate func(*http.Request) Visibility

type Handler struct {
	service *Service
	gate    Gate
}

func NewHandler(service *Service, gate Gate) *Handler {
	return &Handler{service: service, gate: gate}
}

func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/random", handler.randomPost)
	router.Get("/{id}", handler.getPost)

	router.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth)
		authed.Post("/", handler.createPost)
		authed.Put("/{id}", handler.editPost)
		authed.Delete("/{id}", handler.deletePost)
		authed.Post("/{id}/vote", handler.votePost)

		authed.With(middleware.RequirePerms(sec.PermsModerator)).
			Post("/{id}/undelete", handler.undeletePost)
	})

	return router
}

func (handler *Handler) createPost(writer http.ResponseWriter, request *http.Request) {
	poster, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.Create(request.Context(), poster, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, created)
}

// getPost serves a single post and counts the view.
func (handler *Handler) getPost(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	p, err := handler.service.View(request.Context(), id, handler.gate(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, p)
}

func (handler *Handler) randomPost(writer http.ResponseWriter, request *http.Request) {
	p, err := handler.service.Random(request.Context(), handler.gate(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, p)
}

func (handler *Handler) editPost(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input EditInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.Edit(request.Context(), claims, id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

func (handler *Handler) deletePost(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.service.SoftDelete(request.Context(), claims, id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) undeletePost(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	restored, err := handler.service.Undelete(request.Context(), claims, id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, restored)
}

type voteRequest struct {
	Vote int32 `json:"vote"`
}

func (handler *Handler) votePost(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body voteRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	voted, err := handler.service.Vote(request.Context(), claims, id, body.Vote)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, voted)
}
