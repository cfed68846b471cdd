package search

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayazaki/hakoba/internal/core/access"
	"github.com/ayazaki/hakoba/internal/platform/respond"
	"github.com/ayazaki/hakoba/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.searchPosts)
	return router
}

// searchPosts serves GET /?q=beach+-crowd&sort=score_desc&page=1&limit=20.
func (handler *Handler) searchPosts(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	urlQuery := request.URL.Query()

	posts, total, err := handler.service.Search(
		request.Context(),
		urlQuery.Get("q"),
		urlQuery.Get("sort"),
		access.FromRequest(request),
		params.Limit,
		params.Offset(),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, posts, pagination.NewMeta(params.Page, params.Limit, total))
}
