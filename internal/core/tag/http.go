package tag

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayazaki/hakoba/internal/platform/apperr"
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
	router.Get("/", handler.listTags)
	router.Get("/{name}", handler.getTag)
	return router
}

func (handler *Handler) listTags(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	tags, total, err := handler.service.List(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, tags, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) getTag(writer http.ResponseWriter, request *http.Request) {
	name := chi.URLParam(request, "name")
	if name == "" {
		respond.Error(writer, request, apperr.ValidationError("Tag name is required"))
		return
	}

	t, err := handler.service.GetByName(request.Context(), name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, t)
}
