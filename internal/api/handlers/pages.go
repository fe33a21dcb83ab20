package handlers

import (
	"aed-location-service/internal/domain"
	"aed-location-service/internal/platform/obs"
	"aed-location-service/internal/services"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	titleTop          = "トップページ"
	titleInvalidQuery = "検索条件に誤りがあります"
	titleStoreFailure = "エラーが発生しました"
	titleNotFound     = "404 Page Not Found."

	msgInvalidPoint = "緯度経度が正しくありません。"
	msgInvalidID    = "AED設置場所の連番が正しくありません。"
	msgUnknownID    = "そのようなAED設置場所連番はありません。"
	msgUnknownArea  = "地域の名称が正しくありません。"
	msgEmptyKeyword = "検索する名称を入力してください。"
	msgInvalidPage  = "ページの指定が正しくありません。"
	msgStoreFailure = "データを取得できませんでした。しばらくしてから再度お試しください。"

	lastUpdatedLayout = "2006/01/02 15:04"
)

type pageData struct {
	Title        string
	AreaNames    []string
	LastUpdated  string
	ErrorMessage string

	Current   domain.CurrentLocation
	Near      []services.NearLocation
	Location  domain.InstallationLocation
	Locations []domain.InstallationLocation

	Keyword string
	Page    services.NamePage
	From    int
	To      int
}

// PageHandler serves the HTML search views.
type PageHandler struct {
	Service *services.LocationService
	Views   *Views
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	names, err := memoAreaNames(r.Context(), h.Service.GetAreaNames)
	if err != nil {
		log.Error().
			Err(err).
			Str("req_id", obs.RequestID(r.Context())).
			Msg("load area names failed")
	}
	data.AreaNames = names

	h.Views.Render(w, r, status, name, data)
}

// renderError shows the generic error view. Invalid input is not a server
// failure, so the page is sent with 200.
func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, message string) {
	h.render(w, r, http.StatusOK, "error", pageData{
		Title:        titleInvalidQuery,
		ErrorMessage: message,
	})
}

func (h *PageHandler) storeFailure(w http.ResponseWriter, r *http.Request, err error) {
	log.Error().
		Err(err).
		Str("req_id", obs.RequestID(r.Context())).
		Str("path", r.URL.Path).
		Msg("location store failed")

	h.render(w, r, http.StatusInternalServerError, "error", pageData{
		Title:        titleStoreFailure,
		ErrorMessage: msgStoreFailure,
	})
}

// Index serves GET /.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	last, err := h.Service.GetLastUpdated(r.Context())
	if err != nil {
		h.storeFailure(w, r, err)
		return
	}

	data := pageData{Title: titleTop}
	if last != nil {
		data.LastUpdated = last.Format(lastUpdatedLayout)
	}
	h.render(w, r, http.StatusOK, "index", data)
}

// SearchByGPS serves GET and POST /search_by_gps. GET shows the search form.
func (h *PageHandler) SearchByGPS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "index", pageData{Title: titleTop})
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, msgInvalidPoint)
		return
	}

	current, err := domain.ParseCurrentLocation(
		r.PostFormValue("current_latitude"),
		r.PostFormValue("current_longitude"),
	)
	if err != nil {
		log.Debug().Err(err).Msg("rejected gps search input")
		h.renderError(w, r, msgInvalidPoint)
		return
	}

	near, err := h.Service.Nearest(r.Context(), current)
	if err != nil {
		h.storeFailure(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "search_by_gps", pageData{
		Title:   "現在地から近いAED設置場所の検索結果",
		Current: current,
		Near:    near,
	})
}

// Location serves GET /location/{id}.
func (h *PageHandler) Location(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(strings.TrimSpace(r.PathValue("id")))
	if err != nil {
		h.renderError(w, r, msgInvalidID)
		return
	}

	loc, ok, err := h.Service.FindByID(r.Context(), id)
	if err != nil {
		h.storeFailure(w, r, err)
		return
	}
	if !ok {
		h.renderError(w, r, msgUnknownID)
		return
	}

	h.render(w, r, http.StatusOK, "location", pageData{
		Title:    "AED設置場所「" + loc.Name() + "」の情報",
		Location: loc,
	})
}

// Area serves GET /area/{name}.
func (h *PageHandler) Area(w http.ResponseWriter, r *http.Request) {
	area := r.PathValue("name")

	locs, err := h.Service.FindByArea(r.Context(), area)
	if err != nil {
		h.storeFailure(w, r, err)
		return
	}
	if len(locs) == 0 {
		h.renderError(w, r, msgUnknownArea)
		return
	}

	h.render(w, r, http.StatusOK, "area", pageData{
		Title:     "「" + area + "」のAED設置場所",
		Locations: locs,
	})
}

// FindByName serves GET /find_by_location_name?location_name=&page=.
func (h *PageHandler) FindByName(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	keyword := strings.TrimSpace(q.Get("location_name"))
	if keyword == "" {
		h.renderError(w, r, msgEmptyKeyword)
		return
	}

	page, err := services.ParsePage(q.Get("page"))
	if err != nil {
		h.renderError(w, r, msgInvalidPage)
		return
	}

	result, err := h.Service.FindByName(r.Context(), keyword, page)
	if err != nil {
		var svcErr *domain.ServiceError
		if errors.As(err, &svcErr) {
			h.renderError(w, r, msgInvalidPage)
			return
		}
		h.storeFailure(w, r, err)
		return
	}

	data := pageData{
		Title:   "名称に「" + keyword + "」を含むAED設置場所の検索結果",
		Keyword: keyword,
		Page:    result,
	}
	if len(result.Items) > 0 {
		data.From = (result.Page-1)*services.PageSize + 1
		data.To = data.From + len(result.Items) - 1
	}
	h.render(w, r, http.StatusOK, "find_by_location_name", data)
}

// NotFound renders the 404 page for unmatched paths.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "404", pageData{Title: titleNotFound})
}
