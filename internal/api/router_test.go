package api

import (
	"aed-location-service/internal/adapters/repositories"
	"aed-location-service/internal/api/handlers"
	"aed-location-service/internal/domain"
	"aed-location-service/internal/ports"
	"aed-location-service/internal/services"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func seedLocations(t *testing.T, repo ports.LocationRepository) {
	t.Helper()

	ctx := context.Background()
	for i := 1; i <= 11; i++ {
		in := domain.LocationInput{
			Area:       "宮前",
			LocationID: i,
			Name:       fmt.Sprintf("旭川施設%02d", i),
			Address:    fmt.Sprintf("旭川市宮前1条3丁目%d番", i),
			Latitude:   43.70 + float64(i)*0.001,
			Longitude:  142.30,
		}
		if i > 5 {
			in.Area = "末広"
		}
		switch i {
		case 1:
			in.Name = "旭川市教育委員会"
			in.Latitude, in.Longitude = 43.7703945, 142.3631408
		case 11:
			in.Name = "旭川市障害者福祉センター「おぴった」"
		}

		loc, err := domain.NewInstallationLocation(in)
		if err != nil {
			t.Fatalf("NewInstallationLocation: %v", err)
		}
		if err := repo.Upsert(ctx, loc); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}
}

func newTestRouter(t *testing.T, repo ports.LocationRepository) http.Handler {
	t.Helper()

	views, err := handlers.NewViews()
	if err != nil {
		t.Fatalf("NewViews: %v", err)
	}
	return NewRouter(services.NewLocationService(repo), views)
}

func seededRouter(t *testing.T) http.Handler {
	t.Helper()

	repo := repositories.NewMemoryLocationRepository()
	seedLocations(t, repo)
	return newTestRouter(t, repo)
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, string) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	body, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return rec, string(body)
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	return do(t, h, httptest.NewRequest(http.MethodGet, target, nil))
}

func postGPS(t *testing.T, h http.Handler, lat, lon string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	form := url.Values{}
	form.Set("current_latitude", lat)
	form.Set("current_longitude", lon)
	req := httptest.NewRequest(http.MethodPost, "/search_by_gps", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(t, h, req)
}

func assertPage(t *testing.T, rec *httptest.ResponseRecorder, body string, status int, contains ...string) {
	t.Helper()

	if rec.Code != status {
		t.Fatalf("status = %d, want %d; body=%s", rec.Code, status, body)
	}
	for _, want := range contains {
		if !strings.Contains(body, want) {
			t.Fatalf("body does not contain %q; body=%s", want, body)
		}
	}
}

func TestIndex(t *testing.T) {
	h := seededRouter(t)

	rec, body := get(t, h, "/")
	assertPage(t, rec, body, http.StatusOK, "トップページ", "最終更新日時", "宮前", "末広")

	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Fatalf("Content-Type = %q, want text/html", got)
	}
}

func TestIndexEmptyStore(t *testing.T) {
	h := newTestRouter(t, repositories.NewMemoryLocationRepository())

	rec, body := get(t, h, "/")
	assertPage(t, rec, body, http.StatusOK, "トップページ")
	if strings.Contains(body, "最終更新日時") {
		t.Fatalf("empty store should not show a last-updated time")
	}
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	h := seededRouter(t)

	rec, _ := get(t, h, "/")
	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"X-XSS-Protection":       "1;mode=block",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Fatalf("%s = %q, want %q", k, got, v)
		}
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Security-Policy"), "default-src 'self'") {
		t.Fatalf("Content-Security-Policy = %q", rec.Header().Get("Content-Security-Policy"))
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("X-Request-ID not set")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec, _ = do(t, h, req)
	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Fatalf("X-Request-ID = %q, want req-123", got)
	}
}

func TestSearchByGPS(t *testing.T) {
	h := seededRouter(t)

	rec, body := postGPS(t, h, "43.77082378", "142.3650193")
	assertPage(t, rec, body, http.StatusOK, "現在地から近いAED設置場所の検索結果", "旭川市教育委員会", "0.16km")
	if n := strings.Count(body, `<span class="rank">`); n != services.NearestLimit {
		t.Fatalf("ranked results = %d, want %d", n, services.NearestLimit)
	}

	rec, body = get(t, h, "/search_by_gps")
	assertPage(t, rec, body, http.StatusOK, "トップページ")
}

func TestSearchByGPSInvalidInput(t *testing.T) {
	h := seededRouter(t)

	for _, tc := range [][2]string{
		{"abc", "142.36"},
		{"", ""},
		{"91", "142.36"},
		{"43.77", "-180"},
	} {
		rec, body := postGPS(t, h, tc[0], tc[1])
		assertPage(t, rec, body, http.StatusOK, "検索条件に誤りがあります", "緯度経度が正しくありません。")
	}
}

func TestLocation(t *testing.T) {
	h := seededRouter(t)

	rec, body := get(t, h, "/location/1")
	assertPage(t, rec, body, http.StatusOK, "AED設置場所「旭川市教育委員会」の情報")

	rec, body = get(t, h, "/location/abc")
	assertPage(t, rec, body, http.StatusOK, "AED設置場所の連番が正しくありません。")

	rec, body = get(t, h, "/location/99999")
	assertPage(t, rec, body, http.StatusOK, "そのようなAED設置場所連番はありません。")
}

func TestArea(t *testing.T) {
	h := seededRouter(t)

	rec, body := get(t, h, "/area/"+url.PathEscape("宮前"))
	assertPage(t, rec, body, http.StatusOK, "「宮前」のAED設置場所", "旭川市教育委員会", "5件")

	rec, body = get(t, h, "/area/"+url.PathEscape("存在しない地区"))
	assertPage(t, rec, body, http.StatusOK, "地域の名称が正しくありません。")
}

func TestFindByLocationName(t *testing.T) {
	h := seededRouter(t)
	keyword := url.QueryEscape("旭川")

	rec, body := get(t, h, "/find_by_location_name?location_name="+keyword)
	assertPage(t, rec, body, http.StatusOK, "名称に「旭川」を含むAED設置場所の検索結果", "11件中 1〜10件目", "次へ")

	rec, body = get(t, h, "/find_by_location_name?location_name="+keyword+"&page=2")
	assertPage(t, rec, body, http.StatusOK, "旭川市障害者福祉センター「おぴった」", "11件中 11〜11件目", "前へ")

	for _, page := range []string{"3", "0", "abc"} {
		rec, body = get(t, h, "/find_by_location_name?location_name="+keyword+"&page="+page)
		assertPage(t, rec, body, http.StatusOK, "ページの指定が正しくありません。")
	}

	rec, body = get(t, h, "/find_by_location_name")
	assertPage(t, rec, body, http.StatusOK, "検索する名称を入力してください。")
}

func TestNotFound(t *testing.T) {
	h := seededRouter(t)

	rec, body := get(t, h, "/no/such/page")
	assertPage(t, rec, body, http.StatusNotFound, "404 Page Not Found.")
}

func TestExportXLSX(t *testing.T) {
	h := seededRouter(t)

	rec, _ := get(t, h, "/export.xlsx")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "spreadsheetml") {
		t.Fatalf("Content-Type = %q", got)
	}

	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("AED")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 12 {
		t.Fatalf("rows = %d, want 12 (header + 11)", len(rows))
	}
}

func TestStaticAssets(t *testing.T) {
	h := seededRouter(t)

	rec, body := get(t, h, "/static/app.js")
	if rec.Code != http.StatusOK || !strings.Contains(body, "geolocation") {
		t.Fatalf("app.js status=%d body=%q", rec.Code, body)
	}

	rec, _ = get(t, h, "/static/missing.js")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing asset status = %d, want 404", rec.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := seededRouter(t)

	rec, body := get(t, h, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", rec.Code)
	}
	var res struct {
		Status    string `json:"status"`
		Locations int    `json:"locations"`
	}
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if res.Status != "ok" || res.Locations != 11 {
		t.Fatalf("health = %+v, want ok/11", res)
	}

	rec, body = get(t, h, "/metrics")
	assertPage(t, rec, body, http.StatusOK, "aed_http_requests_total", `route="GET /health"`)
}

type brokenRepo struct {
	ports.LocationRepository
}

var errStoreDown = errors.New("connection refused")

func (brokenRepo) LastUpdated(ctx context.Context) (*time.Time, error) {
	return nil, &domain.DatabaseError{Op: "last updated", Err: errStoreDown}
}

func (brokenRepo) All(ctx context.Context) ([]domain.InstallationLocation, error) {
	return nil, &domain.DatabaseError{Op: "list locations", Err: errStoreDown}
}

func (brokenRepo) AreaNames(ctx context.Context) ([]string, error) {
	return nil, &domain.DatabaseError{Op: "list area names", Err: errStoreDown}
}

func (brokenRepo) Count(ctx context.Context) (int, error) {
	return 0, &domain.DatabaseError{Op: "count locations", Err: errStoreDown}
}

func TestStoreFailures(t *testing.T) {
	h := newTestRouter(t, brokenRepo{LocationRepository: repositories.NewMemoryLocationRepository()})

	rec, body := get(t, h, "/")
	assertPage(t, rec, body, http.StatusInternalServerError, "データを取得できませんでした。")

	rec, body = postGPS(t, h, "43.77", "142.36")
	assertPage(t, rec, body, http.StatusInternalServerError, "データを取得できませんでした。")

	rec, _ = get(t, h, "/export.xlsx")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("export status = %d, want 500", rec.Code)
	}

	rec, _ = get(t, h, "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("health status = %d, want 503", rec.Code)
	}
}
