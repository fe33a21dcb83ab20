package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestViewsRenderMinified(t *testing.T) {
	v, err := NewViews()
	if err != nil {
		t.Fatalf("NewViews: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	v.Render(rec, req, http.StatusOK, "error", pageData{
		Title:        "検索条件に誤りがあります",
		AreaNames:    []string{"宮前"},
		ErrorMessage: "<b>緯度経度</b>",
	})

	body := rec.Body.String()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.Contains(body, "\n  ") {
		t.Fatalf("body was not minified: %q", body)
	}
	if strings.Contains(body, "<b>緯度経度</b>") {
		t.Fatalf("error message was not escaped")
	}
	if !strings.Contains(body, ">宮前</a>") {
		t.Fatalf("area navigation missing: %q", body)
	}
}

func TestViewsUnknownPage(t *testing.T) {
	v, err := NewViews()
	if err != nil {
		t.Fatalf("NewViews: %v", err)
	}

	rec := httptest.NewRecorder()
	v.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "missing", pageData{})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestKmFormat(t *testing.T) {
	km := viewFuncs["km"].(func(float64) string)
	if got := km(0.7); got != "0.70" {
		t.Fatalf("km(0.7) = %q, want 0.70", got)
	}
}
