package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"subreel/internal/catalog"
	"subreel/internal/server"
)

type fixture struct {
	dir     string
	records []catalog.Record
	handler http.Handler
}

func newFixture(t *testing.T, template string) fixture {
	t.Helper()
	dir := t.TempDir()
	write := func(rel, content string) string {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	records := []catalog.Record{
		catalog.NewRecord("a.mkv", write("videos/a.mkv", "video-a"), write("files/a.ass", "[Script Info]\nTitle: a")),
		catalog.NewRecord("Tom & <Jerry>.mkv", write("videos/tj.mkv", "video-tj"), write("files/tj.ass", "[Script Info]\nTitle: tj")),
	}
	write("public/style.css", "body{}")
	assJS := write("node_modules/assjs/dist/ass.js", "window.ASS = function(){};")

	srv := server.New(server.Options{
		Records:       records,
		PublicDir:     filepath.Join(dir, "public"),
		IndexTemplate: template,
		AssJSPath:     assJS,
	})
	return fixture{dir: dir, records: records, handler: srv}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndexRendersOptions(t *testing.T) {
	f := newFixture(t, "<select>{{VIDEO_OPTIONS}}</select>")
	rec := get(t, f.handler, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	want := `<select><option value="a-mkv">a.mkv</option><option value="tom-and-jerry-mkv">Tom &amp; &lt;Jerry&gt;.mkv</option></select>`
	if diff := cmp.Diff(want, rec.Body.String()); diff != "" {
		t.Fatalf("index mismatch (-want +got):\n%s", diff)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected permissive CORS header, got %q", got)
	}
}

func TestDefaultIndexTemplate(t *testing.T) {
	f := newFixture(t, "")
	body := get(t, f.handler, "/").Body.String()
	if strings.Contains(body, server.OptionsPlaceholder) {
		t.Fatal("placeholder was not replaced")
	}
	if !strings.Contains(body, `<option value="a-mkv">a.mkv</option>`) {
		t.Fatalf("expected option in default page, got:\n%s", body)
	}
	if !strings.Contains(body, "/lib/ass.min.js") {
		t.Fatal("default page must load the subtitle renderer")
	}
}

func TestVideoAndSubtitlesBySlug(t *testing.T) {
	f := newFixture(t, "")
	if body := get(t, f.handler, "/video/a-mkv").Body.String(); body != "video-a" {
		t.Fatalf("unexpected video body %q", body)
	}
	rec := get(t, f.handler, "/subtitles/tom-and-jerry-mkv")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Title: tj") {
		t.Fatalf("unexpected subtitles response %d %q", rec.Code, rec.Body.String())
	}
}

func TestUnknownSlug(t *testing.T) {
	f := newFixture(t, "")
	for _, path := range []string{"/video/missing", "/subtitles/missing"} {
		rec := get(t, f.handler, path)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: status = %d, want 404", path, rec.Code)
		}
		if strings.TrimSpace(rec.Body.String()) != "Video not found" {
			t.Fatalf("%s: unexpected body %q", path, rec.Body.String())
		}
	}
}

func TestVideoRangeRequest(t *testing.T) {
	f := newFixture(t, "")
	req := httptest.NewRequest(http.MethodGet, "/video/a-mkv", nil)
	req.Header.Set("Range", "bytes=0-4")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", rec.Code)
	}
	if rec.Body.String() != "video" {
		t.Fatalf("unexpected partial body %q", rec.Body.String())
	}
}

func TestStaticAndAssJS(t *testing.T) {
	f := newFixture(t, "")
	if body := get(t, f.handler, "/style.css").Body.String(); body != "body{}" {
		t.Fatalf("unexpected static body %q", body)
	}
	rec := get(t, f.handler, "/lib/ass.min.js")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "window.ASS") {
		t.Fatalf("unexpected ass.js response %d %q", rec.Code, rec.Body.String())
	}
	if rec := get(t, f.handler, "/nope.txt"); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCatalogEndpoint(t *testing.T) {
	f := newFixture(t, "")
	rec := get(t, f.handler, "/api/videos")
	var got []catalog.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(f.records, got); diff != "" {
		t.Fatalf("catalog mismatch (-want +got):\n%s", diff)
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, "")
	req := httptest.NewRequest(http.MethodOptions, "/video/a-mkv", nil)
	req.Header.Set("Origin", "http://example.test")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Fatal("expected allowed methods header")
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	f := newFixture(t, "")
	srv := f.handler.(*server.Server)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listener) }()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + listener.Addr().String() + "/video/a-mkv")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "video-a" {
		t.Fatalf("unexpected body %q", body)
	}
	client.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestLoadIndexTemplate(t *testing.T) {
	page, err := server.LoadIndexTemplate("")
	if err != nil || !strings.Contains(page, server.OptionsPlaceholder) {
		t.Fatalf("expected built-in page, err=%v", err)
	}
	path := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(path, []byte("custom {{VIDEO_OPTIONS}}"), 0o644); err != nil {
		t.Fatal(err)
	}
	page, err = server.LoadIndexTemplate(path)
	if err != nil || page != "custom {{VIDEO_OPTIONS}}" {
		t.Fatalf("unexpected template %q err=%v", page, err)
	}
	if _, err := server.LoadIndexTemplate(filepath.Join(t.TempDir(), "absent.html")); err == nil {
		t.Fatal("expected error for missing template")
	}
}
