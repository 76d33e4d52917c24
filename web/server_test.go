package web

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"aetherticket/config"
)

type captureSyncer struct {
	synced chan config.Config
}

func (c *captureSyncer) SyncIdentity(cfg config.Config) { c.synced <- cfg }

func testSettings() config.WebSettings {
	return config.WebSettings{
		Host:            "127.0.0.1",
		Port:            8080,
		Username:        "admin",
		RateLimitMax:    1000,
		RateLimitWindow: time.Minute,
	}
}

func newTestServer(t *testing.T, settings config.WebSettings) (*Server, string) {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.json")
	srv := NewServer(settings, configPath, nil, zap.NewNop())
	return srv, configPath
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, testSettings())

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestGetConfigReturnsDefaults(t *testing.T) {
	srv, _ := newTestServer(t, testSettings())

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/api/config", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var cfg config.Config
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg != config.Defaults() {
		t.Errorf("config = %+v, want defaults", cfg)
	}
}

func TestPostConfigSavesAndSanitizes(t *testing.T) {
	srv, configPath := newTestServer(t, testSettings())

	body := `{"botName":"HelpDesk","embedColor":"ff8800","supportRole":"Helpers!"}`
	req := httptest.NewRequest(http.MethodPost, "/api/config", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.App().Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var saved config.Config
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		t.Fatal(err)
	}
	if saved.BotName != "HelpDesk" || saved.EmbedColor != "#FF8800" {
		t.Errorf("saved = %+v", saved)
	}
	if saved.SupportRole != "Helpers" {
		t.Errorf("SupportRole = %q, symbols should be stripped", saved.SupportRole)
	}

	onDisk, err := config.Load(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if onDisk.BotName != "HelpDesk" {
		t.Errorf("on disk = %+v", onDisk)
	}
}

func TestPostConfigRejectsMalformedBody(t *testing.T) {
	srv, _ := newTestServer(t, testSettings())

	req := httptest.NewRequest(http.MethodPost, "/api/config", strings.NewReader("{nope"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.App().Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPostConfigNotifiesSyncer(t *testing.T) {
	settings := testSettings()
	configPath := filepath.Join(t.TempDir(), "config.json")
	syncer := &captureSyncer{synced: make(chan config.Config, 1)}
	srv := NewServer(settings, configPath, syncer, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/config", strings.NewReader(`{"botName":"Renamed"}`))
	req.Header.Set("Content-Type", "application/json")
	if _, err := srv.App().Test(req); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-syncer.synced:
		if cfg.BotName != "Renamed" {
			t.Errorf("synced config = %+v", cfg)
		}
	case <-time.After(time.Second):
		t.Fatal("syncer was not notified")
	}
}

func TestBasicAuth(t *testing.T) {
	settings := testSettings()
	settings.Password = "hunter2"
	srv, _ := newTestServer(t, settings)

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/api/config", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	req.SetBasicAuth("admin", "hunter2")
	resp, err = srv.App().Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("authenticated status = %d", resp.StatusCode)
	}

	// Probe endpoints stay reachable without credentials.
	for _, path := range []string{"/health", "/diagnostic"} {
		resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestPanelPageRenders(t *testing.T) {
	srv, _ := newTestServer(t, testSettings())

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	page, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(page, []byte("AetherTicket")) {
		t.Error("page does not mention the bot name")
	}
	if !bytes.Contains(page, []byte(`name="supportRole"`)) {
		t.Error("page is missing the support role field")
	}
}

func TestAvatarUploadRejectsNonImage(t *testing.T) {
	srv, _ := newTestServer(t, testSettings())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("avatar", "avatar.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte("definitely not an image")); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := srv.App().Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", resp.StatusCode)
	}
}

func TestAvatarMissingFileIs404(t *testing.T) {
	srv, _ := newTestServer(t, testSettings())

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/avatar.png", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestFindAvailablePort(t *testing.T) {
	port, err := FindAvailablePort("127.0.0.1", 49800)
	if err != nil {
		t.Fatalf("FindAvailablePort: %v", err)
	}
	if port < 49800 || port >= 49800+maxPortAttempts {
		t.Errorf("port = %d, outside probed range", port)
	}
	if !IsPortAvailable("127.0.0.1", port) {
		t.Errorf("reported port %d is not bindable", port)
	}
}
