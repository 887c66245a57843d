package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youruser/pnlcard/internal/cards"
	"github.com/youruser/pnlcard/internal/market"
	"github.com/youruser/pnlcard/internal/settings"
)

type fakeGenerator struct {
	path     string
	err      error
	payloads []cards.Payload
}

func (f *fakeGenerator) GenerateFor(_ context.Context, p cards.Payload) (string, bool, error) {
	f.payloads = append(f.payloads, p)
	if f.err != nil {
		return "", false, f.err
	}
	return f.path, filepath.Ext(f.path) == ".gif", nil
}

type fakeTitles map[string]string

func (f fakeTitles) ResolveTitle(_ context.Context, code string) (string, error) {
	if t, ok := f[code]; ok {
		return t, nil
	}
	return "", market.ErrNotFound
}

type fakeSettings struct {
	users map[string]settings.Settings
	err   error
}

func (f *fakeSettings) Get(_ context.Context, id string) (settings.Settings, error) {
	if f.err != nil {
		return settings.Settings{}, f.err
	}
	if s, ok := f.users[id]; ok {
		return s, nil
	}
	return settings.Defaults(), nil
}

func (f *fakeSettings) Update(ctx context.Context, id string, u settings.Update) (settings.Settings, error) {
	s, err := f.Get(ctx, id)
	if err != nil {
		return s, err
	}
	s = s.Apply(u)
	f.users[id] = s
	return s, nil
}

type fakeArtifacts struct {
	paths    map[string]string
	released []string
}

func (f *fakeArtifacts) Lookup(name string) (string, bool) {
	p, ok := f.paths[name]
	return p, ok
}

func (f *fakeArtifacts) Release(path string) {
	f.released = append(f.released, path)
}

type fixture struct {
	router    *gin.Engine
	gen       *fakeGenerator
	store     *fakeSettings
	artifacts *fakeArtifacts
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		gen:       &fakeGenerator{path: "/tmp/pnl-card-1-abc.png"},
		store:     &fakeSettings{users: map[string]settings.Settings{}},
		artifacts: &fakeArtifacts{paths: map[string]string{}},
	}
	h := NewHandler(f.gen, fakeTitles{"KXBTC-25": "Bitcoin above 100k?"}, f.store, f.artifacts, zerolog.Nop())
	f.router = gin.New()
	f.router.Use(RequestLogger(zerolog.Nop()))
	RegisterRoutes(f.router, h)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	f := setup(t)
	w := f.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestCreateCard(t *testing.T) {
	f := setup(t)
	f.store.users["u1"] = settings.Settings{AccentColor: "#abcdef", Username: "trader"}

	w := f.do(t, http.MethodPost, "/api/cards", `{"user_id":"u1","market":" kxbtc-25 ","cost":100,"sells":"150"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "**Bitcoin above 100k?**\nProfit: $50.00 (+50.00%)", body["content"])
	assert.Equal(t, "pnl-card-1-abc.png", body["artifact"])
	assert.Equal(t, "/api/artifacts/pnl-card-1-abc.png", body["url"])
	assert.Equal(t, false, body["animated"])

	require.Len(t, f.gen.payloads, 1)
	p := f.gen.payloads[0]
	assert.Equal(t, "Bitcoin above 100k?", p.MarketName)
	assert.Equal(t, "#abcdef", p.AccentColor)
	assert.Equal(t, "trader", p.Username)
	assert.Equal(t, "100", p.Cost.String())
}

func TestCreateCardAnimated(t *testing.T) {
	f := setup(t)
	f.gen.path = "/tmp/pnl-card-2-def.gif"

	w := f.do(t, http.MethodPost, "/api/cards", `{"user_id":"u1","market":"KXBTC-25","cost":10,"sells":5}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, decode(t, w)["animated"])
}

func TestCreateCardUnknownMarket(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPost, "/api/cards", `{"user_id":"u1","market":"nope","cost":1,"sells":2}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Could not find market or event with code: **NOPE**. Please check the ticker.", decode(t, w)["error"])
	assert.Empty(t, f.gen.payloads)
}

func TestCreateCardGenerationFailure(t *testing.T) {
	f := setup(t)
	f.gen.err = errors.New("boom")

	w := f.do(t, http.MethodPost, "/api/cards", `{"user_id":"u1","market":"KXBTC-25","cost":1,"sells":2}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgGenerateFailed, decode(t, w)["error"])
}

func TestCreateCardSettingsFailureUsesDefaults(t *testing.T) {
	f := setup(t)
	f.store.err = errors.New("db down")

	w := f.do(t, http.MethodPost, "/api/cards", `{"user_id":"u1","market":"KXBTC-25","cost":1,"sells":2}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, cards.DefaultAccentColor, f.gen.payloads[0].AccentColor)
}

func TestCreateCardValidation(t *testing.T) {
	f := setup(t)

	for _, body := range []string{
		`{"market":"KXBTC-25","cost":1,"sells":2}`,
		`{"user_id":"u1","cost":1,"sells":2}`,
		`{"user_id":"u1","market":"KXBTC-25","sells":2}`,
		`{"user_id":"u1","market":"KXBTC-25","cost":"abc","sells":2}`,
		`not json`,
	} {
		w := f.do(t, http.MethodPost, "/api/cards", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, msgInvalidRequest, decode(t, w)["error"], body)
		assert.NotContains(t, w.Body.String(), "cardRequest", body)
	}
	assert.Empty(t, f.gen.payloads)
}

func TestCreateCardRejectsHugeAmounts(t *testing.T) {
	f := setup(t)

	for _, body := range []string{
		`{"user_id":"u1","market":"KXBTC-25","cost":10000000000000000000,"sells":2}`,
		`{"user_id":"u1","market":"KXBTC-25","cost":1,"sells":"1e1000000000"}`,
		`{"user_id":"u1","market":"KXBTC-25","cost":"1e-1000000000","sells":2}`,
	} {
		w := f.do(t, http.MethodPost, "/api/cards", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, msgInvalidAmount, decode(t, w)["error"], body)
	}
	assert.Empty(t, f.gen.payloads)
}

func TestDownloadArtifactReleases(t *testing.T) {
	f := setup(t)
	path := filepath.Join(t.TempDir(), "pnl-card-1-abc.png")
	require.NoError(t, os.WriteFile(path, []byte("PNGDATA"), 0o644))
	f.artifacts.paths["pnl-card-1-abc.png"] = path

	w := f.do(t, http.MethodGet, "/api/artifacts/pnl-card-1-abc.png", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PNGDATA", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "pnl-card-1-abc.png")
	assert.Equal(t, []string{path}, f.artifacts.released)
}

func TestDownloadArtifactUnknown(t *testing.T) {
	f := setup(t)
	w := f.do(t, http.MethodGet, "/api/artifacts/pnl-card-9-zzz.png", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, f.artifacts.released)
}

func TestGetSettingsDefaults(t *testing.T) {
	f := setup(t)
	w := f.do(t, http.MethodGet, "/api/users/u1/settings", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, cards.DefaultBackgroundColor, body["backgroundColor"])
	assert.Equal(t, "", body["backgroundUrl"])
}

func TestSetBackground(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPut, "/api/users/u1/background", `{"url":"https://cdn.example.com/bg.gif"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://cdn.example.com/bg.gif", f.store.users["u1"].BackgroundURL)

	w = f.do(t, http.MethodPut, "/api/users/u1/background", `{"url":"none"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, f.store.users["u1"].BackgroundURL)
}

func TestSetColors(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPut, "/api/users/u1/colors", `{"accent":"#ff00ff"}`)
	require.Equal(t, http.StatusOK, w.Code)
	s := f.store.users["u1"]
	assert.Equal(t, "#ff00ff", s.AccentColor)
	assert.Equal(t, cards.DefaultTextColor, s.TextColor)
}

func TestSetColorsRequiresOne(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPut, "/api/users/u1/colors", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgNoColors, decode(t, w)["error"])
}

func TestSetColorsRejectsBadHex(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPut, "/api/users/u1/colors", `{"text":"blue"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgInvalidColor, decode(t, w)["error"])
	_, saved := f.store.users["u1"]
	assert.False(t, saved)
}

func TestSetUsernameAndAvatar(t *testing.T) {
	f := setup(t)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, "/api/users/u1/username", `{"name":"@trader"}`).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, "/api/users/u1/avatar", `{"url":"https://cdn.example.com/a.png"}`).Code)

	s := f.store.users["u1"]
	assert.Equal(t, "trader", s.Username)
	assert.Equal(t, "https://cdn.example.com/a.png", s.AvatarURL)

	w := f.do(t, http.MethodPut, "/api/users/u1/username", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgInvalidRequest, decode(t, w)["error"])
}

func TestMarketQR(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodGet, "/api/markets/kxbtc-25/qr?size=128", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}
