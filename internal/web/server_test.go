package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/arcanaland/scrybe/internal/browser"
	"github.com/arcanaland/scrybe/internal/card"
	"github.com/arcanaland/scrybe/internal/scryfall"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"
)

// mockAPI is an in-memory card API.
type mockAPI struct {
	mu          sync.Mutex
	cards       map[string]*card.Card
	results     map[string][]card.Card
	randomID    string
	randomCalls []string
	searchCalls []string
}

func newMockAPI() *mockAPI {
	m := &mockAPI{
		cards:   make(map[string]*card.Card),
		results: make(map[string][]card.Card),
	}
	for _, id := range []string{"rnd", "dark", "bolt-1", "bolt-2"} {
		m.cards[id] = &card.Card{
			ID:          id,
			Name:        "Card " + id,
			Set:         "lea",
			ScryfallURI: "https://scryfall.com/card/lea/" + id,
			ImageURIs:   map[string]string{card.ImageSmall: "https://img.test/" + id + "-small.jpg", card.ImageNormal: "https://img.test/" + id + "-normal.jpg"},
		}
	}
	m.randomID = "rnd"
	m.results["Lightning Bolt rarity:common"] = []card.Card{*m.cards["bolt-1"], *m.cards["bolt-2"]}
	return m
}

func (m *mockAPI) Card(ctx context.Context, id string) (*card.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cards[id]
	if !ok {
		return nil, fmt.Errorf("fetching card %s: %w", id, &scryfall.APIError{Object: "error", Code: "not_found", Status: 404})
	}
	return c, nil
}

func (m *mockAPI) Random(ctx context.Context, color string) (*card.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.randomCalls = append(m.randomCalls, color)
	if color == "b" {
		return m.cards["dark"], nil
	}
	return m.cards[m.randomID], nil
}

func (m *mockAPI) Search(ctx context.Context, query string) ([]card.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls = append(m.searchCalls, query)
	if res, ok := m.results[query]; ok {
		return res, nil
	}
	return nil, scryfall.ErrEmptyResult
}

func (m *mockAPI) Prints(ctx context.Context, uri string) ([]card.Card, error) {
	return nil, nil
}

func (m *mockAPI) counts() (random []string, search []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.randomCalls...), append([]string(nil), m.searchCalls...)
}

type testEnv struct {
	api    *mockAPI
	server *Server
	http   *httptest.Server
	client *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	api := newMockAPI()
	s, err := NewServer(Options{API: api, Log: logger, SessionTTL: time.Minute})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(s)
	t.Cleanup(func() {
		ts.Close()
		s.Sessions().Close()
	})

	jar, _ := cookiejar.New(nil)
	return &testEnv{api: api, server: s, http: ts, client: &http.Client{Jar: jar}}
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := e.client.Get(e.http.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func (e *testEnv) state(t *testing.T) browser.State {
	t.Helper()
	resp := e.get(t, "/api/state")
	defer resp.Body.Close()
	var st browser.State
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decoding state: %v", err)
	}
	return st
}

func TestIndex_NewSessionLoadsRandomCard(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/")
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "https://img.test/rnd-normal.jpg") {
		t.Errorf("page does not show the random card")
	}
	if !strings.Contains(string(body), "Recently Viewed") {
		t.Errorf("page has no recent section")
	}

	random, _ := env.api.counts()
	if len(random) != 1 || random[0] != "" {
		t.Errorf("random calls = %q, want one uncolored call", random)
	}

	st := env.state(t)
	if st.Card == nil || st.Card.ID != "rnd" {
		t.Fatalf("current card = %+v", st.Card)
	}
	if len(st.Recent) != 1 || st.Recent[0].ID != "rnd" {
		t.Errorf("recent = %+v", st.Recent)
	}

	// A second visit reuses the session without a new fetch.
	env.get(t, "/").Body.Close()
	if random, _ := env.api.counts(); len(random) != 1 {
		t.Errorf("revisit fetched again: %q", random)
	}
	if n := env.server.Sessions().Len(); n != 1 {
		t.Errorf("sessions = %d, want 1", n)
	}
}

func TestIndex_LoadsRandomCardAfterAPIFirst(t *testing.T) {
	tests := []struct {
		name  string
		first func(t *testing.T, env *testEnv)
	}{
		{
			name: "state read",
			first: func(t *testing.T, env *testEnv) {
				env.get(t, "/api/state").Body.Close()
			},
		},
		{
			name: "rejected action",
			first: func(t *testing.T, env *testEnv) {
				resp, err := env.client.Post(env.http.URL+"/api/random?color=purple", "", nil)
				if err != nil {
					t.Fatal(err)
				}
				resp.Body.Close()
				if resp.StatusCode != http.StatusBadRequest {
					t.Fatalf("status = %d, want 400", resp.StatusCode)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tt.first(t, env)

			env.get(t, "/").Body.Close()

			random, _ := env.api.counts()
			if len(random) != 1 || random[0] != "" {
				t.Errorf("random calls = %q, want one uncolored call", random)
			}
			st := env.state(t)
			if st.Card == nil || st.Card.ID != "rnd" {
				t.Errorf("current card = %+v", st.Card)
			}
		})
	}
}

func TestState_WithoutSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/state")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if c := resp.Header.Get("Set-Cookie"); c != "" {
		t.Errorf("cookie set: %q", c)
	}
	var st browser.State
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Card != nil || st.Generation != 0 {
		t.Errorf("state = %+v, want empty", st)
	}
	if n := env.server.Sessions().Len(); n != 0 {
		t.Errorf("sessions = %d, want 0", n)
	}
}

func TestRandomForm_Color(t *testing.T) {
	env := newTestEnv(t)
	env.get(t, "/").Body.Close()

	resp, err := env.client.PostForm(env.http.URL+"/random", url.Values{"color": {"b"}})
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	random, _ := env.api.counts()
	if random[len(random)-1] != "b" {
		t.Errorf("last random call = %q, want b", random[len(random)-1])
	}
	st := env.state(t)
	if st.SelectedColor != "b" {
		t.Errorf("selected color = %q", st.SelectedColor)
	}
	if st.Card == nil || st.Card.ID != "dark" {
		t.Errorf("current card = %+v", st.Card)
	}
	if !strings.Contains(string(body), "color-button selected") {
		t.Errorf("selected color not highlighted")
	}
}

func TestSearchForm_ComposesQuery(t *testing.T) {
	env := newTestEnv(t)
	env.get(t, "/").Body.Close()

	resp, err := env.client.PostForm(env.http.URL+"/search", url.Values{
		"q":      {"Lightning Bolt"},
		"rarity": {"common"},
	})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	_, search := env.api.counts()
	if len(search) != 1 || search[0] != "Lightning Bolt rarity:common" {
		t.Errorf("search calls = %q", search)
	}
	st := env.state(t)
	if st.Card == nil || st.Card.ID != "bolt-1" {
		t.Errorf("current card = %+v, want first result", st.Card)
	}
}

func TestSearchAPI_EmptyQuery(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.client.Post(env.http.URL+"/api/search", "application/json",
		bytes.NewBufferString(`{"query":"   ","rarity":"rare"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if _, search := env.api.counts(); len(search) != 0 {
		t.Errorf("search endpoint called: %q", search)
	}
}

func TestSearchAPI_NoResults(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.client.Post(env.http.URL+"/api/search", "application/json",
		bytes.NewBufferString(`{"query":"nothing at all"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var st browser.State
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Card != nil {
		t.Errorf("card set after empty search: %+v", st.Card)
	}
	if st.Failure == nil || st.Failure.Kind != browser.FailureEmpty {
		t.Errorf("failure = %+v", st.Failure)
	}
}

func TestRandomAPI_InvalidColor(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.client.Post(env.http.URL+"/api/random?color=purple", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestLoadAPI(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.client.Post(env.http.URL+"/api/cards/bolt-2", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var st browser.State
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Card == nil || st.Card.ID != "bolt-2" {
		t.Errorf("current card = %+v", st.Card)
	}
	if st.Loading {
		t.Error("loading flag set after load settled")
	}
}

func TestQRCode(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/cards/rnd/qr.png")
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if !bytes.HasPrefix(body, []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}

	resp = env.get(t, "/api/cards/missing/qr.png")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing card status = %d, want 404", resp.StatusCode)
	}
}

func TestCatalogAndHealth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/catalog")
	var cat struct {
		Colors []struct {
			Key string `json:"key"`
		} `json:"colors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cat); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if len(cat.Colors) != 6 {
		t.Errorf("colors = %d, want 6", len(cat.Colors))
	}

	resp = env.get(t, "/healthz")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}

	resp = env.get(t, "/static/app.js")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("static status = %d", resp.StatusCode)
	}
}

func TestWebSocketStreamsState(t *testing.T) {
	env := newTestEnv(t)
	env.get(t, "/").Body.Close()

	base, _ := url.Parse(env.http.URL)
	header := http.Header{}
	for _, c := range env.client.Jar.Cookies(base) {
		header.Add("Cookie", c.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(env.http.URL, "http")+"/ws", &websocket.DialOptions{
		HTTPHeader: header,
	})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.CloseNow()

	var st browser.State
	if err := wsjson.Read(ctx, conn, &st); err != nil {
		t.Fatalf("read: %v", err)
	}
	if st.Card == nil || st.Card.ID != "rnd" {
		t.Errorf("streamed card = %+v", st.Card)
	}

	resp, err := env.client.Post(env.http.URL+"/api/cards/bolt-1", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	for {
		if err := wsjson.Read(ctx, conn, &st); err != nil {
			t.Fatalf("read update: %v", err)
		}
		if st.Card != nil && st.Card.ID == "bolt-1" && !st.Loading {
			break
		}
	}
	conn.Close(websocket.StatusNormalClosure, "")
}
