package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/omega-realm/worldserver/internal/account"
	"github.com/omega-realm/worldserver/internal/auth"
	"github.com/omega-realm/worldserver/internal/catalog"
	"github.com/omega-realm/worldserver/internal/character"
	"github.com/omega-realm/worldserver/internal/leaderboard"
	"github.com/omega-realm/worldserver/internal/world"
)

type fixedReporter struct{}

func (fixedReporter) Stats(context.Context) (world.Stats, error) {
	return world.Stats{ActivePlayers: 2, Accounts: 3, ActiveUsers: 2}, nil
}

type api struct {
	handler    http.Handler
	characters *character.Store
	board      *leaderboard.Memory
}

func newAPI(t *testing.T) *api {
	t.Helper()
	dir := account.NewDirectory(account.NewMemoryRepository(), account.NewMemorySessions(),
		account.PlaintextVerifier{}, auth.NewIssuer([]byte("http-test"), time.Hour))
	a := &api{characters: character.NewStore(catalog.Default()), board: leaderboard.NewMemory()}
	a.handler = NewRouter(Deps{Accounts: dir, Characters: a.characters, Leaderboard: a.board, Reporter: fixedReporter{}})
	return a
}

func (a *api) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *api) login(t *testing.T, username string) string {
	t.Helper()
	if rec := a.do(t, http.MethodPost, "/api/auth/register", "", `{"username":"`+username+`","password":"secret"}`); rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d body = %s", rec.Code, rec.Body)
	}
	rec := a.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"`+username+`","password":"secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d body = %s", rec.Code, rec.Body)
	}
	var resp AuthResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	return resp.Token
}

func TestAuthRoutes(t *testing.T) {
	a := newAPI(t)
	a.login(t, "alice")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		errMsg string
	}{
		{"duplicate", http.MethodPost, "/api/auth/register", `{"username":"alice","password":"secret"}`, http.StatusConflict, "Username already exists"},
		{"short username", http.MethodPost, "/api/auth/register", `{"username":"al","password":"secret"}`, http.StatusBadRequest, "Username must be at least 3 characters"},
		{"bad password", http.MethodPost, "/api/auth/login", `{"username":"alice","password":"nope"}`, http.StatusUnauthorized, "Invalid username or password"},
		{"bad body", http.MethodPost, "/api/auth/login", `{`, http.StatusBadRequest, "Invalid request body"},
		{"wrong method", http.MethodGet, "/api/auth/login", ``, http.StatusMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(t, tt.method, tt.path, "", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.errMsg == "" {
				return
			}
			var e ErrorResponse
			json.NewDecoder(rec.Body).Decode(&e)
			if e.Error != tt.errMsg {
				t.Fatalf("error = %q, want %q", e.Error, tt.errMsg)
			}
		})
	}
}

func TestCharacterRoutes(t *testing.T) {
	a := newAPI(t)
	token := a.login(t, "alice")

	if rec := a.do(t, http.MethodGet, "/api/characters", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d", rec.Code)
	}

	rec := a.do(t, http.MethodPost, "/api/characters/create", token, `{"name":"Aria","character_class":"MAGE"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", rec.Code, rec.Body)
	}
	rec = a.do(t, http.MethodPost, "/api/characters/create", token, `{"name":"Bad","character_class":"BARD"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid class status = %d", rec.Code)
	}

	rec = a.do(t, http.MethodGet, "/api/characters", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var body struct {
		Characters []struct {
			Name  string `json:"name"`
			Class string `json:"character_class"`
		} `json:"characters"`
	}
	json.NewDecoder(rec.Body).Decode(&body)
	if len(body.Characters) != 1 || body.Characters[0].Name != "Aria" || body.Characters[0].Class != "MAGE" {
		t.Fatalf("characters = %+v", body.Characters)
	}
}

func TestLeaderboardRoute(t *testing.T) {
	a := newAPI(t)
	token := a.login(t, "alice")
	killer, _ := a.characters.Create("alice", "Killer", "ROGUE")
	victim, _ := a.characters.Create("alice", "Victim", "MAGE")
	ctx := context.Background()
	a.board.RecordKill(ctx, killer.ID(), victim.ID())
	a.board.RecordKill(ctx, killer.ID(), victim.ID())

	rec := a.do(t, http.MethodGet, "/api/leaderboard?limit=5", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	var resp LeaderboardResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.TopKillers) != 1 || resp.TopKillers[0].CharacterName != "Killer" || resp.TopKillers[0].Score != 2 {
		t.Fatalf("top killers = %+v", resp.TopKillers)
	}
	if len(resp.TopDeaths) != 1 || resp.TopDeaths[0].CharacterName != "Victim" {
		t.Fatalf("top deaths = %+v", resp.TopDeaths)
	}

	rec = a.do(t, http.MethodGet, "/api/leaderboard?character_id="+strconv.FormatInt(victim.ID(), 10), token, "")
	var stats CharacterStatsResponse
	json.NewDecoder(rec.Body).Decode(&stats)
	if rec.Code != http.StatusOK || stats.CharacterName != "Victim" || stats.Deaths != 2 || stats.PvPKills != 0 {
		t.Fatalf("victim stats = %d %+v", rec.Code, stats)
	}
	if rec := a.do(t, http.MethodGet, "/api/leaderboard?character_id=99", token, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown character status = %d", rec.Code)
	}
	if rec := a.do(t, http.MethodGet, "/api/leaderboard?character_id=x", token, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad character_id status = %d", rec.Code)
	}

	if rec := a.do(t, http.MethodGet, "/api/leaderboard?limit=zero", token, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d", rec.Code)
	}
	if rec := a.do(t, http.MethodGet, "/api/leaderboard", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d", rec.Code)
	}
}

func TestStatusAndHealth(t *testing.T) {
	a := newAPI(t)

	rec := a.do(t, http.MethodGet, "/api/status", "", "")
	var s world.Stats
	json.NewDecoder(rec.Body).Decode(&s)
	if rec.Code != http.StatusOK || s.ActivePlayers != 2 || s.Accounts != 3 || s.ActiveUsers != 2 {
		t.Fatalf("status = %d %+v", rec.Code, s)
	}

	rec = a.do(t, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"healthy"`) {
		t.Fatalf("health = %d %s", rec.Code, rec.Body)
	}
}
