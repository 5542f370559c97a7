package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chessbot/book"
	"chessbot/engine"

	"github.com/gorilla/websocket"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	settings := engine.DefaultSettings()
	settings.FixedDepth = 2
	settings.LogInfo = false
	srv := New(Config{
		Settings: settings,
		NewBook: func() (book.Book, error) {
			return book.NewLineBook([]string{"e2e4", "e7e5", "g1f3"})
		},
		Logger: log.New(io.Discard, "", 0),
	})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string, wantStatus int, out any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: status %d, want %d: %s", method, url, resp.StatusCode, wantStatus, data)
	}
	if out != nil {
		if err := json.NewDecoder(bytes.NewReader(data)).Decode(out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, url, data, err)
		}
	}
}

func TestCreateAndList(t *testing.T) {
	ts := testServer(t)
	var st State
	do(t, http.MethodPost, ts.URL+"/games", "", http.StatusCreated, &st)
	if st.ID != 1 || st.Side != "white" || st.Status != "ongoing" || !st.InBook {
		t.Fatalf("new game state %+v", st)
	}
	if len(st.Board) != 64 || st.Board[0] != "R" || st.Board[4] != "K" || st.Board[60] != "k" || st.Board[27] != "" {
		t.Fatalf("board %v", st.Board)
	}

	do(t, http.MethodPost, ts.URL+"/games", `{"fen": "4k3/8/8/8/3q4/8/8/3RK3 w - - 0 1"}`, http.StatusCreated, &st)
	if st.ID != 2 || st.InBook {
		t.Fatalf("second game %+v", st)
	}
	do(t, http.MethodPost, ts.URL+"/games", `{"fen": "bad"}`, http.StatusBadRequest, nil)

	var list struct {
		Games []int `json:"games"`
	}
	do(t, http.MethodGet, ts.URL+"/games", "", http.StatusOK, &list)
	if len(list.Games) != 2 || list.Games[0] != 1 || list.Games[1] != 2 {
		t.Fatalf("games %v", list.Games)
	}

	do(t, http.MethodDelete, ts.URL+"/games/1", "", http.StatusNoContent, nil)
	do(t, http.MethodGet, ts.URL+"/games/1", "", http.StatusNotFound, nil)
	do(t, http.MethodGet, ts.URL+"/nowhere", "", http.StatusNotFound, nil)
}

func TestListAfterDelete(t *testing.T) {
	ts := testServer(t)
	for i := 0; i < 3; i++ {
		do(t, http.MethodPost, ts.URL+"/games", "", http.StatusCreated, nil)
	}
	do(t, http.MethodDelete, ts.URL+"/games/2", "", http.StatusNoContent, nil)

	var list struct {
		Games []int `json:"games"`
	}
	do(t, http.MethodGet, ts.URL+"/games", "", http.StatusOK, &list)
	if len(list.Games) != 2 || list.Games[0] != 1 || list.Games[1] != 3 {
		t.Fatalf("games %v, want [1 3]", list.Games)
	}
}

func TestMovesAndBot(t *testing.T) {
	ts := testServer(t)
	var st State
	do(t, http.MethodPost, ts.URL+"/games", "", http.StatusCreated, &st)
	game := ts.URL + "/games/1"

	do(t, http.MethodPost, game+"/moves", `{"uci": "e2e4"}`, http.StatusOK, &st)
	if st.LastMove != "e2e4" || st.Side != "black" || st.Board[28] != "P" {
		t.Fatalf("after e2e4 %+v", st)
	}
	do(t, http.MethodPost, game+"/moves", `{"uci": "e7"}`, http.StatusBadRequest, nil)
	do(t, http.MethodPost, game+"/moves", `{"uci": "e7e4"}`, http.StatusConflict, nil)
	do(t, http.MethodPost, game+"/moves", `not json`, http.StatusBadRequest, nil)

	do(t, http.MethodPost, game+"/bot", "", http.StatusOK, &st)
	if st.LastMove != "e7e5" || !st.InBook {
		t.Fatalf("book reply %+v", st)
	}
	do(t, http.MethodPost, game+"/bot", "", http.StatusOK, &st)
	if st.LastMove != "g1f3" || st.InBook {
		t.Fatalf("last book move %+v", st)
	}
	do(t, http.MethodPost, game+"/bot", "", http.StatusOK, &st)
	if st.Side != "white" || st.LastMove == "" {
		t.Fatalf("searched reply %+v", st)
	}
}

func TestTargets(t *testing.T) {
	ts := testServer(t)
	do(t, http.MethodPost, ts.URL+"/games", "", http.StatusCreated, nil)

	var resp targetsResponse
	do(t, http.MethodGet, ts.URL+"/games/1/targets/g1", "", http.StatusOK, &resp)
	if len(resp.Targets) != 2 || resp.Targets[0] != "f3" || resp.Targets[1] != "h3" {
		t.Fatalf("g1 targets %+v", resp)
	}
	if resp.Bitboard != "0xa00000" {
		t.Fatalf("g1 bitboard %s", resp.Bitboard)
	}
	do(t, http.MethodGet, ts.URL+"/games/1/targets/e8", "", http.StatusOK, &resp)
	if len(resp.Targets) != 0 {
		t.Fatalf("e8 targets %+v", resp)
	}
	do(t, http.MethodGet, ts.URL+"/games/1/targets/z9", "", http.StatusBadRequest, nil)
}

func TestGameOverConflict(t *testing.T) {
	ts := testServer(t)
	body := `{"fen": "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"}`
	var st State
	do(t, http.MethodPost, ts.URL+"/games", body, http.StatusCreated, &st)
	if st.Status != "loss" {
		t.Fatalf("status %s", st.Status)
	}
	do(t, http.MethodPost, ts.URL+"/games/1/bot", "", http.StatusConflict, nil)
	do(t, http.MethodPost, ts.URL+"/games/1/moves", `{"uci": "e2e4"}`, http.StatusConflict, nil)
}

func TestWebsocketPushesState(t *testing.T) {
	ts := testServer(t)
	do(t, http.MethodPost, ts.URL+"/games", "", http.StatusCreated, nil)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/games/1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var st State
	if err := conn.ReadJSON(&st); err != nil {
		t.Fatal(err)
	}
	if st.ID != 1 || st.LastMove != "" {
		t.Fatalf("initial state %+v", st)
	}

	do(t, http.MethodPost, ts.URL+"/games/1/moves", `{"uci": "d2d4"}`, http.StatusOK, nil)
	if err := conn.ReadJSON(&st); err != nil {
		t.Fatal(err)
	}
	if st.LastMove != "d2d4" {
		t.Fatalf("pushed state %+v", st)
	}

	if err := conn.WriteJSON(socketMessage{UCI: "d7d5"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&st); err != nil {
		t.Fatal(err)
	}
	if st.LastMove != "d7d5" || st.Side != "white" {
		t.Fatalf("state after socket move %+v", st)
	}

	if err := conn.WriteJSON(socketMessage{UCI: "d4d6"}); err != nil {
		t.Fatal(err)
	}
	var serr socketError
	if err := conn.ReadJSON(&serr); err != nil {
		t.Fatal(err)
	}
	if serr.Error == "" {
		t.Fatal("expected an error for an illegal socket move")
	}
}
