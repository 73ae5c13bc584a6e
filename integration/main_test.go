//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

// Full-season smoke test against a running API instance. Start the server
// first, then:
//
//	go test -tags=integration ./integration/
//
// The chat endpoints are exercised only with the canned init message, so
// the suite passes without a working model key.

var (
	baseURL string
	client  = &http.Client{Timeout: 30 * time.Second}
)

func TestMain(m *testing.M) {
	baseURL = os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	fmt.Printf("Running Draft Season integration tests\n   API Base URL: %s\n", baseURL)
	os.Exit(m.Run())
}

func post(t *testing.T, path string, body map[string]interface{}, dst interface{}) int {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			t.Fatalf("decode %s response: %v", path, err)
		}
	}
	return resp.StatusCode
}

func get(t *testing.T, path string, dst interface{}) int {
	t.Helper()
	resp, err := client.Get(baseURL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			t.Fatalf("decode %s response: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	var health struct {
		Status string `json:"status"`
	}
	if code := get(t, "/health", &health); code != http.StatusOK {
		t.Fatalf("health returned %d", code)
	}
	if health.Status != "ok" {
		t.Fatalf("health status %q", health.Status)
	}
}

// TestFullSeason plays a season from the opening storybook to the draft.
func TestFullSeason(t *testing.T) {
	session := fmt.Sprintf("integration-%d", time.Now().UnixNano())

	var created struct {
		State struct {
			SessionID          string `json:"session_id"`
			CurrentMonth       int    `json:"current_month"`
			CurrentStorybookID string `json:"current_storybook_id"`
		} `json:"state"`
	}
	if code := post(t, "/v1/game/state", map[string]interface{}{"session_id": session}, &created); code != http.StatusCreated {
		t.Fatalf("new game returned %d", code)
	}
	if created.State.CurrentMonth != 3 {
		t.Fatalf("new game starts in month %d", created.State.CurrentMonth)
	}

	completeStorybook := func(id string) map[string]interface{} {
		var result map[string]interface{}
		if code := post(t, "/v1/game/storybook/complete", map[string]interface{}{
			"session_id": session, "storybook_id": id,
		}, &result); code != http.StatusOK {
			t.Fatalf("complete %s returned %d", id, code)
		}
		return result
	}

	completeStorybook(created.State.CurrentStorybookID)

	var chat struct {
		Reply string `json:"reply"`
	}
	if code := post(t, "/v1/chat", map[string]interface{}{
		"session_id": session, "message": "init",
	}, &chat); code != http.StatusOK {
		t.Fatalf("init chat returned %d", code)
	}
	if chat.Reply == "" {
		t.Fatal("init chat returned empty reply")
	}

	trainable := map[int]bool{4: true, 6: true, 7: true}
	for month := 3; month < 8; month++ {
		var adv struct {
			NewMonth    int    `json:"new_month"`
			StorybookID string `json:"storybook_id"`
		}
		if code := post(t, "/v1/game/advance", map[string]interface{}{"session_id": session}, &adv); code != http.StatusOK {
			t.Fatalf("advance from month %d returned %d", month, code)
		}
		if adv.NewMonth != month+1 {
			t.Fatalf("advance from month %d landed on %d", month, adv.NewMonth)
		}
		result := completeStorybook(adv.StorybookID)

		if trainable[adv.NewMonth] {
			if code := post(t, "/v1/game/training", map[string]interface{}{
				"session_id": session, "intensity": 50, "focuses": []string{"batting"},
			}, nil); code != http.StatusOK {
				t.Fatalf("training in month %d returned %d", adv.NewMonth, code)
			}
		}

		// The August transition chains into the tournament.
		if next, ok := result["next_storybook_id"].(string); ok && next != "" {
			result = completeStorybook(next)
			if result["next_step"] != "at_bat" {
				t.Fatalf("tournament storybook next_step = %v", result["next_step"])
			}

			var atBat struct {
				Outcome    string `json:"outcome"`
				NextAction string `json:"next_action"`
			}
			if code := post(t, "/v1/game/atbat", map[string]interface{}{
				"session_id": session, "advice": "Stay back on the breaking ball. You've earned this.",
			}, &atBat); code != http.StatusOK {
				t.Fatalf("atbat returned %d", code)
			}
			t.Logf("at-bat outcome: %s", atBat.Outcome)

			if atBat.NextAction == "awaiting_steal_decision" {
				if code := post(t, "/v1/game/steal", map[string]interface{}{
					"session_id": session, "attempt": true,
				}, nil); code != http.StatusOK {
					t.Fatalf("steal returned %d", code)
				}
			}
		}
	}

	// Into September and through the ending.
	var adv struct {
		NewMonth    int    `json:"new_month"`
		StorybookID string `json:"storybook_id"`
	}
	if code := post(t, "/v1/game/advance", map[string]interface{}{"session_id": session}, &adv); code != http.StatusOK {
		t.Fatalf("advance to September returned %d", code)
	}
	result := completeStorybook(adv.StorybookID)
	next, _ := result["next_storybook_id"].(string)
	if next == "" {
		t.Fatal("September transition did not chain to the ending storybook")
	}
	result = completeStorybook(next)
	if result["next_step"] != "ending" {
		t.Fatalf("ending storybook next_step = %v", result["next_step"])
	}
	ending, ok := result["ending"].(map[string]interface{})
	if !ok {
		t.Fatal("no ending in completion result")
	}
	t.Logf("season ending: %v (%v)", ending["id"], ending["title"])

	// The season is closed now.
	if code := post(t, "/v1/game/advance", map[string]interface{}{"session_id": session}, nil); code != http.StatusConflict {
		t.Fatalf("advance after the draft returned %d, want 409", code)
	}
}
