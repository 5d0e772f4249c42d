package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"
)

// Event matches models.Event (simplified)
type Event struct {
	Type     string   `json:"type"`
	Player   string   `json:"player,omitempty"`
	Attacker string   `json:"attacker,omitempty"`
	Victim   string   `json:"victim,omitempty"`
	Entity   string   `json:"entity,omitempty"`
	Amount   int64    `json:"amount,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

var players = []string{"Alex", "Bea", "Cal", "Dana", "Eli"}

func main() {
	apiURL := flag.String("url", "http://localhost:8080/api/v1/ingest/events", "ingest endpoint")
	token := flag.String("token", "seed-secret-123", "server token")
	count := flag.Int("events", 200, "random events to send after the joins")
	flag.Parse()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, p := range players {
		enc.Encode(Event{Type: "player_join", Player: p, Tags: []string{"player"}})
	}
	for i := 0; i < *count; i++ {
		enc.Encode(randomEvent(rng))
	}

	// The handler splits the body by newline, one JSON object per line.
	req, err := http.NewRequest("POST", *apiURL, &buf)
	if err != nil {
		log.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	req.Header.Set("X-Server-Token", *token)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %s\n", resp.Status)
	fmt.Printf("Response: %s\n", string(body))

	if resp.StatusCode == http.StatusAccepted {
		fmt.Println("Injection successful")
	} else {
		fmt.Println("Injection failed")
	}
}

func randomEvent(rng *rand.Rand) Event {
	player := players[rng.Intn(len(players))]
	switch rng.Intn(5) {
	case 0:
		attacker := players[rng.Intn(len(players))]
		return Event{Type: "player_kill", Attacker: attacker, Victim: player}
	case 1:
		return Event{Type: "mob_kill", Player: player, Entity: "zombie"}
	case 2:
		return Event{Type: "block_break", Player: player, Amount: int64(1 + rng.Intn(4))}
	case 3:
		return Event{Type: "block_place", Player: player, Amount: int64(1 + rng.Intn(4))}
	default:
		return Event{Type: "money", Player: player, Amount: int64(rng.Intn(50))}
	}
}
