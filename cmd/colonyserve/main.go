// Command colonyserve runs the simulation headless and streams frame
// state to browser clients over websockets. It is a reference
// presentation layer: it reads the state export once per frame and
// forwards food-placement clicks into the simulation, nothing more.
package main

import (
	"flag"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/game"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Client wraps a websocket connection with a write lock.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *Client) Send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// inbound is a client-to-server message. Only place_food is understood;
// everything else is acknowledged and dropped.
type inbound struct {
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Amount float64 `json:"amount"`
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	fps := flag.Int("fps", 30, "Simulation ticks (and broadcast frames) per second")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("config: %v", err)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	g := game.NewGameWithOptions(game.Options{Seed: rngSeed})
	defer g.Unload()

	clients := make(map[*Client]struct{})
	clientsMu := sync.Mutex{}

	// Tick loop: advance the simulation and broadcast one frame per tick.
	go func() {
		ticker := time.NewTicker(time.Second / time.Duration(*fps))
		defer ticker.Stop()
		for range ticker.C {
			g.Step()

			clientsMu.Lock()
			if len(clients) == 0 {
				clientsMu.Unlock()
				continue
			}
			list := make([]*Client, 0, len(clients))
			for c := range clients {
				list = append(list, c)
			}
			clientsMu.Unlock()

			frame := g.Export()
			for _, c := range list {
				if err := c.Send(frame); err != nil {
					log.Printf("client send error: %v", err)
					clientsMu.Lock()
					delete(clients, c)
					clientsMu.Unlock()
					c.conn.Close()
				}
			}
		}
	}()

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}
		client := &Client{conn: conn}
		clientsMu.Lock()
		clients[client] = struct{}{}
		clientsMu.Unlock()

		cfg := config.Cfg()
		_ = client.Send(map[string]interface{}{
			"type": "config",
			"w":    cfg.World.Width,
			"h":    cfg.World.Height,
		})

		for {
			var msg inbound
			if err := conn.ReadJSON(&msg); err != nil {
				break
			}
			switch msg.Type {
			case "place_food":
				amount := msg.Amount
				if amount == 0 {
					amount = 1000
				}
				g.PlaceFood(float32(msg.X), float32(msg.Y), float32(amount))
			default:
			}
		}

		clientsMu.Lock()
		delete(clients, client)
		clientsMu.Unlock()
		conn.Close()
	})

	http.Handle("/", http.FileServer(http.Dir("static")))

	log.Printf("listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
