// Dev tool: connect to the balance feed and print every update.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	id := flag.Int64("id", 0, "telegram id to follow")
	flag.Parse()

	if *id == 0 {
		log.Fatal("-id is required")
	}

	url := fmt.Sprintf("ws://%s/api/v1/ws/%d", *addr, *id)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer conn.Close()

	log.Printf("connected to %s", url)

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			log.Println("read error:", err)
			return
		}

		var pretty map[string]any
		if err := json.Unmarshal(p, &pretty); err != nil {
			log.Printf("Received (raw):\n%s\n", p)
			continue
		}
		out, _ := json.MarshalIndent(pretty, "", "  ")
		log.Printf("Received:\n%s\n", out)
	}
}
