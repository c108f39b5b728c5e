// Simulation feed for the egress coordinator.
// Registers simulated occupants over REST, streams their movement over
// the guidance websocket, and optionally injects a spreading fire so
// routes visibly detour. Useful for manual end-to-end runs:
//
//	go run ./cmd/simfeed -server localhost:8090 -occupants 8 -fire
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/egresslab/go-egress/internal/httpc"
	"github.com/egresslab/go-egress/pkg/geometry"
	"github.com/egresslab/go-egress/pkg/guidance"
	"github.com/egresslab/go-egress/pkg/hazard"
	"github.com/egresslab/go-egress/pkg/occupancy"
	"github.com/egresslab/go-egress/pkg/protocol"
)

func main() {
	server := flag.String("server", "localhost:8090", "coordinator host:port")
	count := flag.Int("occupants", 5, "number of simulated occupants")
	rate := flag.Duration("rate", 500*time.Millisecond, "position update period")
	speed := flag.Float64("speed", 1.2, "walking speed m/s")
	fire := flag.Bool("fire", false, "inject a spreading fire")
	width := flag.Int("width", 50, "grid width in cells")
	height := flag.Int("height", 50, "grid height in cells")
	flag.Parse()

	base := "http://" + *server

	fmt.Println("🏃 Egress simulation feed")
	fmt.Printf("   Server: %s\n", *server)
	fmt.Printf("   Occupants: %d, rate %v\n", *count, *rate)

	if err := setupBuilding(base, *width, *height); err != nil {
		fmt.Printf("❌ Building setup failed: %v\n", err)
		os.Exit(1)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < *count; i++ {
		start := geometry.Vector3{
			X: rand.Float64() * float64(*width-1),
			Z: rand.Float64() * float64(*height-1),
		}
		wg.Add(1)
		go func(n int, start geometry.Vector3) {
			defer wg.Done()
			runOccupant(base, *server, fmt.Sprintf("sim-%d", n), start, *speed, *rate, stop)
		}(i, start)
	}

	if *fire {
		wg.Add(1)
		go func() {
			defer wg.Done()
			spreadFire(base, *width, *height, stop)
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	fmt.Println("\n👋 Stopping simulation...")
	close(stop)
	wg.Wait()
}

// setupBuilding configures the grid and two exits in opposite corners.
func setupBuilding(base string, width, height int) error {
	resp, err := httpc.PutJSON(base+"/api/building", protocol.BuildingConfigRequest{
		Width:  width,
		Height: height,
	})
	if err != nil {
		return err
	}
	resp.Body.Close()

	exits := map[string]protocol.ExitUpdateRequest{
		"east": {
			Position: geometry.Vector3{X: float64(width - 1), Z: float64(height / 2)},
			Status:   occupancy.ExitClear,
			Capacity: 30,
		},
		"west": {
			Position: geometry.Vector3{X: 0, Z: float64(height / 2)},
			Status:   occupancy.ExitClear,
			Capacity: 30,
		},
	}
	for id, exit := range exits {
		resp, err := httpc.PutJSON(base+"/api/exits/"+id, exit)
		if err != nil {
			return err
		}
		resp.Body.Close()
	}
	return nil
}

// runOccupant registers one occupant, connects its guidance stream, and
// walks it along whatever route the coordinator sends.
func runOccupant(base, server, id string, pos geometry.Vector3, speed float64, rate time.Duration, stop <-chan struct{}) {
	resp, err := httpc.PostJSON(base+"/api/occupants", protocol.RegisterRequest{
		OccupantID:      id,
		InitialPosition: pos,
	})
	if err != nil {
		fmt.Printf("❌ [%s] register failed: %v\n", id, err)
		return
	}
	resp.Body.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+server+"/ws/guidance/"+id, nil)
	if err != nil {
		fmt.Printf("❌ [%s] websocket dial failed: %v\n", id, err)
		return
	}
	defer conn.Close()

	// Shared target, updated by the reader as guidance arrives
	var (
		mu     sync.Mutex
		target *geometry.Vector3
		done   bool
	)

	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			msg, err := protocol.ParseMessage(data)
			if err != nil {
				continue
			}
			switch msg.Type {
			case protocol.TypeRouteUpdate:
				var payload guidance.Payload
				if err := msg.ParseData(&payload); err != nil {
					continue
				}
				if payload.Visualization == nil || len(payload.Visualization.PathLine) < 2 {
					continue
				}
				next := payload.Visualization.PathLine[1]
				mu.Lock()
				target = &next
				mu.Unlock()
			case protocol.TypeEvacuationComplete:
				fmt.Printf("✅ [%s] evacuated\n", id)
				mu.Lock()
				done = true
				mu.Unlock()
			}
		}
	}()

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			mu.Lock()
			if done {
				mu.Unlock()
				return
			}
			t := target
			mu.Unlock()
			if t == nil {
				continue
			}

			pos = stepToward(pos, *t, speed*rate.Seconds())
			heading := geometry.Bearing(pos, *t)
			update, err := protocol.NewMessage(protocol.TypePositionUpdate, protocol.PositionUpdateRequest{
				Position: pos,
				Heading:  &heading,
				Speed:    &speed,
			})
			if err != nil {
				continue
			}
			data, err := update.Bytes()
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}

// stepToward advances pos toward target by at most step meters.
func stepToward(pos, target geometry.Vector3, step float64) geometry.Vector3 {
	dist := geometry.Distance(pos, target)
	if dist <= step || dist == 0 {
		return target
	}
	f := step / dist
	return geometry.Vector3{
		X: geometry.Lerp(pos.X, target.X, f),
		Y: geometry.Lerp(pos.Y, target.Y, f),
		Z: geometry.Lerp(pos.Z, target.Z, f),
	}
}

// spreadFire grows a fire blob from the grid center, one ring every few
// seconds, until it caps out.
func spreadFire(base string, width, height int, stop <-chan struct{}) {
	cx, cy := width/2, height/2
	radius := 0

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if radius > 6 {
				return
			}
			cells := make(map[string]*hazard.Cell)
			for x := cx - radius; x <= cx+radius; x++ {
				for y := cy - radius; y <= cy+radius; y++ {
					d := math.Hypot(float64(x-cx), float64(y-cy))
					if d > float64(radius) {
						continue
					}
					// Hotter toward the center, smoke on the fringe
					intensity := geometry.Clamp(5-d, 1, 5)
					key := hazard.CellKey{X: x, Y: y}
					cells[key.String()] = &hazard.Cell{
						Fire:  &hazard.Fire{Intensity: intensity},
						Smoke: &hazard.Smoke{Intensity: geometry.Clamp(intensity+1, 0, 5)},
					}
				}
			}
			resp, err := httpc.PostJSON(base+"/api/hazards", protocol.HazardUpdateRequest{Cells: cells})
			if err != nil {
				fmt.Printf("❌ fire update failed: %v\n", err)
				continue
			}
			resp.Body.Close()
			fmt.Printf("🔥 fire radius %d (%d cells)\n", radius, len(cells))
			radius++
		}
	}
}
