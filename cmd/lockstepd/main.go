// Command lockstepd runs a minimal two-peer lockstep session over
// websockets: one process hosts a room, the others dial in and join. It
// exists to exercise the full wiring (transport, network service,
// lockstep engine, logging) end to end; it synthesizes an empty command
// for the local player every tick rather than reading real input.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lockstepd/command"
	"lockstepd/inputbuffer"
	"lockstepd/internal/transport/wstransport"
	"lockstepd/lockstep"
	"lockstepd/logging"
	"lockstepd/logging/sinks"
	"lockstepd/network"
	"lockstepd/simulation"
	"lockstepd/worldstate"
)

const maxSnapshots = 64

func main() {
	var (
		mode       string
		addr       string
		playerID   int
		playerCnt  int
		playerName string
		logFile    string
	)
	flag.StringVar(&mode, "mode", "host", "host or join")
	flag.StringVar(&addr, "addr", ":8787", "listen address (host) or ws:// url (join)")
	flag.IntVar(&playerID, "player-id", 1, "player id to claim when joining")
	flag.IntVar(&playerCnt, "players", 2, "number of players in the room (host only)")
	flag.StringVar(&playerName, "name", "player", "display name announced on join")
	flag.StringVar(&logFile, "log-file", "", "also write newline-delimited JSON events to this path")
	flag.Parse()

	router, err := newLogRouter(logFile)
	if err != nil {
		log.Fatalf("lockstepd: logging setup: %v", err)
	}
	defer router.Close(context.Background())

	registry := command.NewRegistry()
	factories := worldstate.NewFactoryRegistry()
	sim := simulation.New(factories, maxSnapshots, int64(lockstep.DefaultConfig().TickIntervalMs))
	buffer := inputbuffer.New()
	predictor := inputbuffer.NewPredictor()
	config := lockstep.DefaultConfig()

	engine := lockstep.New(sim, buffer, predictor, nil, router, config)
	wst := wstransport.New()
	netSvc := network.New(wst, registry, engine, logging.ClockFunc(time.Now), router)
	engine.SetNetwork(netSvc)

	var localPlayerID int32
	switch mode {
	case "host":
		localPlayerID = 0
	case "join":
		localPlayerID = int32(playerID)
	default:
		log.Fatalf("lockstepd: unknown -mode %q, want host or join", mode)
	}

	// The engine is parked in WaitingForPlayers until GameStart arrives, so
	// both the host (which decides the parameters) and a joining peer
	// (which only learns them off the wire) bootstrap the same way: this
	// callback is the single place either side calls Initialize/Start/
	// BeginRun, never before the room is actually full and ready.
	netSvc.SetOnGameStart(func(seed, tickIntervalMs, inputDelayTicks int32, playerIDs []int32) {
		if err := engine.Initialize(localPlayerID, int32(len(playerIDs)), uint32(seed)); err != nil {
			log.Fatalf("lockstepd: initialize: %v", err)
		}
		if err := engine.Start(false); err != nil {
			log.Fatalf("lockstepd: start: %v", err)
		}
		if err := engine.BeginRun(); err != nil {
			log.Fatalf("lockstepd: begin run: %v", err)
		}
	})

	switch mode {
	case "host":
		netSvc.CreateRoom(playerName, playerCnt)
		netSvc.SetGameParams(int32(time.Now().UnixNano()), int32(config.TickIntervalMs), int32(config.InputDelayTicks))
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", wst.Handler)
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Fatalf("lockstepd: listen: %v", err)
			}
		}()
		if err := netSvc.SendReady(true); err != nil {
			log.Fatalf("lockstepd: send ready: %v", err)
		}
	case "join":
		if _, err := wst.Dial(addr); err != nil {
			log.Fatalf("lockstepd: dial %s: %v", addr, err)
		}
		if err := netSvc.JoinRoom(localPlayerID, playerName); err != nil {
			log.Fatalf("lockstepd: join room: %v", err)
		}
		if err := netSvc.SendReady(true); err != nil {
			log.Fatalf("lockstepd: send ready: %v", err)
		}
	}

	runLoop(engine, netSvc, localPlayerID, config.TickIntervalMs)
}

// newLogRouter wires a console sink plus, when logFile is non-empty, a
// newline-delimited JSON sink writing to that path — the only caller that
// ever sets JSONConfig.FilePath, since the core packages stay free of
// os.Getenv/flag parsing.
func newLogRouter(logFile string) (*logging.Router, error) {
	cfg := logging.DefaultConfig()
	named := []logging.NamedSink{
		{Name: "console", Sink: sinks.NewConsoleSink(os.Stdout, cfg.Console)},
	}

	if logFile != "" {
		cfg.EnabledSinks = append(cfg.EnabledSinks, "json")
		cfg.JSON.FilePath = logFile
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		named = append(named, logging.NamedSink{Name: "json", Sink: sinks.NewJSON(f, cfg.JSON.FlushInterval)})
	}

	return logging.NewRouter(logging.ClockFunc(time.Now), cfg, named)
}

// runLoop drives the engine and network service at the configured tick
// rate until interrupted, synthesizing one empty input per tick so the
// session advances without a real input source.
func runLoop(engine *lockstep.Engine, netSvc *network.Service, localPlayerID int32, tickIntervalMs uint32) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(tickIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-sigCh:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			netSvc.Poll(ctx)
			switch engine.State() {
			case lockstep.Running, lockstep.Paused:
				if err := engine.InputCommand(command.NewEmpty(localPlayerID, engine.CurrentTick())); err != nil {
					log.Printf("lockstepd: input command: %v", err)
				}
				engine.Update(ctx, dt)
			}
		}
	}
}
