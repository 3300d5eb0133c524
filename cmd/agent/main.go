package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/HamzaHassanain/Interviewer-AIi/internal/agent"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/bridge"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/capture"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/config"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/convo"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/events"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/mic"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/player"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/session"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/store"
)

// The agent CLI stands in for the page-embedded UI: one trigger control
// driven by "click" lines on stdin, state echoed back as it changes.
func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg := config.Load()
	ctx := context.Background()

	st, err := store.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer func() { _ = st.Close() }()

	client := bridge.NewClient(cfg.BridgeURL)
	if err := client.Connect(ctx); err != nil {
		log.Fatalf("connect bridge: %v", err)
	}
	defer func() { _ = client.Close() }()

	sink := events.LogSink{}
	machine := session.NewMachine(sink.StateChanged)
	pipeline := capture.New(machine, mic.New(), sink, capture.DefaultConfig())
	coord := convo.NewCoordinator(machine, client, st, player.NewBeep(), sink)
	a := agent.New(machine, pipeline, coord, client, st, sink)

	if a.Resume(ctx) {
		log.Printf("resuming active interview session")
	}

	if err := pipeline.RequestPermission(ctx); err != nil {
		log.Printf("microphone check failed: %v", err)
	}

	fmt.Println("commands: start <title> <url> | click | stop | quit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "start":
			title, url := "Two Sum", "https://leetcode.com/problems/two-sum/"
			if len(fields) > 1 {
				title = fields[1]
			}
			if len(fields) > 2 {
				url = fields[2]
			}
			if err := a.StartInterview(ctx, title, url); err != nil {
				log.Printf("start interview: %v", err)
			}
		case "click":
			a.HandleClick(ctx)
		case "stop":
			a.StopInterview(ctx)
		case "quit":
			a.StopInterview(ctx)
			return
		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("stdin: %v", err)
	}
}
