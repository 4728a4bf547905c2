package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"job-scout/internal/domain/job"
)

func TestNewJobScrapedEvent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	evt := NewJobScrapedEvent(job.RawJobRecord{
		JobTitle:    "Go Engineer",
		JobLink:     "https://jobs.lever.co/acme/1",
		CompanyName: job.StringPtr("Acme"),
	}, "lever", now)
	if evt.Type != "job_scraped" || evt.Company != "Acme" || evt.Ready {
		t.Fatalf("unexpected event %+v", evt)
	}
	if evt.Timestamp != "2026-03-01T05:00:00Z" {
		t.Fatalf("expected UTC timestamp, got %s", evt.Timestamp)
	}
}

func waitClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastsToRegisteredClients(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	c := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(c)
	waitClients(t, hub, 1)

	hub.NotifyJobScraped(job.RawJobRecord{JobLink: "https://a", JobTitle: "A", JobDescription: "d"}, "lever")
	select {
	case msg := <-c.send:
		var evt JobScrapedEvent
		if err := json.Unmarshal(msg, &evt); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if evt.JobLink != "https://a" || !evt.Ready || evt.SourceType != "lever" {
			t.Fatalf("unexpected event %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatalf("no broadcast received")
	}
}

func TestHub_NilIsSafe(t *testing.T) {
	var h *Hub
	h.NotifyJobScraped(job.RawJobRecord{JobLink: "x"}, "lever")
	h.Broadcast([]byte("x"))
	if h.ClientCount() != 0 {
		t.Fatalf("nil hub has no clients")
	}
}

func TestHub_SourceFilter(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	lever := &Client{hub: hub, send: make(chan []byte, 2), sources: parseSources("Lever")}
	all := &Client{hub: hub, send: make(chan []byte, 2)}
	hub.Register(lever)
	hub.Register(all)
	waitClients(t, hub, 2)

	hub.NotifyJobScraped(job.RawJobRecord{JobLink: "https://g", JobTitle: "G"}, "greenhouse")
	hub.NotifyJobScraped(job.RawJobRecord{JobLink: "https://l", JobTitle: "L"}, "lever")

	for i := 0; i < 2; i++ {
		select {
		case <-all.send:
		case <-time.After(time.Second):
			t.Fatalf("unfiltered client missed event %d", i)
		}
	}
	select {
	case msg := <-lever.send:
		var evt JobScrapedEvent
		_ = json.Unmarshal(msg, &evt)
		if evt.SourceType != "lever" {
			t.Fatalf("filtered client got %s", evt.SourceType)
		}
	case <-time.After(time.Second):
		t.Fatalf("filtered client missed its event")
	}
	select {
	case msg := <-lever.send:
		t.Fatalf("unexpected extra event %s", msg)
	default:
	}
}

func TestHub_RunStopsAndClosesClients(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	c := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(c)
	waitClients(t, hub, 1)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("hub did not stop")
	}
	if _, ok := <-c.send; ok {
		t.Fatalf("expected closed send channel")
	}
	if hub.ClientCount() != 0 {
		t.Fatalf("expected no clients after stop")
	}
}

func TestOriginAllowed(t *testing.T) {
	allowed := []string{"chrome-extension://*", "https://app.example.com"}
	cases := map[string]bool{
		"":                          true,
		"chrome-extension://abcdef": true,
		"https://APP.example.com":   true,
		"https://evil.example.com":  false,
		"moz-extension://abcdef":    false,
	}
	for origin, want := range cases {
		if got := OriginAllowed(origin, allowed); got != want {
			t.Errorf("OriginAllowed(%q) = %v, want %v", origin, got, want)
		}
	}
	if !OriginAllowed("https://anything", nil) {
		t.Fatalf("empty allow list accepts any origin")
	}
}
