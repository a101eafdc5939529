package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geocoder89/devevents/internal/domain/event"
)

type EventCreator interface {
	Create(ctx context.Context, req event.CreateEventRequest) (event.Event, error)
}

// SeedEvents creates each event through the normal write path. Events whose
// slug is already taken are skipped, so seeding is safe to repeat.
func SeedEvents(ctx context.Context, creator EventCreator, events []event.CreateEventRequest) (created int, err error) {
	for _, req := range events {
		e, err := creator.Create(ctx, req)

		if errors.Is(err, event.ErrDuplicateSlug) {
			slog.Default().DebugContext(ctx, "seed event exists", "title", req.Title)
			continue
		}

		if err != nil {
			return created, fmt.Errorf("seed %q: %w", req.Title, err)
		}

		slog.Default().InfoContext(ctx, "seeded event", "slug", e.Slug, "id", e.ID)
		created++
	}

	return created, nil
}

// SampleEvents is the catalogue loaded when SEED_EVENTS is on. Dates and
// times are deliberately in mixed formats; they are normalized on create.
var SampleEvents = []event.CreateEventRequest{
	{
		Title:       "React Summit US 2025",
		Description: "The biggest React conference in the US, with talks on server components, performance and the future of the ecosystem.",
		Overview:    "Two days of React talks, workshops and networking.",
		Image:       "/images/event1.png",
		Venue:       "The Westin St. Francis",
		Location:    "San Francisco, CA, USA",
		Date:        "November 7, 2025",
		Time:        "9:00 AM",
		Mode:        event.ModeHybrid,
		Audience:    "Frontend engineers and React developers",
		Agenda:      []string{"Keynote", "Server components deep dive", "Performance panel", "Lightning talks"},
		Organizer:   "GitNation",
		Tags:        []string{"react", "javascript", "frontend"},
	},
	{
		Title:       "KubeCon + CloudNativeCon Europe 2026",
		Description: "The flagship gathering of the cloud native community, covering Kubernetes, observability, platform engineering and security.",
		Overview:    "Cloud native talks, maintainer sessions and an expo hall.",
		Image:       "/images/event2.png",
		Venue:       "RAI Amsterdam",
		Location:    "Amsterdam, Netherlands",
		Date:        "2026-03-23",
		Time:        "08:30",
		Mode:        event.ModeOffline,
		Audience:    "Platform, SRE and infrastructure engineers",
		Agenda:      []string{"Opening keynotes", "Maintainer track", "Observability day", "Closing panel"},
		Organizer:   "CNCF",
		Tags:        []string{"kubernetes", "cloud", "devops"},
	},
	{
		Title:       "GopherCon 2025",
		Description: "A conference for Go developers with talks on the runtime, tooling, generics and building services at scale.",
		Overview:    "Talks, workshops and community day for Gophers.",
		Image:       "/images/event3.png",
		Venue:       "Hyatt Regency",
		Location:    "New York, NY, USA",
		Date:        "08/26/2025",
		Time:        "10:00 AM",
		Mode:        event.ModeHybrid,
		Audience:    "Go developers",
		Agenda:      []string{"Workshops", "Runtime internals", "Community day"},
		Organizer:   "GoBridge",
		Tags:        []string{"go", "backend", "cloud"},
	},
	{
		Title:       "AI Engineer World's Fair",
		Description: "Practitioners share what works when shipping LLM features: evals, agents, retrieval and inference infrastructure.",
		Overview:    "Hands-on AI engineering talks and expo.",
		Image:       "/images/event4.png",
		Venue:       "Moscone West",
		Location:    "San Francisco, CA, USA",
		Date:        "June 3, 2026",
		Time:        "1:30 PM",
		Mode:        event.ModeOffline,
		Audience:    "Software engineers building with AI",
		Agenda:      []string{"Evals workshop", "Agents track", "Inference infra panel"},
		Organizer:   "AI Engineer",
		Tags:        []string{"ai", "llm", "backend"},
	},
	{
		Title:       "Hack the Mountains 5.0",
		Description: "A 36-hour online hackathon for students and early-career developers, with mentors and prizes across several tracks.",
		Overview:    "Build something in 36 hours with mentors on hand.",
		Image:       "/images/event5.png",
		Venue:       "Online",
		Location:    "Worldwide",
		Date:        "2025-12-05",
		Time:        "18:00",
		Mode:        event.ModeOnline,
		Audience:    "Students and new developers",
		Agenda:      []string{"Kickoff", "Hacking", "Mentor hours", "Demos and judging"},
		Organizer:   "Hack the Mountains",
		Tags:        []string{"hackathon", "students", "frontend"},
	},
}
