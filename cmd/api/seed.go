package main

import (
	"time"

	"github.com/google/uuid"

	"ideaboard/internal/ideas"
)

// seedLocalIdeas returns a small catalog of demo ideas for local development.
func seedLocalIdeas() []ideas.Idea {
	now := time.Now().UTC()

	score := func(s int) *int { return &s }

	return []ideas.Idea{
		{
			ID:                   uuid.New(),
			Title:                "AI-powered meal planner that uses what's already in your fridge",
			URL:                  "https://reddit.com/r/startup_ideas/demo-1",
			Content:              "Tired of apps that assume you shop for every recipe. Scan your fridge, get a week of meals.",
			SourceSubreddit:      "startup_ideas",
			DateOfPost:           "2024-04-12",
			Introduction:         "A meal planning assistant that builds menus from the groceries users already own.",
			ImplementationPlan:   "Start with receipt import and manual inventory; add a vision model for fridge scans later.",
			MarketAnalysis:       "Competes with Mealime and Paprika, neither of which solves the inventory problem.",
			UserComments:         "Commenters repeatedly asked for waste tracking and price comparison.",
			Innovation:           score(7),
			Quality:              score(8),
			ProblemSignificance:  score(6),
			EngagementScore:      score(7),
			ReasoningBehindScore: "Strong engagement and a real pain point, but vision-based inventory is hard.",
			AdviceForImprovement: "Validate with manual inventory entry before investing in computer vision.",
			CreatedAt:            now.Add(-72 * time.Hour),
			UpdatedAt:            now.Add(-24 * time.Hour),
		},
		{
			ID:                   uuid.New(),
			Title:                "Marketplace for renting out idle 3D printers",
			URL:                  "https://reddit.com/r/SomebodyMakeThis/demo-2",
			Content:              "Thousands of hobbyist printers sit unused. Let owners rent capacity to local makers.",
			SourceSubreddit:      "SomebodyMakeThis",
			DateOfPost:           "2024-04-18",
			Introduction:         "A two-sided marketplace matching 3D printer owners with people who need one-off prints.",
			ImplementationPlan:   "Launch in one metro area with manual matching, then automate quoting from STL uploads.",
			MarketAnalysis:       "Craftcloud and Treatstock serve businesses; the hobbyist peer-to-peer niche is open.",
			UserComments:         "Concerns centered on quality control and shipping fragile prints.",
			Innovation:           score(6),
			Quality:              score(5),
			ProblemSignificance:  score(5),
			EngagementScore:      score(8),
			ReasoningBehindScore: "High thread engagement, though unit economics for small prints are thin.",
			AdviceForImprovement: "Add an escrow and reprint policy to address the quality concerns early.",
			CreatedAt:            now.Add(-48 * time.Hour),
			UpdatedAt:            now.Add(-24 * time.Hour),
		},
		{
			ID:              uuid.New(),
			Title:           "Browser extension that summarizes terms of service before signup",
			URL:             "https://reddit.com/r/startup_ideas/demo-3",
			Content:         "Nobody reads ToS. Flag the clauses that actually matter: data resale, arbitration, auto-renewal.",
			SourceSubreddit: "startup_ideas",
			DateOfPost:      "2024-05-02",
			CreatedAt:       now.Add(-12 * time.Hour),
			UpdatedAt:       now.Add(-12 * time.Hour),
		},
	}
}
