package services

import (
	"fmt"
	"strings"

	"ideaboard-backend/internal/types"
)

const generationSystemPrompt = `You are a content strategist for a solo video creator.
Reply only in plain text using the exact line markers you are asked for.
Do not use markdown headings or code fences.`

func buildGenerationPrompt(niche, tool, tutorialType, refinement string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Propose %d video ideas", count)
	if niche != "" {
		fmt.Fprintf(&b, " in the %q niche", niche)
	}
	if tool != "" {
		fmt.Fprintf(&b, " using %s", tool)
	}
	if tutorialType != "" {
		fmt.Fprintf(&b, " as %s content", tutorialType)
	}
	b.WriteString(".\n")
	if refinement != "" {
		fmt.Fprintf(&b, "Additional direction: %s\n", refinement)
	}
	b.WriteString(`
Start with one line:
STRATEGY: <one sentence on the overall angle>

Then for each idea exactly three lines:
IDEA: <video title>
KEYWORDS: <comma separated search keywords>
RATIONALE: <one sentence on why this idea can work>`)
	return b.String()
}

func buildExpansionPrompt(idea *types.Idea, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Take this video idea and spin off %d more specific variations of it:\n", count)
	fmt.Fprintf(&b, "Title: %s\n", idea.Text)
	if idea.Niche != "" {
		fmt.Fprintf(&b, "Niche: %s\n", idea.Niche)
	}
	if idea.Tool != "" {
		fmt.Fprintf(&b, "Tool: %s\n", idea.Tool)
	}
	if idea.Rationale != "" {
		fmt.Fprintf(&b, "Original rationale: %s\n", idea.Rationale)
	}
	b.WriteString(`
For each variation exactly three lines:
IDEA: <video title>
KEYWORDS: <comma separated search keywords>
RATIONALE: <one sentence on why this variation stands on its own>`)
	return b.String()
}

func buildKeywordPrompt(idea *types.Idea) string {
	var b strings.Builder
	b.WriteString("Research the search keywords a viewer would actually type to find this video:\n")
	fmt.Fprintf(&b, "Title: %s\n", idea.Text)
	if idea.Niche != "" {
		fmt.Fprintf(&b, "Niche: %s\n", idea.Niche)
	}
	b.WriteString(`
Use current search data where available. Reply with one line per keyword:
KEYWORD: <keyword phrase>`)
	return b.String()
}

func buildTitlePrompt(idea *types.Idea) string {
	var b strings.Builder
	b.WriteString("Propose 5 stronger titles for this video idea:\n")
	fmt.Fprintf(&b, "Current title: %s\n", idea.Text)
	if idea.Niche != "" {
		fmt.Fprintf(&b, "Niche: %s\n", idea.Niche)
	}
	if len(idea.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", string(idea.Keywords))
	}
	b.WriteString(`
Reply with one line per candidate:
SUGGESTION: <title> | RATIONALE: <why this title pulls clicks>`)
	return b.String()
}

func buildScriptPrompt(idea *types.Idea, durationMinutes int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a %d minute video script for:\n", durationMinutes)
	fmt.Fprintf(&b, "Title: %s\n", idea.Text)
	if idea.Niche != "" {
		fmt.Fprintf(&b, "Niche: %s\n", idea.Niche)
	}
	if idea.Tool != "" {
		fmt.Fprintf(&b, "Tool: %s\n", idea.Tool)
	}
	b.WriteString(`
Structure the reply in exactly three delimited blocks:
=== SCRIPT ===
<the full spoken script>
=== PRODUCTION NOTES ===
<shot list, b-roll and editing notes>
=== RESOURCES ===
<one resource link or reference per line>`)
	return b.String()
}

func buildAnglePrompt(idea *types.Idea, videos []types.CompetingVideo) string {
	var b strings.Builder
	b.WriteString("Suggest a competitive angle for this video idea given what already ranks:\n")
	fmt.Fprintf(&b, "Title: %s\n", idea.Text)
	if len(videos) == 0 {
		b.WriteString("No competing videos were found.\n")
	} else {
		b.WriteString("Competing videos:\n")
		for _, v := range videos {
			fmt.Fprintf(&b, "- %q by %s (%s views, published %s)\n",
				v.Title, v.Channel, v.ViewCountText, v.PublishedText)
		}
	}
	b.WriteString("\nReply with two or three plain sentences. No markers, no lists.")
	return b.String()
}
