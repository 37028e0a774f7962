package ai

import (
	"fmt"
	"strings"
)

const systemInstruction = `You are a market analyst for indie software founders.
You assess app and SaaS niche ideas honestly and concisely.
Answer in Markdown with the sections: Verdict, Demand, Competition, Monetization, Risks, Next steps.
The Verdict line must start with one of: Promising, Mixed, Weak.`

// ValidationPrompt renders the user prompt for a niche validation request.
func ValidationPrompt(idea, targetMarket string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Idea: %s\n", strings.TrimSpace(idea))
	if tm := strings.TrimSpace(targetMarket); tm != "" {
		fmt.Fprintf(&sb, "Target market: %s\n", tm)
	}
	sb.WriteString("Assess this niche.")
	return sb.String()
}
