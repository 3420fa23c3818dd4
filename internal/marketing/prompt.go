package marketing

import (
	"fmt"
	"strings"

	"marketing-studio/internal/generation"
)

// Prompt is one text generation request. Text-only prompts leave System empty.
type Prompt struct {
	System    string
	Text      string
	Schema    *generation.Schema
	UseSearch bool
}

func (p Prompt) Options() generation.TextOptions {
	return generation.TextOptions{
		SystemInstruction: p.System,
		Schema:            p.Schema,
		UseSearch:         p.UseSearch,
	}
}

// BuildPrompt is deterministic in its inputs. Field values are interpolated
// verbatim; only responses are filtered.
func BuildPrompt(ct ContentType, in Inputs) (Prompt, error) {
	spec, ok := typeSpecs[ct]
	if !ok {
		return Prompt{}, &ConfigError{ContentType: ct}
	}
	p := spec.build(in)
	p.Text = strings.TrimSpace(p.Text)
	p.UseSearch = ct == TrendAnalysis
	if ct == AdPoster {
		p.Schema = PosterSchema()
	}
	return p, nil
}

const refineSystem = `You are an expert content editor and copywriter. Your task is to refine and rewrite the provided text based on a specific user instruction.
Return only the refined text, without any additional commentary, introductory phrases, or markdown formatting. The output should be ready to be used directly.`

// RefinePrompt embeds the instruction and the original text verbatim.
func RefinePrompt(original TextContent, instruction string) Prompt {
	var b strings.Builder
	b.WriteString("Please refine the following text based on my instruction.\n\n")
	writeFenced(&b, "**INSTRUCTION:**", instruction)
	writeFenced(&b, "**ORIGINAL TEXT:**", string(original))
	b.WriteString("**REFINED TEXT:**")

	return Prompt{System: refineSystem, Text: b.String()}
}

const summaryExcerptRunes = 1000

// SummaryImagePrompt asks for a one-sentence abstract art description of the
// first 1000 characters of text.
func SummaryImagePrompt(text string) string {
	var b strings.Builder
	b.WriteString("Summarize the following marketing content into a single, concise sentence that describes an abstract, professional, digital art image. ")
	b.WriteString("This sentence will be used as a prompt for an AI image generator to create a visual representation of the content's core theme and tone. ")
	b.WriteString("Do not include any introductory phrases.\n\n")
	writeFenced(&b, "CONTENT:", truncateRunes(text, summaryExcerptRunes))
	return strings.TrimSpace(b.String())
}

// PosterImagePrompt turns a concept into the image request for the poster art.
func PosterImagePrompt(in Inputs, concept Concept) string {
	prompt := fmt.Sprintf("%s. The poster should be for a %s and reflect a %s brand personality. The overall style should be %s. Do not include any text in the image.",
		strings.TrimRight(strings.TrimSpace(concept.VisualConcept), "."), in.BusinessType, in.BrandPersonality, in.DesignStyle)
	if neg := strings.TrimSpace(in.NegativePrompt); neg != "" {
		prompt += fmt.Sprintf(" Do not include: %s.", neg)
	}
	return prompt
}

// PosterSummaryText is the text the poster's summary image is derived from.
func PosterSummaryText(concept Concept) string {
	return fmt.Sprintf("Poster concept for '%s'. Headline: '%s'. It's about %s", concept.Campaign, concept.Headline, concept.VisualConcept)
}

func socialPrompt(in Inputs) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Create engaging social media captions for %s promoting %s for %s with %s tone.\n\n",
		in.Platform, in.CampaignObjective, in.BusinessType, in.BrandPersonality)

	writeSection(&b, "REQUIREMENTS", []string{
		"Platform-specific optimization for " + in.Platform,
		"Include 3 caption variations (short, medium, long)",
		"Add relevant hashtags (5-8 per variation)",
		"Incorporate trending audio/sound references if applicable",
		"Include clear call-to-action",
		"Adapt for " + in.BrandPersonality + " tone",
	})
	writeSection(&b, "PLATFORM SPECIFICS", []string{
		"Instagram: Carousel captions, Reels hooks, Story engagement",
		"TikTok: Viral hooks, trending sounds, duet challenges",
		"Twitter: Thread starters, engagement questions",
		"Facebook: Community-building, shareable content",
		"LinkedIn: Professional tone, industry insights",
	})
	writeFormat(&b, [][2]string{
		{"Platform", in.Platform},
		{"Primary Caption", "[2-3 sentences with hook]"},
		{"Alternative Versions", "[2 additional variations]"},
		{"Hashtags", "[Platform-optimized mix]"},
		{"CTA", "[Clear action instruction]"},
		{"Trending Elements", "[Current viral references]"},
	})
	writeContext(&b, [][2]string{
		{"Business Type", in.BusinessType},
		{"Product/Service", in.CampaignObjective},
		{"Brand Voice", in.BrandPersonality},
		{"Target Audience", in.TargetAudience},
	})
	writeAdditional(&b, in)

	return Prompt{
		System: "You are a viral social media strategist and content creator with expertise across all platforms.",
		Text:   b.String(),
	}
}

func posterPrompt(in Inputs) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a complete advertising poster concept for a business of type \"%s\" promoting \"%s\".\n\n",
		in.BusinessType, in.CampaignObjective)

	details := []string{
		"Design Style: " + in.DesignStyle,
		"Target Audience: " + in.TargetAudience,
		"Campaign Goal: " + in.CampaignObjective,
		"Brand Voice: " + in.BrandPersonality,
		"Campaign Name: " + in.CampaignName,
		"Urgency Level: " + in.Urgency,
	}
	if neg := strings.TrimSpace(in.NegativePrompt); neg != "" {
		details = append(details, "Negative Prompt (exclusions for the visual): "+in.NegativePrompt)
	}
	if strings.TrimSpace(in.AdditionalInfo) != "" {
		details = append(details, "Additional Information: "+in.AdditionalInfo)
	}
	writeSection(&b, "USE THE FOLLOWING DETAILS", details)

	b.WriteString("THE CONCEPT SHOULD INCLUDE:\n")
	for i, line := range []string{
		"HEADLINE: Attention-grabbing, benefit-focused (3-5 words)",
		"VISUAL DESCRIPTION: Specific imagery, colors, composition for the poster's visual. This will be used to generate an image, so be descriptive and concrete. Adhere to any negative prompt exclusions.",
		"COLOR PALETTE: 3-5 primary colors with hex codes as a string.",
		"TYPOGRAPHY: Font suggestions with reasoning as a string.",
		"LAYOUT: Composition and element placement description as a string.",
		"CALL-TO-ACTION (CTA): Clear, urgent, compelling.",
	} {
		fmt.Fprintf(&b, "%d. %s\n", i+1, line)
	}
	b.WriteString("\n")

	keys := make([]string, len(ConceptFields))
	for i, k := range ConceptFields {
		keys[i] = fmt.Sprintf("%q", k)
	}
	fmt.Fprintf(&b, "Return the response as a single, valid JSON object with the following keys: %s. ", strings.Join(keys, ", "))
	b.WriteString("Do not include any other text or markdown formatting outside of the JSON object.\n")

	return Prompt{
		System: "You are a creative director and visual marketing expert with 15+ years in advertising. Your task is to generate a complete advertising poster concept.",
		Text:   b.String(),
	}
}

func trendPrompt(in Inputs) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Provide a current marketing trend analysis for the %s industry with actionable insights for %s businesses.\n\n",
		in.BusinessType, in.BusinessSize)

	writeNumbered(&b, "TREND REPORT STRUCTURE", []string{
		"EXECUTIVE SUMMARY: 3 key trends impacting " + in.BusinessType,
		"CONSUMER BEHAVIOR: Shifting preferences and expectations in " + in.TargetRegion,
		"TECHNOLOGY TRENDS: Emerging tools and platforms",
		"CONTENT STRATEGIES: What's working right now",
		"COMPETITIVE LANDSCAPE: What leaders are doing",
		"ACTIONABLE RECOMMENDATIONS: 5 immediate steps",
	})
	writeSection(&b, "DATA POINTS TO INCLUDE", []string{
		"Current viral content patterns",
		"Algorithm changes on major platforms",
		"Consumer sentiment shifts",
		"Seasonal opportunities",
		"Emerging competitor strategies",
		"ROI metrics for different channels",
	})
	writeFormat(&b, [][2]string{
		{"Industry Overview", in.BusinessType + " current state"},
		{"Top 3 Trends", "[Trend name, impact level, timeline]"},
		{"Opportunity Analysis", "[Specific to " + in.BusinessSize + "]"},
		{"Threat Assessment", "[Risks to monitor]"},
		{"Immediate Actions", "[30-60-90 day plan]"},
		{"Key Metrics", "[What to track]"},
	})
	writeContext(&b, [][2]string{
		{"Business Size", in.BusinessSize},
		{"Timeframe", in.Timeframe},
		{"Region", in.TargetRegion},
		{"Target Audience", in.TargetAudience},
		{"Focus", in.CampaignObjective},
	})
	writeAdditional(&b, in)

	return Prompt{
		System: "You are a market research analyst and trend forecasting expert.",
		Text:   b.String(),
	}
}

func websitePrompt(in Inputs) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Provide comprehensive website development advice for a %s targeting %s with a %s budget.\n\n",
		in.BusinessType, in.TargetAudience, in.BudgetRange)

	writeNumbered(&b, "WEBSITE STRATEGY COMPONENTS", []string{
		"PLATFORM SELECTION: CMS recommendations for a " + in.BusinessSize + " business.",
		"UX/UI CONSIDERATIONS: Design specific to the " + in.TargetAudience + " audience.",
		"CONTENT ARCHITECTURE: Page structure and user flow.",
		"TECHNICAL REQUIREMENTS: SEO, speed, mobile optimization.",
		"CONVERSION FUNNELS: Lead generation and sales optimization based on the primary goal of " + in.PrimaryGoal + ".",
		"BUDGET ALLOCATION: A spending plan for a " + in.BudgetRange + " budget.",
	})
	writeSection(&b, "SPECIFIC GUIDANCE FOR", []string{
		"E-commerce vs service business needs",
		"Local business vs global reach requirements",
		"B2B vs B2C conversion strategies",
		"Mobile-first design imperatives",
		"Accessibility compliance standards",
	})
	writeFormat(&b, [][2]string{
		{"Business Profile", in.BusinessType + " specific needs"},
		{"Platform Recommendation", "[CMS with pros/cons]"},
		{"Key Pages", "[Essential page structure]"},
		{"Conversion Strategy", "[Lead/sales funnel design]"},
		{"Technical Checklist", "[Must-have features]"},
		{"Budget Breakdown", "[Allocation recommendations]"},
		{"Timeline", "[Development phases]"},
	})
	writeContext(&b, [][2]string{
		{"Primary Goal", in.PrimaryGoal},
		{"Project Timeline", in.ProjectTimeline},
		{"Technical Level of Client", in.TechExpertise},
		{"Campaign Objective", in.CampaignObjective},
	})
	writeAdditional(&b, in)

	return Prompt{
		System: "You are a web development strategist and conversion rate optimization expert.",
		Text:   b.String(),
	}
}

func emailPrompt(in Inputs) Prompt {
	var b strings.Builder
	b.WriteString("Write a sequence of 3 marketing emails for a campaign. Include a compelling subject line for each email. ")
	b.WriteString("The sequence should be: 1. Introduction, 2. Value Proposition/Follow-up, 3. Call to Action. ")
	b.WriteString("Format the output as Markdown with clear separation for each email.\n\n")
	writeBaseDetails(&b, in)

	return Prompt{Text: b.String()}
}

func strategyPrompt(in Inputs) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Develop a comprehensive 360° marketing strategy for a %s targeting the %s market segment with %s budget constraints.\n\n",
		in.BusinessType, in.TargetAudience, in.BudgetConstraints)

	writeNumbered(&b, "STRATEGY COMPONENTS", []string{
		"SITUATION ANALYSIS: SWOT and competitive landscape",
		"TARGET AUDIENCE: Detailed buyer personas (3 types)",
		"MARKETING OBJECTIVES: SMART goals for the " + in.StrategyTimeline + " timeline",
		"CHANNEL STRATEGY: Platform selection and allocation",
		"CONTENT CALENDAR: 30-day detailed plan",
		"BUDGET ALLOCATION: Optimization for " + in.BudgetConstraints,
		"KPI FRAMEWORK: Measurement and optimization plan",
	})
	writeSection(&b, "INCLUDE", []string{
		"Digital vs traditional media mix",
		"Organic vs paid strategy balance",
		"Conversion funnel mapping",
		"Customer journey optimization",
		"ROI projection and benchmarks",
	})
	writeFormat(&b, [][2]string{
		{"Executive Summary", "[Key strategy highlights]"},
		{"Target Personas", "[3 detailed profiles]"},
		{"Channel Plan", "[Platform-specific tactics]"},
		{"Content Calendar", "[Daily activities for 30 days]"},
		{"Budget Plan", "[Allocation and expected ROI]"},
		{"Success Metrics", "[KPIs and measurement]"},
	})
	writeContext(&b, [][2]string{
		{"Business Stage", in.BusinessStage},
		{"Timeline", in.StrategyTimeline},
		{"Primary Goal", in.PrimaryObjective},
		{"Campaign Objective", in.CampaignObjective},
		{"Brand Personality", in.BrandPersonality},
	})
	writeAdditional(&b, in)

	return Prompt{
		System: "You are a chief marketing officer with 20+ years experience scaling businesses.",
		Text:   b.String(),
	}
}

func brandVoicePrompt(in Inputs) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a complete brand voice and messaging guide for a business in the %s industry targeting %s.\n\n",
		in.BusinessType, in.TargetAudience)

	writeNumbered(&b, "BRAND GUIDE COMPONENTS", []string{
		"BRAND PERSONALITY: 5 core personality traits",
		"TONE VARIATIONS: Formal, casual, emotional, technical adaptions",
		"MESSAGING PILLARS: 3-5 core value propositions",
		"VOICE EXAMPLES: Do's and Don'ts for different contexts",
		"STORYTELLING FRAMEWORK: Brand narrative structure",
		"VISUAL-VERBAL ALIGNMENT: How voice complements visual identity",
	})
	writeSection(&b, "SPECIFIC ELEMENTS", []string{
		"Mission statement refinement",
		"Value proposition crafting",
		"Tagline development (5 options)",
		"Elevator pitch variations",
		"Social media voice adaptation",
		"Customer service tone guidelines",
	})
	writeFormat(&b, [][2]string{
		{"Brand Archetype", "[Primary and secondary archetypes]"},
		{"Personality Traits", "[5 traits with explanations]"},
		{"Tone Guide", "[Context-specific adaptations]"},
		{"Messaging Framework", "[Core messages and proof points]"},
		{"Communication Examples", "[Real-world applications]"},
		{"Style Guide", "[Grammar and word choice preferences]"},
	})
	writeContext(&b, [][2]string{
		{"Industry", in.BusinessType},
		{"Current Personality", in.BrandPersonality},
		{"Competitive Landscape", in.CompetitionLevel},
		{"Brand Evolution Goal", in.DesiredPerception},
		{"Campaign Objective", in.CampaignObjective},
	})
	writeAdditional(&b, in)

	return Prompt{
		System: "You are a brand strategist and messaging architect specializing in brand positioning.",
		Text:   b.String(),
	}
}

func improverPrompt(in Inputs) Prompt {
	var b strings.Builder
	b.WriteString("Critique and rewrite the following marketing content to better align with the specified goals.\n\n")
	writeFenced(&b, "**Content for Improvement:**", in.ExistingContent)

	b.WriteString("**Context & Goals:**\n")
	b.WriteString("- Business Type: " + in.BusinessType + "\n")
	b.WriteString("- Target Audience: " + in.TargetAudience + "\n")
	b.WriteString("- Brand Personality: " + in.BrandPersonality + "\n")
	b.WriteString("- Primary Improvement Goal: " + in.ImprovementGoal + "\n")
	if strings.TrimSpace(in.CampaignObjective) != "" {
		b.WriteString("- Original Campaign Objective: " + in.CampaignObjective + "\n")
	}
	if strings.TrimSpace(in.AdditionalInfo) != "" {
		b.WriteString("- Additional Information: " + in.AdditionalInfo + "\n")
	}
	b.WriteString("\n")

	b.WriteString("**Analysis & Rewrite Instructions:**\n")
	b.WriteString("1. **Critique:** Provide a brief, constructive critique of the original content. Identify 2-3 specific areas for improvement (e.g., clarity, tone, CTA, persuasiveness).\n")
	b.WriteString("2. **Rewrite:** Provide a rewritten, improved version of the content that directly addresses the critique and the primary improvement goal.\n")
	b.WriteString("3. **Justification:** Briefly explain *why* the changes were made, connecting them back to marketing best practices and the provided context.\n\n")

	b.WriteString("**FORMAT:**\n")
	b.WriteString("**Critique:**\n- [Point 1]\n- [Point 2]\n\n")
	b.WriteString("**Improved Content:**\n[Rewritten version of the content]\n\n")
	b.WriteString("**Rationale for Changes:**\n- **[Change 1]:** [Explanation]\n- **[Change 2]:** [Explanation]\n")

	return Prompt{
		System: "You are a marketing director and quality assurance specialist for AI-generated content. Your task is to analyze, critique, and rewrite user-submitted content to elevate it to a professional, high-impact standard.",
		Text:   b.String(),
	}
}

func writeSection(b *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	b.WriteString(title + ":\n")
	for _, line := range lines {
		b.WriteString("- " + line + "\n")
	}
	b.WriteString("\n")
}

func writeNumbered(b *strings.Builder, title string, lines []string) {
	b.WriteString(title + ":\n")
	for i, line := range lines {
		fmt.Fprintf(b, "%d. %s\n", i+1, line)
	}
	b.WriteString("\n")
}

func writeFormat(b *strings.Builder, rows [][2]string) {
	b.WriteString("FORMAT:\n")
	for _, row := range rows {
		fmt.Fprintf(b, "**%s:** %s\n", row[0], row[1])
	}
	b.WriteString("\n")
}

func writeContext(b *strings.Builder, rows [][2]string) {
	for _, row := range rows {
		if strings.TrimSpace(row[1]) == "" {
			continue
		}
		fmt.Fprintf(b, "%s: %s\n", row[0], row[1])
	}
}

func writeAdditional(b *strings.Builder, in Inputs) {
	if strings.TrimSpace(in.AdditionalInfo) == "" {
		return
	}
	b.WriteString("Additional Information: " + in.AdditionalInfo + "\n")
}

func writeBaseDetails(b *strings.Builder, in Inputs) {
	b.WriteString("- Business Type: " + in.BusinessType + "\n")
	b.WriteString("- Target Audience: " + in.TargetAudience + "\n")
	b.WriteString("- Brand Personality: " + in.BrandPersonality + "\n")
	b.WriteString("- Campaign Objective: " + in.CampaignObjective + "\n")
	if strings.TrimSpace(in.AdditionalInfo) != "" {
		b.WriteString("- Additional Information: " + in.AdditionalInfo + "\n")
	}
}

func writeFenced(b *strings.Builder, label, body string) {
	b.WriteString(label + "\n---\n")
	b.WriteString(body)
	b.WriteString("\n---\n\n")
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
