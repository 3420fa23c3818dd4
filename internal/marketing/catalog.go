package marketing

import (
	"fmt"
	"strings"
)

type ContentType string

const (
	SocialMedia       ContentType = "social_media"
	AdPoster          ContentType = "ad_poster"
	TrendAnalysis     ContentType = "trend_analysis"
	WebsiteAdvice     ContentType = "website_advice"
	EmailCampaign     ContentType = "email_campaign"
	MarketingStrategy ContentType = "marketing_strategy"
	BrandVoice        ContentType = "brand_voice"
	ContentImprover   ContentType = "content_improver"
)

// Info is the display metadata of a content type.
type Info struct {
	Type     ContentType `json:"type"`
	Label    string      `json:"label"`
	Features string      `json:"features"`
	Output   string      `json:"output"`
	Fields   []Field     `json:"fields"`
	Required []Field     `json:"required"`
}

// typeSpec is one row of the dispatch table: prompt template, form fields and
// display metadata live together so a new type is a single entry.
type typeSpec struct {
	label    string
	features string
	output   string
	fields   []Field
	required []Field
	build    func(Inputs) Prompt
}

var typeOrder = []ContentType{
	SocialMedia,
	AdPoster,
	TrendAnalysis,
	WebsiteAdvice,
	EmailCampaign,
	MarketingStrategy,
	BrandVoice,
	ContentImprover,
}

var universalFields = []Field{
	FieldBusinessType,
	FieldTargetAudience,
	FieldBrandPersonality,
	FieldCampaignObjective,
	FieldAdditionalInfo,
}

var baseRequired = []Field{FieldBusinessType, FieldTargetAudience, FieldCampaignObjective}

var typeSpecs = map[ContentType]typeSpec{
	SocialMedia: {
		label:    "Social Media Captions",
		features: "Generates platform-specific captions with hashtags and CTAs. Ideal for daily engagement and brand awareness.",
		output:   "Multiple caption variations (short, medium, long) optimized for the selected social media platform.",
		fields:   withFields(FieldPlatform),
		required: baseRequired,
		build:    socialPrompt,
	},
	AdPoster: {
		label:    "Advertising Poster",
		features: "Creates a complete visual concept for an advertising poster, including a headline, visual description, and color palette.",
		output:   "A JSON object with a detailed creative brief and a generated image based on the concept.",
		fields:   withFields(FieldCampaignName, FieldDesignStyle, FieldUrgency, FieldNegativePrompt),
		required: append(append([]Field(nil), baseRequired...), FieldCampaignName),
		build:    posterPrompt,
	},
	TrendAnalysis: {
		label:    "Trend Analysis",
		features: "Provides an in-depth analysis of market trends, consumer behavior, and the competitive landscape. Good for strategic planning.",
		output:   "A structured report with an executive summary, actionable recommendations, and key metrics to track.",
		fields:   withFields(FieldBusinessSize, FieldTimeframe, FieldTargetRegion),
		required: append(append([]Field(nil), baseRequired...), FieldTargetRegion),
		build:    trendPrompt,
	},
	WebsiteAdvice: {
		label:    "Website Advice",
		features: "Offers comprehensive advice on website development, including platform selection, UX/UI, and conversion optimization.",
		output:   "A strategic guide covering platform recommendations, key page structures, and a technical checklist.",
		fields:   withFields(FieldBusinessSize, FieldBudgetRange, FieldPrimaryGoal, FieldProjectTimeline, FieldTechExpertise),
		required: baseRequired,
		build:    websitePrompt,
	},
	EmailCampaign: {
		label:    "Email Campaign",
		features: "Writes a sequence of marketing emails for a campaign, including compelling subject lines for each email.",
		output:   "A 3-part email sequence (Introduction, Value Proposition, Call to Action) in Markdown format.",
		fields:   withFields(),
		required: baseRequired,
		build:    emailPrompt,
	},
	MarketingStrategy: {
		label:    "Marketing Strategy",
		features: "Develops a 360° marketing strategy covering situation analysis, target audience, channel mix, and KPIs.",
		output:   "A comprehensive strategy document including target personas, a content calendar, and budget allocation.",
		fields:   withFields(FieldBusinessStage, FieldStrategyTimeline, FieldPrimaryObjective, FieldBudgetConstraints),
		required: baseRequired,
		build:    strategyPrompt,
	},
	BrandVoice: {
		label:    "Brand Voice Guide",
		features: "Creates a complete brand voice and messaging guide to ensure consistent communication across all channels.",
		output:   "A detailed guide including brand personality traits, tone variations, and communication examples.",
		fields:   withFields(FieldCompetitionLevel, FieldDesiredPerception),
		required: baseRequired,
		build:    brandVoicePrompt,
	},
	ContentImprover: {
		label:    "Content Improver",
		features: "Analyzes and rewrites existing content to improve its quality, clarity, and alignment with marketing goals.",
		output:   "A constructive critique, a rewritten version of the content, and a rationale for the changes made.",
		fields:   withFields(FieldExistingContent, FieldImprovementGoal),
		required: []Field{FieldBusinessType, FieldTargetAudience, FieldExistingContent},
		build:    improverPrompt,
	},
}

func init() {
	if len(typeSpecs) != len(typeOrder) {
		panic(fmt.Sprintf("marketing: %d content types ordered but %d specified", len(typeOrder), len(typeSpecs)))
	}
	for _, ct := range typeOrder {
		spec, ok := typeSpecs[ct]
		if !ok || spec.build == nil || spec.label == "" {
			panic(fmt.Sprintf("marketing: content type %q has no complete table entry", ct))
		}
	}
}

func withFields(extra ...Field) []Field {
	out := make([]Field, 0, len(universalFields)+len(extra))
	out = append(out, universalFields...)
	return append(out, extra...)
}

// Types lists every content type in display order.
func Types() []ContentType {
	return append([]ContentType(nil), typeOrder...)
}

func (ct ContentType) Valid() bool {
	_, ok := typeSpecs[ct]
	return ok
}

func (ct ContentType) Label() string {
	if spec, ok := typeSpecs[ct]; ok {
		return spec.label
	}
	return string(ct)
}

// Slug is the file-name form of the label, e.g. "social_media_captions".
func (ct ContentType) Slug() string {
	return strings.ToLower(strings.Join(strings.Fields(ct.Label()), "_"))
}

func Lookup(ct ContentType) (Info, error) {
	spec, ok := typeSpecs[ct]
	if !ok {
		return Info{}, &ConfigError{ContentType: ct}
	}
	return Info{
		Type:     ct,
		Label:    spec.label,
		Features: spec.features,
		Output:   spec.output,
		Fields:   append([]Field(nil), spec.fields...),
		Required: append([]Field(nil), spec.required...),
	}, nil
}

func Catalog() []Info {
	out := make([]Info, 0, len(typeOrder))
	for _, ct := range typeOrder {
		info, _ := Lookup(ct)
		out = append(out, info)
	}
	return out
}

// ParseContentType accepts either the key ("ad_poster") or the label
// ("Advertising Poster"), case-insensitively.
func ParseContentType(raw string) (ContentType, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	key := strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(raw, "-", "_"), " ", "_"))
	for _, ct := range typeOrder {
		if string(ct) == key || strings.EqualFold(typeSpecs[ct].label, raw) {
			return ct, true
		}
	}
	return "", false
}

type ConfigError struct {
	ContentType ContentType
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("unknown content type %q", string(e.ContentType))
}
