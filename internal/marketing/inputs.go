package marketing

// Field names match the JSON keys of Inputs.
type Field string

const (
	FieldBusinessType      Field = "businessType"
	FieldTargetAudience    Field = "targetAudience"
	FieldBrandPersonality  Field = "brandPersonality"
	FieldCampaignObjective Field = "campaignObjective"
	FieldAdditionalInfo    Field = "additionalInfo"
	FieldPlatform          Field = "platform"

	FieldCampaignName   Field = "campaignName"
	FieldDesignStyle    Field = "designStyle"
	FieldUrgency        Field = "urgency"
	FieldNegativePrompt Field = "negativePrompt"

	FieldBusinessSize Field = "businessSize"
	FieldTimeframe    Field = "timeframe"
	FieldTargetRegion Field = "targetRegion"

	FieldBudgetRange     Field = "budgetRange"
	FieldPrimaryGoal     Field = "primaryGoal"
	FieldProjectTimeline Field = "projectTimeline"
	FieldTechExpertise   Field = "techExpertise"

	FieldBusinessStage     Field = "businessStage"
	FieldStrategyTimeline  Field = "strategyTimeline"
	FieldPrimaryObjective  Field = "primaryObjective"
	FieldBudgetConstraints Field = "budgetConstraints"

	FieldCompetitionLevel  Field = "competitionLevel"
	FieldDesiredPerception Field = "desiredPerception"

	FieldExistingContent Field = "existingContent"
	FieldImprovementGoal Field = "improvementGoal"
)

// Inputs is the flat form state. It imposes no cross-field rules; what is
// required depends on the selected content type (see Validate).
type Inputs struct {
	BusinessType      string `json:"businessType" yaml:"businessType"`
	TargetAudience    string `json:"targetAudience" yaml:"targetAudience"`
	BrandPersonality  string `json:"brandPersonality" yaml:"brandPersonality"`
	CampaignObjective string `json:"campaignObjective" yaml:"campaignObjective"`
	AdditionalInfo    string `json:"additionalInfo" yaml:"additionalInfo"`
	Platform          string `json:"platform" yaml:"platform"`

	CampaignName   string `json:"campaignName" yaml:"campaignName"`
	DesignStyle    string `json:"designStyle" yaml:"designStyle"`
	Urgency        string `json:"urgency" yaml:"urgency"`
	NegativePrompt string `json:"negativePrompt" yaml:"negativePrompt"`

	BusinessSize string `json:"businessSize" yaml:"businessSize"`
	Timeframe    string `json:"timeframe" yaml:"timeframe"`
	TargetRegion string `json:"targetRegion" yaml:"targetRegion"`

	BudgetRange     string `json:"budgetRange" yaml:"budgetRange"`
	PrimaryGoal     string `json:"primaryGoal" yaml:"primaryGoal"`
	ProjectTimeline string `json:"projectTimeline" yaml:"projectTimeline"`
	TechExpertise   string `json:"techExpertise" yaml:"techExpertise"`

	BusinessStage     string `json:"businessStage" yaml:"businessStage"`
	StrategyTimeline  string `json:"strategyTimeline" yaml:"strategyTimeline"`
	PrimaryObjective  string `json:"primaryObjective" yaml:"primaryObjective"`
	BudgetConstraints string `json:"budgetConstraints" yaml:"budgetConstraints"`

	CompetitionLevel  string `json:"competitionLevel" yaml:"competitionLevel"`
	DesiredPerception string `json:"desiredPerception" yaml:"desiredPerception"`

	ExistingContent string `json:"existingContent" yaml:"existingContent"`
	ImprovementGoal string `json:"improvementGoal" yaml:"improvementGoal"`
}

var (
	BrandPersonalities = []string{
		"Friendly & Approachable",
		"Professional & Authoritative",
		"Witty & Humorous",
		"Inspirational & Uplifting",
		"Luxurious & Sophisticated",
		"Bold & Adventurous",
	}
	DesignStyles = []string{
		"Minimalist & Clean",
		"Vintage & Retro",
		"Corporate & Professional",
		"Futuristic & Modern",
		"Playful & Whimsical",
		"Elegant & Luxurious",
		"Bold & Graphic",
	}
	UrgencyLevels      = []string{"Low", "Medium", "High"}
	Platforms          = []string{"Instagram", "TikTok", "Twitter", "Facebook", "LinkedIn"}
	BusinessSizes      = []string{"Small Business (1-50 employees)", "Medium Enterprise (51-500 employees)", "Large Corporation (500+ employees)"}
	Timeframes         = []string{"Next 3 Months", "Next 6 Months", "Next 12 Months"}
	BudgetRanges       = []string{"<$5,000", "$5,000 - $15,000", "$15,000 - $50,000", "$50,000+"}
	PrimaryGoals       = []string{"Lead Generation", "E-commerce Sales", "Brand Awareness", "User Engagement", "Customer Retention"}
	ProjectTimelines   = []string{"1-3 Months", "3-6 Months", "6-12 Months", "12+ Months"}
	TechExpertiseLevel = []string{"Beginner (No-code preferred)", "Intermediate (Can manage a CMS)", "Advanced (Comfortable with code)"}
	BusinessStages     = []string{"Startup (Pre-launch)", "Growth Stage (Scaling)", "Mature (Established)", "Decline/Pivot"}
	StrategyTimelines  = []string{"3 Months", "6 Months", "12 Months", "18 Months"}
	BudgetConstraints  = []string{"Lean (<$5k/mo)", "Moderate ($5k-$25k/mo)", "Aggressive ($25k-$100k/mo)", "Enterprise (>$100k/mo)"}
	CompetitionLevels  = []string{"Low (Niche market)", "Medium (Established competitors)", "High (Saturated market)"}
	DesiredPerceptions = []string{"Innovative Disruptor", "Trusted Market Leader", "Premium & Exclusive", "Friendly & Accessible", "Value-Driven & Economical"}
	ImprovementGoals   = []string{
		"Increase persuasiveness and conversion",
		"Improve brand voice alignment",
		"Enhance clarity and readability",
		"Optimize for a specific platform (e.g., SEO, social media)",
		"Make the tone more engaging",
	}
)

// DefaultInputs returns the form state used after a type switch: free-text
// fields empty, every choice field on its first option (urgency on Medium).
func DefaultInputs() Inputs {
	return Inputs{
		BrandPersonality:  BrandPersonalities[0],
		Platform:          Platforms[0],
		DesignStyle:       DesignStyles[0],
		Urgency:           UrgencyLevels[1],
		BusinessSize:      BusinessSizes[0],
		Timeframe:         Timeframes[0],
		BudgetRange:       BudgetRanges[0],
		PrimaryGoal:       PrimaryGoals[0],
		ProjectTimeline:   ProjectTimelines[0],
		TechExpertise:     TechExpertiseLevel[0],
		BusinessStage:     BusinessStages[0],
		StrategyTimeline:  StrategyTimelines[0],
		PrimaryObjective:  PrimaryGoals[0],
		BudgetConstraints: BudgetConstraints[0],
		CompetitionLevel:  CompetitionLevels[0],
		DesiredPerception: DesiredPerceptions[0],
		ImprovementGoal:   ImprovementGoals[0],
	}
}

// Options returns the allowed values of a choice field, or nil for free text.
func Options(f Field) []string {
	switch f {
	case FieldBrandPersonality:
		return BrandPersonalities
	case FieldPlatform:
		return Platforms
	case FieldDesignStyle:
		return DesignStyles
	case FieldUrgency:
		return UrgencyLevels
	case FieldBusinessSize:
		return BusinessSizes
	case FieldTimeframe:
		return Timeframes
	case FieldBudgetRange:
		return BudgetRanges
	case FieldPrimaryGoal, FieldPrimaryObjective:
		return PrimaryGoals
	case FieldProjectTimeline:
		return ProjectTimelines
	case FieldTechExpertise:
		return TechExpertiseLevel
	case FieldBusinessStage:
		return BusinessStages
	case FieldStrategyTimeline:
		return StrategyTimelines
	case FieldBudgetConstraints:
		return BudgetConstraints
	case FieldCompetitionLevel:
		return CompetitionLevels
	case FieldDesiredPerception:
		return DesiredPerceptions
	case FieldImprovementGoal:
		return ImprovementGoals
	}
	return nil
}

func (in Inputs) Get(f Field) string {
	if p := in.ref(f); p != nil {
		return *p
	}
	return ""
}

// Set reports false for an unknown field.
func (in *Inputs) Set(f Field, value string) bool {
	p := in.ref(f)
	if p == nil {
		return false
	}
	*p = value
	return true
}

func (in *Inputs) ref(f Field) *string {
	switch f {
	case FieldBusinessType:
		return &in.BusinessType
	case FieldTargetAudience:
		return &in.TargetAudience
	case FieldBrandPersonality:
		return &in.BrandPersonality
	case FieldCampaignObjective:
		return &in.CampaignObjective
	case FieldAdditionalInfo:
		return &in.AdditionalInfo
	case FieldPlatform:
		return &in.Platform
	case FieldCampaignName:
		return &in.CampaignName
	case FieldDesignStyle:
		return &in.DesignStyle
	case FieldUrgency:
		return &in.Urgency
	case FieldNegativePrompt:
		return &in.NegativePrompt
	case FieldBusinessSize:
		return &in.BusinessSize
	case FieldTimeframe:
		return &in.Timeframe
	case FieldTargetRegion:
		return &in.TargetRegion
	case FieldBudgetRange:
		return &in.BudgetRange
	case FieldPrimaryGoal:
		return &in.PrimaryGoal
	case FieldProjectTimeline:
		return &in.ProjectTimeline
	case FieldTechExpertise:
		return &in.TechExpertise
	case FieldBusinessStage:
		return &in.BusinessStage
	case FieldStrategyTimeline:
		return &in.StrategyTimeline
	case FieldPrimaryObjective:
		return &in.PrimaryObjective
	case FieldBudgetConstraints:
		return &in.BudgetConstraints
	case FieldCompetitionLevel:
		return &in.CompetitionLevel
	case FieldDesiredPerception:
		return &in.DesiredPerception
	case FieldExistingContent:
		return &in.ExistingContent
	case FieldImprovementGoal:
		return &in.ImprovementGoal
	}
	return nil
}
