package marketing

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

var charLimits = map[Field]int{
	FieldBusinessType:      150,
	FieldTargetAudience:    500,
	FieldCampaignObjective: 500,
	FieldAdditionalInfo:    500,
	FieldCampaignName:      100,
	FieldNegativePrompt:    200,
	FieldTargetRegion:      100,
	FieldExistingContent:   3000,
}

var fieldLabels = map[Field]string{
	FieldBusinessType:      "Business Type / Industry",
	FieldTargetAudience:    "Target Audience",
	FieldBrandPersonality:  "Brand Personality",
	FieldCampaignObjective: "Campaign Objective",
	FieldAdditionalInfo:    "Additional Information",
	FieldPlatform:          "Platform",
	FieldCampaignName:      "Campaign Name",
	FieldDesignStyle:       "Design Style",
	FieldUrgency:           "Urgency",
	FieldNegativePrompt:    "Negative Prompt",
	FieldBusinessSize:      "Business Size",
	FieldTimeframe:         "Timeframe",
	FieldTargetRegion:      "Target Region / Market",
	FieldBudgetRange:       "Budget Range",
	FieldPrimaryGoal:       "Primary Goal",
	FieldProjectTimeline:   "Project Timeline",
	FieldTechExpertise:     "Tech Expertise",
	FieldBusinessStage:     "Business Stage",
	FieldStrategyTimeline:  "Strategy Timeline",
	FieldPrimaryObjective:  "Primary Objective",
	FieldBudgetConstraints: "Budget Constraints",
	FieldCompetitionLevel:  "Competition Level",
	FieldDesiredPerception: "Desired Perception",
	FieldExistingContent:   "Content to Improve",
	FieldImprovementGoal:   "Improvement Goal",
}

func CharLimit(f Field) int {
	return charLimits[f]
}

func FieldLabel(f Field) string {
	if label, ok := fieldLabels[f]; ok {
		return label
	}
	return string(f)
}

// ValidationError maps each offending field to a user-facing message.
type ValidationError struct {
	Fields map[Field]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		keys = append(keys, string(f))
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[Field(k)])
	}
	return strings.Join(msgs, " ")
}

// Validate checks the required set and character limits of the given type.
func Validate(ct ContentType, in Inputs) error {
	spec, ok := typeSpecs[ct]
	if !ok {
		return &ConfigError{ContentType: ct}
	}

	required := make(map[Field]bool, len(spec.required))
	for _, f := range spec.required {
		required[f] = true
	}

	problems := make(map[Field]string)
	for _, f := range spec.fields {
		value := in.Get(f)
		limit := charLimits[f]
		switch {
		case required[f] && strings.TrimSpace(value) == "":
			problems[f] = fmt.Sprintf("%s is required.", FieldLabel(f))
		case limit > 0 && utf8.RuneCountInString(value) > limit:
			problems[f] = fmt.Sprintf("%s cannot exceed %d characters.", FieldLabel(f), limit)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Fields: problems}
	}
	return nil
}
