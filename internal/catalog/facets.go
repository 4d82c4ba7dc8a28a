package catalog

// FacetCategories lists every life facet category id, grouped by theme.
var FacetCategories = []string{
	// identity
	"identity_stage",
	"cultural_background_orientation",
	"sense_of_belonging",
	"values_and_priorities",
	"self_view",

	// goals
	"short_term_goal",
	"long_term_goal_or_dream",
	"stalled_goal",
	"source_of_motivation",

	// people
	"key_partner_or_love_interest",
	"closest_friend_or_confidant",
	"family_relationship_pattern",
	"work_or_school_ally",
	"conflictual_relationship",

	// roles
	"work_or_study_pressure",
	"sense_of_achievement",
	"role_conflicts",
	"financial_pressure_or_stability",
	"schedule_and_time_pressure",
	"responsibility_load",

	// health
	"physical_health_constraints",
	"sleep_pattern_tendency",
	"existing_diagnoses_or_labels",
	"past_help_seeking",
	"body_image_concerns_or_comfort",

	// stressors
	"current_primary_stressor",
	"secondary_stressors",
	"loss_or_change",
	"unresolved_issue",
	"fear_or_worry_theme",

	// coping
	"coping_style",
	"day_to_day_routines",
	"soothing_activities",
	"less_helpful_coping",
	"digital_or_social_media_habits",

	// color
	"hobbies_and_interests",
	"small_joys",
	"personal_quirks",
	"self_presentation_style",
	"areas_of_competence_or_pride",

	// history
	"past_difficult_period",
	"prior_relationship_disappointment_or_breakdown",
	"earlier_school_or_work_challenge",
	"family_history_of_health_or_mental_health_issues",
	"significant_move_or_transition",

	// environment
	"housing_and_neighbourhood_feel",
	"access_to_resources",
	"time_and_energy_constraints",

	// beliefs
	"explanatory_style",
	"beliefs_about_help_and_treatment",
	"beliefs_about_self_worth",
	"hopes_for_future",

	"preoccupations_or_obsessions",
}

// TraumaFacets is the trauma/adversity subset of FacetCategories.
var TraumaFacets = []string{
	"past_difficult_period",
	"prior_relationship_disappointment_or_breakdown",
	"family_history_of_health_or_mental_health_issues",
	"significant_move_or_transition",
	"loss_or_change",
}

// IsTraumaFacet reports whether category is in the trauma/adversity subset.
func IsTraumaFacet(category string) bool {
	return Contains(TraumaFacets, category)
}

// IsFacetCategory reports whether category is a known facet id.
func IsFacetCategory(category string) bool {
	return Contains(FacetCategories, category)
}
