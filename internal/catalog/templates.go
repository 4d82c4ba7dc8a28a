package catalog

// Template maps a Big Five personality pole to a depression presentation.
type Template struct {
	ID         string
	Affective  string
	Cognitive  string
	Somatic    string
	Specifier  string
	Emphasized []string
	Modifiers  []string
}

// Templates is the fixed template registry in sampling order.
var Templates = []Template{
	{
		ID:         "NEUROTICISM_HIGH",
		Affective:  "Intense sadness, guilt, irritability, emotional volatility",
		Cognitive:  "Rumination, self-blame, helplessness, catastrophic thinking",
		Somatic:    "Fatigue, sleep disturbance, tension, agitation",
		Specifier:  "MDD with anxious distress",
		Emphasized: []string{DepressedMood, Fatigue, Worthlessness, Concentration},
		Modifiers:  []string{"worry-prone", "self-blaming", "threat-sensitivity", "emotionally-reactive", "ruminative"},
	},
	{
		ID:         "EXTRAVERSION_LOW",
		Affective:  "Emotional flatness, social withdrawal, anhedonia",
		Cognitive:  "Hopelessness, pessimism, low reactivity to positives",
		Somatic:    "Psychomotor slowing, hypersomnia, low energy",
		Specifier:  "Persistent depressive disorder-like",
		Emphasized: []string{LossOfInterest, Psychomotor, Fatigue},
		Modifiers:  []string{"socially-withdrawn", "pleasure-unresponsive", "passive", "low-initiative", "isolating"},
	},
	{
		ID:         "CONSCIENTIOUSNESS_HIGH",
		Affective:  "Controlled/suppressed affect, tension under responsibility",
		Cognitive:  "Perfectionism, strong self-criticism, guilt over small failures, indecision",
		Somatic:    "Insomnia, appetite loss, exhaustion from overwork",
		Specifier:  "Melancholic features",
		Emphasized: []string{WeightAppetite, Sleep, Fatigue, Worthlessness},
		Modifiers:  []string{"perfectionistic", "rigidly-self-critical", "duty-focused", "overwork-prone", "failure-intolerant"},
	},
	{
		ID:         "CONSCIENTIOUSNESS_LOW",
		Affective:  "Apathy, disengagement, blunted emotion",
		Cognitive:  "Disorganization, inefficiency, forgetfulness",
		Somatic:    "Hypersomnia, low motivation, poor self-care, variable appetite",
		Specifier:  "With functional impairment",
		Emphasized: []string{Psychomotor, Fatigue, Concentration},
		Modifiers:  []string{"disorganized", "unmotivated", "self-care-neglecting", "task-avoidant", "forgetful"},
	},
	{
		ID:         "AGREEABLENESS_HIGH",
		Affective:  "Empathic sadness, guilt about others, over-concern",
		Cognitive:  "Moral/relational rumination about failing people",
		Somatic:    "Fatigue from overextending, sleep disturbance from worry",
		Specifier:  "Anxious distress",
		Emphasized: []string{DepressedMood, Sleep, Fatigue, Worthlessness},
		Modifiers:  []string{"people-pleasing", "over-responsible-for-others", "self-sacrificing", "conflict-avoidant", "guilt-prone"},
	},
	{
		ID:         "AGREEABLENESS_LOW",
		Affective:  "Irritability, anger, frustration, externalized blame",
		Cognitive:  "Defensive/hostile thoughts, rejection sensitivity",
		Somatic:    "Restlessness, agitation, appetite disturbance, insomnia",
		Specifier:  "Mixed features",
		Emphasized: []string{DepressedMood, Psychomotor, Sleep},
		Modifiers:  []string{"irritable", "blame-externalizing", "rejection-sensitive", "defensively-hostile", "interpersonally-strained"},
	},
	{
		ID:         "OPENNESS_HIGH",
		Affective:  "Existential sadness, metaphorical expression of distress",
		Cognitive:  "Philosophical rumination on meaning and mortality",
		Somatic:    "Variable; fatigue from over-reflection",
		Specifier:  "Mild MDD / adjustment-like",
		Emphasized: []string{DepressedMood, LossOfInterest, ThoughtsOfDeath},
		Modifiers:  []string{"existentially-focused", "meaning-seeking", "introspective", "metaphorically-expressive", "philosophically-ruminating"},
	},
	{
		ID:         "OPENNESS_LOW",
		Affective:  "Constricted affect, limited emotional vocabulary",
		Cognitive:  "Literal thinking, low insight, denies mood distress",
		Somatic:    "Body-focused complaints (aches, tiredness, sleep/appetite issues)",
		Specifier:  "Somatic-dominant style",
		Emphasized: []string{WeightAppetite, Sleep, Fatigue},
		Modifiers:  []string{"somatically-focused", "insight-limited", "mood-distress-denying", "literal-thinking", "body-complaint-oriented"},
	},
}

// TemplateByID looks up a template by its key.
func TemplateByID(id string) (Template, bool) {
	for _, t := range Templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// TemplateIDs returns the template keys in registry order.
func TemplateIDs() []string {
	ids := make([]string, len(Templates))
	for i, t := range Templates {
		ids[i] = t.ID
	}
	return ids
}
