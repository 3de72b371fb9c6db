package compliance

// Pillar is one audited dimension of an AI policy document.
type Pillar struct {
	Key      string
	Label    string
	Question string
}

// Pillars are the eight dimensions every policy is scored against, drawn
// from the UNESCO and OECD AI governance frameworks. Order is the report
// order.
var Pillars = []Pillar{
	{
		Key:      "transparency",
		Label:    "Transparency",
		Question: "Does this policy address how AI decisions are explained or made transparent to users?",
	},
	{
		Key:      "human_oversight",
		Label:    "Human Oversight",
		Question: "Does this policy describe human review, oversight, or control mechanisms for AI systems?",
	},
	{
		Key:      "privacy",
		Label:    "Privacy & Data Protection",
		Question: "Does this policy address how user data and personal information is protected?",
	},
	{
		Key:      "fairness",
		Label:    "Fairness & Non-discrimination",
		Question: "Does this policy address bias, fairness, or non-discrimination in AI outputs?",
	},
	{
		Key:      "accountability",
		Label:    "Accountability",
		Question: "Does this policy define who is responsible when the AI system causes harm or makes errors?",
	},
	{
		Key:      "safety",
		Label:    "Safety & Security",
		Question: "Does this policy address risk management, safety testing, or security measures for the AI system?",
	},
	{
		Key:      "sustainability",
		Label:    "Sustainability",
		Question: "Does this policy address environmental impact or sustainability of AI operations?",
	},
	{
		Key:      "inclusivity",
		Label:    "Inclusivity",
		Question: "Does this policy address accessibility, inclusion, or consideration of marginalized groups?",
	},
}
