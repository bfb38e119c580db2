package verify

// Label is the three-way credibility verdict.
type Label string

const (
	LabelTrue      Label = "true"
	LabelFake      Label = "fake"
	LabelUncertain Label = "uncertain"
)

// Features is the fixed-contract input to the scorer, derived once per
// request and never mutated afterwards.
type Features struct {
	SensationalPenalty float64  `json:"sensational_penalty"`
	SentimentMagnitude float64  `json:"sentiment_magnitude"`
	EntityWikiHits     int      `json:"entity_wiki_hits"`
	Categories         []string `json:"categories"`
}

// KeyEntity is a salient entity with optional grounding metadata.
type KeyEntity struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Salience     float64 `json:"salience"`
	WikipediaURL string  `json:"wikipedia_url,omitempty"`
	MID          string  `json:"mid,omitempty"`
}

// Insights holds the human-facing highlights extracted alongside scoring.
type Insights struct {
	KeyEntities      []KeyEntity `json:"key_entities"`
	SensationalTerms []string    `json:"sensational_terms"`
	NotableSentences []string    `json:"notable_sentences"`
}

// Result is the full output of one scoring call.
type Result struct {
	Label      Label    `json:"label"`
	Score      int      `json:"score"`
	Confidence float64  `json:"confidence"`
	Features   Features `json:"features"`
	Insights   Insights `json:"insights"`
}
