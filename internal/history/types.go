package history

// Scorecard is a finished (or in-progress) round encoded as TOML. Per-player
// arrays follow the order of Players.
type Scorecard struct {
	Game        string    `toml:"game"`
	Course      string    `toml:"course,omitempty"`
	Time        string    `toml:"time,omitempty"`
	Phase       string    `toml:"phase"`
	Players     []string  `toml:"players"`
	Names       []string  `toml:"names"`
	Handicaps   []float64 `toml:"handicaps"`
	TossOrder   []string  `toml:"toss_order"`
	FinalPoints []float64 `toml:"final_points"`
	Holes       []Hole    `toml:"holes"`
}

// Hole is one archived hole.
type Hole struct {
	Number      int        `toml:"number"`
	Par         int        `toml:"par"`
	StrokeIndex int        `toml:"stroke_index"`
	Captain     string     `toml:"captain"`
	Formation   string     `toml:"formation"`
	Sides       [][]string `toml:"sides,omitempty"`
	Wager       int        `toml:"wager"`
	Modifiers   []string   `toml:"modifiers,omitempty"`
	Gross       []int      `toml:"gross"`
	Net         []float64  `toml:"net"`
	Deltas      []float64  `toml:"deltas"`
	Push        bool       `toml:"push,omitempty"`
	CarryOver   bool       `toml:"carry_over,omitempty"`
	Amendments  []string   `toml:"amendments,omitempty"`
}
