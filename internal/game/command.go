package game

// ActionKind names a command.
type ActionKind string

const (
	ActionPlayShot           ActionKind = "play_shot"
	ActionConcede            ActionKind = "concede"
	ActionRequestPartner     ActionKind = "request_partner"
	ActionRespondPartnership ActionKind = "respond_partnership"
	ActionDeclareSolo        ActionKind = "declare_solo"
	ActionAardvarkRequest    ActionKind = "aardvark_request"
	ActionAardvarkRespond    ActionKind = "aardvark_respond"
	ActionAardvarkSolo       ActionKind = "aardvark_solo"
	ActionOfferDouble        ActionKind = "offer_double"
	ActionRespondDouble      ActionKind = "respond_double"
	ActionInvokeSpecial      ActionKind = "invoke_special"
	ActionRespondBigDick     ActionKind = "respond_big_dick"
	ActionChoosePosition     ActionKind = "choose_position"
	ActionSetWager           ActionKind = "set_wager"
	ActionSubmitScores       ActionKind = "submit_scores"
)

// ActionKinds lists every command in the order legal actions are reported.
func ActionKinds() []ActionKind {
	return []ActionKind{
		ActionChoosePosition,
		ActionSetWager,
		ActionInvokeSpecial,
		ActionRequestPartner,
		ActionRespondPartnership,
		ActionDeclareSolo,
		ActionAardvarkRequest,
		ActionAardvarkRespond,
		ActionAardvarkSolo,
		ActionRespondBigDick,
		ActionOfferDouble,
		ActionRespondDouble,
		ActionPlayShot,
		ActionConcede,
		ActionSubmitScores,
	}
}

// SpecialRule names the rules invoked through invoke_special.
type SpecialRule string

const (
	SpecialFloat         SpecialRule = "float"
	SpecialDisableOption SpecialRule = "disable_option"
	SpecialBigDick       SpecialRule = "big_dick"
)

// Payload carries the arguments of every command kind. Each kind reads
// only the fields it needs.
type Payload struct {
	Partner    PlayerID         `json:"partner,omitempty"`
	Accept     bool             `json:"accept,omitempty"`
	Distance   *int             `json:"distance,omitempty"` // yards to the pin after the shot
	Holed      bool             `json:"holed,omitempty"`
	Player     PlayerID         `json:"player,omitempty"`
	Scores     map[PlayerID]int `json:"scores,omitempty"` // gross strokes
	Rule       SpecialRule      `json:"rule,omitempty"`
	Quarters   int              `json:"quarters,omitempty"`
	Position   int              `json:"position,omitempty"`    // 1-based hitting position
	Team       int              `json:"team,omitempty"`        // 1 for the captain's team, 2 for the other
	TargetSide int              `json:"target_side,omitempty"` // 1-based side; 0 means the other side
}

// Command is one player action submitted to the engine.
type Command struct {
	Kind    ActionKind `json:"kind"`
	Actor   PlayerID   `json:"actor"`
	Payload Payload    `json:"payload"`
}

// Result is what the engine returns for an accepted command.
type Result struct {
	Game        *Game          `json:"game"`
	Narration   string         `json:"narration"`
	NextActions []Command      `json:"next_actions"`
	Event       *TimelineEvent `json:"event,omitempty"`
	// Completed is set when the command finished a hole.
	Completed *HoleResult `json:"completed,omitempty"`
}
