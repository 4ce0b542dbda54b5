package memory

type Card struct {
	Symbol  string `json:"symbol,omitempty"`
	FaceUp  bool   `json:"face_up"`
	Matched bool   `json:"matched"`
}

// State of one memory board. FaceUp lists revealed cards still awaiting a pair decision.
type State struct {
	Cards          []Card `json:"cards"`
	FaceUp         []int  `json:"face_up"`
	PairCount      int    `json:"pair_count"`
	MatchedPairs   int    `json:"matched_pairs"`
	Moves          int    `json:"moves"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Message        string `json:"message"`
}

func (that State) Clone() State {
	that.Cards = append([]Card(nil), that.Cards...)
	that.FaceUp = append([]int{}, that.FaceUp...)
	return that
}

// Masked hides the symbols of face-down cards.
func (that State) Masked() any {
	masked := that.Clone()
	for i := range masked.Cards {
		if !masked.Cards[i].FaceUp && !masked.Cards[i].Matched {
			masked.Cards[i].Symbol = ""
		}
	}

	return masked
}

// Flip reveals the card at index Card.
type Flip struct {
	Card int `json:"card"`
}
