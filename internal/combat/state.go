package combat

import (
	"fmt"
	"math/rand/v2"
	"sort"
)

// TimeVec is a point in combat time: a round plus the fraction of the round
// consumed so far (turn index over participant count). Comparing two TimeVecs
// tells which happened first even across roster size changes.
type TimeVec struct {
	Round int
	Turn  int
	Of    int
}

func (t TimeVec) fraction() float64 {
	if t.Of == 0 {
		return 0
	}
	return float64(t.Turn) / float64(t.Of)
}

// Before reports whether t lies strictly before other.
func (t TimeVec) Before(other TimeVec) bool {
	if t.Round != other.Round {
		return t.Round < other.Round
	}
	return t.fraction() < other.fraction()
}

// Modifier is a named condition on a participant, optionally expiring a fixed
// number of rounds after it was introduced.
type Modifier struct {
	Name         string
	IntroducedAt TimeVec
	Duration     int
	Expires      bool
}

// RemainingRounds returns how many rounds the modifier has left at the given
// time. ok is false for permanent modifiers.
func (m Modifier) RemainingRounds(now TimeVec) (int, bool) {
	if !m.Expires {
		return 0, false
	}
	offset := -1
	if now.fraction() < m.IntroducedAt.fraction() {
		offset = 0
	}
	return m.IntroducedAt.Round + m.Duration - now.Round + offset + 1, true
}

// Participant is one combatant: a name, hit points, current modifiers, and an
// optional initiative value used to order the roster.
type Participant struct {
	Name          string
	HP            int
	Initiative    int
	HasInitiative bool
	Modifiers     []Modifier
}

func (p Participant) String() string {
	return fmt.Sprintf("%s: %d", p.Name, p.HP)
}

// WithHP returns a copy with hit points clamped at zero.
func (p Participant) WithHP(hp int) Participant {
	if hp < 0 {
		hp = 0
	}
	p.HP = hp
	out := make([]Modifier, len(p.Modifiers))
	copy(out, p.Modifiers)
	p.Modifiers = out
	return p
}

// RollInitiative assigns a d20 initiative if none is set yet.
func (p Participant) RollInitiative(roll func(sides int) int) Participant {
	if p.HasInitiative {
		return p
	}
	p.Initiative = roll(20)
	p.HasInitiative = true
	return p
}

// State is the full combat snapshot: whose turn it is, the current round, and
// every participant.
type State struct {
	Round        int
	TurnIndex    int
	Participants []Participant
}

// NewState starts a fight at round zero with the given roster.
func NewState(participants []Participant) State {
	return State{Participants: participants}
}

// Now returns the current point in combat time.
func (s State) Now() TimeVec {
	return TimeVec{Round: s.Round, Turn: s.TurnIndex, Of: len(s.Participants)}
}

// Current returns the participant whose turn it is.
func (s State) Current() (Participant, bool) {
	if s.TurnIndex < 0 || s.TurnIndex >= len(s.Participants) {
		return Participant{}, false
	}
	return s.Participants[s.TurnIndex], true
}

// NextTurn advances to the next participant, wrapping into a new round, and
// drops modifiers that have expired by then.
func (s State) NextTurn() State {
	next := s.clone()
	if len(next.Participants) == 0 {
		return next
	}
	if next.TurnIndex == len(next.Participants)-1 {
		next.Round++
		next.TurnIndex = 0
	} else {
		next.TurnIndex++
	}
	now := next.Now()
	for i := range next.Participants {
		kept := next.Participants[i].Modifiers[:0]
		for _, mod := range next.Participants[i].Modifiers {
			if remaining, ok := mod.RemainingRounds(now); ok && remaining <= 0 {
				continue
			}
			kept = append(kept, mod)
		}
		next.Participants[i].Modifiers = kept
	}
	return next
}

// UpdateParticipant applies f to the nth participant.
func (s State) UpdateParticipant(n int, f func(Participant) Participant) State {
	next := s.clone()
	if n >= 0 && n < len(next.Participants) {
		next.Participants[n] = f(next.Participants[n])
	}
	return next
}

// WithoutParticipant removes the nth participant from the roster.
func (s State) WithoutParticipant(n int) State {
	next := s.clone()
	if n < 0 || n >= len(next.Participants) {
		return next
	}
	next.Participants = append(next.Participants[:n], next.Participants[n+1:]...)
	if next.TurnIndex >= len(next.Participants) {
		next.TurnIndex = 0
	}
	return next
}

// AddModifier attaches a modifier spec to the nth participant, anchored at
// the current combat time.
func (s State) AddModifier(n int, spec ModifierSpec) State {
	now := s.Now()
	return s.UpdateParticipant(n, func(p Participant) Participant {
		mods := make([]Modifier, len(p.Modifiers), len(p.Modifiers)+1)
		copy(mods, p.Modifiers)
		p.Modifiers = append(mods, spec.At(now))
		return p
	})
}

// SortByInitiative rolls initiative for anyone without one and orders the
// roster descending. The roll function defaults to a uniform die.
func (s State) SortByInitiative(roll func(sides int) int) State {
	if roll == nil {
		roll = Roll
	}
	next := s.clone()
	for i := range next.Participants {
		next.Participants[i] = next.Participants[i].RollInitiative(roll)
	}
	sort.SliceStable(next.Participants, func(i, j int) bool {
		return next.Participants[i].Initiative > next.Participants[j].Initiative
	})
	return next
}

func (s State) clone() State {
	next := s
	next.Participants = make([]Participant, len(s.Participants))
	copy(next.Participants, s.Participants)
	for i := range next.Participants {
		mods := make([]Modifier, len(next.Participants[i].Modifiers))
		copy(mods, next.Participants[i].Modifiers)
		next.Participants[i].Modifiers = mods
	}
	return next
}

// Roll returns a uniform die result in [1, sides].
func Roll(sides int) int {
	if sides < 1 {
		return 1
	}
	return rand.IntN(sides) + 1
}
