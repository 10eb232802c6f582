package combat

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseParticipant parses a "Name: HP" line. Names may contain colons; the
// last segment is always the hit points.
func ParseParticipant(s string) (Participant, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return Participant{}, fmt.Errorf("combat: %q needs a Name: HP form", s)
	}
	hpPart := strings.TrimSpace(parts[len(parts)-1])
	hp, err := strconv.Atoi(hpPart)
	if err != nil {
		return Participant{}, fmt.Errorf("combat: parse %q as hit points: %w", hpPart, err)
	}
	name := strings.TrimSpace(strings.Join(parts[:len(parts)-1], ":"))
	if name == "" {
		return Participant{}, fmt.Errorf("combat: %q has no name", s)
	}
	return Participant{Name: name, HP: hp}, nil
}

// ParseParticipantLine parses a roster line in "Name: HP[: Initiative]" form,
// the format combat roster files use.
func ParseParticipantLine(s string) (Participant, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 2 {
		iniPart := strings.TrimSpace(parts[len(parts)-1])
		ini, err := strconv.Atoi(iniPart)
		if err != nil {
			return Participant{}, fmt.Errorf("combat: parse %q as initiative: %w", iniPart, err)
		}
		p, err := ParseParticipant(strings.Join(parts[:len(parts)-1], ":"))
		if err != nil {
			return Participant{}, err
		}
		p.Initiative = ini
		p.HasInitiative = true
		return p, nil
	}
	return ParseParticipant(s)
}

// ParseRoster parses a roster file body, one participant per line. Blank
// lines are skipped.
func ParseRoster(body string) ([]Participant, error) {
	var out []Participant
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		p, err := ParseParticipantLine(line)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ModifierSpec is a parsed modifier waiting to be anchored at a point in
// combat time.
type ModifierSpec struct {
	Name     string
	Duration int
	Expires  bool
}

// At anchors the spec at the given time.
func (spec ModifierSpec) At(start TimeVec) Modifier {
	return Modifier{
		Name:         spec.Name,
		IntroducedAt: start,
		Duration:     spec.Duration,
		Expires:      spec.Expires,
	}
}

// ParseModifierSpec parses "Name[:Duration]". Without a duration the modifier
// is permanent.
func ParseModifierSpec(s string) (ModifierSpec, error) {
	parts := strings.Split(s, ":")
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return ModifierSpec{}, fmt.Errorf("combat: modifiers need a Name[:Duration] form, got %q", s)
	}
	switch len(parts) {
	case 1:
		return ModifierSpec{Name: name}, nil
	case 2:
		durPart := strings.TrimSpace(parts[1])
		dur, err := strconv.Atoi(durPart)
		if err != nil {
			return ModifierSpec{}, fmt.Errorf("combat: parse %q as duration: %w", durPart, err)
		}
		return ModifierSpec{Name: name, Duration: dur, Expires: true}, nil
	default:
		return ModifierSpec{}, fmt.Errorf("combat: modifiers need a Name[:Duration] form, got %q", s)
	}
}
