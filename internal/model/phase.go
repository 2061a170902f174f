package model

import (
	"fmt"
	"strings"
)

// Phase is the conversation state carried by the caller on every turn.
type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseAnswering  Phase = "answering"
)

// ParsePhase accepts the canonical names and the legacy wire values
// "info_collection" and "qa".
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "collecting", "info_collection":
		return PhaseCollecting, nil
	case "answering", "qa":
		return PhaseAnswering, nil
	}
	return "", fmt.Errorf("unknown phase %q", s)
}

type Lang string

const (
	LangHebrew  Lang = "he"
	LangEnglish Lang = "en"
)
