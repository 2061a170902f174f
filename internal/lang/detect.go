// Package lang decides which language a conversation turn is held in.
package lang

import (
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"

	"github.com/xxxsen/hmobot/internal/model"
)

// Detect classifies message as Hebrew or English. When the message carries
// no recognisable script (digits, an ID number, a lone "yes") the most recent
// prior user message decides; English is the default.
func Detect(message string, history []model.Message) model.Lang {
	if strings.TrimSpace(message) != "" {
		info := whatlanggo.Detect(message)
		if info.Script != nil {
			if info.Lang == whatlanggo.Heb || info.Script == unicode.Hebrew {
				return model.LangHebrew
			}
			return model.LangEnglish
		}
	}
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != model.RoleUser {
			continue
		}
		if hasHebrew(history[i].Content) {
			return model.LangHebrew
		}
		break
	}
	return model.LangEnglish
}

// hasHebrew reports whether s contains a rune of the Hebrew block up to the
// last letter (U+0590 to U+05EA).
func hasHebrew(s string) bool {
	for _, r := range s {
		if r >= '֐' && r <= 'ת' {
			return true
		}
	}
	return false
}
