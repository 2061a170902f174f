package model

import "strings"

// HMO identifies one of the three health maintenance organizations that
// the knowledge base describes.
type HMO int

const (
	HMOUnknown HMO = iota
	HMOMaccabi
	HMOMeuhedet
	HMOClalit
)

type hmoForms struct {
	hebrew  string
	english string
	column  int
}

var hmoTable = map[HMO]hmoForms{
	HMOMaccabi:  {hebrew: "מכבי", english: "Maccabi", column: 1},
	HMOMeuhedet: {hebrew: "מאוחדת", english: "Meuhedet", column: 2},
	HMOClalit:   {hebrew: "כללית", english: "Clalit", column: 3},
}

// AllHMOs lists the providers in benefit-table column order.
var AllHMOs = []HMO{HMOMaccabi, HMOMeuhedet, HMOClalit}

func (h HMO) Hebrew() string { return hmoTable[h].hebrew }

func (h HMO) English() string { return hmoTable[h].english }

// Column is the benefit-table column holding this provider's text.
func (h HMO) Column() int { return hmoTable[h].column }

func (h HMO) Label(lang Lang) string {
	if lang == LangHebrew {
		return h.Hebrew()
	}
	return h.English()
}

func (h HMO) String() string {
	if f, ok := hmoTable[h]; ok {
		return strings.ToLower(f.english)
	}
	return "unknown"
}

// ParseHMO matches either surface form, ignoring case and surrounding space.
func ParseHMO(s string) (HMO, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return HMOUnknown, false
	}
	for _, h := range AllHMOs {
		f := hmoTable[h]
		if key == f.hebrew || key == strings.ToLower(f.english) {
			return h, true
		}
	}
	return HMOUnknown, false
}

// HasPrefixHMO reports which provider name the text starts with, if any.
func HasPrefixHMO(text string) (HMO, bool) {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	for _, h := range AllHMOs {
		f := hmoTable[h]
		if strings.HasPrefix(trimmed, f.hebrew) || strings.HasPrefix(lower, strings.ToLower(f.english)) {
			return h, true
		}
	}
	return HMOUnknown, false
}

// MentionedHMOs returns the providers named anywhere in text, in column order.
func MentionedHMOs(text string) []HMO {
	lower := strings.ToLower(text)
	var found []HMO
	for _, h := range AllHMOs {
		f := hmoTable[h]
		if strings.Contains(text, f.hebrew) || strings.Contains(lower, strings.ToLower(f.english)) {
			found = append(found, h)
		}
	}
	return found
}

// Tier is the membership level within a provider.
type Tier int

const (
	TierUnknown Tier = iota
	TierGold
	TierSilver
	TierBronze
)

var tierTable = map[Tier][2]string{
	TierGold:   {"זהב", "Gold"},
	TierSilver: {"כסף", "Silver"},
	TierBronze: {"ארד", "Bronze"},
}

var AllTiers = []Tier{TierGold, TierSilver, TierBronze}

func (t Tier) Hebrew() string { return tierTable[t][0] }

func (t Tier) English() string { return tierTable[t][1] }

func (t Tier) Label(lang Lang) string {
	if lang == LangHebrew {
		return t.Hebrew()
	}
	return t.English()
}

func ParseTier(s string) (Tier, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return TierUnknown, false
	}
	for _, t := range AllTiers {
		forms := tierTable[t]
		if key == forms[0] || key == strings.ToLower(forms[1]) {
			return t, true
		}
	}
	return TierUnknown, false
}
