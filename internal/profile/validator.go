package profile

import (
	"strings"
	"unicode/utf8"

	"github.com/xxxsen/hmobot/internal/model"
)

const (
	idLength   = 9
	cardLength = 9
	minAge     = 0
	maxAge     = 120
)

type messages struct {
	missing   func(field string) string
	idNumber  string
	hmo       string
	tier      string
	age       string
	hmoCard   string
	emptyName string
}

var hebrewMessages = messages{
	missing:   func(field string) string { return "שדה " + field + " חסר" },
	idNumber:  "מספר תעודת זהות חייב להיות בן 9 ספרות",
	hmo:       "קופת חולים לא תקינה",
	tier:      "רמת ביטוח לא תקינה",
	age:       "גיל חייב להיות בין 0 ל-120",
	hmoCard:   "מספר כרטיס קופה חייב להיות בן 9 ספרות",
	emptyName: "שם פרטי ושם משפחה לא יכולים להיות ריקים",
}

var englishMessages = messages{
	missing:   func(field string) string { return "Missing field: " + field },
	idNumber:  "ID number must have 9 digits",
	hmo:       "Invalid HMO name",
	tier:      "Invalid membership tier",
	age:       "Age must be between 0 and 120",
	hmoCard:   "HMO card number must have 9 digits",
	emptyName: "First and last name cannot be empty",
}

func messagesFor(lang model.Lang) messages {
	if lang == model.LangHebrew {
		return hebrewMessages
	}
	return englishMessages
}

// Validate reports whether p is complete and valid. Value checks run only
// once every required field is present; then all failures are collected.
func Validate(p model.Profile, lang model.Lang) (bool, []string) {
	msgs := messagesFor(lang)
	var errs []string

	required := []struct {
		name    string
		present bool
	}{
		{keyIDNumber, p.IDNumber != nil},
		{keyHMO, p.HMO != nil},
		{keyTier, p.Tier != nil},
		{keyAge, p.Age != nil},
		{keyHMOCard, p.HMOCard != nil},
		{keyFirstName, p.FirstName != nil},
		{keyLastName, p.LastName != nil},
	}
	for _, f := range required {
		if !f.present {
			errs = append(errs, msgs.missing(f.name))
		}
	}
	if len(errs) > 0 {
		return false, errs
	}

	if utf8.RuneCountInString(*p.IDNumber) != idLength {
		errs = append(errs, msgs.idNumber)
	}
	if _, ok := model.ParseHMO(*p.HMO); !ok {
		errs = append(errs, msgs.hmo)
	}
	if _, ok := model.ParseTier(*p.Tier); !ok {
		errs = append(errs, msgs.tier)
	}
	if *p.Age < minAge || *p.Age > maxAge {
		errs = append(errs, msgs.age)
	}
	if utf8.RuneCountInString(*p.HMOCard) != cardLength {
		errs = append(errs, msgs.hmoCard)
	}
	if strings.TrimSpace(*p.FirstName) == "" || strings.TrimSpace(*p.LastName) == "" {
		errs = append(errs, msgs.emptyName)
	}
	return len(errs) == 0, errs
}
