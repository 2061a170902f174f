package model

import "strings"

// Profile is the member information gathered during the collecting phase.
// A nil field is unset.
type Profile struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	IDNumber  *string `json:"id_number"`
	Gender    *string `json:"gender"`
	Age       *int    `json:"age"`
	HMO       *string `json:"hmo"`
	HMOCard   *string `json:"hmo_card"`
	Tier      *string `json:"tier"`
}

// Merge returns p with every set, non-blank field of fragment applied on top.
// Unset or blank fragment fields never clear an existing value.
func (p Profile) Merge(fragment Profile) Profile {
	out := p
	mergeString(&out.FirstName, fragment.FirstName)
	mergeString(&out.LastName, fragment.LastName)
	mergeString(&out.IDNumber, fragment.IDNumber)
	mergeString(&out.Gender, fragment.Gender)
	mergeString(&out.HMO, fragment.HMO)
	mergeString(&out.HMOCard, fragment.HMOCard)
	mergeString(&out.Tier, fragment.Tier)
	if fragment.Age != nil {
		age := *fragment.Age
		out.Age = &age
	}
	return out
}

// IsEmpty reports whether no field is set.
func (p Profile) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.IDNumber == nil && p.Gender == nil &&
		p.Age == nil && p.HMO == nil && p.HMOCard == nil && p.Tier == nil
}

// Provider resolves the HMO field against the known providers.
func (p Profile) Provider() (HMO, bool) {
	if p.HMO == nil {
		return HMOUnknown, false
	}
	return ParseHMO(*p.HMO)
}

func mergeString(dst **string, src *string) {
	if src == nil {
		return
	}
	v := strings.TrimSpace(*src)
	if v == "" {
		return
	}
	*dst = &v
}

// StrPtr and IntPtr help build profiles in literals.
func StrPtr(s string) *string { return &s }

func IntPtr(i int) *int { return &i }

// Deref returns the value behind s or "" when unset.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
