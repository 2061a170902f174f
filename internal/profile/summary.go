package profile

import (
	"strconv"
	"strings"

	"github.com/xxxsen/hmobot/internal/model"
)

// Summary renders the profile block handed to the answering model.
func Summary(p model.Profile) string {
	age := ""
	if p.Age != nil {
		age = strconv.Itoa(*p.Age)
	}
	name := strings.TrimSpace(model.Deref(p.FirstName) + " " + model.Deref(p.LastName))
	var sb strings.Builder
	sb.WriteString("User profile:\n")
	sb.WriteString("Full name: " + name + "\n")
	sb.WriteString("HMO: " + model.Deref(p.HMO) + "\n")
	sb.WriteString("Tier: " + model.Deref(p.Tier) + "\n")
	sb.WriteString("Age: " + age + "\n")
	sb.WriteString("Gender: " + model.Deref(p.Gender) + "\n")
	return sb.String()
}
