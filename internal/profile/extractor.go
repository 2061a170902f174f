// Package profile extracts member details from a conversation and checks
// them for completeness.
package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/hmobot/internal/ai"
	"github.com/xxxsen/hmobot/internal/model"
)

// ErrUnparsable marks an extractor reply that is not a JSON object. The
// fragment returned with it is always empty.
var ErrUnparsable = errors.New("extractor reply is not valid json")

const (
	keyFirstName = "first_name"
	keyLastName  = "last_name"
	keyIDNumber  = "id_number"
	keyGender    = "gender"
	keyAge       = "age"
	keyHMO       = "hmo"
	keyHMOCard   = "hmo_card"
	keyTier      = "tier"
)

var templateKeys = []string{keyFirstName, keyLastName, keyIDNumber, keyGender, keyAge, keyHMO, keyHMOCard, keyTier}

var extractorPrompt = buildExtractorPrompt()

func buildExtractorPrompt() string {
	var sb strings.Builder
	sb.WriteString("You are a strict JSON extractor. ")
	sb.WriteString("Given the conversation so far, return ONLY the following JSON ")
	sb.WriteString("with the fields you can infer filled in (all others must be null).\n\n")
	sb.WriteString("{\n")
	for i, key := range templateKeys {
		sb.WriteString(`  "` + key + `": null`)
		if i < len(templateKeys)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

type Extractor struct {
	chatter ai.IChatter
}

func NewExtractor(chatter ai.IChatter) *Extractor {
	return &Extractor{chatter: chatter}
}

// Extract asks the model for the profile fields it can infer from history
// plus message. A chat failure is returned as is; an unusable reply yields an
// empty fragment and an error wrapping ErrUnparsable.
func (e *Extractor) Extract(ctx context.Context, history []model.Message, message string) (model.Profile, error) {
	logger := logutil.GetLogger(ctx)
	msgs := []model.Message{
		model.SystemMessage(extractorPrompt),
		model.UserMessage(formatHistory(history, message)),
	}
	raw, err := e.chatter.Chat(ctx, msgs)
	if err != nil {
		return model.Profile{}, fmt.Errorf("extract profile: %w", err)
	}
	logger.Debug("extractor raw reply", zap.String("reply", truncate(raw, 200)))
	fragment, err := parseFragment(raw)
	if err != nil {
		return model.Profile{}, err
	}
	return fragment, nil
}

func formatHistory(history []model.Message, message string) string {
	lines := make([]string, 0, len(history)+1)
	for _, m := range history {
		lines = append(lines, string(m.Role)+": "+m.Content)
	}
	lines = append(lines, string(model.RoleUser)+": "+message)
	return strings.Join(lines, "\n")
}

func parseFragment(raw string) (model.Profile, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```JSON")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start < 0 || end <= start {
		return model.Profile{}, fmt.Errorf("%w: no json object found", ErrUnparsable)
	}
	clean = clean[start : end+1]

	dec := json.NewDecoder(bytes.NewReader([]byte(clean)))
	dec.UseNumber()
	var data map[string]interface{}
	if err := dec.Decode(&data); err != nil {
		return model.Profile{}, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	var p model.Profile
	p.FirstName = asString(data[keyFirstName])
	p.LastName = asString(data[keyLastName])
	p.IDNumber = asDigits(data[keyIDNumber])
	p.Gender = asString(data[keyGender])
	p.Age = asInt(data[keyAge])
	p.HMO = asString(data[keyHMO])
	p.HMOCard = asDigits(data[keyHMOCard])
	p.Tier = asString(data[keyTier])
	return p, nil
}

func asString(v interface{}) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// asDigits accepts identifiers the model emitted either as strings or as
// bare JSON numbers.
func asDigits(v interface{}) *string {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			s := strconv.FormatInt(i, 10)
			return &s
		}
		s := n.String()
		return &s
	}
	return asString(v)
}

func asInt(v interface{}) *int {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			n := int(i)
			return &n
		}
		if f, err := x.Float64(); err == nil && f == float64(int(f)) {
			n := int(f)
			return &n
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			return &i
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
