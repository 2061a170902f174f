package kb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xxxsen/hmobot/internal/model"
)

// ErrMalformedDocument marks a source document that lacks a topic heading
// or a benefit table.
var ErrMalformedDocument = errors.New("malformed knowledge base document")

const (
	benefitsHeading = "טיפולים והטבות"
	phoneLabel      = "טלפון להזמנת טיפולים: "
	moreInfoLabel   = "מידע נוסף: "
)

var (
	phoneMarkers   = []string{"מספרי טלפון", "phone numbers"}
	detailsMarkers = []string{"לפרטים נוספים", "more information"}
)

// BenefitRow is one treatment row of the benefit table.
type BenefitRow struct {
	Treatment string
	Benefits  map[model.HMO]string
}

// Document is the parsed form of one knowledge-base file.
type Document struct {
	Topic       string
	Description string
	Rows        []BenefitRow
	Phones      map[model.HMO]string
	URLs        map[model.HMO]string
}

func newDocument() *Document {
	return &Document{
		Phones: make(map[model.HMO]string),
		URLs:   make(map[model.HMO]string),
	}
}

// Chunks renders one chunk per provider, in column order.
func (d *Document) Chunks() []model.Chunk {
	chunks := make([]model.Chunk, 0, len(model.AllHMOs))
	for _, h := range model.AllHMOs {
		lines := []string{
			d.Topic + " | " + h.Hebrew(),
			d.Description,
			"",
			benefitsHeading,
		}
		for _, row := range d.Rows {
			lines = append(lines, "• "+row.Treatment+" – "+row.Benefits[h])
		}
		if phone := d.Phones[h]; phone != "" {
			lines = append(lines, "", phoneLabel+phone)
		}
		if url := d.URLs[h]; url != "" {
			lines = append(lines, moreInfoLabel+url)
		}
		chunks = append(chunks, model.Chunk{
			HMO:   h,
			Topic: d.Topic,
			Text:  strings.Join(lines, "\n"),
		})
	}
	return chunks
}

func (d *Document) addRow(cells []string) {
	if len(cells) == 0 {
		return
	}
	row := BenefitRow{Treatment: cells[0], Benefits: make(map[model.HMO]string, len(model.AllHMOs))}
	for _, h := range model.AllHMOs {
		if col := h.Column(); col < len(cells) {
			row.Benefits[h] = cells[col]
		} else {
			row.Benefits[h] = ""
		}
	}
	d.Rows = append(d.Rows, row)
}

// addPhone handles a "<hmo>: <number>" list entry.
func (d *Document) addPhone(item string) {
	h, ok := model.HasPrefixHMO(item)
	if !ok {
		return
	}
	_, phone, found := strings.Cut(item, ":")
	if !found {
		return
	}
	if phone = clean(phone); phone != "" {
		d.Phones[h] = phone
	}
}

func (d *Document) addURL(item, href string) {
	h, ok := model.HasPrefixHMO(item)
	if !ok || strings.TrimSpace(href) == "" {
		return
	}
	d.URLs[h] = strings.TrimSpace(href)
}

func (d *Document) validate(hasTable bool) error {
	if d.Topic == "" {
		return fmt.Errorf("%w: missing topic heading", ErrMalformedDocument)
	}
	if !hasTable {
		return fmt.Errorf("%w: missing benefit table", ErrMalformedDocument)
	}
	return nil
}

type section int

const (
	sectionNone section = iota
	sectionPhones
	sectionDetails
)

func classifySection(heading string) section {
	lower := strings.ToLower(heading)
	for _, m := range phoneMarkers {
		if strings.Contains(lower, m) {
			return sectionPhones
		}
	}
	for _, m := range detailsMarkers {
		if strings.Contains(lower, m) {
			return sectionDetails
		}
	}
	return sectionNone
}

// clean collapses whitespace runs to single spaces and trims the result.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
