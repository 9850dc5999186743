package extraction

import (
	"image"
	"strings"
)

// Region is one labeled bounding box reported by a Detector.
type Region struct {
	Label      Label           `json:"label"`
	Box        image.Rectangle `json:"box"`
	Confidence float64         `json:"confidence"`
}

// Result holds the recognized text for each field. An empty field means the
// label was not detected or nothing could be read from its crop.
type Result struct {
	IdentityNumber string `json:"identity_number"`
	Surname        string `json:"surname"`
	Name           string `json:"name"`
	BirthDate      string `json:"birth_date"`
}

// Field returns the value stored for label.
func (r Result) Field(label Label) string {
	switch label {
	case LabelIDNumber:
		return r.IdentityNumber
	case LabelSurname:
		return r.Surname
	case LabelName:
		return r.Name
	case LabelBirthDate:
		return r.BirthDate
	}
	return ""
}

// Missing returns the labels whose value is empty, in Labels order.
func (r Result) Missing() []Label {
	var missing []Label
	for _, l := range Labels() {
		if r.Field(l) == "" {
			missing = append(missing, l)
		}
	}
	return missing
}

// NormalizeBirthDate converts the dotted date printed on the card to the
// dashed form used in storage.
func NormalizeBirthDate(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ".", "-")
}

// Assemble builds a Result from per-label text. Absent labels become "".
func Assemble(texts map[Label]string) Result {
	return Result{
		IdentityNumber: strings.TrimSpace(texts[LabelIDNumber]),
		Surname:        strings.TrimSpace(texts[LabelSurname]),
		Name:           strings.TrimSpace(texts[LabelName]),
		BirthDate:      NormalizeBirthDate(texts[LabelBirthDate]),
	}
}
