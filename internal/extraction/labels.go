package extraction

import "fmt"

// Label names a field region on the card.
type Label string

const (
	LabelBirthDate Label = "birth_date"
	LabelIDNumber  Label = "id_number"
	LabelName      Label = "name"
	LabelSurname   Label = "surname"
)

// Labels returns the four field labels in recognition order.
func Labels() []Label {
	return []Label{LabelBirthDate, LabelIDNumber, LabelName, LabelSurname}
}

// ParseLabel returns the Label named by s, or an error for any other value.
func ParseLabel(s string) (Label, error) {
	l := Label(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown field label %q", s)
	}
	return l, nil
}

// Valid reports whether l is one of the four field labels.
func (l Label) Valid() bool {
	switch l {
	case LabelBirthDate, LabelIDNumber, LabelName, LabelSurname:
		return true
	}
	return false
}
