// Package qc holds the QC-online form rules: box lines with a quantity each,
// where a packing box forces quantity 1 and excludes further lines.
package qc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ekamauln/livo-next/internal/upstream"
)

var (
	ErrPackingBoxPresent = errors.New("a packing box is already selected, no more lines can be added")
	ErrQuantityLocked    = errors.New("quantity is fixed to 1 for a packing box")
	ErrLineOutOfRange    = errors.New("line index out of range")
)

// PackingQuantity is the only quantity allowed on a packing box line.
const PackingQuantity = 1

// Box is a QC box as the form sees it.
type Box struct {
	ID   uint
	Code string
	Name string
}

func BoxFrom(b upstream.Box) Box {
	return Box{ID: b.ID, Code: b.Code, Name: b.Name}
}

// IsPackingBox reports whether code or name identifies a packing box.
func IsPackingBox(b Box) bool {
	return strings.Contains(strings.ToLower(b.Code), "packing") ||
		strings.Contains(strings.ToLower(b.Name), "packing")
}

type Line struct {
	Box      *Box
	Quantity int
	// Locked is true while a packing box is selected; quantity edits are refused.
	Locked bool
}

func (l Line) packing() bool {
	return l.Box != nil && IsPackingBox(*l.Box)
}

// Form is one QC-online submission being edited. A new form has a single empty line.
type Form struct {
	Tracking string
	Lines    []Line
}

func NewForm(tracking string) *Form {
	return &Form{Tracking: tracking, Lines: []Line{{Quantity: 1}}}
}

func (f *Form) line(i int) (*Line, error) {
	if i < 0 || i >= len(f.Lines) {
		return nil, fmt.Errorf("%w: %d", ErrLineOutOfRange, i)
	}
	return &f.Lines[i], nil
}

// SelectBox sets the box of line i. A packing box forces the quantity to 1 and
// locks it, and is refused while the form has other lines. Any other box
// unlocks the quantity and keeps its current value.
func (f *Form) SelectBox(i int, box Box) error {
	l, err := f.line(i)
	if err != nil {
		return err
	}
	if IsPackingBox(box) && len(f.Lines) > 1 {
		return ErrPackingBoxPresent
	}
	b := box
	l.Box = &b
	if IsPackingBox(b) {
		l.Quantity = PackingQuantity
		l.Locked = true
		return nil
	}
	l.Locked = false
	return nil
}

func (f *Form) SetQuantity(i, q int) error {
	l, err := f.line(i)
	if err != nil {
		return err
	}
	if l.Locked {
		return ErrQuantityLocked
	}
	l.Quantity = q
	return nil
}

func (f *Form) hasPacking() bool {
	for _, l := range f.Lines {
		if l.packing() {
			return true
		}
	}
	return false
}

// CanAddLine is false while any line holds a packing box.
func (f *Form) CanAddLine() bool {
	return !f.hasPacking()
}

func (f *Form) AddLine() error {
	if !f.CanAddLine() {
		return ErrPackingBoxPresent
	}
	f.Lines = append(f.Lines, Line{Quantity: 1})
	return nil
}

func (f *Form) RemoveLine(i int) error {
	if _, err := f.line(i); err != nil {
		return err
	}
	f.Lines = append(f.Lines[:i], f.Lines[i+1:]...)
	return nil
}

// Validate returns field errors keyed like the submission payload
// (tracking, details, details[i].box_id, details[i].quantity). nil means valid.
func (f *Form) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(f.Tracking) == "" {
		errs["tracking"] = "Tracking is required"
	}
	if len(f.Lines) == 0 {
		errs["details"] = "At least one box is required"
	}

	packing := 0
	for i, l := range f.Lines {
		if l.Box == nil || l.Box.ID == 0 {
			errs[fmt.Sprintf("details[%d].box_id", i)] = "Box is required"
			continue
		}
		if l.packing() {
			packing++
			if packing > 1 {
				errs[fmt.Sprintf("details[%d].box_id", i)] = "Only one packing box is allowed"
			}
			if l.Quantity != PackingQuantity {
				errs[fmt.Sprintf("details[%d].quantity", i)] = "Packing box quantity must be 1"
			}
			continue
		}
		if l.Quantity < 1 {
			errs[fmt.Sprintf("details[%d].quantity", i)] = "Quantity must be at least 1"
		}
	}
	if packing > 0 && len(f.Lines) > 1 {
		errs["details"] = "A packing box cannot be combined with other boxes"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Submission converts a valid form into the upstream payload.
func (f *Form) Submission() upstream.QCOnlineInput {
	in := upstream.QCOnlineInput{
		Tracking: strings.TrimSpace(f.Tracking),
		Details:  make([]upstream.QCOnlineDetailInput, 0, len(f.Lines)),
	}
	for _, l := range f.Lines {
		if l.Box == nil {
			continue
		}
		in.Details = append(in.Details, upstream.QCOnlineDetailInput{BoxID: l.Box.ID, Quantity: l.Quantity})
	}
	return in
}

// Replay rebuilds a form from a submitted payload the way a user would have
// filled it in, so the same rules apply server side. boxes resolves box ids;
// an unknown id leaves the line without a box.
func Replay(in upstream.QCOnlineInput, boxes map[uint]Box) (*Form, error) {
	f := &Form{Tracking: in.Tracking}
	for i, d := range in.Details {
		if i > 0 {
			if err := f.AddLine(); err != nil {
				return f, err
			}
		} else {
			f.Lines = []Line{{Quantity: 1}}
		}
		if b, ok := boxes[d.BoxID]; ok {
			if err := f.SelectBox(i, b); err != nil {
				return f, err
			}
		}
		if f.Lines[i].Locked {
			// keep the submitted quantity so Validate reports a mismatch
			f.Lines[i].Quantity = d.Quantity
			continue
		}
		if err := f.SetQuantity(i, d.Quantity); err != nil {
			return f, err
		}
	}
	return f, nil
}
