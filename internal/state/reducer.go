package state

import (
	"time"

	"github.com/five82/folio/internal/gallery"
)

// Mode selects what a pending form submission does.
type Mode string

const (
	ModeAdd  Mode = "add"
	ModeEdit Mode = "edit"
)

// CollectionState is the gallery data the page works against.
type CollectionState struct {
	Images   []gallery.Image
	Selected *gallery.Image
	Mode     Mode
}

// Initial returns the empty state a page starts from.
func Initial() CollectionState {
	return CollectionState{Images: []gallery.Image{}, Mode: ModeAdd}
}

// Action is a state transition request.
type Action interface {
	Kind() string
}

// Init replaces the image list wholesale. Paging callers pass the
// concatenated list of every page loaded so far.
type Init struct{ Images []gallery.Image }

// Add prepends a new record. Missing ID and CreatedAt are filled in.
type Add struct{ Image gallery.Image }

// Update merges a patch into the record with the matching id.
type Update struct{ Patch gallery.Patch }

// Delete removes the record with the given id.
type Delete struct{ ID string }

// SetMode switches between add and edit.
type SetMode struct{ Mode Mode }

// SetSelected sets or, with nil, clears the selected record.
type SetSelected struct{ Image *gallery.Image }

func (Init) Kind() string        { return "init" }
func (Add) Kind() string         { return "add" }
func (Update) Kind() string      { return "update" }
func (Delete) Kind() string      { return "delete" }
func (SetMode) Kind() string     { return "set_mode" }
func (SetSelected) Kind() string { return "set_selected_image" }

// Reducer applies actions to a CollectionState. Now and NewID are the only
// inputs that do not come from the action; fix them for deterministic output.
type Reducer struct {
	Now   func() time.Time
	NewID func() string
}

// Reduce returns the state produced by applying a to s. The input state is
// never modified. Unknown actions return s unchanged.
func (r Reducer) Reduce(s CollectionState, a Action) CollectionState {
	switch a := a.(type) {
	case Init:
		images := make([]gallery.Image, len(a.Images))
		copy(images, a.Images)
		s.Images = images
		return s

	case Add:
		img := a.Image
		if img.ID == "" {
			img.ID = r.newID()
		}
		if img.CreatedAt.IsZero() {
			img.CreatedAt = r.now()
		}
		images := make([]gallery.Image, 0, len(s.Images)+1)
		images = append(images, img)
		images = append(images, s.Images...)
		s.Images = images
		return s

	case Update:
		idx := indexOf(s.Images, a.Patch.ID)
		if idx < 0 {
			return s
		}
		images := make([]gallery.Image, len(s.Images))
		copy(images, s.Images)
		images[idx] = a.Patch.Apply(images[idx])
		s.Images = images
		return s

	case Delete:
		if indexOf(s.Images, a.ID) < 0 {
			return s
		}
		images := make([]gallery.Image, 0, len(s.Images)-1)
		for _, img := range s.Images {
			if img.ID != a.ID {
				images = append(images, img)
			}
		}
		s.Images = images
		return s

	case SetMode:
		s.Mode = a.Mode
		return s

	case SetSelected:
		if a.Image == nil {
			s.Selected = nil
			return s
		}
		sel := *a.Image
		s.Selected = &sel
		return s
	}
	return s
}

func (r Reducer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r Reducer) newID() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return gallery.NewID()
}

func indexOf(images []gallery.Image, id string) int {
	for i := range images {
		if images[i].ID == id {
			return i
		}
	}
	return -1
}
