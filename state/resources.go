package state

import (
	"context"
	"sync"

	"github.com/aki307/frext/model"
)

type TemplateLister interface {
	GetTemplates(ctx context.Context, category string) *model.APIResponse[[]model.Template]
}

// Templates loads the template list and remembers the user's selection.
type Templates struct {
	*Request[[]model.Template]
	api TemplateLister

	mu       sync.RWMutex
	category string
	selected string
}

func NewTemplates(api TemplateLister) *Templates {
	return &Templates{Request: NewRequest[[]model.Template](), api: api}
}

// Load fetches templates for category ("" for all). A selection that is no
// longer listed is dropped.
func (t *Templates) Load(ctx context.Context, category string) *model.APIResponse[[]model.Template] {
	t.mu.Lock()
	t.category = category
	t.mu.Unlock()

	resp := t.Execute(ctx, func(ctx context.Context) *model.APIResponse[[]model.Template] {
		return t.api.GetTemplates(ctx, category)
	})

	t.mu.Lock()
	if t.selected != "" && t.find(t.selected) == nil {
		t.selected = ""
	}
	t.mu.Unlock()
	return resp
}

// Refetch repeats the last Load.
func (t *Templates) Refetch(ctx context.Context) *model.APIResponse[[]model.Template] {
	t.mu.RLock()
	category := t.category
	t.mu.RUnlock()
	return t.Load(ctx, category)
}

func (t *Templates) find(id string) *model.Template {
	data := t.Data()
	if data == nil {
		return nil
	}
	for i := range *data {
		if (*data)[i].ID == id {
			tpl := (*data)[i]
			return &tpl
		}
	}
	return nil
}

// Select marks an active template as chosen.
func (t *Templates) Select(id string) (*model.Template, bool) {
	tpl := t.find(id)
	if tpl == nil || !tpl.IsActive {
		return nil, false
	}
	t.mu.Lock()
	t.selected = id
	t.mu.Unlock()
	return tpl, true
}

func (t *Templates) Selected() *model.Template {
	t.mu.RLock()
	id := t.selected
	t.mu.RUnlock()
	if id == "" {
		return nil
	}
	return t.find(id)
}

// Active returns the loaded templates that can be selected.
func (t *Templates) Active() []model.Template {
	data := t.Data()
	if data == nil {
		return nil
	}
	out := make([]model.Template, 0, len(*data))
	for _, tpl := range *data {
		if tpl.IsActive {
			out = append(out, tpl)
		}
	}
	return out
}

type ProfileFetcher interface {
	GetUserProfile(ctx context.Context) *model.APIResponse[model.User]
}

type UserProfile struct {
	*Request[model.User]
	api ProfileFetcher
}

func NewUserProfile(api ProfileFetcher) *UserProfile {
	return &UserProfile{Request: NewRequest[model.User](), api: api}
}

func (u *UserProfile) Load(ctx context.Context) *model.APIResponse[model.User] {
	return u.Execute(ctx, u.api.GetUserProfile)
}
