package state

import (
	"context"
	"testing"

	"github.com/aki307/frext/model"
)

type fakeTemplates struct {
	categories []string
	resp       *model.APIResponse[[]model.Template]
}

func (f *fakeTemplates) GetTemplates(_ context.Context, category string) *model.APIResponse[[]model.Template] {
	f.categories = append(f.categories, category)
	return f.resp
}

func templateList() *[]model.Template {
	return &[]model.Template{
		{ID: "invoice", Name: "請求書", Category: "business", IsActive: true},
		{ID: "receipt", Name: "領収書", Category: "business", IsActive: true},
		{ID: "legacy", Name: "旧フォーマット", Category: "business", IsActive: false},
	}
}

func TestTemplatesLoadAndSelect(t *testing.T) {
	api := &fakeTemplates{resp: model.OK(templateList(), "")}
	tpl := NewTemplates(api)
	ctx := context.Background()

	tpl.Load(ctx, "business")
	if len(api.categories) != 1 || api.categories[0] != "business" {
		t.Errorf("Expected category business, got %v", api.categories)
	}
	if n := len(*tpl.Data()); n != 3 {
		t.Errorf("Expected 3 templates, got %d", n)
	}
	if n := len(tpl.Active()); n != 2 {
		t.Errorf("Expected 2 active templates, got %d", n)
	}

	if _, ok := tpl.Select("legacy"); ok {
		t.Error("Expected inactive template to be unselectable")
	}
	if _, ok := tpl.Select("missing"); ok {
		t.Error("Expected unknown template to be unselectable")
	}
	if got, ok := tpl.Select("receipt"); !ok || got.Name != "領収書" {
		t.Fatalf("Expected receipt selected, got %+v", got)
	}
	if tpl.Selected() == nil || tpl.Selected().ID != "receipt" {
		t.Error("Expected receipt to stay selected")
	}

	tpl.Refetch(ctx)
	if api.categories[1] != "business" {
		t.Errorf("Expected refetch to reuse category, got %v", api.categories)
	}
}

func TestTemplatesSelectionDroppedOnFailure(t *testing.T) {
	api := &fakeTemplates{resp: model.OK(templateList(), "")}
	tpl := NewTemplates(api)
	ctx := context.Background()

	tpl.Load(ctx, "")
	tpl.Select("invoice")

	api.resp = model.Failure[[]model.Template]("HTTP error! status: 503", nil)
	tpl.Load(ctx, "")

	if tpl.Error() != "HTTP error! status: 503" {
		t.Errorf("Unexpected error %q", tpl.Error())
	}
	if tpl.Data() != nil || tpl.Selected() != nil || tpl.Active() != nil {
		t.Error("Expected no data and no selection after failure")
	}
}

type fakeProfile struct{ resp *model.APIResponse[model.User] }

func (f fakeProfile) GetUserProfile(context.Context) *model.APIResponse[model.User] { return f.resp }

func TestUserProfileLoad(t *testing.T) {
	p := NewUserProfile(fakeProfile{resp: model.OK(&model.User{ID: "u-1", Name: "Demo"}, "")})
	p.Load(context.Background())

	if p.Data() == nil || p.Data().Name != "Demo" {
		t.Errorf("Unexpected profile %+v", p.Data())
	}
}
