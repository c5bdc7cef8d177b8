package service

import (
	"testing"

	"github.com/aki307/frext/model"
)

func TestCatalogList(t *testing.T) {
	c := NewCatalog()

	all := c.List("")
	if len(all) != len(defaultTemplates()) {
		t.Errorf("Expected %d templates, got %d", len(defaultTemplates()), len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ID > all[i].ID {
			t.Errorf("Expected templates sorted by id, got %s before %s", all[i-1].ID, all[i].ID)
		}
	}

	business := c.List("business")
	if len(business) != 2 {
		t.Errorf("Expected 2 business templates, got %d", len(business))
	}
	if len(c.List("unknown")) != 0 {
		t.Error("Expected no templates for unknown category")
	}
}

func TestCatalogGetAndUsage(t *testing.T) {
	c := NewCatalog(model.Template{ID: "memo", Name: "Memo", IsActive: true})

	if _, ok := c.Get("invoice"); ok {
		t.Error("Expected custom catalog to replace defaults")
	}

	c.RecordUsage("memo")
	c.RecordUsage("memo")
	c.RecordUsage("missing")

	got, ok := c.Get("memo")
	if !ok {
		t.Fatal("Expected memo template")
	}
	if got.UsageCount != 2 {
		t.Errorf("Expected usage 2, got %d", got.UsageCount)
	}

	// returned values are copies
	got.Name = "changed"
	if again, _ := c.Get("memo"); again.Name != "Memo" {
		t.Error("Expected catalog to be unaffected by caller edits")
	}
}
