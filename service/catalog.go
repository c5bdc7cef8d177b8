package service

import (
	"sort"
	"sync"

	"github.com/aki307/frext/model"
)

// Catalog holds the document templates offered by the mock backend.
type Catalog struct {
	mu        sync.RWMutex
	templates map[string]*model.Template
}

func defaultTemplates() []model.Template {
	return []model.Template{
		{
			ID:             "invoice",
			Name:           "請求書",
			Description:    "請求書から請求元、金額、支払期限を抽出します",
			Category:       "business",
			ExpectedFields: []string{"vendor", "invoiceNumber", "totalAmount", "dueDate"},
			IsActive:       true,
		},
		{
			ID:             "receipt",
			Name:           "領収書",
			Description:    "領収書から店舗名、日付、合計金額を抽出します",
			Category:       "business",
			ExpectedFields: []string{"store", "date", "totalAmount", "taxAmount"},
			IsActive:       true,
		},
		{
			ID:             "business_card",
			Name:           "名刺",
			Description:    "名刺から氏名、会社名、連絡先を抽出します",
			Category:       "contact",
			ExpectedFields: []string{"name", "company", "email", "phone"},
			IsActive:       true,
		},
		{
			ID:             "id_card",
			Name:           "本人確認書類",
			Description:    "身分証から氏名、生年月日、住所を抽出します",
			Category:       "identity",
			ExpectedFields: []string{"name", "birthDate", "address"},
			IsActive:       true,
		},
		{
			ID:             "handwritten_note",
			Name:           "手書きメモ",
			Description:    "手書き文字の読み取り（提供終了）",
			Category:       "general",
			ExpectedFields: []string{"text"},
			IsActive:       false,
		},
	}
}

// NewCatalog seeds the catalog with templates, or the built-in set when none are given.
func NewCatalog(templates ...model.Template) *Catalog {
	if len(templates) == 0 {
		templates = defaultTemplates()
	}
	c := &Catalog{templates: make(map[string]*model.Template, len(templates))}
	for i := range templates {
		t := templates[i]
		c.templates[t.ID] = &t
	}
	return c
}

// List returns templates in category ("" for all), sorted by id.
func (c *Catalog) List(category string) []model.Template {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Template, 0, len(c.templates))
	for _, t := range c.templates {
		if category != "" && t.Category != category {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Catalog) Get(id string) (model.Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.templates[id]
	if !ok {
		return model.Template{}, false
	}
	return *t, true
}

// RecordUsage bumps the usage counter of a known template.
func (c *Catalog) RecordUsage(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.templates[id]; ok {
		t.UsageCount++
	}
}
