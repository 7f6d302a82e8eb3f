package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vsuitehq/gigster-backend/internal/models"
)

func TestRender_NumberFieldAsCurrency(t *testing.T) {
	tpl := &models.Template{
		Variables: models.FieldDefs{
			{Name: "budget", Label: "Budget", Type: models.FieldTypeNumber},
		},
	}

	out := Render(tpl, models.ValuesMap{"budget": float64(1500)}, "Website Redesign")

	assert.Contains(t, out, "# Website Redesign")
	assert.Contains(t, out, "Amount:")
	assert.Contains(t, out, "1,500.00")
}

func TestRender_Idempotent(t *testing.T) {
	tpl := &models.Template{
		Variables: models.FieldDefs{
			{Name: "scope", Label: "Scope", Type: models.FieldTypeTextarea},
			{Name: "budget", Label: "Budget", Type: models.FieldTypeNumber},
			{Name: "start", Label: "Start Date", Type: models.FieldTypeDate},
			{Name: "items", Label: "Line Items", Type: models.FieldTypeLineItems},
		},
	}
	values := models.ValuesMap{
		"scope":  "Full redesign of the marketing site",
		"budget": float64(12500.5),
		"start":  "2026-03-01",
		"items": []interface{}{
			map[string]interface{}{"description": "Design", "quantity": float64(2), "cost": float64(50)},
		},
	}

	first := Render(tpl, values, "Proposal")
	second := Render(tpl, values, "Proposal")

	assert.Equal(t, first, second)
}

func TestRender_LineItemsTotal(t *testing.T) {
	tpl := &models.Template{
		Variables: models.FieldDefs{
			{Name: "items", Label: "Work Items", Type: models.FieldTypeLineItems},
		},
	}
	values := models.ValuesMap{
		"items": []interface{}{
			map[string]interface{}{"description": "Design", "quantity": float64(2), "cost": float64(50)},
			map[string]interface{}{"description": "Development", "quantity": float64(10), "cost": float64(120.5)},
		},
	}

	out := Render(tpl, values, "Estimate")

	// 2*50 + 10*120.5 = 1305.00
	assert.Contains(t, out, "**Total: $1,305.00**")
	assert.Contains(t, out, "| Design | 2 | 50.00 | 100.00 |")
}

func TestRender_EmptyLineItems(t *testing.T) {
	tpl := &models.Template{
		Variables: models.FieldDefs{
			{Name: "items", Label: "Work Items", Type: models.FieldTypeLineItems},
		},
	}

	out := Render(tpl, models.ValuesMap{"items": []interface{}{}}, "Estimate")

	assert.Contains(t, out, "_No items specified._")
	assert.NotContains(t, out, "| Description |")
}

func TestRender_DateField(t *testing.T) {
	tpl := &models.Template{
		Variables: models.FieldDefs{
			{Name: "deadline", Label: "Deadline", Type: models.FieldTypeDate},
		},
	}

	out := Render(tpl, models.ValuesMap{"deadline": "2026-03-01"}, "Timeline")
	assert.Contains(t, out, "March 1, 2026")

	empty := Render(tpl, models.ValuesMap{}, "Timeline")
	assert.Contains(t, empty, "Not specified")
}

func TestRender_LegacyContentSubstitution(t *testing.T) {
	content := "Dear {{client}}, your budget is {{budget}}. Regards, {{unknown}}"
	tpl := &models.Template{Content: &content}

	out := Render(tpl, models.ValuesMap{"client": "Acme", "budget": float64(300)}, "ignored")

	assert.Contains(t, out, "Dear Acme")
	assert.Contains(t, out, "your budget is 300")
	// Несовпавший плейсхолдер остаётся как есть.
	assert.Contains(t, out, "{{unknown}}")
}

func TestRender_LegacyValueWithPlaceholderStaysLiteral(t *testing.T) {
	content := "{{a}}"
	tpl := &models.Template{Content: &content}
	values := models.ValuesMap{"a": "{{b}}", "b": "x"}

	first := Render(tpl, values, "ignored")

	// Подставленное значение не сканируется повторно: {{b}} внутри
	// значения a остаётся буквальным текстом при любом порядке ключей.
	assert.Equal(t, "{{b}}", first)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Render(tpl, values, "ignored"))
	}
}

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{1500, "1,500.00"},
		{1234567.891, "1,234,567.89"},
		{-42.5, "-42.50"},
		{999.999, "1,000.00"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatMoney(tc.in), "FormatMoney(%v)", tc.in)
	}
}
