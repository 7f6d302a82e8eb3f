// Package render собирает текст документа из шаблона и значений полей.
// Все функции чистые: одинаковый вход всегда даёт байт-в-байт одинаковый выход.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vsuitehq/gigster-backend/internal/models"
)

// Render возвращает готовый текст документа в Markdown-подобном формате.
// Если шаблон несёт легаси-контент с {{placeholder}}, выполняется буквальная
// подстановка значений; несовпавшие плейсхолдеры остаются как есть.
// Иначе документ синтезируется по упорядоченному списку полей шаблона.
func Render(tpl *models.Template, values models.ValuesMap, title string) string {
	if tpl.Content != nil && *tpl.Content != "" {
		return renderLegacy(*tpl.Content, values)
	}

	var b strings.Builder
	b.WriteString("# " + title + "\n")

	for _, field := range tpl.Variables {
		b.WriteString("\n## " + fieldLabel(field) + "\n\n")
		b.WriteString(renderField(field, values[field.Name]))
		b.WriteString("\n")
	}

	return b.String()
}

// renderLegacy выполняет подстановку {{name}} за один проход слева направо.
// Подставленные значения не сканируются повторно, поэтому результат не
// зависит от порядка ключей в values и плейсхолдеры внутри значений
// остаются буквальным текстом.
func renderLegacy(content string, values models.ValuesMap) string {
	var b strings.Builder
	b.Grow(len(content))

	for {
		open := strings.Index(content, "{{")
		if open < 0 {
			b.WriteString(content)
			return b.String()
		}
		end := strings.Index(content[open:], "}}")
		if end < 0 {
			b.WriteString(content)
			return b.String()
		}
		end += open

		name := content[open+2 : end]
		b.WriteString(content[:open])
		if value, ok := values[name]; ok {
			b.WriteString(stringify(value))
		} else {
			// Несовпавший плейсхолдер остаётся как есть.
			b.WriteString(content[open : end+2])
		}
		content = content[end+2:]
	}
}

// fieldLabel возвращает подпись поля, падая обратно на имя.
func fieldLabel(field models.FieldDef) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

// renderField форматирует значение одного поля по его типу.
func renderField(field models.FieldDef, value interface{}) string {
	switch field.Type {
	case models.FieldTypeLineItems:
		return renderLineItems(value)
	case models.FieldTypeNumber:
		return renderNumber(value)
	case models.FieldTypeDate:
		return renderDate(value)
	default:
		// email, phone, textarea и прочие типы выводятся как есть под подписью.
		s := stringify(value)
		if s == "" {
			return "Not specified"
		}
		return s
	}
}

// renderNumber выводит число как денежную сумму.
func renderNumber(value interface{}) string {
	f, ok := toFloat(value)
	if !ok {
		return "Not specified"
	}
	return "Amount: $" + FormatMoney(f)
}

// renderDate выводит дату в длинной форме или "Not specified".
func renderDate(value interface{}) string {
	s := stringify(value)
	if s == "" {
		return "Not specified"
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339, "01/02/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("January 2, 2006")
		}
	}

	return s
}

// renderLineItems выводит таблицу позиций и итоговую сумму Σ quantity×cost.
func renderLineItems(value interface{}) string {
	items, _ := value.([]interface{})
	if len(items) == 0 {
		return "_No items specified._"
	}

	var b strings.Builder
	b.WriteString("| Description | Quantity | Cost | Total |\n")
	b.WriteString("| --- | --- | --- | --- |\n")

	grandTotal := 0.0
	for _, raw := range items {
		item, _ := raw.(map[string]interface{})
		description := stringify(item["description"])
		quantity, _ := toFloat(item["quantity"])
		cost, ok := toFloat(item["cost"])
		if !ok {
			// Позиции счетов используют ключ rate вместо cost.
			cost, _ = toFloat(item["rate"])
		}

		lineTotal := quantity * cost
		grandTotal += lineTotal

		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			description, formatQuantity(quantity), FormatMoney(cost), FormatMoney(lineTotal)))
	}

	b.WriteString("\n**Total: $" + FormatMoney(grandTotal) + "**")
	return b.String()
}

// FormatMoney форматирует сумму с разделителем тысяч и двумя знаками: 1,500.00.
func FormatMoney(v float64) string {
	neg := v < 0
	v = math.Round(math.Abs(v)*100) / 100

	whole := int64(v)
	cents := int64(math.Round((v - float64(whole)) * 100))

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	out := fmt.Sprintf("%s.%02d", b.String(), cents)
	if neg {
		return "-" + out
	}
	return out
}

// formatQuantity выводит количество без хвостовых нулей.
func formatQuantity(q float64) string {
	if q == math.Trunc(q) {
		return strconv.FormatInt(int64(q), 10)
	}
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// toFloat приводит значение из JSON к float64.
func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// stringify приводит произвольное значение к строке для вывода.
func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
