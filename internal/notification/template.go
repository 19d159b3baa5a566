package notification

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"servicedesk/internal/domain"
)

// TemplateContext holds the values available to message templates.
type TemplateContext struct {
	ClientName   string
	OrderNumber  string
	StoreName    string
	CompanyName  string
	Status       string
	TotalAmount  float64
	PausedReason *string
	Items        []domain.OrderItem
}

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Render substitutes {{placeholder}} variables in a single pass over the
// template. Each placeholder is resolved independently, so substituted text is
// never re-matched. Unknown placeholders are left verbatim.
func Render(template string, ctx TemplateContext) string {
	resolvers := map[string]func() string{
		"clientName":   func() string { return ctx.ClientName },
		"orderNumber":  func() string { return ctx.OrderNumber },
		"storeName":    func() string { return ctx.StoreName },
		"companyName":  func() string { return ctx.CompanyName },
		"status":       func() string { return domain.OrderStatusLabel(ctx.Status) },
		"totalAmount":  func() string { return FormatAmount(ctx.TotalAmount) },
		"services":     func() string { return serviceLines(ctx.Items) },
		"pausedReason": func() string { return pausedReasonLine(ctx.PausedReason) },
	}

	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if resolve, ok := resolvers[name]; ok {
			return resolve()
		}
		return match
	})
}

// FormatAmount renders a money value with two decimals and no currency symbol.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// serviceLines renders one line per item: "name (Nx) - lineTotal".
func serviceLines(items []domain.OrderItem) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%s (%dx) - %s", item.ServiceName, item.Quantity, FormatAmount(item.LineTotal()))
	}
	return strings.Join(lines, "\n")
}

// pausedReasonLine expands to a labeled line when a reason exists and to an
// empty string otherwise, so templates can embed it without conditionals.
func pausedReasonLine(reason *string) string {
	if reason == nil || *reason == "" {
		return ""
	}
	return "Motivo: " + *reason
}

var defaultTemplates = map[string]string{
	domain.OrderStatusReceived: "Olá {{clientName}}! 👋\n\nRecebemos sua ordem de serviço *{{orderNumber}}* na {{storeName}}.\n\nServiços:\n{{services}}\n\nTotal: R$ {{totalAmount}}\n\nAvisaremos você a cada atualização.",
	domain.OrderStatusInProgress: "Olá {{clientName}}!\n\nSua ordem de serviço *{{orderNumber}}* já está em andamento. 🔧\n\nQualquer novidade, falamos por aqui.",
	domain.OrderStatusPaused: "Olá {{clientName}},\n\nSua ordem de serviço *{{orderNumber}}* está pausada no momento.\n{{pausedReason}}\n\nRetomaremos assim que possível.",
	domain.OrderStatusFinished: "Boa notícia, {{clientName}}! ✅\n\nSua ordem de serviço *{{orderNumber}}* está pronta para retirada na {{storeName}}.\n\nTotal: R$ {{totalAmount}}",
	domain.OrderStatusPaid: "Obrigado, {{clientName}}! 🙏\n\nPagamento da ordem *{{orderNumber}}* confirmado.\n\nTotal: R$ {{totalAmount}}\n\nO comprovante segue em anexo.",
}

// DefaultTemplate returns the built-in fallback for a status, so rendering
// never blocks on tenant configuration.
func DefaultTemplate(status string) string {
	if tmpl, ok := defaultTemplates[status]; ok {
		return tmpl
	}
	return "Olá {{clientName}}, sua ordem de serviço {{orderNumber}} mudou para: {{status}}."
}
