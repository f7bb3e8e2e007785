package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/example/smartblinds/internal/datamodels/order"
)

// presentation keys a status to the banner text and color used in the
// customer email.
type presentation struct {
	Headline string
	Color    string
}

var statusPresentation = map[order.Status]presentation{
	order.StatusProcessing: {"Your blinds are being made", "#f59e0b"},
	order.StatusShipped:    {"Your order is on its way", "#22c55e"},
	order.StatusCompleted:  {"Your order is complete", "#10b981"},
	order.StatusCancelled:  {"Your order was cancelled", "#ef4444"},
}

var defaultPresentation = presentation{"Order update", "#3b82f6"}

func presentationFor(s order.Status) presentation {
	if p, ok := statusPresentation[s]; ok {
		return p
	}
	return defaultPresentation
}

type itemLine struct {
	ProductName string
	Quantity    int
	UnitPrice   string
	LineTotal   string
	Options     map[string]string
}

type emailData struct {
	Subject   string
	Headline  string
	Color     string
	OrderRef  string
	Customer  string
	Email     string
	Phone     string
	Address   string
	Items     []itemLine
	Total     string
	Tax       string
	Shipping  string
	Message   string
	HasStatus bool
	Previous  string
	Current   string
}

var emailTmpl = template.Must(template.New("order_email").Parse(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;color:#1f2937;margin:0;padding:0;background:#f9fafb;">
<div style="max-width:600px;margin:0 auto;padding:24px;">
  <div style="background:{{.Color}};color:#ffffff;padding:16px 24px;border-radius:8px 8px 0 0;">
    <h2 style="margin:0;">{{.Headline}}</h2>
    <p style="margin:4px 0 0;">Order {{.OrderRef}}</p>
  </div>
  <div style="background:#ffffff;padding:24px;border:1px solid #e5e7eb;border-top:none;border-radius:0 0 8px 8px;">
    {{if .Message}}<p>{{.Message}}</p>{{end}}
    {{if .HasStatus}}<p>Status changed from <strong>{{.Previous}}</strong> to <strong>{{.Current}}</strong>.</p>{{end}}
    <h3 style="border-bottom:1px solid #e5e7eb;padding-bottom:8px;">Items</h3>
    <table style="width:100%;border-collapse:collapse;">
      {{range .Items}}
      <tr>
        <td style="padding:8px 0;">
          {{.ProductName}} &times; {{.Quantity}}
          {{range $k, $v := .Options}}<br/><span style="color:#6b7280;font-size:12px;">{{$k}}: {{$v}}</span>{{end}}
        </td>
        <td style="padding:8px 0;text-align:right;">{{.LineTotal}}</td>
      </tr>
      {{end}}
      {{if .Tax}}<tr><td style="padding:4px 0;color:#6b7280;">Tax</td><td style="text-align:right;color:#6b7280;">{{.Tax}}</td></tr>{{end}}
      {{if .Shipping}}<tr><td style="padding:4px 0;color:#6b7280;">Shipping</td><td style="text-align:right;color:#6b7280;">{{.Shipping}}</td></tr>{{end}}
      <tr><td style="padding:8px 0;font-weight:bold;border-top:1px solid #e5e7eb;">Total</td><td style="text-align:right;font-weight:bold;border-top:1px solid #e5e7eb;">{{.Total}}</td></tr>
    </table>
    <h3 style="border-bottom:1px solid #e5e7eb;padding-bottom:8px;">Delivery</h3>
    <p style="margin:4px 0;">{{.Customer}}<br/>{{.Email}}{{if .Phone}}<br/>{{.Phone}}{{end}}{{if .Address}}<br/>{{.Address}}{{end}}</p>
  </div>
</div>
</body>
</html>`))

// formatCents renders a minor-unit amount as a major-unit price.
func formatCents(cents int64, currency string) string {
	symbol := "€"
	switch currency {
	case "usd":
		symbol = "$"
	case "gbp":
		symbol = "£"
	}
	return fmt.Sprintf("%s%.2f", symbol, float64(cents)/100.0)
}

func buildItemLines(o *order.Order) []itemLine {
	lines := make([]itemLine, 0, len(o.Items))
	for i := range o.Items {
		it := &o.Items[i]
		lines = append(lines, itemLine{
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   formatCents(it.UnitCents, o.Currency),
			LineTotal:   formatCents(it.UnitCents*int64(it.Quantity), o.Currency),
			Options:     it.ParsedOptions(),
		})
	}
	return lines
}

func renderOrderReceived(o *order.Order) (subject, body string, err error) {
	data := emailData{
		Headline: "Thanks for your order!",
		Color:    defaultPresentation.Color,
		OrderRef: o.OrderRef,
		Customer: o.CustomerName,
		Email:    o.CustomerEmail,
		Phone:    o.CustomerPhone,
		Address:  o.ShippingAddress,
		Items:    buildItemLines(o),
		Total:    formatCents(o.TotalCents, o.Currency),
		Message:  "We have received your order and will start making your blinds shortly.",
	}
	if o.TaxCents > 0 {
		data.Tax = formatCents(o.TaxCents, o.Currency)
	}
	if o.ShippingCents > 0 {
		data.Shipping = formatCents(o.ShippingCents, o.Currency)
	}
	subject = fmt.Sprintf("Order %s received", o.OrderRef)
	body, err = renderEmail(data)
	return subject, body, err
}

func renderStatusChanged(o *order.Order, previous, current order.Status) (subject, body string, err error) {
	p := presentationFor(current)
	data := emailData{
		Headline:  p.Headline,
		Color:     p.Color,
		OrderRef:  o.OrderRef,
		Customer:  o.CustomerName,
		Email:     o.CustomerEmail,
		Phone:     o.CustomerPhone,
		Address:   o.ShippingAddress,
		Items:     buildItemLines(o),
		Total:     formatCents(o.TotalCents, o.Currency),
		HasStatus: true,
		Previous:  string(previous),
		Current:   string(current),
	}
	subject = fmt.Sprintf("Order %s: %s", o.OrderRef, current)
	body, err = renderEmail(data)
	return subject, body, err
}

func renderEmail(data emailData) (string, error) {
	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
