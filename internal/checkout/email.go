package checkout

import (
	"bytes"
	"fmt"
	"html/template"

	qrcode "github.com/skip2/go-qrcode"

	"townbeat/internal/domain"
	"townbeat/internal/notifications"
)

var receiptTmpl = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": func(cents int64) string {
		return fmt.Sprintf("$%.2f", float64(cents)/100)
	},
}).Parse(`
<html>
<body style="font-family: sans-serif; color: #222;">
	<h2>Thanks for your order from {{.SiteName}}!</h2>
	<p>Your payment was received. Show the attached QR code (or the pickup
	code below) when collecting your order.</p>
	<p><strong>Pickup code: {{.Order.PickupCode}}</strong></p>
	<table cellpadding="6" style="border-collapse: collapse;">
		<tr>
			<th align="left">Item</th><th align="right">Qty</th><th align="right">Price</th>
		</tr>
		{{range .Order.Items}}
		<tr>
			<td>{{.Name}}</td>
			<td align="right">{{.Qty}}</td>
			<td align="right">{{money .UnitPrice}}</td>
		</tr>
		{{end}}
		<tr>
			<td colspan="2" align="right"><strong>Total</strong></td>
			<td align="right"><strong>{{money .Order.Total}}</strong></td>
		</tr>
	</table>
</body>
</html>
`))

type receiptData struct {
	SiteName string
	Order    *domain.Order
}

// receiptEmail renders the invoice email for a paid order, with the pickup
// QR code attached as a PNG.
func receiptEmail(order *domain.Order, to, siteName string) (notifications.Email, error) {
	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, receiptData{SiteName: siteName, Order: order}); err != nil {
		return notifications.Email{}, fmt.Errorf("failed to render receipt: %w", err)
	}

	png, err := qrcode.Encode(order.PickupCode, qrcode.Medium, 256)
	if err != nil {
		return notifications.Email{}, fmt.Errorf("failed to encode pickup QR: %w", err)
	}

	return notifications.Email{
		To:      to,
		Subject: fmt.Sprintf("Your %s order receipt", siteName),
		Body:    buf.String(),
		HTML:    true,
		Attachments: []notifications.Attachment{
			{Filename: "pickup-qr.png", ContentType: "image/png", Data: png},
		},
	}, nil
}
