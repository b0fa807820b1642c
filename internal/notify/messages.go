package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
)

const dateLayout = "Monday, January 2, 2006"

func Subject(c Confirmation) string {
	return fmt.Sprintf("Your %s booking is received - Ref: %s", c.ServiceName, c.Reference)
}

func PlainText(c Confirmation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", c.Customer.FirstName)
	fmt.Fprintf(&b, "We received your booking for %s.\n\n", c.ServiceName)
	b.WriteString("Booking details:\n")
	fmt.Fprintf(&b, "Reference: %s\n", c.Reference)
	fmt.Fprintf(&b, "Date: %s\n", c.Date.In(time.UTC).Format(dateLayout))
	fmt.Fprintf(&b, "Guests: %d\n", c.GuestCount)
	if c.AdditionalHours > 0 {
		fmt.Fprintf(&b, "Additional hours: %d\n", c.AdditionalHours)
	}
	if len(c.AddOns) > 0 {
		names := make([]string, 0, len(c.AddOns))
		for _, a := range c.AddOns {
			names = append(names, a.Name)
		}
		fmt.Fprintf(&b, "Add-ons: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "Total: $%s\n\n", models.FormatMoney(c.Total))
	b.WriteString("We will contact you shortly to confirm the details.\n")
	return b.String()
}

// SMSBody stays within a single SMS segment for typical service names.
func SMSBody(c Confirmation) string {
	return fmt.Sprintf("Booking %s received: %s on %s, total $%s.",
		c.Reference, c.ServiceName, c.Date.In(time.UTC).Format("Jan 2, 2006"), models.FormatMoney(c.Total))
}

var htmlTemplate = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<body>
<p>Hello {{.FirstName}},</p>
<p>We received your booking for <strong>{{.ServiceName}}</strong>.</p>
<table>
<tr><td>Reference</td><td>{{.Reference}}</td></tr>
<tr><td>Date</td><td>{{.Date}}</td></tr>
<tr><td>Guests</td><td>{{.GuestCount}}</td></tr>
{{if .AdditionalHours}}<tr><td>Additional hours</td><td>{{.AdditionalHours}}</td></tr>{{end}}
{{range .AddOns}}<tr><td>Add-on</td><td>{{.Name}} (${{.Price}})</td></tr>{{end}}
<tr><td>Total</td><td>${{.Total}}</td></tr>
</table>
</body>
</html>
`))

type htmlAddOn struct {
	Name  string
	Price string
}

func HTML(c Confirmation) (string, error) {
	data := struct {
		FirstName       string
		ServiceName     string
		Reference       string
		Date            string
		GuestCount      int
		AdditionalHours int
		AddOns          []htmlAddOn
		Total           string
	}{
		FirstName:       c.Customer.FirstName,
		ServiceName:     c.ServiceName,
		Reference:       c.Reference,
		Date:            c.Date.In(time.UTC).Format(dateLayout),
		GuestCount:      c.GuestCount,
		AdditionalHours: c.AdditionalHours,
		Total:           models.FormatMoney(c.Total),
	}
	for _, a := range c.AddOns {
		data.AddOns = append(data.AddOns, htmlAddOn{Name: a.Name, Price: models.FormatMoney(a.Price)})
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render confirmation email: %w", err)
	}
	return buf.String(), nil
}
