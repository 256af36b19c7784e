package notify

import (
	"fmt"
	"strings"
	"time"

	"order-manager/internal/queue"
)

var nairobiTZ = func() *time.Location {
	loc, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		return time.UTC
	}
	return loc
}()

func orNA(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "N/A"
	}
	return *s
}

// RenderNewOrder builds the staff message for a freshly received order.
func RenderNewOrder(p queue.NewOrderPayload, dashboardURL string) string {
	var b strings.Builder
	b.WriteString("🛍️ *NEW ORDER RECEIVED*\n\n")
	fmt.Fprintf(&b, "📦 *Product:* %s\n", orNA(p.Order.ProductName))
	fmt.Fprintf(&b, "🏢 *Website:* %s\n\n", p.Website)
	b.WriteString("👤 *Customer Details:*\n")
	fmt.Fprintf(&b, "Name: %s\n", orNA(p.Order.CustomerName))
	fmt.Fprintf(&b, "📞 Phone: %s\n", orNA(p.Order.Phone))
	if p.Order.AltPhone != nil && *p.Order.AltPhone != "" {
		fmt.Fprintf(&b, "📱 Alt Phone: %s\n", *p.Order.AltPhone)
	}
	if p.Order.Email != nil && *p.Order.Email != "" {
		fmt.Fprintf(&b, "📧 Email: %s\n", *p.Order.Email)
	}
	b.WriteString("\n📍 *Location:*\n")
	fmt.Fprintf(&b, "County: %s\n", orNA(p.Order.County))
	fmt.Fprintf(&b, "Address: %s\n\n", orNA(p.Order.Location))
	fmt.Fprintf(&b, "🔢 *Quantity:* %d piece(s)\n", p.Order.Pieces)
	fmt.Fprintf(&b, "🆔 *Order ID:* %d\n", p.Order.ID)
	fmt.Fprintf(&b, "📅 *Time:* %s\n", p.Order.CreatedAt.In(nairobiTZ).Format("02/01/2006, 15:04:05"))
	if dashboardURL != "" {
		fmt.Fprintf(&b, "\n🔗 View order: %s/orders/%d", strings.TrimRight(dashboardURL, "/"), p.Order.ID)
	}
	return strings.TrimSpace(b.String())
}

// RenderNairobiBroadcast builds the rider-pool announcement. It carries the
// public-safe fields only; the customer's phone and full name are withheld
// until a rider claims.
func RenderNairobiBroadcast(p queue.NairobiBroadcastPayload) string {
	var b strings.Builder
	b.WriteString("🛵 *NAIROBI SAME-DAY DELIVERY*\n\n")
	fmt.Fprintf(&b, "👤 *Customer:* %s\n", p.Order.CustomerFirstName)
	fmt.Fprintf(&b, "📦 *Product:* %s\n", p.Order.Product)
	fmt.Fprintf(&b, "📍 *Address:* %s\n", p.Order.Address)
	if p.Order.AmountPayable != nil {
		fmt.Fprintf(&b, "💰 *Amount Payable:* KES %.2f\n", *p.Order.AmountPayable)
	}
	fmt.Fprintf(&b, "🆔 *Order ID:* %d\n\n", p.Order.ID)
	b.WriteString("First rider to claim this order gets it. Claim it on the dashboard.")
	return strings.TrimSpace(b.String())
}

// RenderNairobiAssignment builds the message sent to the single rider who
// claimed the order, with the full customer contact details.
func RenderNairobiAssignment(p queue.NairobiAssignmentPayload) string {
	var b strings.Builder
	b.WriteString("✅ *DELIVERY ASSIGNED TO YOU*\n\n")
	if p.RiderName != "" {
		fmt.Fprintf(&b, "Hi %s, this order is yours.\n\n", p.RiderName)
	}
	fmt.Fprintf(&b, "👤 *Customer:* %s\n", orNA(p.Order.CustomerFullName))
	fmt.Fprintf(&b, "📞 *Phone:* %s\n", orNA(p.Order.Phone))
	if p.Order.AltPhone != nil && *p.Order.AltPhone != "" {
		fmt.Fprintf(&b, "📱 *Alt Phone:* %s\n", *p.Order.AltPhone)
	}
	fmt.Fprintf(&b, "📦 *Product:* %s\n", p.Order.Product)
	fmt.Fprintf(&b, "📍 *Address:* %s\n", p.Order.Address)
	if p.Order.AmountPayable != nil {
		fmt.Fprintf(&b, "💰 *Collect:* KES %.2f\n", *p.Order.AmountPayable)
	}
	fmt.Fprintf(&b, "🆔 *Order ID:* %d", p.Order.ID)
	return strings.TrimSpace(b.String())
}

// RenderAdminNotification builds a free-form operator message.
func RenderAdminNotification(p queue.AdminNotificationPayload) string {
	if p.Subject == "" {
		return p.Message
	}
	return fmt.Sprintf("📢 *%s*\n\n%s", p.Subject, p.Message)
}
