package notify

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"go.mau.fi/whatsmeow/types"

	"order-manager/internal/queue"
)

type sentMessage struct {
	to   string
	text string
}

type fakeSender struct {
	sent    []sentMessage
	failFor map[string]bool
}

func (f *fakeSender) SendText(_ context.Context, to types.JID, text string) error {
	if f.failFor[to.User] {
		return errors.New("number not on whatsapp")
	}
	f.sent = append(f.sent, sentMessage{to: to.User, text: text})
	return nil
}

type fakeRiders struct {
	phones []string
	err    error
}

func (f *fakeRiders) ListActiveRiderPhones(context.Context) ([]string, error) {
	return f.phones, f.err
}

func newTestWorker(sender *fakeSender, riders *fakeRiders) *Worker {
	cfg := Config{
		AdminNumbers: []string{"+254720809823", "+254726884643"},
		DashboardURL: "https://orders.example.com",
	}
	return NewWorker(queue.NewMemory(), sender, riders, cfg, slog.New(slog.DiscardHandler), nil)
}

func strptr(s string) *string { return &s }

func newOrderJob(t *testing.T) *queue.Job {
	t.Helper()
	payload := queue.NewOrderPayload{
		Order: queue.OrderInfo{
			ID:           42,
			ProductName:  strptr("Blue Widget"),
			CustomerName: strptr("Jane Mwangi"),
			Phone:        strptr("0712345678"),
			County:       strptr("Nairobi"),
			Pieces:       2,
			CreatedAt:    time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		},
		Website: "Laare Shop",
	}
	job, err := queue.NewJob(queue.KindNewOrder, payload)
	if err != nil {
		t.Fatal(err)
	}
	return &job
}

func TestNewOrderFansOutToAdmins(t *testing.T) {
	sender := &fakeSender{}
	w := newTestWorker(sender, &fakeRiders{})

	if err := w.Process(context.Background(), newOrderJob(t)); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected both admins notified, got %d sends", len(sender.sent))
	}
	if sender.sent[0].to != "254720809823" || sender.sent[1].to != "254726884643" {
		t.Fatalf("unexpected recipients: %+v", sender.sent)
	}
	msg := sender.sent[0].text
	for _, want := range []string{"NEW ORDER RECEIVED", "Blue Widget", "Laare Shop", "Jane Mwangi", "Order ID:* 42", "orders.example.com/orders/42"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "Alt Phone") || strings.Contains(msg, "Email") {
		t.Error("optional lines must be omitted when fields are absent")
	}
	if !strings.Contains(msg, "Address: N/A") {
		t.Error("missing location must render as N/A")
	}
}

func TestSendFailureIsIsolatedPerRecipient(t *testing.T) {
	sender := &fakeSender{failFor: map[string]bool{"254720809823": true}}
	w := newTestWorker(sender, &fakeRiders{})

	if err := w.Process(context.Background(), newOrderJob(t)); err != nil {
		t.Fatalf("one bad recipient must not fail the job: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].to != "254726884643" {
		t.Fatalf("second admin must still be notified: %+v", sender.sent)
	}
}

func TestBroadcastGoesToActiveRiders(t *testing.T) {
	sender := &fakeSender{}
	w := newTestWorker(sender, &fakeRiders{phones: []string{"0722000111", "0733000222"}})

	amount := 1500.0
	payload := queue.NairobiBroadcastPayload{
		Order: queue.NairobiOrderInfo{
			ID:                7,
			CustomerFirstName: "Jane",
			Address:           "Westlands, Delta Towers",
			Product:           "Blue Widget",
			AmountPayable:     &amount,
		},
	}
	job, err := queue.NewJob(queue.KindNairobiBroadcast, payload)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Process(context.Background(), &job); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected both riders notified, got %d", len(sender.sent))
	}
	if sender.sent[0].to != "254722000111" {
		t.Fatalf("rider number not rewritten for dialing: %s", sender.sent[0].to)
	}
	msg := sender.sent[0].text
	if !strings.Contains(msg, "SAME-DAY") || !strings.Contains(msg, "Jane") || !strings.Contains(msg, "KES 1500.00") {
		t.Errorf("unexpected broadcast body:\n%s", msg)
	}
	if strings.Contains(msg, "Mwangi") || strings.Contains(msg, "0712") {
		t.Error("broadcast must not leak customer contact details")
	}
}

func TestBroadcastFallsBackToAdminsWhenNoRiders(t *testing.T) {
	sender := &fakeSender{}
	w := newTestWorker(sender, &fakeRiders{})

	job, err := queue.NewJob(queue.KindNairobiBroadcast, queue.NairobiBroadcastPayload{
		Order: queue.NairobiOrderInfo{ID: 7, CustomerFirstName: "Jane", Address: "Westlands", Product: "Blue Widget"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Process(context.Background(), &job); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 2 || sender.sent[0].to != "254720809823" {
		t.Fatalf("expected admin fallback, got %+v", sender.sent)
	}
}

func TestAssignmentGoesToSingleRider(t *testing.T) {
	sender := &fakeSender{}
	w := newTestWorker(sender, &fakeRiders{phones: []string{"0722000111", "0733000222"}})

	payload := queue.NairobiAssignmentPayload{
		Order: queue.NairobiOrderInfo{
			ID:                7,
			CustomerFirstName: "Jane",
			CustomerFullName:  strptr("Jane Mwangi"),
			Phone:             strptr("0712345678"),
			Address:           "Westlands, Delta Towers",
			Product:           "Blue Widget",
		},
		RiderName: "Brian",
		Recipient: "0722000111",
	}
	job, err := queue.NewJob(queue.KindNairobiAssignment, payload)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Process(context.Background(), &job); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 1 || sender.sent[0].to != "254722000111" {
		t.Fatalf("assignment must reach exactly the claiming rider: %+v", sender.sent)
	}
	msg := sender.sent[0].text
	for _, want := range []string{"ASSIGNED", "Brian", "Jane Mwangi", "0712345678", "Delta Towers"} {
		if !strings.Contains(msg, want) {
			t.Errorf("assignment missing %q:\n%s", want, msg)
		}
	}
}

func TestAdminNotification(t *testing.T) {
	sender := &fakeSender{}
	w := newTestWorker(sender, &fakeRiders{})

	job, err := queue.NewJob(queue.KindAdminNotification, queue.AdminNotificationPayload{
		Subject: "Stock alert",
		Message: "Blue Widget is below 5 units.",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Process(context.Background(), &job); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected both admins notified, got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].text, "Stock alert") {
		t.Errorf("subject missing:\n%s", sender.sent[0].text)
	}
}

func TestUnknownKindFails(t *testing.T) {
	w := newTestWorker(&fakeSender{}, &fakeRiders{})
	job := &queue.Job{Kind: "mystery", Payload: []byte(`{}`)}
	if err := w.Process(context.Background(), job); err == nil {
		t.Fatal("unknown kind must error")
	}
}
