package notify

import (
	"fmt"
	"strings"
	"time"
)

type Kind string

const (
	KindNewBooking           Kind = "booking.created"
	KindPaymentConfirmed     Kind = "booking.paid"
	KindFranchiseApplication Kind = "franchise.application"
)

// Message is an operator notification. Key orders messages about the same
// entity on one Kafka partition.
type Message struct {
	Kind      Kind      `json:"kind"`
	Key       string    `json:"key"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type BookingDetails struct {
	BookingID     int64
	VehicleModel  string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	StartDate     time.Time
	EndDate       time.Time
	Total         string
}

type ApplicationDetails struct {
	ApplicationID      int64
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	City               string
	State              string
	InvestmentCapital  string
	BusinessExperience string
	WhyInterested      string
}

const dateLayout = "2006-01-02"

func NewBooking(d BookingDetails) Message {
	var b strings.Builder
	b.WriteString("A new rental booking has been submitted.\n\n")
	writeBooking(&b, d, "Total")
	b.WriteString("\nPlease review and confirm this booking in the admin dashboard.")

	return Message{
		Kind:      KindNewBooking,
		Key:       bookingKey(d.BookingID),
		Title:     fmt.Sprintf("New Booking Request #%d", d.BookingID),
		Content:   b.String(),
		CreatedAt: time.Now().UTC(),
	}
}

func PaymentConfirmed(d BookingDetails) Message {
	var b strings.Builder
	b.WriteString("Payment has been received and the booking is now CONFIRMED.\n\n")
	writeBooking(&b, d, "Total Paid")
	fmt.Fprintf(&b, "\nThe vehicle should be prepared for pickup on %s.", d.StartDate.Format(dateLayout))

	return Message{
		Kind:      KindPaymentConfirmed,
		Key:       bookingKey(d.BookingID),
		Title:     fmt.Sprintf("Payment Confirmed - Booking #%d", d.BookingID),
		Content:   b.String(),
		CreatedAt: time.Now().UTC(),
	}
}

func FranchiseApplication(d ApplicationDetails) Message {
	var b strings.Builder
	b.WriteString("A new franchise application has been submitted.\n\n")
	fmt.Fprintf(&b, "Name: %s %s\n", d.FirstName, d.LastName)
	fmt.Fprintf(&b, "Email: %s\n", d.Email)
	fmt.Fprintf(&b, "Phone: %s\n", d.Phone)
	fmt.Fprintf(&b, "Location: %s, %s\n", orDefault(d.City, "N/A"), orDefault(d.State, "N/A"))
	fmt.Fprintf(&b, "Capital Available: %s\n\n", orDefault(d.InvestmentCapital, "Not specified"))
	fmt.Fprintf(&b, "Business Experience:\n%s\n\n", orDefault(d.BusinessExperience, "Not provided"))
	fmt.Fprintf(&b, "Why Interested:\n%s\n\n", orDefault(d.WhyInterested, "Not provided"))
	b.WriteString("Please follow up with this applicant within 48 hours.")

	return Message{
		Kind:      KindFranchiseApplication,
		Key:       fmt.Sprintf("franchise-%d", d.ApplicationID),
		Title:     fmt.Sprintf("New Franchise Application #%d", d.ApplicationID),
		Content:   b.String(),
		CreatedAt: time.Now().UTC(),
	}
}

func writeBooking(b *strings.Builder, d BookingDetails, totalLabel string) {
	fmt.Fprintf(b, "Booking ID: #%d\n", d.BookingID)
	fmt.Fprintf(b, "Vehicle: %s\n", d.VehicleModel)
	fmt.Fprintf(b, "Dates: %s to %s\n", d.StartDate.Format(dateLayout), d.EndDate.Format(dateLayout))
	fmt.Fprintf(b, "%s: $%s\n\n", totalLabel, d.Total)
	fmt.Fprintf(b, "Name: %s\n", d.CustomerName)
	fmt.Fprintf(b, "Email: %s\n", d.CustomerEmail)
	fmt.Fprintf(b, "Phone: %s\n", d.CustomerPhone)
}

func bookingKey(id int64) string {
	return fmt.Sprintf("booking-%d", id)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
