package utils

import (
	"encoding/base64"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

// BookingEmailData carries everything the confirmation email shows.
type BookingEmailData struct {
	GuestName    string
	GuestEmail   string
	NationalID   string
	PropertyName string
	RoomName     string
	CheckIn      string
	CheckOut     string
	GuestsCount  int
	VehiclePlate string
	BookingID    uint
}

// SendBookingConfirmation emails the guest their booking details with the
// entry QR attached. When SMTP is not configured it mock-sends to the log so
// development flows keep working.
func SendBookingConfirmation(data BookingEmailData, qrPNG []byte) error {
	if data.GuestEmail == "" {
		return nil // nothing to send
	}

	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USERNAME")
	smtpPass := os.Getenv("SMTP_PASSWORD")
	fromName := os.Getenv("SMTP_FROM_NAME")
	if fromName == "" {
		fromName = "Gate Access"
	}

	if smtpUser == "" || smtpPass == "" || smtpHost == "" || smtpPort == "" {
		log.Printf("[MOCK EMAIL] to:%s booking:#%d property:%s room:%s window:%s..%s",
			data.GuestEmail, data.BookingID, data.PropertyName, data.RoomName, data.CheckIn, data.CheckOut)
		return nil
	}

	safe := func(s string) string {
		return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", " ")
	}

	from := fmt.Sprintf("%s <%s>", fromName, smtpUser)
	to := []string{data.GuestEmail}
	auth := smtp.PlainAuth("", smtpUser, smtpPass, smtpHost)
	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)

	subject := fmt.Sprintf("Booking Confirmation #%d", data.BookingID)
	boundary := "----=_GATE_ACCESS_EMAIL_BOUNDARY"

	vehicle := safe(data.VehiclePlate)
	if vehicle == "" {
		vehicle = "-"
	}

	plainBody := fmt.Sprintf(
		"Booking Confirmed\n\n"+
			"Guest: %s\n"+
			"National ID: %s\n"+
			"Property / Room: %s / %s\n"+
			"Check-in: %s\n"+
			"Check-out: %s\n"+
			"Guests: %d\n"+
			"Vehicle: %s\n\n"+
			"Present the attached QR at the gate for entry.\n\n"+
			"Best regards,\n%s",
		safe(data.GuestName), safe(data.NationalID),
		safe(data.PropertyName), safe(data.RoomName),
		safe(data.CheckIn), safe(data.CheckOut),
		data.GuestsCount, vehicle, fromName,
	)

	htmlBody := fmt.Sprintf(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>Booking Confirmed</title></head>
<body style="background:#f6f7fb;font-family:Arial,Helvetica,sans-serif;color:#0f172a;">
<div style="max-width:640px;margin:20px auto;background:#fff;border:1px solid #e5e7eb;border-radius:12px;padding:24px;">
  <h2>Booking Confirmed</h2>
  <p>Hi %s,</p>
  <p>Your visit has been scheduled. Present the attached QR code at the gate for a quick check-in.</p>
  <p><b>National ID:</b> %s<br>
     <b>Property / Room:</b> %s / %s<br>
     <b>Check-in:</b> %s<br>
     <b>Check-out:</b> %s<br>
     <b>Guests:</b> %d<br>
     <b>Vehicle:</b> %s</p>
  <p>Booking #%d</p>
  <p>Best regards,<br>%s</p>
</div>
</body>
</html>`,
		safe(data.GuestName), safe(data.NationalID),
		safe(data.PropertyName), safe(data.RoomName),
		safe(data.CheckIn), safe(data.CheckOut),
		data.GuestsCount, vehicle, data.BookingID, fromName,
	)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", data.GuestEmail))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n\r\n", boundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(plainBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(htmlBody + "\r\n")

	if len(qrPNG) > 0 {
		sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		sb.WriteString(fmt.Sprintf("Content-Type: image/png; name=\"booking_%d.png\"\r\n", data.BookingID))
		sb.WriteString("Content-Transfer-Encoding: base64\r\n")
		sb.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"booking_%d.png\"\r\n\r\n", data.BookingID))
		encoded := base64.StdEncoding.EncodeToString(qrPNG)
		for len(encoded) > 76 {
			sb.WriteString(encoded[:76] + "\r\n")
			encoded = encoded[76:]
		}
		sb.WriteString(encoded + "\r\n")
	}

	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	if err := smtp.SendMail(addr, auth, smtpUser, to, []byte(sb.String())); err != nil {
		log.Printf("❌ Failed to send booking email to %s: %v", data.GuestEmail, err)
		return err
	}

	log.Printf("📨 Booking confirmation sent to %s (#%d)", data.GuestEmail, data.BookingID)
	return nil
}
