package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/websitekoning/koning-api/services/site-service/internal/model"
)

const (
	KindAppointmentAdmin     = "appointment.admin"
	KindAppointmentRequester = "appointment.requester"
	KindLeadAdmin            = "lead.admin"
)

const timeLayout = "Mon 2 Jan 2006 15:04 MST"

// AppointmentAdmin tells the business about a new booking.
func AppointmentAdmin(appt model.Appointment, recipients []string, loc *time.Location) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "New appointment request\n\n")
	fmt.Fprintf(&b, "Name:  %s\n", appt.Name)
	fmt.Fprintf(&b, "Email: %s\n", appt.Email)
	fmt.Fprintf(&b, "Phone: %s\n", appt.Phone)
	fmt.Fprintf(&b, "Start: %s\n", appt.Start.In(loc).Format(timeLayout))
	fmt.Fprintf(&b, "End:   %s\n", appt.End.In(loc).Format(timeLayout))
	if appt.Note != "" {
		fmt.Fprintf(&b, "Note:  %s\n", appt.Note)
	}
	if appt.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n", appt.Source)
	}
	if appt.ID != "" {
		fmt.Fprintf(&b, "\nReference: %s\n", appt.ID)
	}
	return Message{
		Kind:       KindAppointmentAdmin,
		Subject:    "New appointment: " + appt.Name,
		Body:       b.String(),
		Recipients: recipients,
	}
}

// AppointmentRequester confirms the booking to the person who made it.
func AppointmentRequester(appt model.Appointment, loc *time.Location) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", appt.Name)
	fmt.Fprintf(&b, "Your appointment on %s until %s is confirmed.\n",
		appt.Start.In(loc).Format(timeLayout), appt.End.In(loc).Format("15:04"))
	fmt.Fprintf(&b, "We will call you on %s.\n\nWebsite Koning\n", appt.Phone)
	return Message{
		Kind:       KindAppointmentRequester,
		Subject:    "Your appointment with Website Koning",
		Body:       b.String(),
		Recipients: []string{appt.Email},
	}
}

func LeadAdmin(lead model.Lead, recipients []string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "New lead from %s\n\n", lead.Source)
	fmt.Fprintf(&b, "Name:    %s\n", lead.Name)
	fmt.Fprintf(&b, "Email:   %s\n", lead.Email)
	if lead.Phone != "" {
		fmt.Fprintf(&b, "Phone:   %s\n", lead.Phone)
	}
	fmt.Fprintf(&b, "Consent: %t\n", lead.Consent)
	if lead.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", lead.Message)
	}
	return Message{
		Kind:       KindLeadAdmin,
		Subject:    "New lead: " + lead.Name,
		Body:       b.String(),
		Recipients: recipients,
	}
}
