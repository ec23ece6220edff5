package handlers

import "net/http"

type Routes struct {
	Status       *StatusHandler
	Appointments *AppointmentHandler
	Leads        *LeadHandler
	Content      *ContentHandler
	Admin        *AdminHandler
}

// Register mounts the public API on mux.
func (rt Routes) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", rt.Status.Root)
	mux.HandleFunc("GET /api/hello", rt.Status.Hello)
	mux.HandleFunc("GET /api/status", rt.Status.Status)
	mux.HandleFunc("GET /test", rt.Status.Status)

	mux.HandleFunc("POST /api/leads", rt.Leads.Create)
	mux.Handle("GET /api/leads", rt.Admin.RequireAdmin(http.HandlerFunc(rt.Leads.List)))

	mux.HandleFunc("GET /api/posts", rt.Content.Posts)
	mux.HandleFunc("GET /api/testimonials", rt.Content.Testimonials)

	mux.HandleFunc("POST /api/appointments", rt.Appointments.Create)
	mux.Handle("GET /api/appointments", rt.Admin.RequireAdmin(http.HandlerFunc(rt.Appointments.List)))
	mux.HandleFunc("GET /api/appointments/slots", rt.Appointments.Slots)

	mux.HandleFunc("POST /api/admin/token", rt.Admin.Token)
}
