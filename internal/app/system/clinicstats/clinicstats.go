// Package clinicstats derives dashboard figures from loaded snapshots.
// Everything here is a pure function of its inputs; callers pass the clock
// and the clinic's location explicitly.
package clinicstats

import (
	"strings"
	"time"

	"github.com/dalemusser/clinicdash/internal/app/system/snapshot"
	"github.com/dalemusser/clinicdash/internal/domain/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SeriesDays is the length of the trailing appointment series.
const SeriesDays = 7

// Overview holds the admin stat cards.
type Overview struct {
	Patients            int
	Doctors             int
	Receptionists       int
	Appointments        int
	MonthlyAppointments int
	Completed           int
	Fee                 int
	Revenue             int
	RevenueLabel        string
}

// DayPoint is one bar of the trailing series.
type DayPoint struct {
	Date  string // YYYY-MM-DD in the clinic location
	Label string // short weekday, e.g. "Mon"
	Count int
}

// Genders is the patient gender breakdown. Other is whatever is neither
// male nor female, so the three always sum to the patient count.
type Genders struct {
	Male   int
	Female int
	Other  int
}

// Chart is the shape the chart widget consumes.
type Chart struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

// DoctorOverview holds the doctor stat cards.
type DoctorOverview struct {
	Today         int
	Total         int
	Pending       int
	Confirmed     int
	Completed     int
	PatientsSeen  int
	Prescriptions int
}

// BuildOverview computes the admin stat cards.
func BuildOverview(s snapshot.Admin, fee int, now time.Time, loc *time.Location) Overview {
	completed := CountStatus(s.Appointments, models.StatusCompleted)
	revenue := Revenue(s.Appointments, fee)
	return Overview{
		Patients:            len(s.Patients),
		Doctors:             len(s.Doctors),
		Receptionists:       len(s.Receptionists),
		Appointments:        len(s.Appointments),
		MonthlyAppointments: MonthlyCount(s.Appointments, now, loc),
		Completed:           completed,
		Fee:                 fee,
		Revenue:             revenue,
		RevenueLabel:        FormatRupees(revenue),
	}
}

// CountStatus counts appointments whose effective status equals status.
func CountStatus(appts []models.Appointment, status string) int {
	n := 0
	for _, a := range appts {
		if a.EffectiveStatus() == status {
			n++
		}
	}
	return n
}

// Revenue is completed appointments times fee.
func Revenue(appts []models.Appointment, fee int) int {
	return CountStatus(appts, models.StatusCompleted) * fee
}

var printer = message.NewPrinter(language.English)

// FormatRupees formats n with thousands grouping: 1500 -> "Rs 1,500".
func FormatRupees(n int) string {
	return printer.Sprintf("Rs %d", n)
}

// MonthlyCount counts appointments dated within the calendar month containing
// now, i.e. [first of month, first of next month) in loc. Appointments with
// no usable date never count.
func MonthlyCount(appts []models.Appointment, now time.Time, loc *time.Location) int {
	month := now.In(locOrUTC(loc)).Format("2006-01")
	n := 0
	for _, a := range appts {
		if key, ok := a.Date.DateKey(loc); ok && strings.HasPrefix(key, month) {
			n++
		}
	}
	return n
}

// TrailingSeries returns exactly SeriesDays points ending today, oldest first.
func TrailingSeries(appts []models.Appointment, now time.Time, loc *time.Location) []DayPoint {
	loc = locOrUTC(loc)
	today := now.In(loc)
	y, m, d := today.Date()

	points := make([]DayPoint, SeriesDays)
	index := make(map[string]int, SeriesDays)
	for i := 0; i < SeriesDays; i++ {
		day := time.Date(y, m, d-(SeriesDays-1-i), 12, 0, 0, 0, loc)
		key := day.Format(models.DateKeyLayout)
		points[i] = DayPoint{Date: key, Label: day.Format("Mon")}
		index[key] = i
	}

	for _, a := range appts {
		key, ok := a.Date.DateKey(loc)
		if !ok {
			continue
		}
		if i, hit := index[key]; hit {
			points[i].Count++
		}
	}
	return points
}

// SeriesChart converts a series for the chart widget.
func SeriesChart(points []DayPoint) Chart {
	c := Chart{Labels: make([]string, len(points)), Data: make([]int, len(points))}
	for i, p := range points {
		c.Labels[i] = p.Label
		c.Data[i] = p.Count
	}
	return c
}

// GenderBreakdown buckets patients by case-insensitive gender.
func GenderBreakdown(patients []models.Patient) Genders {
	var g Genders
	for _, p := range patients {
		switch {
		case strings.EqualFold(strings.TrimSpace(p.Gender), "male"):
			g.Male++
		case strings.EqualFold(strings.TrimSpace(p.Gender), "female"):
			g.Female++
		}
	}
	g.Other = len(patients) - g.Male - g.Female
	return g
}

// GenderChart converts a breakdown for the chart widget.
func GenderChart(g Genders) Chart {
	return Chart{
		Labels: []string{"Male", "Female", "Other/Unknown"},
		Data:   []int{g.Male, g.Female, g.Other},
	}
}

// TodayAppointments returns the appointments dated today in loc, keeping
// input order.
func TodayAppointments(appts []models.Appointment, now time.Time, loc *time.Location) []models.Appointment {
	today := now.In(locOrUTC(loc)).Format(models.DateKeyLayout)
	out := make([]models.Appointment, 0)
	for _, a := range appts {
		if key, ok := a.Date.DateKey(loc); ok && key == today {
			out = append(out, a)
		}
	}
	return out
}

// BuildDoctorOverview computes the doctor stat cards.
func BuildDoctorOverview(s snapshot.Doctor, now time.Time, loc *time.Location) DoctorOverview {
	seen := make(map[string]struct{})
	for _, a := range s.Appointments {
		if a.PatientID != "" {
			seen[a.PatientID] = struct{}{}
		}
	}
	return DoctorOverview{
		Today:         len(TodayAppointments(s.Appointments, now, loc)),
		Total:         len(s.Appointments),
		Pending:       CountStatus(s.Appointments, models.StatusPending),
		Confirmed:     CountStatus(s.Appointments, models.StatusConfirmed),
		Completed:     CountStatus(s.Appointments, models.StatusCompleted),
		PatientsSeen:  len(seen),
		Prescriptions: len(s.Prescriptions),
	}
}

func locOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
