package clinicstats

import (
	"testing"
	"time"

	"github.com/dalemusser/clinicdash/internal/app/system/snapshot"
	"github.com/dalemusser/clinicdash/internal/domain/models"
)

var now = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func appt(id string, when time.Time, status string) models.Appointment {
	return models.Appointment{ID: id, PatientID: "p-" + id, DoctorID: "d1", Date: models.NewTimestamp(when), Status: status}
}

func TestBuildOverview_TodayScenario(t *testing.T) {
	s := snapshot.Admin{
		Doctors:  []models.User{{ID: "d1"}},
		Patients: []models.Patient{{ID: "p1"}, {ID: "p2"}},
		Appointments: []models.Appointment{
			appt("a1", now, models.StatusCompleted),
			appt("a2", now, models.StatusConfirmed),
			appt("a3", now, models.StatusPending),
		},
	}

	got := BuildOverview(s, 500, now, time.UTC)

	if got.MonthlyAppointments != 3 {
		t.Errorf("MonthlyAppointments: got %d, want 3", got.MonthlyAppointments)
	}
	if got.Revenue != 500 || got.RevenueLabel != "Rs 500" {
		t.Errorf("revenue: got %d %q, want 500 %q", got.Revenue, got.RevenueLabel, "Rs 500")
	}
	if got.Doctors != 1 || got.Patients != 2 {
		t.Errorf("counts: doctors=%d patients=%d", got.Doctors, got.Patients)
	}
}

func TestRevenue(t *testing.T) {
	appts := []models.Appointment{
		appt("a", now, models.StatusCompleted),
		appt("b", now, models.StatusCompleted),
		appt("c", now, models.StatusCompleted),
		appt("d", now, ""),
	}
	for _, fee := range []int{0, 1, 500, 750} {
		if got := Revenue(appts, fee); got != 3*fee {
			t.Errorf("Revenue(fee=%d) = %d, want %d", fee, got, 3*fee)
		}
	}
}

func TestFormatRupees(t *testing.T) {
	tests := map[int]string{
		0:       "Rs 0",
		500:     "Rs 500",
		1500:    "Rs 1,500",
		1234567: "Rs 1,234,567",
	}
	for n, want := range tests {
		if got := FormatRupees(n); got != want {
			t.Errorf("FormatRupees(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestMonthlyCount_Bounds(t *testing.T) {
	appts := []models.Appointment{
		appt("first", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ""),
		appt("last", time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC), ""),
		appt("prev", time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC), ""),
		appt("next", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), ""),
		{ID: "nodate"},
	}
	if got := MonthlyCount(appts, now, time.UTC); got != 2 {
		t.Errorf("MonthlyCount = %d, want 2", got)
	}
}

func TestMonthlyCount_UsesClinicLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC on Feb 29 is already March 1 in IST.
	appts := []models.Appointment{appt("a", time.Date(2024, 2, 29, 20, 0, 0, 0, time.UTC), "")}

	if got := MonthlyCount(appts, now, time.UTC); got != 0 {
		t.Errorf("UTC: got %d, want 0", got)
	}
	if got := MonthlyCount(appts, now, ist); got != 1 {
		t.Errorf("IST: got %d, want 1", got)
	}
}

func TestTrailingSeries(t *testing.T) {
	appts := []models.Appointment{
		appt("today1", now, ""),
		appt("today2", now.Add(-time.Hour), ""),
		appt("sixAgo", now.AddDate(0, 0, -6), ""),
		appt("sevenAgo", now.AddDate(0, 0, -7), ""),
		appt("future", now.AddDate(0, 0, 1), ""),
		{ID: "nodate"},
		{ID: "floating", Date: models.ParseTimestamp("2024-03-13")},
	}

	got := TrailingSeries(appts, now, time.UTC)

	if len(got) != SeriesDays {
		t.Fatalf("len = %d, want %d", len(got), SeriesDays)
	}
	if got[0].Date != "2024-03-09" || got[6].Date != "2024-03-15" {
		t.Errorf("range: %s .. %s", got[0].Date, got[6].Date)
	}
	if got[6].Label != "Fri" {
		t.Errorf("today label: got %q, want Fri", got[6].Label)
	}

	sum := 0
	for _, p := range got {
		sum += p.Count
	}
	if sum != 4 {
		t.Errorf("sum = %d, want 4 (two today, six days ago, floating)", sum)
	}
	if got[6].Count != 2 || got[0].Count != 1 || got[4].Count != 1 {
		t.Errorf("buckets: %+v", got)
	}
}

func TestTrailingSeries_EmptyStillSeven(t *testing.T) {
	got := TrailingSeries(nil, now, nil)
	if len(got) != SeriesDays {
		t.Fatalf("len = %d, want %d", len(got), SeriesDays)
	}
	chart := SeriesChart(got)
	if len(chart.Labels) != SeriesDays || len(chart.Data) != SeriesDays {
		t.Errorf("chart: %+v", chart)
	}
}

func TestGenderBreakdown_SumsToTotal(t *testing.T) {
	patients := []models.Patient{
		{Gender: "Male"}, {Gender: "male"}, {Gender: " FEMALE "},
		{Gender: "other"}, {Gender: ""}, {Gender: "m"},
	}
	g := GenderBreakdown(patients)
	if g.Male != 2 || g.Female != 1 || g.Other != 3 {
		t.Errorf("got %+v, want male=2 female=1 other=3", g)
	}
	if g.Male+g.Female+g.Other != len(patients) {
		t.Error("buckets must sum to patient count")
	}
	if c := GenderChart(g); len(c.Data) != 3 || c.Labels[2] != "Other/Unknown" {
		t.Errorf("chart: %+v", c)
	}
}

func TestBuildDoctorOverview(t *testing.T) {
	s := snapshot.Doctor{
		DoctorID: "d1",
		Appointments: []models.Appointment{
			{ID: "a1", PatientID: "p1", Date: models.NewTimestamp(now), Status: models.StatusPending},
			{ID: "a2", PatientID: "p1", Date: models.NewTimestamp(now.AddDate(0, 0, -1)), Status: models.StatusCompleted},
			{ID: "a3", PatientID: "p2", Date: models.NewTimestamp(now), Status: models.StatusConfirmed},
			{ID: "a4", PatientID: "p3"},
		},
		Prescriptions: []models.Prescription{{ID: "x1"}, {ID: "x2"}},
	}

	got := BuildDoctorOverview(s, now, time.UTC)
	want := DoctorOverview{Today: 2, Total: 4, Pending: 2, Confirmed: 1, Completed: 1, PatientsSeen: 3, Prescriptions: 2}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}
