package admin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/clinicdash/internal/app/features/errors"
	appointmentstore "github.com/dalemusser/clinicdash/internal/app/store/appointments"
	"github.com/dalemusser/clinicdash/internal/app/store/audit"
	patientstore "github.com/dalemusser/clinicdash/internal/app/store/patients"
	prescriptionstore "github.com/dalemusser/clinicdash/internal/app/store/prescriptions"
	userstore "github.com/dalemusser/clinicdash/internal/app/store/users"
	"github.com/dalemusser/clinicdash/internal/app/system/accounts"
	"github.com/dalemusser/clinicdash/internal/app/system/auditlog"
	"github.com/dalemusser/clinicdash/internal/app/system/auth"
	"github.com/dalemusser/clinicdash/internal/app/system/indexes"
	"github.com/dalemusser/clinicdash/internal/app/system/snapshot"
	"github.com/dalemusser/clinicdash/internal/domain/models"
	"github.com/dalemusser/clinicdash/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// renderCapture records the last page a handler rendered.
type renderCapture struct {
	name string
	data any
}

func (c *renderCapture) render(w http.ResponseWriter, _ *http.Request, name string, data any) {
	c.name, c.data = name, data
	w.WriteHeader(http.StatusOK)
}

func newTestHandler(t *testing.T, reauth bool) (*Handler, *testutil.Fixtures, *renderCapture) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	users := userstore.New(db)
	loader := snapshot.NewLoader(snapshot.Sources{
		Users:         users,
		Patients:      patientstore.New(db),
		Appointments:  appointmentstore.New(db),
		Prescriptions: prescriptionstore.New(db),
	}, logger)

	audits := auditlog.New(audit.New(db), logger, auditlog.Config{})
	h := NewHandler(db, loader, accounts.New(users, reauth, logger), sm, uierrors.NewErrorLogger(logger), audits, time.UTC, models.DefaultConsultationFee, logger)
	capture := &renderCapture{}
	h.render = capture.render
	return h, testutil.NewFixtures(t, db), capture
}

// withID sets the chi {id} URL parameter on r.
func withID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestServeDoctors_HTMXPartialFilters(t *testing.T) {
	h, fx, _ := newTestHandler(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateDoctor(ctx, "Anita Rao", "anita@clinic.test")
	fx.CreateDoctor(ctx, "Zed Cole", "zed@clinic.test")

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/admin/doctors?q=RAO", testutil.AdminUser())
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Target", "doctors-tbody")
	rec := httptest.NewRecorder()

	h.ServeDoctors(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "Anita Rao") || strings.Contains(body, "Zed Cole") {
		t.Errorf("filtered rows wrong: %s", body)
	}
	if strings.Contains(body, "<html") {
		t.Error("partial response should not include the layout")
	}
}

func TestServeDoctors_FullPage(t *testing.T) {
	h, fx, capture := newTestHandler(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateDoctor(ctx, "Anita Rao", "anita@clinic.test")
	fx.CreateDoctor(ctx, "Zed Cole", "zed@clinic.test")
	fx.CreateReceptionist(ctx, "Rita", "rita@clinic.test")

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/admin/doctors?q=nobody", testutil.AdminUser())
	h.ServeDoctors(httptest.NewRecorder(), req)

	if capture.name != "admin_staff_list" {
		t.Fatalf("template: got %q", capture.name)
	}
	vm := capture.data.(staffListVM)
	if vm.Total != 2 || vm.Shown != 0 {
		t.Errorf("counts: total=%d shown=%d, want 2/0", vm.Total, vm.Shown)
	}
	if !strings.Contains(string(vm.Rows), "No results found.") {
		t.Errorf("rows: %s", vm.Rows)
	}
}

type failingPatients struct{}

func (failingPatients) List(context.Context) ([]models.Patient, error) {
	return nil, errors.New("patients unavailable")
}

type failingAppointments struct{}

func (failingAppointments) ListAll(context.Context) ([]models.Appointment, error) {
	return nil, errors.New("appointments unavailable")
}

func (failingAppointments) ListByDoctor(context.Context, string) ([]models.Appointment, error) {
	return nil, errors.New("appointments unavailable")
}

func TestServeDoctors_LoadsOnlyDoctors(t *testing.T) {
	h, fx, capture := newTestHandler(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateDoctor(ctx, "Anita Rao", "anita@clinic.test")
	h.Loader = snapshot.NewLoader(snapshot.Sources{
		Users:        h.Users,
		Patients:     failingPatients{},
		Appointments: failingAppointments{},
	}, zap.NewNop())

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/admin/doctors", testutil.AdminUser())
	h.ServeDoctors(httptest.NewRecorder(), req)

	vm := capture.data.(staffListVM)
	if vm.Total != 1 {
		t.Errorf("total: got %d, want 1", vm.Total)
	}
	if len(vm.Notices) != 0 {
		t.Errorf("doctors page should not query patients or appointments, got notices %+v", vm.Notices)
	}

	h.ServePatients(httptest.NewRecorder(), testutil.NewAuthenticatedRequest(http.MethodGet, "/admin/patients", testutil.AdminUser()))
	pvm := capture.data.(patientListVM)
	if len(pvm.Notices) != 1 || pvm.Notices[0].Text != "Failed to load patients." {
		t.Errorf("patients page notices: got %+v", pvm.Notices)
	}
}

func TestHandleDeleteUser_RemovesOnlyThatDoctor(t *testing.T) {
	h, fx, capture := newTestHandler(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d1 := fx.CreateDoctor(ctx, "Anita", "anita@clinic.test")
	fx.CreateDoctor(ctx, "Bala", "bala@clinic.test")
	fx.CreateReceptionist(ctx, "Rita", "rita@clinic.test")
	fx.CreatePatient(ctx, "Asha", "female", "555")

	admin := testutil.AdminUser()
	h.ServeOverview(httptest.NewRecorder(), testutil.NewAuthenticatedRequest(http.MethodGet, "/admin", admin))
	before := capture.data.(overviewVM).Stats

	form := url.Values{"role": {models.RoleDoctor}, "confirm": {"yes"}}
	rec := testutil.NewRecorder()
	h.HandleDeleteUser(rec, withID(testutil.NewFormRequest("/admin/users/"+d1.ID+"/delete", form, admin), d1.ID))
	rec.AssertRedirect(t, "/admin/doctors")

	h.ServeOverview(httptest.NewRecorder(), testutil.NewAuthenticatedRequest(http.MethodGet, "/admin", admin))
	after := capture.data.(overviewVM).Stats

	if after.Doctors != before.Doctors-1 {
		t.Errorf("doctors: before %d after %d", before.Doctors, after.Doctors)
	}
	if after.Receptionists != before.Receptionists || after.Patients != before.Patients {
		t.Errorf("other counts changed: before %+v after %+v", before, after)
	}

	events, err := audit.New(fx.DB()).GetByUser(ctx, d1.ID, 10)
	if err != nil {
		t.Fatalf("audit query: %v", err)
	}
	if len(events) != 1 || events[0].EventType != audit.EventUserDeleted || events[0].ActorID != admin.ID {
		t.Errorf("expected a user_deleted audit event by the admin, got %+v", events)
	}
}

func TestHandleDeleteUser_RequiresConfirmation(t *testing.T) {
	h, fx, _ := newTestHandler(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDoctor(ctx, "Anita", "anita@clinic.test")

	rec := testutil.NewRecorder()
	form := url.Values{"role": {models.RoleDoctor}}
	h.HandleDeleteUser(rec, withID(testutil.NewFormRequest("/admin/users/"+d.ID+"/delete", form, testutil.AdminUser()), d.ID))
	rec.AssertRedirect(t, "/admin/doctors")

	if _, err := h.Users.GetByID(ctx, d.ID); err != nil {
		t.Errorf("doctor should still exist: %v", err)
	}
}

func TestHandleDeleteUser_RoleMustMatch(t *testing.T) {
	h, fx, _ := newTestHandler(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	r := fx.CreateReceptionist(ctx, "Rita", "rita@clinic.test")

	form := url.Values{"role": {models.RoleDoctor}, "confirm": {"yes"}}
	h.HandleDeleteUser(httptest.NewRecorder(), withID(testutil.NewFormRequest("/admin/users/"+r.ID+"/delete", form, testutil.AdminUser()), r.ID))

	if _, err := h.Users.GetByID(ctx, r.ID); err != nil {
		t.Errorf("receptionist should survive a doctor delete: %v", err)
	}
}

func TestHandleCreateUser_MissingFieldsRerendersForm(t *testing.T) {
	h, _, capture := newTestHandler(t, false)

	form := url.Values{"name": {"Anita"}, "email": {"anita@clinic.test"}, "role": {"Doctor"}}
	h.HandleCreateUser(httptest.NewRecorder(), testutil.NewFormRequest("/admin/users", form, testutil.AdminUser()))

	if capture.name != "admin_user_new" {
		t.Fatalf("template: got %q", capture.name)
	}
	vm := capture.data.(newUserVM)
	if !strings.Contains(vm.Error, "password is required") {
		t.Errorf("error: got %q", vm.Error)
	}
	if vm.Name != "Anita" || vm.Email != "anita@clinic.test" {
		t.Errorf("entered values not kept: %+v", vm)
	}
}

func TestHandleCreateUser_ReauthOffRedirectsToList(t *testing.T) {
	h, _, _ := newTestHandler(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	form := url.Values{
		"name":     {"Anita Rao"},
		"email":    {"Anita@Clinic.test"},
		"password": {"s3cret-pass"},
		"role":     {"receptionist"},
	}
	rec := testutil.NewRecorder()
	h.HandleCreateUser(rec, testutil.NewFormRequest("/admin/users", form, testutil.AdminUser()))
	rec.AssertRedirect(t, "/admin/receptionists")

	u, err := h.Users.GetByEmail(ctx, "anita@clinic.test")
	if err != nil {
		t.Fatalf("created user not found: %v", err)
	}
	if u.Role != models.RoleReceptionist {
		t.Errorf("role: got %q", u.Role)
	}
	if !auth.CheckPassword(u.PasswordHash, "s3cret-pass") {
		t.Error("password hash does not verify")
	}
}

func TestHandleCreateUser_DuplicateEmail(t *testing.T) {
	h, fx, capture := newTestHandler(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, fx.DB()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	fx.CreateDoctor(ctx, "Anita", "anita@clinic.test")

	form := url.Values{"name": {"Other"}, "email": {"anita@clinic.test"}, "password": {"pw"}, "role": {"Doctor"}}
	h.HandleCreateUser(httptest.NewRecorder(), testutil.NewFormRequest("/admin/users", form, testutil.AdminUser()))

	vm, ok := capture.data.(newUserVM)
	if !ok || !strings.Contains(vm.Error, "already exists") {
		t.Errorf("expected duplicate error, got %+v", capture.data)
	}
}

func TestHandleCreateUser_DefaultReauthEndsSession(t *testing.T) {
	h, _, capture := newTestHandler(t, accounts.DefaultReauth)

	form := url.Values{"name": {"Anita"}, "email": {"anita@clinic.test"}, "password": {"pw"}, "role": {"Doctor"}}
	rec := httptest.NewRecorder()
	h.HandleCreateUser(rec, testutil.NewFormRequest("/admin/users", form, testutil.AdminUser()))

	if capture.name != "admin_reauth" {
		t.Fatalf("template: got %q", capture.name)
	}
	vm := capture.data.(reauthVM)
	if vm.RedirectURL != "/login" || vm.DelaySecs != ReauthDelaySecs {
		t.Errorf("interstitial: %+v", vm)
	}
	if len(vm.Notices) != 2 {
		t.Errorf("notices: got %+v", vm.Notices)
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "Max-Age=0") {
		t.Errorf("session cookie not expired: %q", rec.Header().Get("Set-Cookie"))
	}
}

func TestHandleChangeRole_UpsertsUserAndKeepsPatient(t *testing.T) {
	h, fx, _ := newTestHandler(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreatePatient(ctx, "Asha", "female", "555")

	rec := testutil.NewRecorder()
	form := url.Values{"role": {"Doctor"}, "name": {"ignored"}}
	h.HandleChangeRole(rec, withID(testutil.NewFormRequest("/admin/patients/"+p.ID+"/role", form, testutil.AdminUser()), p.ID))
	rec.AssertRedirect(t, "/admin/patients")

	var doc bson.M
	if err := fx.DB().Collection("users").FindOne(ctx, bson.M{"_id": p.ID}).Decode(&doc); err != nil {
		t.Fatalf("users record missing: %v", err)
	}
	if doc["role"] != models.RoleDoctor || doc["name"] != "Asha" || doc["subscriptionPlan"] != models.DefaultSubscriptionPlan {
		t.Errorf("users record: %+v", doc)
	}
	if _, err := h.Patients.GetByID(ctx, p.ID); err != nil {
		t.Errorf("patient record should remain: %v", err)
	}
}

func TestHandleChangeRole_RejectsUnknownRole(t *testing.T) {
	h, fx, _ := newTestHandler(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreatePatient(ctx, "Asha", "female", "555")

	form := url.Values{"role": {"Janitor"}}
	h.HandleChangeRole(httptest.NewRecorder(), withID(testutil.NewFormRequest("/admin/patients/"+p.ID+"/role", form, testutil.AdminUser()), p.ID))

	n, err := fx.DB().Collection("users").CountDocuments(ctx, bson.M{"_id": p.ID})
	if err != nil || n != 0 {
		t.Errorf("no users record expected: n=%d err=%v", n, err)
	}
}

func TestHandleSettings_SavesAndFeedsRevenue(t *testing.T) {
	h, fx, capture := newTestHandler(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	p := fx.CreatePatient(ctx, "Asha", "female", "555")
	d := fx.CreateDoctor(ctx, "Anita", "anita@clinic.test")
	fx.CreateAppointment(ctx, p.ID, d.ID, now, models.StatusCompleted)
	fx.CreateAppointment(ctx, p.ID, d.ID, now, models.StatusCompleted)

	admin := testutil.AdminUser()
	rec := testutil.NewRecorder()
	form := url.Values{"clinic_name": {"City Clinic"}, "consultation_fee": {"750"}}
	h.HandleSettings(rec, testutil.NewFormRequest("/admin/settings", form, admin))
	rec.AssertRedirect(t, "/admin/settings")

	h.ServeOverview(httptest.NewRecorder(), testutil.NewAuthenticatedRequest(http.MethodGet, "/admin", admin))
	vm := capture.data.(overviewVM)
	if vm.Stats.Revenue != 1500 || vm.Stats.RevenueLabel != "Rs 1,500" {
		t.Errorf("revenue: %d %q", vm.Stats.Revenue, vm.Stats.RevenueLabel)
	}
	if vm.SiteName != "City Clinic" {
		t.Errorf("site name: got %q", vm.SiteName)
	}
}

func TestHandleSettings_RejectsNegativeFee(t *testing.T) {
	h, _, capture := newTestHandler(t, false)

	form := url.Values{"clinic_name": {"City Clinic"}, "consultation_fee": {"-5"}}
	h.HandleSettings(httptest.NewRecorder(), testutil.NewFormRequest("/admin/settings", form, testutil.AdminUser()))

	vm, ok := capture.data.(settingsVM)
	if !ok || vm.Error == "" {
		t.Fatalf("expected settings form with error, got %q %+v", capture.name, capture.data)
	}
	if vm.Fee != "-5" {
		t.Errorf("entered fee not kept: %q", vm.Fee)
	}
}

func TestRoutes_RequireAdmin(t *testing.T) {
	h, _, _ := newTestHandler(t, false)
	router := Routes(h, h.SessionMgr)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/doctors", testutil.DoctorUser())
	req.Header.Set("Accept", "text/html")
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertRedirect(t, "/forbidden")

	anon := httptest.NewRequest(http.MethodGet, "/doctors", nil)
	anon.Header.Set("Accept", "text/html")
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, anon)
	if rec.Code != http.StatusSeeOther || !strings.HasPrefix(rec.Header().Get("Location"), "/login?return=") {
		t.Errorf("anonymous: got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}
