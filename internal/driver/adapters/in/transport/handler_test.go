package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bustracker/internal/driver/adapters/out/geo"
	in "bustracker/internal/driver/application/ports/in"
	out "bustracker/internal/driver/application/ports/out"
	"bustracker/internal/driver/domain"
	"bustracker/internal/shared/logger"
)

type fakeShareUC struct {
	startErr  error
	stopErr   error
	locateErr error

	lastInput in.StartShareInput
	display   in.DisplayState
}

func (f *fakeShareUC) Start(ctx context.Context, input in.StartShareInput) (*in.StartShareOutput, error) {
	f.lastInput = input
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &in.StartShareOutput{Status: "sharing", Message: "Sharing live location..."}, nil
}

func (f *fakeShareUC) Stop(ctx context.Context) (*in.StopShareOutput, error) {
	if f.stopErr != nil {
		return nil, f.stopErr
	}
	return &in.StopShareOutput{Status: "idle", Message: "Stopped sharing"}, nil
}

func (f *fakeShareUC) LocateOnce(ctx context.Context) (*in.LocateOnceOutput, error) {
	if f.locateErr != nil {
		return nil, f.locateErr
	}
	return &in.LocateOnceOutput{Lat: "12.971600", Lng: "77.594600"}, nil
}

func (f *fakeShareUC) Display() in.DisplayState { return f.display }

func newTestServer(uc *fakeShareUC, source *geo.DeviceSource) *httptest.Server {
	log := logger.NewTestLogger("driver", io.Discard)
	if source == nil {
		source = geo.NewDeviceSource(log)
	}
	mux := http.NewServeMux()
	NewHandler(uc, source, log).Routes(mux)
	return httptest.NewServer(mux)
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func TestStartShareStatuses(t *testing.T) {
	cases := []struct {
		name       string
		startErr   error
		wantStatus int
	}{
		{"ok", nil, http.StatusOK},
		{"missing fields", domain.ErrShareFieldsMissing, http.StatusBadRequest},
		{"already sharing", domain.ErrAlreadySharing, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeShareUC{startErr: tc.startErr}
			srv := newTestServer(uc, nil)
			defer srv.Close()

			resp := post(t, srv.URL+"/share/start", `{"driver_name":"Raj","bus_id":"BUS001","route":"101"}`)
			defer resp.Body.Close()

			if resp.StatusCode != tc.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
		})
	}
}

func TestStartShareForwardsInput(t *testing.T) {
	uc := &fakeShareUC{}
	srv := newTestServer(uc, nil)
	defer srv.Close()

	resp := post(t, srv.URL+"/share/start", `{"driver_name":"Raj","bus_id":"BUS001","route":"101"}`)
	resp.Body.Close()

	want := in.StartShareInput{DriverName: "Raj", BusID: "BUS001", Route: "101"}
	if uc.lastInput != want {
		t.Errorf("input = %+v, want %+v", uc.lastInput, want)
	}
}

func TestStartShareBadBody(t *testing.T) {
	srv := newTestServer(&fakeShareUC{}, nil)
	defer srv.Close()

	resp := post(t, srv.URL+"/share/start", `{"driver_name":`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStopShareWhenIdle(t *testing.T) {
	uc := &fakeShareUC{stopErr: domain.ErrNotSharing}
	srv := newTestServer(uc, nil)
	defer srv.Close()

	resp := post(t, srv.URL+"/share/stop", ``)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestLocateOnceSensorUnavailable(t *testing.T) {
	uc := &fakeShareUC{locateErr: domain.ErrNoFix}
	srv := newTestServer(uc, nil)
	defer srv.Close()

	resp := post(t, srv.URL+"/locate", ``)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestOfferFixFeedsSource(t *testing.T) {
	log := logger.NewTestLogger("driver", io.Discard)
	source := geo.NewDeviceSource(log)
	srv := newTestServer(&fakeShareUC{}, source)
	defer srv.Close()

	resp := post(t, srv.URL+"/drivers/BUS001/fix", `{"lat":12.9716,"lng":77.5946}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	fix, err := source.Current(context.Background(), out.FixOptions{MaxAge: time.Minute})
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if fix.Lat != 12.9716 || fix.Lng != 77.5946 {
		t.Errorf("fix = %+v", fix)
	}
}

func TestOfferFixRejectsBadCoordinates(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"lat too big", `{"lat":91,"lng":0}`},
		{"lng too big", `{"lat":0,"lng":181}`},
		{"lat too small", `{"lat":-91,"lng":0}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(&fakeShareUC{}, nil)
			defer srv.Close()

			resp := post(t, srv.URL+"/drivers/BUS001/fix", tc.body)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&fakeShareUC{}, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
