package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	in "bustracker/internal/driver/application/ports/in"
	out "bustracker/internal/driver/application/ports/out"
	"bustracker/internal/driver/domain"
	fleet "bustracker/internal/fleet/domain"
	"bustracker/internal/shared/config"
	"bustracker/internal/shared/logger"
)

type patchCall struct {
	busID      string
	status     string
	lastUpdate int64
}

type historyCall struct {
	busID string
	entry fleet.HistoryEntry
}

type fakeFleet struct {
	mu        sync.Mutex
	puts      []fleet.BusRecord
	patches   []patchCall
	histories []historyCall
	putErr    error
}

func (f *fakeFleet) Put(ctx context.Context, rec fleet.BusRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.puts = append(f.puts, rec)
	return nil
}

func (f *fakeFleet) PatchStatus(ctx context.Context, busID, status string, lastUpdate int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, patchCall{busID: busID, status: status, lastUpdate: lastUpdate})
	return nil
}

func (f *fakeFleet) AppendHistory(ctx context.Context, busID string, entry fleet.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histories = append(f.histories, historyCall{busID: busID, entry: entry})
	return nil
}

func (f *fakeFleet) counts() (puts, patches, histories int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.puts), len(f.patches), len(f.histories)
}

type fakeSource struct {
	mu         sync.Mutex
	ch         chan out.Fix
	watchErr   error
	current    out.Fix
	currentErr error
	watchCalls int
	lastOpts   out.FixOptions
}

func (f *fakeSource) Current(ctx context.Context, opts out.FixOptions) (out.Fix, error) {
	if f.currentErr != nil {
		return out.Fix{}, f.currentErr
	}
	return f.current, nil
}

func (f *fakeSource) Watch(ctx context.Context, opts out.FixOptions) (<-chan out.Fix, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watchCalls++
	f.lastOpts = opts
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	return f.ch, nil
}

func newTestService(fl *fakeFleet, src *fakeSource, now time.Time) *shareService {
	svc := NewShareService(fl, src, config.GeoConfig{
		MaxAge:  2 * time.Second,
		Timeout: 8 * time.Second,
	}, logger.NewTestLogger("driver", io.Discard)).(*shareService)
	svc.now = func() time.Time { return now }
	return svc
}

func validInput() in.StartShareInput {
	return in.StartShareInput{DriverName: "Raj", BusID: "BUS001", Route: "101"}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func TestStartRejectsMissingFields(t *testing.T) {
	cases := []struct {
		name  string
		input in.StartShareInput
	}{
		{"empty driver", in.StartShareInput{BusID: "BUS001", Route: "101"}},
		{"empty bus id", in.StartShareInput{DriverName: "Raj", Route: "101"}},
		{"empty route", in.StartShareInput{DriverName: "Raj", BusID: "BUS001"}},
		{"all empty", in.StartShareInput{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fl := &fakeFleet{}
			src := &fakeSource{ch: make(chan out.Fix)}
			svc := newTestService(fl, src, time.Now())

			_, err := svc.Start(context.Background(), tc.input)
			if !errors.Is(err, domain.ErrShareFieldsMissing) {
				t.Fatalf("err = %v, want ErrShareFieldsMissing", err)
			}

			puts, patches, histories := fl.counts()
			if puts+patches+histories != 0 {
				t.Errorf("store touched on invalid input: %d/%d/%d", puts, patches, histories)
			}
			if src.watchCalls != 0 {
				t.Errorf("watch started on invalid input")
			}
		})
	}
}

func TestStartRejectsSecondSession(t *testing.T) {
	fl := &fakeFleet{}
	src := &fakeSource{ch: make(chan out.Fix)}
	svc := newTestService(fl, src, time.Now())

	if _, err := svc.Start(context.Background(), validInput()); err != nil {
		t.Fatalf("first start: %v", err)
	}
	defer svc.Stop(context.Background())

	_, err := svc.Start(context.Background(), validInput())
	if !errors.Is(err, domain.ErrAlreadySharing) {
		t.Fatalf("err = %v, want ErrAlreadySharing", err)
	}
	if src.watchCalls != 1 {
		t.Errorf("watchCalls = %d, want 1", src.watchCalls)
	}
}

func TestStartPassesGeoOptions(t *testing.T) {
	fl := &fakeFleet{}
	src := &fakeSource{ch: make(chan out.Fix)}
	svc := newTestService(fl, src, time.Now())

	if _, err := svc.Start(context.Background(), validInput()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer svc.Stop(context.Background())

	if !src.lastOpts.HighAccuracy {
		t.Errorf("HighAccuracy not requested")
	}
	if src.lastOpts.MaxAge != 2*time.Second || src.lastOpts.Timeout != 8*time.Second {
		t.Errorf("opts = %+v", src.lastOpts)
	}
}

func TestSamplesOverwriteRecordAndAppendHistory(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	fl := &fakeFleet{}
	src := &fakeSource{ch: make(chan out.Fix, 3)}
	svc := newTestService(fl, src, now)

	if _, err := svc.Start(context.Background(), validInput()); err != nil {
		t.Fatalf("start: %v", err)
	}

	fixes := []out.Fix{
		{Lat: 12.97, Lng: 77.59},
		{Lat: 12.98, Lng: 77.60},
		{Lat: 12.99, Lng: 77.61},
	}
	for _, f := range fixes {
		src.ch <- f
	}

	waitFor(t, func() (ok bool) {
		puts, _, histories := fl.counts()
		return puts == 3 && histories == 3
	})

	svc.Stop(context.Background())

	fl.mu.Lock()
	defer fl.mu.Unlock()
	for i, put := range fl.puts {
		if put.BusID != "BUS001" || put.Driver != "Raj" || put.Route != "101" {
			t.Errorf("put[%d] identity = %+v", i, put)
		}
		if put.Status != fleet.StatusOnline {
			t.Errorf("put[%d] status = %q, want online", i, put.Status)
		}
		if put.Lat == nil || *put.Lat != fixes[i].Lat || put.Lng == nil || *put.Lng != fixes[i].Lng {
			t.Errorf("put[%d] position mismatch", i)
		}
		if put.LastUpdate != now.UnixMilli() {
			t.Errorf("put[%d] lastUpdate = %d", i, put.LastUpdate)
		}
	}
	for i, h := range fl.histories {
		if h.busID != "BUS001" || h.entry.Lat != fixes[i].Lat || h.entry.Lng != fixes[i].Lng {
			t.Errorf("history[%d] = %+v", i, h)
		}
	}
}

func TestStopPatchesStatusOnly(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	fl := &fakeFleet{}
	src := &fakeSource{ch: make(chan out.Fix, 1)}
	svc := newTestService(fl, src, now)

	if _, err := svc.Start(context.Background(), validInput()); err != nil {
		t.Fatalf("start: %v", err)
	}
	src.ch <- out.Fix{Lat: 12.97, Lng: 77.59}
	waitFor(t, func() bool {
		puts, _, _ := fl.counts()
		return puts == 1
	})

	outp, err := svc.Stop(context.Background())
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if outp.Status != "idle" {
		t.Errorf("status = %q, want idle", outp.Status)
	}

	puts, patches, _ := fl.counts()
	if puts != 1 {
		t.Errorf("puts = %d, want 1 (stop must not rewrite the record)", puts)
	}
	if patches != 1 {
		t.Fatalf("patches = %d, want 1", patches)
	}
	p := fl.patches[0]
	if p.busID != "BUS001" || p.status != fleet.StatusOffline {
		t.Errorf("patch = %+v", p)
	}
	if p.lastUpdate != now.UnixMilli() {
		t.Errorf("patch lastUpdate = %d", p.lastUpdate)
	}

	if svc.Display().Sharing {
		t.Errorf("display still sharing after stop")
	}
}

func TestStopWhenIdle(t *testing.T) {
	fl := &fakeFleet{}
	src := &fakeSource{ch: make(chan out.Fix)}
	svc := newTestService(fl, src, time.Now())

	_, err := svc.Stop(context.Background())
	if !errors.Is(err, domain.ErrNotSharing) {
		t.Fatalf("err = %v, want ErrNotSharing", err)
	}
	puts, patches, histories := fl.counts()
	if puts+patches+histories != 0 {
		t.Errorf("store touched by idle stop")
	}
}

func TestSampleErrorKeepsSession(t *testing.T) {
	fl := &fakeFleet{}
	src := &fakeSource{ch: make(chan out.Fix, 2)}
	svc := newTestService(fl, src, time.Now())

	if _, err := svc.Start(context.Background(), validInput()); err != nil {
		t.Fatalf("start: %v", err)
	}

	src.ch <- out.Fix{Err: domain.ErrFixTimeout}
	waitFor(t, func() bool {
		return svc.Display().Alert == "Error reading position: "+domain.ErrFixTimeout.Error()
	})

	puts, _, _ := fl.counts()
	if puts != 0 {
		t.Errorf("errored sample reached the store")
	}

	// сессия жива: следующий нормальный fix публикуется
	src.ch <- out.Fix{Lat: 12.97, Lng: 77.59}
	waitFor(t, func() bool {
		puts, _, _ := fl.counts()
		return puts == 1
	})

	svc.Stop(context.Background())
}

func TestPutFailureDoesNotStopSession(t *testing.T) {
	fl := &fakeFleet{putErr: errors.New("connection lost")}
	src := &fakeSource{ch: make(chan out.Fix, 2)}
	svc := newTestService(fl, src, time.Now())

	if _, err := svc.Start(context.Background(), validInput()); err != nil {
		t.Fatalf("start: %v", err)
	}

	src.ch <- out.Fix{Lat: 12.97, Lng: 77.59}
	waitFor(t, func() bool {
		_, _, histories := fl.counts()
		return histories == 1
	})

	if !svc.Display().Sharing {
		t.Errorf("session died on put failure")
	}
	svc.Stop(context.Background())
}

func TestLocateOnceDoesNotWrite(t *testing.T) {
	fl := &fakeFleet{}
	src := &fakeSource{current: out.Fix{Lat: 12.9716, Lng: 77.5946}}
	svc := newTestService(fl, src, time.UnixMilli(1700000000000))

	outp, err := svc.LocateOnce(context.Background())
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if outp.Lat != "12.971600" || outp.Lng != "77.594600" {
		t.Errorf("output = %+v", outp)
	}

	puts, patches, histories := fl.counts()
	if puts+patches+histories != 0 {
		t.Errorf("locate-once wrote to the store")
	}

	d := svc.Display()
	if d.Lat != "12.971600" || d.Lng != "77.594600" {
		t.Errorf("display = %+v", d)
	}
}

func TestLocateOnceSensorError(t *testing.T) {
	fl := &fakeFleet{}
	src := &fakeSource{currentErr: domain.ErrNoFix}
	svc := newTestService(fl, src, time.Now())

	_, err := svc.LocateOnce(context.Background())
	if !errors.Is(err, domain.ErrNoFix) {
		t.Fatalf("err = %v, want ErrNoFix", err)
	}
	if d := svc.Display(); d.Lat != "" {
		t.Errorf("display updated on sensor error: %+v", d)
	}
}
