package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ilexum-group/sysreport/pkg/models"
)

func TestExternalIP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		_, _ = fmt.Fprint(w, "  203.0.113.7\n")
	}))
	defer server.Close()

	c := NewClient(Options{IPEchoURL: server.URL})
	ip, err := c.ExternalIP(context.Background())
	if err != nil {
		t.Fatalf("ExternalIP failed: %v", err)
	}
	if ip != "203.0.113.7" {
		t.Errorf("Expected trimmed ip, got %q", ip)
	}
}

func TestExternalIPBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(Options{IPEchoURL: server.URL}).ExternalIP(context.Background())
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("Expected ErrUnexpectedStatus, got %v", err)
	}
}

func TestExternalIPTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := NewClient(Options{IPEchoURL: server.URL, IPEchoTimeout: 50 * time.Millisecond})
	start := time.Now()
	if _, err := c.ExternalIP(context.Background()); err == nil {
		t.Fatal("Expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Lookup was not bounded by its timeout: %v", elapsed)
	}
}

func TestGeolocate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"status":"success","query":"203.0.113.7","country":"Deutschland",`+
			`"regionName":"Baden-Württemberg","city":"Köln","zip":"","lat":50.9375,"lon":6.9603,`+
			`"timezone":"Europe/Berlin","isp":"AT&T"}`)
	}))
	defer server.Close()

	info, err := NewClient(Options{GeoURL: server.URL}).Geolocate(context.Background())
	if err != nil {
		t.Fatalf("Geolocate failed: %v", err)
	}

	want := models.GeoInfo{
		IP:       "203.0.113.7",
		Country:  "Deutschland",
		Region:   "Baden-Württemberg",
		City:     "Köln",
		Zip:      models.NotAvailable,
		Lat:      "50.9375",
		Lon:      "6.9603",
		Timezone: "Europe/Berlin",
		ISP:      "AT&T",
	}
	if info != want {
		t.Errorf("Geolocate mismatch:\n got %+v\nwant %+v", info, want)
	}
}

func TestGeolocateMissingFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"query":"198.51.100.1"}`)
	}))
	defer server.Close()

	info, err := NewClient(Options{GeoURL: server.URL}).Geolocate(context.Background())
	if err != nil {
		t.Fatalf("Geolocate failed: %v", err)
	}
	if info.IP != "198.51.100.1" {
		t.Errorf("Expected ip from query, got %q", info.IP)
	}
	for name, v := range map[string]string{"country": info.Country, "lat": info.Lat, "isp": info.ISP} {
		if v != models.NotAvailable {
			t.Errorf("Expected %s to be N/A, got %q", name, v)
		}
	}
}

func TestGeolocateNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	_, err := NewClient(Options{GeoURL: server.URL}).Geolocate(context.Background())
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("Expected ErrUnexpectedStatus, got %v", err)
	}
}

type fakeResolver struct {
	gotIP string
}

func (f *fakeResolver) Resolve(ip string) (models.GeoInfo, error) {
	f.gotIP = ip
	return models.GeoInfo{IP: ip, Country: "Offline"}, nil
}

func TestGeolocateFallback(t *testing.T) {
	echo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "192.0.2.10")
	}))
	defer echo.Close()
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer geo.Close()

	fb := &fakeResolver{}
	c := NewClient(Options{IPEchoURL: echo.URL, GeoURL: geo.URL, Fallback: fb})
	info, err := c.Geolocate(context.Background())
	if err != nil {
		t.Fatalf("Expected fallback to succeed, got %v", err)
	}
	if fb.gotIP != "192.0.2.10" || info.Country != "Offline" {
		t.Errorf("Unexpected fallback result: ip=%q info=%+v", fb.gotIP, info)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Options{})
	if c.ipEchoURL != DefaultIPEchoURL || c.geoURL != DefaultGeoURL {
		t.Errorf("Unexpected default urls: %q %q", c.ipEchoURL, c.geoURL)
	}
	if c.ipEchoTimeout != 5*time.Second || c.geoTimeout != 10*time.Second {
		t.Errorf("Unexpected default timeouts: %v %v", c.ipEchoTimeout, c.geoTimeout)
	}
}

func TestOpenGeoIPMissing(t *testing.T) {
	if _, err := OpenGeoIP(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Expected error when the city database is missing")
	}
}
