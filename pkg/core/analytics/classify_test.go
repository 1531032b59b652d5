package analytics

import (
	"testing"
	"time"

	"github.com/wadjakorntonsri/folio/pkg/core/domain"
)

func TestClassifyDevice(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want domain.DeviceClass
	}{
		{"empty", "", domain.DeviceDesktop},
		{"windows chrome", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", domain.DeviceDesktop},
		{"mac safari", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15", domain.DeviceDesktop},
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1", domain.DeviceMobile},
		{"android phone", "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Mobile Safari/537.36", domain.DeviceMobile},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1", domain.DeviceTablet},
		{"android tablet", "Mozilla/5.0 (Linux; Android 13; SM-X700) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36", domain.DeviceTablet},
		{"kindle", "Mozilla/5.0 (Linux; U; en-US) AppleWebKit/528.5+ (KHTML, like Gecko, Safari/528.5+) Version/4.0 Kindle/3.0 (screen 600x800; rotate)", domain.DeviceTablet},
		{"curl", "curl/8.4.0", domain.DeviceDesktop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyDevice(tt.ua); got != tt.want {
				t.Errorf("ClassifyDevice() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseDeviceClass(t *testing.T) {
	tests := map[string]domain.DeviceClass{
		"mobile":   domain.DeviceMobile,
		" Tablet ": domain.DeviceTablet,
		"desktop":  domain.DeviceDesktop,
		"":         domain.DeviceDesktop,
		"watch":    domain.DeviceDesktop,
	}
	for in, want := range tests {
		if got := ParseDeviceClass(in); got != want {
			t.Errorf("ParseDeviceClass(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestCalendarDay_UTC(t *testing.T) {
	ts := time.Date(2026, 5, 1, 1, 30, 0, 0, time.FixedZone("EST", -5*3600))
	if got := CalendarDay(ts); got != "2026-05-01" {
		t.Errorf("CalendarDay = %s, want 2026-05-01", got)
	}
}
