package analytics

import (
	"strings"
	"time"

	"github.com/wadjakorntonsri/folio/pkg/core/domain"
)

var (
	tabletTokens = []string{"ipad", "tablet", "kindle", "silk", "playbook", "nexus 7", "nexus 10", "sm-t"}
	mobileTokens = []string{"mobi", "iphone", "ipod", "android", "blackberry", "bb10", "opera mini", "windows phone", "iemobile"}
)

// ClassifyDevice maps a user agent to a device class. Tablet tokens are
// checked first since many tablet agents also carry mobile tokens. Anything
// unrecognised, including an empty agent, counts as desktop.
func ClassifyDevice(userAgent string) domain.DeviceClass {
	ua := strings.ToLower(userAgent)
	if ua == "" {
		return domain.DeviceDesktop
	}
	// Android tablets omit "mobile"; Android phones include it.
	if strings.Contains(ua, "android") && !strings.Contains(ua, "mobile") {
		return domain.DeviceTablet
	}
	if containsAny(ua, tabletTokens) {
		return domain.DeviceTablet
	}
	if containsAny(ua, mobileTokens) {
		return domain.DeviceMobile
	}
	return domain.DeviceDesktop
}

// ParseDeviceClass folds a caller-supplied class name onto the three known
// classes. Unknown names become desktop.
func ParseDeviceClass(s string) domain.DeviceClass {
	switch domain.DeviceClass(strings.ToLower(strings.TrimSpace(s))) {
	case domain.DeviceMobile:
		return domain.DeviceMobile
	case domain.DeviceTablet:
		return domain.DeviceTablet
	default:
		return domain.DeviceDesktop
	}
}

// CalendarDay is the day bucket a timestamp falls in (UTC).
func CalendarDay(t time.Time) string {
	return domain.CalendarDay(t)
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
