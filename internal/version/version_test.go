// ABOUTME: Tests for version constants
// ABOUTME: Ensures version information is defined and well formed
package version

import (
	"regexp"
	"testing"
)

var semver = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

func TestConstantsDefined(t *testing.T) {
	tests := map[string]string{
		"Version":      Version,
		"Product":      Product,
		"Manufacturer": Manufacturer,
	}

	for name, value := range tests {
		if value == "" {
			t.Errorf("%s should not be empty", name)
		}
		if len(value) > 100 {
			t.Errorf("%s is unreasonably long", name)
		}
	}
}

func TestVersionFormat(t *testing.T) {
	if !semver.MatchString(Version) {
		t.Errorf("Version %q is not major.minor.patch", Version)
	}
}

func TestProductAdvertisable(t *testing.T) {
	// mDNS TXT values and the websocket status both carry the product name
	for _, r := range Product {
		if r == ' ' || r == '=' {
			t.Errorf("Product %q contains %q", Product, r)
		}
	}
}
