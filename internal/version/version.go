// ABOUTME: Version information for gwambient
// ABOUTME: Product, manufacturer and version constants shown in status output
package version

const (
	// Version is the release version
	Version = "0.3.0"

	// Product is the product name advertised over mDNS and the status feed
	Product = "gwambient"

	// Manufacturer identifies who builds the installation
	Manufacturer = "gwambient"
)
