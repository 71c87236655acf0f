// pkg/shared/version.go

package shared

// Version is the cerberus release version. Overridden at build time:
//
//	go build -ldflags "-X github.com/CodeMonkeyCybersecurity/cerberus/pkg/shared.Version=1.2.3"
var Version = "0.1.0-dev"
