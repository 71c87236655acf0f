// pkg/gateconfig/vars.go

// Package gateconfig holds the compiled-in policy of the gateway: which
// handler to exec, which uid/gid band may own scripts, where scripts must
// live, and who is allowed to invoke the binary. There is no config file and
// no flag surface; policy is fixed at build time so a compromised runtime
// environment cannot loosen it.
//
// Values are injected via -ldflags, for example:
//
//	go build -ldflags "-X github.com/CodeMonkeyCybersecurity/cerberus/pkg/gateconfig.HandlerPath=/usr/lib/cgi-bin/php-cgi"
package gateconfig

// These variables are set via -ldflags at build time. The defaults describe
// a stock Debian PHP deployment.
var (
	// HandlerPath is the external interpreter the gateway execs.
	HandlerPath = "/usr/lib/cgi-bin/php"

	// MinScriptUID and MaxScriptUID bound the uid band served.
	MinScriptUID = "1000"
	MaxScriptUID = "50000"

	// MinScriptGID and MaxScriptGID bound the gid band served.
	MinScriptGID = "1000"
	MaxScriptGID = "50000"

	// ScriptBaseDir is the tree all served scripts must live under.
	ScriptBaseDir = "/home"

	// ScriptSuffix is the filename suffix every served script must carry.
	ScriptSuffix = ".php"

	// SecurePath is the PATH value handed to the handler.
	SecurePath = "/usr/bin:/bin"

	// CallerUser and CallerGroup name the only identity allowed to invoke
	// the gateway.
	CallerUser  = "www-data"
	CallerGroup = "www-data"
)
