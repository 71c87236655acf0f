// pkg/gateconfig/config.go

package gateconfig

import (
	"context"
	"fmt"
	"strconv"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/identity"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// MaxSecurePathLen bounds the PATH value handed to the handler.
const MaxSecurePathLen = 1024

// Config is the typed form of the build-time policy. Shape invariants are
// declared as tags; anything that needs the live system (stat, account
// lookup) happens in Validate.
type Config struct {
	Handler     string `validate:"required,startswith=/"`
	MinUID      uint32 `validate:"min=1,max=2147483647"`
	MaxUID      uint32 `validate:"min=1,max=2147483647,gtfield=MinUID"`
	MinGID      uint32 `validate:"min=1,max=2147483647"`
	MaxGID      uint32 `validate:"min=1,max=2147483647,gtfield=MinGID"`
	BaseDir     string `validate:"required,startswith=/"`
	Suffix      string `validate:"required,startswith=."`
	SecurePath  string `validate:"required,max=1024"`
	CallerUser  string `validate:"required"`
	CallerGroup string `validate:"required"`

	// CallerUID and CallerGID are resolved from CallerUser/CallerGroup
	// during Validate and consumed by the post-drop identity recheck.
	CallerUID uint32 `validate:"-"`
	CallerGID uint32 `validate:"-"`
}

// UIDRange returns the served uid band.
func (c *Config) UIDRange() identity.IDRange {
	return identity.IDRange{Min: c.MinUID, Max: c.MaxUID}
}

// GIDRange returns the served gid band.
func (c *Config) GIDRange() identity.IDRange {
	return identity.IDRange{Min: c.MinGID, Max: c.MaxGID}
}

// Load parses the build-time variables into a Config. Parse failures mean
// the binary was built with broken -ldflags values.
func Load(ctx context.Context) (*Config, error) {
	logger := otelzap.Ctx(ctx)

	minUID, err := parseID(ctx, "MinScriptUID", MinScriptUID)
	if err != nil {
		return nil, err
	}
	maxUID, err := parseID(ctx, "MaxScriptUID", MaxScriptUID)
	if err != nil {
		return nil, err
	}
	minGID, err := parseID(ctx, "MinScriptGID", MinScriptGID)
	if err != nil {
		return nil, err
	}
	maxGID, err := parseID(ctx, "MaxScriptGID", MaxScriptGID)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Handler:     HandlerPath,
		MinUID:      minUID,
		MaxUID:      maxUID,
		MinGID:      minGID,
		MaxGID:      maxGID,
		BaseDir:     ScriptBaseDir,
		Suffix:      ScriptSuffix,
		SecurePath:  SecurePath,
		CallerUser:  CallerUser,
		CallerGroup: CallerGroup,
	}

	logger.Debug("📝 Compiled-in policy loaded",
		zap.String("handler", cfg.Handler),
		zap.String("base_dir", cfg.BaseDir),
		zap.String("suffix", cfg.Suffix),
		zap.Uint32("min_uid", cfg.MinUID),
		zap.Uint32("max_uid", cfg.MaxUID),
		zap.Uint32("min_gid", cfg.MinGID),
		zap.Uint32("max_gid", cfg.MaxGID),
		zap.String("caller", cfg.CallerUser+":"+cfg.CallerGroup))
	return cfg, nil
}

func parseID(ctx context.Context, name, value string) (uint32, error) {
	id, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		otelzap.Ctx(ctx).Debug("❌ Unparseable id in build-time policy",
			zap.String("name", name),
			zap.String("value", value))
		return 0, cerberus_err.NewConfigError(
			fmt.Sprintf("build-time value %s=%q is not a valid id", name, value), err,
			"Rebuild with a decimal uid/gid in the -ldflags value")
	}
	return uint32(id), nil
}
