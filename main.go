/*
main.go

Copyright © 2025 Code Monkey Cybersecurity
Contact: git@cybermonkey.net.au

This file is part of Cerberus.

This software is dual-licensed under the Do No Harm License
and the GNU Affero General Public License v3 (AGPL-3.0-or-later).
You may use, modify, and distribute it under the terms of either license.

See LICENSE.agpl and LICENSE.dnh for full details.
*/
package main

import (
	"github.com/CodeMonkeyCybersecurity/cerberus/cmd"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/telemetry"
	"go.uber.org/zap"
)

func main() {
	logger.InitializeWithFallback()

	if err := telemetry.Init(shared.CerberusID); err != nil {
		// A gate that cannot trace still gates.
		logger.L().Warn("⚠️ Telemetry initialization failed", zap.Error(err))
	}

	cmd.Execute()
}
