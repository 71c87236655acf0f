// pkg/telemetry/telemetry_management/stats.go

package telemetry_management

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_err"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/cerberus_io"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/cerberus/pkg/telemetry"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// SpanStats summarizes the local span file. An admitted request replaces the
// process image before the outcome span is written, so outcome spans in the
// file are refusals and operator commands, never successful hand-offs.
type SpanStats struct {
	TotalSpans  int
	Outcomes    int
	Succeeded   int
	Failed      int
	FailureRate float64
	FileSize    string
	OldestEntry string
	NewestEntry string
	TopSpans    []SpanCount
}

// SpanCount pairs a span name with how often it appears.
type SpanCount struct {
	Name  string
	Count int
}

// spanRecord matches the JSON the stdouttrace exporter appends per line.
// Only the fields the summary needs are decoded.
type spanRecord struct {
	Name       string
	StartTime  time.Time
	Attributes []struct {
		Key   string
		Value struct {
			Type  string
			Value any
		}
	}
}

// ReadStats parses the span file at path and aggregates it.
func ReadStats(rc *cerberus_io.RuntimeContext, path string) (*SpanStats, error) {
	logger := otelzap.Ctx(rc.Ctx)
	logger.Debug("📊 Reading span file", zap.String("path", path))

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cerberus_err.NewNoInputError(
				fmt.Sprintf("no span file at %s, enable telemetry and run a command first", path), err)
		}
		return nil, cerberus_err.NewOSError("cannot open span file", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			logger.Warn("⚠️ Failed to close span file", zap.Error(cerr))
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return nil, cerberus_err.NewOSError("cannot stat span file", err)
	}

	stats := &SpanStats{FileSize: formatFileSize(info.Size())}
	counts := make(map[string]int)
	var oldest, newest time.Time

	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var rec spanRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			logger.Debug("🧹 Skipping malformed span line",
				zap.Int("line", line),
				zap.Error(err))
			continue
		}
		if rec.Name == "" {
			continue
		}
		// The file is plain text in a directory other tooling can reach; a
		// doctored name must not ride the summary onto the operator's
		// terminal.
		if err := shared.ValidateSafeString(rec.Name, 64, "span name"); err != nil {
			logger.Debug("🧹 Skipping span with hostile name",
				zap.Int("line", line),
				zap.Error(err))
			continue
		}

		stats.TotalSpans++
		counts[rec.Name]++

		for _, attr := range rec.Attributes {
			if attr.Key != "success" {
				continue
			}
			if ok, isBool := attr.Value.Value.(bool); isBool {
				stats.Outcomes++
				if ok {
					stats.Succeeded++
				} else {
					stats.Failed++
				}
			}
		}

		if !rec.StartTime.IsZero() {
			if oldest.IsZero() || rec.StartTime.Before(oldest) {
				oldest = rec.StartTime
			}
			if newest.IsZero() || rec.StartTime.After(newest) {
				newest = rec.StartTime
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, cerberus_err.NewOSError("cannot read span file", err)
	}

	if stats.Outcomes > 0 {
		stats.FailureRate = float64(stats.Failed) / float64(stats.Outcomes) * 100
	}
	if !oldest.IsZero() {
		stats.OldestEntry = oldest.Format("2006-01-02 15:04:05")
	}
	if !newest.IsZero() {
		stats.NewestEntry = newest.Format("2006-01-02 15:04:05")
	}

	for name, count := range counts {
		stats.TopSpans = append(stats.TopSpans, SpanCount{Name: name, Count: count})
	}
	sort.Slice(stats.TopSpans, func(i, j int) bool {
		if stats.TopSpans[i].Count != stats.TopSpans[j].Count {
			return stats.TopSpans[i].Count > stats.TopSpans[j].Count
		}
		return stats.TopSpans[i].Name < stats.TopSpans[j].Name
	})

	logger.Debug("✅ Span file summarized",
		zap.Int("spans", stats.TotalSpans),
		zap.Int("lines", line),
		zap.Int("distinct_names", len(counts)))
	return stats, nil
}

// ShowStats prints a summary of the local span file for the operator. top
// bounds the frequency table; values below one fall back to the default.
func ShowStats(rc *cerberus_io.RuntimeContext, top int) error {
	logger := otelzap.Ctx(rc.Ctx)

	if top < 1 {
		top = 5
	}

	if !telemetry.IsEnabled() {
		logger.Info("terminal prompt: ❌ Telemetry is disabled, no spans are being recorded")
		logger.Info("terminal prompt:    Enable with: cerberus telemetry on")
	}

	spanFile := telemetry.SpanFilePath()
	stats, err := ReadStats(rc, spanFile)
	if err != nil {
		return err
	}

	logger.Info("terminal prompt: 📈 Span file summary")
	logger.Info("terminal prompt:    File:      " + spanFile + " (" + stats.FileSize + ")")
	logger.Info(fmt.Sprintf("terminal prompt:    Spans:     %d", stats.TotalSpans))
	if stats.Outcomes > 0 {
		logger.Info(fmt.Sprintf("terminal prompt:    Outcomes:  %d recorded, %d failed (%.1f%%)",
			stats.Outcomes, stats.Failed, stats.FailureRate))
	}
	if stats.OldestEntry != "" {
		logger.Info("terminal prompt:    Range:     " + stats.OldestEntry + " to " + stats.NewestEntry)
	}

	if len(stats.TopSpans) > 0 {
		logger.Info("terminal prompt:    Most frequent spans:")
		for i, sc := range stats.TopSpans {
			if i >= top {
				break
			}
			logger.Info(fmt.Sprintf("terminal prompt:      %d. %-28s %d", i+1, sc.Name, sc.Count))
		}
	}
	return nil
}

func formatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
