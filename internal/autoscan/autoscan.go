// Package autoscan runs the background tick loop that enqueues scans on an
// interval or when it observes a source's newest mtime advance, mirroring
// the 5-second-tick driver the original service ran alongside its worker.
package autoscan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/galleryloom/gallerysync/internal/entity"
	"github.com/galleryloom/gallerysync/pkg/job"
)

const (
	tickInterval       = 5 * time.Second
	disabledTickSleep  = 10 * time.Second
	changeWatchPeriod  = 20 * time.Second
)

// ConfigSource supplies the current Settings/Sources snapshot the driver
// reads on every tick; a real implementation reads from internal/config.
type ConfigSource interface {
	CurrentSettings() entity.Settings
	CurrentSources() []entity.Source
}

// Driver runs the auto-scan loop against a job.Queue.
type Driver struct {
	queue  *job.Queue
	config ConfigSource
	dataRoot string
	runScan func(ctx context.Context) error
	log    *zap.SugaredLogger

	lastFullScan    time.Time
	lastSourceMtime map[string]float64
	lastChangeCheck time.Time
	nextDisabledCheck time.Time
}

// New returns a Driver. runScan is the job body enqueued on trigger — it
// should perform one non-dry-run scan.
func New(queue *job.Queue, config ConfigSource, dataRoot string, runScan func(ctx context.Context) error, log *zap.SugaredLogger) *Driver {
	if log == nil {
		log = zap.S()
	}
	return &Driver{
		queue:           queue,
		config:          config,
		dataRoot:        dataRoot,
		runScan:         runScan,
		log:             log.Named("autoscan"),
		lastSourceMtime: make(map[string]float64),
	}
}

// Run blocks ticking until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

func (d *Driver) tick(ctx context.Context) {
	if _, running := d.queue.Running(); running {
		return
	}

	settings := d.config.CurrentSettings()
	if !settings.AutoScanEnabled {
		if time.Now().Before(d.nextDisabledCheck) {
			return
		}
		d.nextDisabledCheck = time.Now().Add(disabledTickSleep)
		return
	}

	sources := d.config.CurrentSources()

	if time.Since(d.lastFullScan) >= time.Duration(settings.AutoScanIntervalMinutes)*time.Minute {
		d.trigger(ctx, "interval")
		return
	}

	if time.Since(d.lastChangeCheck) < changeWatchPeriod {
		return
	}
	d.lastChangeCheck = time.Now()

	enabled := make([]entity.Source, len(sources))
	copy(enabled, sources)
	sort.Slice(enabled, func(i, j int) bool { return enabled[i].Path < enabled[j].Path })

	for _, source := range enabled {
		if !source.Enabled {
			continue
		}
		latest := d.latestMtime(filepath.Join(d.dataRoot, source.Path), settings)
		if latest > d.lastSourceMtime[source.ID] {
			d.lastSourceMtime[source.ID] = latest
			d.trigger(ctx, fmt.Sprintf("change_source_%s", source.ID))
			return
		}
	}
}

func (d *Driver) trigger(ctx context.Context, reason string) {
	name := "scan_auto_" + reason
	_, err := d.queue.Enqueue(name, d.runScan)
	if err != nil {
		d.log.Debugw("auto-scan trigger skipped", "reason", reason, "error", err)
		return
	}
	d.lastFullScan = time.Now()
	d.log.Infow("auto-scan triggered", "reason", reason)
}

func (d *Driver) latestMtime(dir string, settings entity.Settings) float64 {
	var latest float64
	_ = filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}
		ext := trimExt(entry.Name())
		if !settings.ImageExtensions[ext] && !settings.ArchiveExtensions[ext] {
			return nil
		}
		info, statErr := entry.Info()
		if statErr != nil {
			return nil
		}
		mtime := float64(info.ModTime().UnixNano()) / 1e9
		if mtime > latest {
			latest = mtime
		}
		return nil
	})
	return latest
}

func trimExt(name string) string {
	ext := filepath.Ext(name)
	if len(ext) == 0 {
		return ""
	}
	return toLower(ext[1:])
}

func toLower(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'A' && c <= 'Z' {
			out[i] = c + ('a' - 'A')
		}
	}
	return string(out)
}
