package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/universe/config"
	"github.com/pthm-cable/universe/universe"
)

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir           string
	telemetryFile *os.File
	eventsFile    *os.File

	telemetryHeaderWritten bool
	eventsHeaderWritten    bool
}

// NewOutputManager creates an output manager and initializes the output
// directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating telemetry.csv: %w", err)
	}
	om.telemetryFile = f

	f, err = os.Create(filepath.Join(dir, "events.csv"))
	if err != nil {
		om.telemetryFile.Close()
		return nil, fmt.Errorf("creating events.csv: %w", err)
	}
	om.eventsFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML alongside the CSVs, so
// every output directory is a self-contained, reproducible experiment record.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}

	records := []WindowStats{stats}
	if !om.telemetryHeaderWritten {
		if err := gocsv.Marshal(records, om.telemetryFile); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		om.telemetryHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.telemetryFile); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// eventRecord is the CSV projection of one simulation event.
type eventRecord struct {
	Tick   int64   `csv:"tick"`
	Type   string  `csv:"type"`
	Entity uint32  `csv:"entity"`
	Target uint32  `csv:"target"`
	From   int32   `csv:"from"`
	To     int32   `csv:"to"`
	Cause  string  `csv:"cause"`
	Amount float64 `csv:"amount"`
	Bytes  int     `csv:"bytes"`
}

// WriteEvents appends a batch of events to events.csv.
func (om *OutputManager) WriteEvents(events []universe.Event) error {
	if om == nil || len(events) == 0 {
		return nil
	}

	records := make([]eventRecord, len(events))
	for i, ev := range events {
		records[i] = eventRecord{
			Tick:   ev.Tick,
			Type:   ev.Type.String(),
			Entity: uint32(ev.Entity),
			Target: uint32(ev.Target),
			From:   int32(ev.From),
			To:     int32(ev.To),
			Cause:  ev.Cause.String(),
			Amount: ev.Amount,
			Bytes:  ev.Bytes,
		}
	}

	if !om.eventsHeaderWritten {
		if err := gocsv.Marshal(records, om.eventsFile); err != nil {
			return fmt.Errorf("writing events: %w", err)
		}
		om.eventsHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.eventsFile); err != nil {
		return fmt.Errorf("writing events: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	if om.telemetryFile != nil {
		if err := om.telemetryFile.Close(); err != nil {
			firstErr = err
		}
	}
	if om.eventsFile != nil {
		if err := om.eventsFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
