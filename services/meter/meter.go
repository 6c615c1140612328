// services/meter/meter.go

// Package meter records light measurements to sqlite and exposes the
// control and export API.
package meter

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lightcode-go/drivers/apds9960"
	"lightcode-go/errcode"
	"lightcode-go/services/hal/halcore"
	"lightcode-go/services/hal/worker"
)

const maxJobDuration = 8 * time.Hour

// Meter owns one light adaptor and the recording pipeline around it.
// Scheduled polls and threshold alerts both funnel through the measure
// worker; its results land in sqlite via Run.
type Meter struct {
	Log          *logrus.Logger
	DB           *sql.DB
	DBPath       string
	Adaptor      halcore.Adaptor
	Worker       *worker.MeasureWorker
	Results      chan halcore.Result
	Alerts       <-chan time.Time
	PollInterval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	jobID  string
}

// Run drains worker results into the database and turns threshold alerts
// into priority measurements. Blocks until ctx is cancelled.
func (m *Meter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case ts := <-m.alerts():
			m.Log.WithField("at", ts).Info("threshold alert")
			jobID := m.currentJob()
			if jobID == "" {
				jobID = "alert"
			}
			if !m.Worker.Submit(halcore.MeasureReq{ID: jobID + "/alert", Adaptor: m.Adaptor, Prio: true}) {
				m.Log.Warn("alert measurement dropped, worker queue full")
			}

		case res := <-m.Results:
			m.record(res)
		}
	}
}

func (m *Meter) alerts() <-chan time.Time {
	if m.Alerts != nil {
		return m.Alerts
	}
	return nil // nil channel blocks forever
}

func (m *Meter) record(res halcore.Result) {
	if res.Err != nil {
		if errors.Is(res.Err, halcore.ErrPoweredOff) {
			m.Log.WithField("id", res.ID).Debug("skipped, sensor powered off")
			return
		}
		m.Log.WithField("id", res.ID).WithError(res.Err).Warn("measurement failed")
		return
	}
	for _, reading := range res.Sample {
		if reading.Kind != "light" {
			continue
		}
		payload, ok := reading.Payload.(map[string]any)
		if !ok {
			continue
		}
		row := ReadingRow{
			JobID:  res.ID,
			Source: "poll",
			Clear:  floatField(payload, "clear"),
			Red:    floatField(payload, "red"),
			Green:  floatField(payload, "green"),
			Blue:   floatField(payload, "blue"),
		}
		if isAlertJob(res.ID) {
			row.Source = "alert"
		}
		if err := insertReading(m.DB, row); err != nil {
			m.Log.WithError(err).Error("failed to record reading")
			continue
		}
		m.Log.WithFields(logrus.Fields{"id": res.ID, "clear": row.Clear}).Debug("recorded")
	}
}

func floatField(payload map[string]any, key string) float64 {
	v, _ := payload[key].(float64)
	return v
}

func isAlertJob(id string) bool {
	return len(id) >= 6 && id[len(id)-6:] == "/alert"
}

func (m *Meter) currentJob() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobID
}

// Start begins a polling job. One job at a time; jobs expire after
// maxJobDuration so an unattended meter does not record forever.
func (m *Meter) Start() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		if m.cancel != nil {
			m.mu.Unlock()
			serveJSON(w, http.StatusBadRequest, map[string]string{"message": "already recording"})
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), maxJobDuration)
		m.cancel = cancel
		m.jobID = uuid.New().String()
		jobID := m.jobID
		m.mu.Unlock()

		m.Log.WithField("job", jobID).Info("recording started")
		go m.poll(ctx, jobID)
		serveJSON(w, http.StatusOK, map[string]string{"message": "recording started", "jobID": jobID})
	}
}

func (m *Meter) poll(ctx context.Context, jobID string) {
	ticker := time.NewTicker(m.PollInterval)
	defer ticker.Stop()
	defer m.clearJob(jobID)

	for {
		if !m.Worker.Submit(halcore.MeasureReq{ID: jobID, Adaptor: m.Adaptor}) {
			m.Log.Warn("poll measurement dropped, worker queue full")
		}
		select {
		case <-ctx.Done():
			m.Log.WithField("job", jobID).Info("recording stopped")
			return
		case <-ticker.C:
		}
	}
}

func (m *Meter) clearJob(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.jobID == jobID {
		m.cancel = nil
		m.jobID = ""
	}
}

// Stop cancels the running job.
func (m *Meter) Stop() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		cancel := m.cancel
		m.mu.Unlock()
		if cancel == nil {
			serveJSON(w, http.StatusBadRequest, map[string]string{"message": "not recording"})
			return
		}
		cancel()
		serveJSON(w, http.StatusOK, map[string]string{"message": "recording stopped"})
	}
}

// CurrentConditions serves the most recent recorded reading.
func (m *Meter) CurrentConditions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		row, err := latestReading(m.DB)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				serveJSON(w, http.StatusNotFound, map[string]string{"message": "no readings recorded"})
				return
			}
			m.Log.WithError(err).Error("current conditions query failed")
			serveJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
			return
		}
		serveJSON(w, http.StatusOK, row)
	}
}

// Status reports whether a job is running and the device capabilities.
func (m *Meter) Status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		jobID := m.jobID
		m.mu.Unlock()
		serveJSON(w, http.StatusOK, map[string]any{
			"recording":    jobID != "",
			"jobID":        jobID,
			"capabilities": m.Adaptor.Capabilities(),
		})
	}
}

// Configure applies a partial options document to the sensor and returns
// the resulting configuration snapshot.
func (m *Meter) Configure() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var opts apds9960.Options
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			serveJSON(w, http.StatusBadRequest, map[string]string{"message": "bad options: " + err.Error()})
			return
		}
		snap, err := m.Adaptor.Control("light", "configure", opts)
		if err != nil {
			e := &errcode.E{C: errcode.MapDriverErr(err), Op: "configure", Err: err}
			status := http.StatusInternalServerError
			switch errcode.Of(e) {
			case errcode.InvalidOption, errcode.OutOfRange:
				status = http.StatusBadRequest
			}
			serveJSON(w, status, map[string]string{
				"code":    string(errcode.Of(e)),
				"message": e.Error(),
			})
			return
		}
		serveJSON(w, http.StatusOK, snap)
	}
}

// Snapshot serves the driver's configuration mirror.
func (m *Meter) Snapshot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := m.Adaptor.Control("light", "snapshot", nil)
		if err != nil {
			serveJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
			return
		}
		serveJSON(w, http.StatusOK, snap)
	}
}

// Export streams the raw sqlite file for offline analysis.
func (m *Meter) Export() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", "attachment; filename=lightmeter.db")
		http.ServeFile(w, r, m.DBPath)
	}
}

func serveJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
