// Package metrics provides a thin, append-only CSV counter for the sample
// server's connection and request bookkeeping. It is write-only: the core
// dispatcher never reads these files back, and any counter touched by a
// handler is that handler's own synchronization problem, not the
// dispatcher's.
package metrics

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/tzrikka/xdg"
)

const (
	DefaultConnectionsFile = "metrics/tidewire_connections_%s.csv"
	DefaultRequestsFile    = "metrics/tidewire_requests_%s.csv"

	fileFlags = os.O_APPEND | os.O_CREATE | os.O_WRONLY
	filePerms = xdg.NewFilePermissions
)

var (
	muConns sync.Mutex
	muReqs  sync.Mutex
)

// CountConnection records one accepted TCP connection, identified by its
// short connection ID (see [github.com/tidewire/tidewire/pkg/dispatcher]).
func CountConnection(l *slog.Logger, t time.Time, connID, remoteAddr string) {
	muConns.Lock()
	defer muConns.Unlock()

	record := []string{t.Format(time.RFC3339), connID, remoteAddr}
	if err := appendToCSVFile(DefaultConnectionsFile, t, record); err != nil {
		l.Error("metrics error: failed to record accepted connection",
			slog.Any("error", err), slog.String("conn_id", connID))
	}
}

// CountRequest records one handled HTTP request and the status code its
// handler produced. It returns the status code unchanged, so callers can
// wrap a response write with it without an extra local variable.
func CountRequest(l *slog.Logger, t time.Time, connID string, statusCode int) int {
	muReqs.Lock()
	defer muReqs.Unlock()

	record := []string{t.Format(time.RFC3339), connID, strconv.Itoa(statusCode)}
	if err := appendToCSVFile(DefaultRequestsFile, t, record); err != nil {
		l.Error("metrics error: failed to record request",
			slog.Any("error", err), slog.String("conn_id", connID), slog.Int("status", statusCode))
	}

	return statusCode
}

func appendToCSVFile(filename string, t time.Time, record []string) error {
	filename = fmt.Sprintf(filename, t.Format(time.DateOnly))
	f, err := os.OpenFile(filename, fileFlags, filePerms) //gosec:disable G304 // Hardcoded path.
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(record); err != nil {
		return err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	return nil
}
