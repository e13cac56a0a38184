// Package control relays movement commands from the dashboard to the
// robot's controller and keeps an audit log of every attempt.
package control

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/inzora-robotics/groundlink/internal/db"
	"github.com/inzora-robotics/groundlink/internal/httputil"
	"github.com/inzora-robotics/groundlink/internal/monitoring"
)

// ErrUnknownCommand reports a command with no mapped controller path.
var ErrUnknownCommand = errors.New("control: unknown command")

// ControllerError reports a non-2xx response from the controller.
type ControllerError struct {
	Status int
}

func (e *ControllerError) Error() string {
	return fmt.Sprintf("control: controller responded %d", e.Status)
}

// commandPaths maps dashboard commands to the controller's HTTP paths.
var commandPaths = map[string]string{
	"F":    "/forward",
	"B":    "/backward",
	"L":    "/left",
	"R":    "/right",
	"S":    "/stop",
	"SLOW": "/speed?val=80",
	"FAST": "/speed?val=180",
}

// Commands returns the accepted command names.
func Commands() []string {
	out := make([]string, 0, len(commandPaths))
	for cmd := range commandPaths {
		out = append(out, cmd)
	}
	return out
}

// Relay forwards commands to the controller base URL.
type Relay struct {
	base   string
	client httputil.HTTPClient
	store  *db.DB // optional
}

// NewRelay creates a Relay. A nil client falls back to the standard client;
// store may be nil to skip the audit log.
func NewRelay(base string, client httputil.HTTPClient, store *db.DB) *Relay {
	if client == nil {
		client = httputil.NewStandardClient(nil)
	}
	return &Relay{base: base, client: client, store: store}
}

// Send forwards cmd to the controller and returns the generated command id.
// Every attempt with a known command is logged, including failures.
func (r *Relay) Send(cmd string) (string, error) {
	path, ok := commandPaths[cmd]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}

	id := uuid.NewString()
	resp, err := r.client.Get(r.base + path)
	if err != nil {
		r.log(id, cmd, "unreachable")
		return id, fmt.Errorf("send %s to controller: %w", cmd, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.log(id, cmd, "rejected")
		return id, &ControllerError{Status: resp.StatusCode}
	}

	r.log(id, cmd, "sent")
	return id, nil
}

func (r *Relay) log(id, cmd, status string) {
	if r.store == nil {
		return
	}
	if err := r.store.RecordCommand(id, cmd, status); err != nil {
		monitoring.Logf("failed to log command %s: %v", id, err)
	}
}
