// Package hostinterface is the Go side of the plugin ABI. The host calls
// into the plugin with a command and optional arguments and receives a
// JSON array reply; the plugin pushes changes back through a registered
// callback.
package hostinterface

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sourpuh/WaymarkPresetPlugin/internal/dispatcher"
)

// ErrNoCallback is returned by WriteCallback before the host registered one.
var ErrNoCallback = errors.New("no host callback registered")

// CallbackFunc delivers one message to the host. data is a JSON array.
type CallbackFunc func(name, function, data string)

type configStruct struct {
	mu         sync.RWMutex
	version    string
	name       string
	dispatcher *dispatcher.Dispatcher
	callback   CallbackFunc
}

// Config defines how calls to this plugin are handled.
var Config = &configStruct{version: "No version set", name: "waymark_presets"}

// SetVersion sets the string returned by the version entry point.
func SetVersion(version string) {
	Config.mu.Lock()
	defer Config.mu.Unlock()
	Config.version = version
}

// Version returns the string set by SetVersion.
func Version() string {
	Config.mu.RLock()
	defer Config.mu.RUnlock()
	return Config.version
}

// SetName sets the plugin name passed to the host callback.
func SetName(name string) {
	Config.mu.Lock()
	defer Config.mu.Unlock()
	Config.name = name
}

// SetDispatcher sets the event dispatcher for handling commands
func SetDispatcher(d *dispatcher.Dispatcher) {
	Config.mu.Lock()
	defer Config.mu.Unlock()
	Config.dispatcher = d
}

// GetDispatcher returns the configured dispatcher, or nil if not set
func GetDispatcher() *dispatcher.Dispatcher {
	Config.mu.RLock()
	defer Config.mu.RUnlock()
	return Config.dispatcher
}

// SetCallback registers the host callback. A nil fn unregisters it.
func SetCallback(fn CallbackFunc) {
	Config.mu.Lock()
	defer Config.mu.Unlock()
	Config.callback = fn
}

// Call routes one host call to the dispatcher and returns the reply.
// Commands of the form "cmd|a|b" are split into command and arguments
// when no handler is registered for the whole string.
func Call(command string, args []string) string {
	if command == ":TIMESTAMP:" {
		return FormatResponse(strconv.FormatInt(time.Now().UTC().UnixNano(), 10), nil)
	}

	d := GetDispatcher()
	if d == nil {
		return FormatResponse(nil, fmt.Errorf("%s: no dispatcher", command))
	}

	if !d.HasHandler(command) {
		if head, rest, ok := strings.Cut(command, "|"); ok && d.HasHandler(head) && len(args) == 0 {
			command, args = head, strings.Split(rest, "|")
		}
	}
	if !d.HasHandler(command) {
		return FormatResponse(nil, fmt.Errorf("%s: no handler registered", command))
	}

	result, err := d.Dispatch(dispatcher.Event{
		Command:   command,
		Args:      args,
		Timestamp: time.Now(),
	})
	return FormatResponse(result, err)
}

// FormatResponse renders `["ok"]`, `["ok", <json>]` or `["error", "<msg>"]`.
func FormatResponse(result any, err error) string {
	if err != nil {
		msg, _ := json.Marshal(err.Error())
		return `["error", ` + string(msg) + `]`
	}
	if result == nil {
		return `["ok"]`
	}
	data, mErr := json.Marshal(result)
	if mErr != nil {
		msg, _ := json.Marshal(fmt.Sprintf("encoding result: %v", mErr))
		return `["error", ` + string(msg) + `]`
	}
	return `["ok", ` + string(data) + `]`
}

// WriteCallback sends function and its arguments, encoded as one JSON
// array, to the host.
func WriteCallback(function string, data ...any) error {
	Config.mu.RLock()
	fn, name := Config.callback, Config.name
	Config.mu.RUnlock()
	if fn == nil {
		return ErrNoCallback
	}

	if data == nil {
		data = []any{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding %s callback: %w", function, err)
	}
	fn(name, function, string(payload))
	return nil
}

// Notifier forwards store changes to the host callback.
type Notifier struct{}

func (Notifier) Notify(function string, args ...any) error {
	return WriteCallback(function, args...)
}
