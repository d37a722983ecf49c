package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sourpuh/WaymarkPresetPlugin/internal/handlers"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/logging"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/storage"
)

// StatusFileName is written into the plugin folder on every tick.
const StatusFileName = "status.txt"

// StatusSource reports the library snapshot written to the status file.
type StatusSource interface {
	Status() handlers.Status
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Source        StatusSource
	Backend       storage.Backend
	LogManager    *logging.SlogManager
	Folder        string
	Interval      time.Duration
	BackupOnStart bool
}

// Service keeps the status file current and takes the startup backup.
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = 30 * time.Second
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// StatusPath is where the status file is written.
func (s *Service) StatusPath() string {
	return filepath.Join(s.deps.Folder, StatusFileName)
}

// WriteStatus writes the current snapshot to the status file.
func (s *Service) WriteStatus() error {
	data, err := json.MarshalIndent(s.deps.Source.Status(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding status: %w", err)
	}
	return os.WriteFile(s.StatusPath(), append(data, '\n'), 0644)
}

// Start takes the startup backup when configured and then refreshes the
// status file every interval until Stop or ctx ends.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	logger := s.deps.LogManager.Logger()

	if s.deps.BackupOnStart && s.deps.Backend != nil {
		if path, err := s.deps.Backend.Backup(); err != nil {
			logger.Warn("Startup backup failed", "error", err)
		} else {
			logger.Info("Startup backup written", "path", path)
		}
	}

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			close(s.done)
			s.mu.Unlock()
		}()

		logger.Debug("Starting status monitor goroutine", "function", "monitor.Start")
		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			if err := s.WriteStatus(); err != nil {
				logger.Error("Error writing status file", "error", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.done
	s.isRunning = false
	s.mu.Unlock()
	<-done
}
