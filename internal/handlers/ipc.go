package handlers

import (
	"context"
	"fmt"
	"time"
)

// IPC placement entry points share the cooldown gate. A rejected request
// does not restart the cooldown.

func (s *Service) checkCooldown(functionName, detail string) error {
	s.writeLog(functionName, "IPC request received to place a preset. "+detail, "INFO")
	if !s.deps.Gate.Allow() {
		return fmt.Errorf("%w: retry in %s", ErrCooldownActive, s.deps.Gate.Remaining().Round(time.Millisecond))
	}
	return nil
}

func (s *Service) IPCPlacePresetByIndex(ctx context.Context, index int) error {
	if err := s.checkCooldown("IPCPlacePresetByIndex", fmt.Sprintf("Index: %d", index)); err != nil {
		return err
	}
	return s.place(ctx, index, true, SourceIPC)
}

func (s *Service) IPCPlacePresetByName(ctx context.Context, name string) error {
	if err := s.checkCooldown("IPCPlacePresetByName", fmt.Sprintf("Preset Name: %s", name)); err != nil {
		return err
	}
	return s.placeByName(ctx, name, true, SourceIPC)
}

func (s *Service) IPCPlacePresetByNameAndZone(ctx context.Context, name string, zone uint16) error {
	if err := s.checkCooldown("IPCPlacePresetByNameAndZone", fmt.Sprintf("Preset Name: %s, Zone: %d", name, zone)); err != nil {
		return err
	}
	return s.placeByNameAndZone(ctx, name, zone, SourceIPC)
}

func (s *Service) IPCPlacePresetByNameAndTerritory(ctx context.Context, name string, territory uint32) error {
	if err := s.checkCooldown("IPCPlacePresetByNameAndTerritory", fmt.Sprintf("Preset Name: %s, Territory: %d", name, territory)); err != nil {
		return err
	}
	return s.placeByNameAndZone(ctx, name, s.deps.Zones.ContentFinderIDFromTerritory(territory), SourceIPC)
}
