package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sourpuh/WaymarkPresetPlugin/internal/dispatcher"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/util"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/zonesort"
)

// territoryQueueSize bounds pending zone changes; the host blocks when it
// is full instead of losing one.
const territoryQueueSize = 8

func arg(e dispatcher.Event, i int) (string, error) {
	if i >= len(e.Args) {
		return "", fmt.Errorf("%s: missing argument %d", e.Command, i+1)
	}
	return util.CleanArg(e.Args[i]), nil
}

func argInt(e dispatcher.Event, i int) (int, error) {
	s, err := arg(e, i)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: argument %d: %w", e.Command, i+1, err)
	}
	return n, nil
}

func argUint(e dispatcher.Event, i, bits int) (uint64, error) {
	s, err := arg(e, i)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%s: argument %d: %w", e.Command, i+1, err)
	}
	return n, nil
}

func argBool(e dispatcher.Event, i int) bool {
	s, err := arg(e, i)
	if err != nil {
		return false
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// RegisterHandlers binds the host commands served by the library.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	ctx := context.Background()

	// IPC placement, rate limited
	d.Register(":PLACE:INDEX:", func(e dispatcher.Event) (any, error) {
		index, err := argInt(e, 0)
		if err != nil {
			return nil, err
		}
		return true, s.IPCPlacePresetByIndex(ctx, index)
	}, dispatcher.Logged())

	d.Register(":PLACE:NAME:", func(e dispatcher.Event) (any, error) {
		name, err := arg(e, 0)
		if err != nil {
			return nil, err
		}
		return true, s.IPCPlacePresetByName(ctx, name)
	}, dispatcher.Logged())

	d.Register(":PLACE:NAME:ZONE:", func(e dispatcher.Event) (any, error) {
		name, err := arg(e, 0)
		if err != nil {
			return nil, err
		}
		zone, err := argUint(e, 1, 16)
		if err != nil {
			return nil, err
		}
		return true, s.IPCPlacePresetByNameAndZone(ctx, name, uint16(zone))
	}, dispatcher.Logged())

	d.Register(":PLACE:NAME:TERRITORY:", func(e dispatcher.Event) (any, error) {
		name, err := arg(e, 0)
		if err != nil {
			return nil, err
		}
		territory, err := argUint(e, 1, 32)
		if err != nil {
			return nil, err
		}
		return true, s.IPCPlacePresetByNameAndTerritory(ctx, name, uint32(territory))
	}, dispatcher.Logged())

	// Queries
	d.Register(":PRESETS:ZONE:", func(e dispatcher.Event) (any, error) {
		zone, err := argUint(e, 0, 16)
		if err != nil {
			return nil, err
		}
		return s.PresetsForZone(uint16(zone)), nil
	})

	d.Register(":PRESETS:TERRITORY:", func(e dispatcher.Event) (any, error) {
		territory, err := argUint(e, 0, 32)
		if err != nil {
			return nil, err
		}
		return s.PresetsForTerritory(uint32(territory)), nil
	})

	d.Register(":PRESETS:CURRENT:", func(e dispatcher.Event) (any, error) {
		return s.PresetsForCurrentArea(), nil
	})

	d.Register(":ZONES:SEARCH:", func(e dispatcher.Event) (any, error) {
		query := ""
		if len(e.Args) > 0 {
			query = util.CleanArg(e.Args[0])
		}
		return s.SearchZones(query), nil
	})

	d.Register(":STATUS:", func(e dispatcher.Event) (any, error) {
		return s.Status(), nil
	})

	d.Register(":LIBRARY:VIEW:", func(e dispatcher.Event) (any, error) {
		if len(e.Args) > 0 {
			name, _ := arg(e, 0)
			sortType, err := zonesort.ParseSortType(name)
			if err != nil {
				return nil, err
			}
			s.SetViewOptions(sortType, argBool(e, 1))
		}
		return s.LibraryView(), nil
	})

	// Zone changes run the auto save/load against the game store, so they
	// are queued off the host thread.
	d.Register(":TERRITORY:CHANGED:", func(e dispatcher.Event) (any, error) {
		territory, err := argUint(e, 0, 32)
		if err != nil {
			return nil, err
		}
		return nil, s.OnTerritoryChanged(ctx, uint32(territory))
	}, dispatcher.Buffered(territoryQueueSize), dispatcher.Blocking(), dispatcher.Logged())

	// Library edits
	d.Register(":IMPORT:SLOT:", func(e dispatcher.Event) (any, error) {
		slot, err := argInt(e, 0)
		if err != nil {
			return nil, err
		}
		return s.ImportFromSlot(ctx, slot)
	}, dispatcher.Logged())

	d.Register(":IMPORT:TEXT:", func(e dispatcher.Event) (any, error) {
		text, err := arg(e, 0)
		if err != nil {
			return nil, err
		}
		return s.ImportText(text)
	}, dispatcher.Logged())

	d.Register(":IMPORT:CURRENT:", func(e dispatcher.Event) (any, error) {
		name, _ := arg(e, 0)
		return s.CaptureCurrentWaymarks(ctx, name)
	}, dispatcher.Logged())

	d.Register(":EXPORT:PRESET:", func(e dispatcher.Event) (any, error) {
		index, err := argInt(e, 0)
		if err != nil {
			return nil, err
		}
		return s.ExportPreset(index, argBool(e, 1))
	})

	d.Register(":EXPORT:SLOT:", func(e dispatcher.Event) (any, error) {
		index, err := argInt(e, 0)
		if err != nil {
			return nil, err
		}
		slot, err := argInt(e, 1)
		if err != nil {
			return nil, err
		}
		return true, s.ExportToSlot(ctx, index, slot)
	}, dispatcher.Logged())

	d.Register(":DELETE:", func(e dispatcher.Event) (any, error) {
		index, err := argInt(e, 0)
		if err != nil {
			return nil, err
		}
		return true, s.DeletePreset(index)
	}, dispatcher.Logged())

	d.Register(":MOVE:", func(e dispatcher.Event) (any, error) {
		index, err := argInt(e, 0)
		if err != nil {
			return nil, err
		}
		newPos, err := argInt(e, 1)
		if err != nil {
			return nil, err
		}
		return s.MovePreset(index, newPos, argBool(e, 2))
	}, dispatcher.Logged())

	d.Register(":ZONE:MOVE:", func(e dispatcher.Event) (any, error) {
		zone, err := argUint(e, 0, 16)
		if err != nil {
			return nil, err
		}
		before := uint64(zonesort.EndOfOrder)
		if len(e.Args) > 1 {
			if before, err = argUint(e, 1, 16); err != nil {
				return nil, err
			}
		}
		s.MoveZone(uint16(zone), uint16(before))
		return true, nil
	}, dispatcher.Logged())

	// Chat command
	d.Register(":COMMAND:", func(e dispatcher.Event) (any, error) {
		line, _ := arg(e, 0)
		return s.TextCommand(ctx, line), nil
	})

	d.Register(":SAVE:", func(e dispatcher.Event) (any, error) {
		if err := s.Save(); err != nil {
			return nil, err
		}
		return "ok", nil
	})
}

// Shutdown closes d, which runs any queued zone changes, and then writes
// the library to the backend. The backend is left open for the caller.
func (s *Service) Shutdown(ctx context.Context, d *dispatcher.Dispatcher) error {
	var errs []error
	if d != nil {
		errs = append(errs, d.Close(ctx))
	}
	if s.deps.Backend != nil {
		errs = append(errs, s.Save())
	}
	return errors.Join(errs...)
}
