package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourpuh/WaymarkPresetPlugin/internal/codec"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/config"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/cooldown"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/gamemem"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/library"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/logging"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/storage"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/zoneinfo"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/zonesort"
	"github.com/sourpuh/WaymarkPresetPlugin/pkg/core"
	"github.com/sourpuh/WaymarkPresetPlugin/pkg/fieldmarker"

	"golang.org/x/sync/errgroup"
)

var (
	ErrPresetNotFound = errors.New("preset not found")
	ErrZoneMismatch   = errors.New("preset is not for the current zone")
	ErrCooldownActive = errors.New("placement cooldown active")
	ErrNoBackend      = errors.New("no storage backend configured")
)

// AutoImportedSuffix is appended to the duty name of presets saved when
// leaving an instance.
const AutoImportedSuffix = " - AutoImported"

// Telemetry sources.
const (
	SourceDirect  = "direct"
	SourceIPC     = "ipc"
	SourceCommand = "command"
	SourceSlot    = "slot"
	SourceText    = "text"
	SourceCapture = "capture"
	SourceAuto    = "auto"
)

// Telemetry receives usage events. The influx manager implements it.
type Telemetry interface {
	RecordPlacement(source string, zone uint16)
	RecordImport(source string, zone uint16)
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Library    *library.Library
	Zones      *zoneinfo.Index
	Store      gamemem.Store
	Gate       *cooldown.Gate
	Backend    storage.Backend
	LogManager *logging.SlogManager
	Telemetry  Telemetry
	Config     config.LibraryConfig
}

// PresetRef names one library entry in query results.
type PresetRef struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// Service implements the plugin's command surface. The library and the
// library is guarded by one mutex; game store calls are made without
// holding it.
type Service struct {
	deps         Dependencies
	mu           sync.Mutex
	territory    atomic.Uint32
	zoneSearch   *zoneinfo.Searcher
	writeLogFunc func(functionName, data, level string)
}

// NewService creates a new handler service
func NewService(deps Dependencies) *Service {
	if deps.Gate == nil {
		deps.Gate = cooldown.New(deps.Config.PlacementCooldown)
	}
	if deps.Zones == nil {
		deps.Zones = zoneinfo.NewIndex()
	}
	s := &Service{deps: deps, zoneSearch: zoneinfo.NewSearcher(deps.Zones)}
	s.writeLogFunc = func(functionName, data, level string) {
		if deps.LogManager != nil {
			deps.LogManager.WriteLog(functionName, data, level)
		}
	}
	s.deps.Library.SetZoneSortDescending(deps.Config.SortZonesDescending)
	return s
}

func (s *Service) writeLog(functionName, data, level string) {
	s.writeLogFunc(functionName, data, level)
}

func (s *Service) recordPlacement(source string, zone uint16) {
	if s.deps.Telemetry != nil {
		s.deps.Telemetry.RecordPlacement(source, zone)
	}
}

func (s *Service) recordImport(source string, zone uint16) {
	if s.deps.Telemetry != nil {
		s.deps.Telemetry.RecordImport(source, zone)
	}
}

// Territory returns the territory the player is in.
func (s *Service) Territory() uint32 {
	return s.territory.Load()
}

// SetTerritory records the current territory without running the
// zone-change automation.
func (s *Service) SetTerritory(territory uint32) {
	s.territory.Store(territory)
}

// LogAttrs describes the current area for log records. It is empty
// outside any territory.
func (s *Service) LogAttrs() []slog.Attr {
	territory := s.Territory()
	if territory == 0 {
		return nil
	}
	return []slog.Attr{
		slog.Uint64("territory", uint64(territory)),
		slog.Uint64("zone", uint64(s.deps.Zones.ContentFinderIDFromTerritory(territory))),
	}
}

// CurrentZone returns the content id of the current territory, 0 outside
// known duties.
func (s *Service) CurrentZone() uint16 {
	return s.deps.Zones.ContentFinderIDFromTerritory(s.Territory())
}

// Load replaces the library with what the backend holds.
func (s *Service) Load() error {
	if s.deps.Backend == nil {
		return ErrNoBackend
	}
	presets, err := s.deps.Backend.LoadLibrary()
	if err != nil {
		return fmt.Errorf("load library: %w", err)
	}
	order, err := s.deps.Backend.LoadZoneSortOrder()
	if err != nil {
		return fmt.Errorf("load zone sort order: %w", err)
	}

	s.mu.Lock()
	s.deps.Library.Load(presets, order)
	s.deps.Library.SetZoneSortDescending(s.deps.Config.SortZonesDescending)
	s.mu.Unlock()

	s.writeLog("Load", fmt.Sprintf("Loaded %d presets, %d custom zone entries", len(presets), len(order)), "INFO")
	return nil
}

// Save persists the preset list and the custom zone order.
func (s *Service) Save() error {
	if s.deps.Backend == nil {
		return ErrNoBackend
	}
	s.mu.Lock()
	presets := s.deps.Library.Presets()
	order := s.deps.Library.CustomSortOrder()
	s.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		return s.deps.Backend.SaveLibrary(presets)
	})
	g.Go(func() error {
		return s.deps.Backend.SaveZoneSortOrder(order)
	})
	if err := g.Wait(); err != nil {
		s.writeLog("Save", fmt.Sprintf("Failed to save library: %v", err), "ERROR")
		return err
	}
	s.writeLog("Save", fmt.Sprintf("Saved %d presets", len(presets)), "DEBUG")
	return nil
}

// save is called after every mutation; failures are logged only.
func (s *Service) save() {
	if s.deps.Backend == nil {
		return
	}
	_ = s.Save()
}

////////////////////////
// PLACEMENT
////////////////////////

func (s *Service) place(ctx context.Context, index int, requireZoneMatch bool, source string) error {
	s.mu.Lock()
	p, err := s.deps.Library.Preset(index)
	s.mu.Unlock()
	territory := s.Territory()
	if err != nil {
		return err
	}

	if requireZoneMatch {
		if current := s.deps.Zones.ContentFinderIDFromTerritory(territory); p.ZoneID() != current {
			return fmt.Errorf("%w: preset %d is for zone %d, current zone is %d", ErrZoneMismatch, index, p.ZoneID(), current)
		}
	}

	if err := s.deps.Store.Place(ctx, codec.ToGamePreset(p)); err != nil {
		s.writeLog("place", fmt.Sprintf("Failed to place preset %d: %v", index, err), "ERROR")
		return fmt.Errorf("place preset %d: %w", index, err)
	}

	s.writeLog("place", fmt.Sprintf("Placed preset %d %s", index, p), "INFO")
	s.recordPlacement(source, p.ZoneID())
	return nil
}

// PlacePresetByIndex places the library preset at index. With
// requireZoneMatch the preset must belong to the current zone.
func (s *Service) PlacePresetByIndex(ctx context.Context, index int, requireZoneMatch bool) error {
	return s.place(ctx, index, requireZoneMatch, SourceDirect)
}

func (s *Service) indexOfName(name string) (int, error) {
	s.mu.Lock()
	i := s.deps.Library.IndexOfName(name)
	s.mu.Unlock()
	if i < 0 {
		return -1, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	return i, nil
}

func (s *Service) indexOfNameInZone(name string, zone uint16) (int, error) {
	if zone == core.UnknownZone {
		return -1, fmt.Errorf("%w: %q in unknown zone", ErrPresetNotFound, name)
	}
	s.mu.Lock()
	i := s.deps.Library.IndexOfNameInZone(name, zone)
	s.mu.Unlock()
	if i < 0 {
		return -1, fmt.Errorf("%w: %q in zone %d", ErrPresetNotFound, name, zone)
	}
	return i, nil
}

// PlacePresetByName places the first preset whose name matches, ignoring
// case.
func (s *Service) PlacePresetByName(ctx context.Context, name string, requireZoneMatch bool) error {
	return s.placeByName(ctx, name, requireZoneMatch, SourceDirect)
}

func (s *Service) placeByName(ctx context.Context, name string, requireZoneMatch bool, source string) error {
	i, err := s.indexOfName(name)
	if err != nil {
		return err
	}
	return s.place(ctx, i, requireZoneMatch, source)
}

// PlacePresetByNameAndZone places the first preset of zone whose name
// matches. The zone must be the current one.
func (s *Service) PlacePresetByNameAndZone(ctx context.Context, name string, zone uint16) error {
	return s.placeByNameAndZone(ctx, name, zone, SourceDirect)
}

func (s *Service) placeByNameAndZone(ctx context.Context, name string, zone uint16, source string) error {
	i, err := s.indexOfNameInZone(name, zone)
	if err != nil {
		return err
	}
	return s.place(ctx, i, true, source)
}

// PlacePresetByNameAndTerritory resolves territory to its zone and places
// by name in that zone.
func (s *Service) PlacePresetByNameAndTerritory(ctx context.Context, name string, territory uint32) error {
	return s.PlacePresetByNameAndZone(ctx, name, s.deps.Zones.ContentFinderIDFromTerritory(territory))
}

////////////////////////
// IMPORT / EXPORT
////////////////////////

// ImportFromSlot copies a game slot into the library, named
// library.ImportedPresetName, and returns its index.
func (s *Service) ImportFromSlot(ctx context.Context, slot int) (int, error) {
	return s.importSlot(ctx, slot, SourceSlot)
}

// importSlot reads slot and appends it. Text command imports keep the
// default preset name.
func (s *Service) importSlot(ctx context.Context, slot int, source string) (int, error) {
	if err := gamemem.CheckSlot(slot); err != nil {
		return -1, err
	}
	gp, err := s.deps.Store.ReadSlot(ctx, slot)
	if err != nil {
		return -1, fmt.Errorf("read slot %d: %w", slot, err)
	}

	s.mu.Lock()
	var i int
	if source == SourceCommand {
		i = s.deps.Library.Import(codec.Parse(gp))
	} else {
		i = s.deps.Library.ImportGamePreset(gp)
	}
	s.mu.Unlock()

	s.writeLog("ImportFromSlot", fmt.Sprintf("Imported slot %d as preset %d", slot, i), "INFO")
	s.recordImport(source, gp.ContentFinderConditionID)
	s.save()
	return i, nil
}

// ImportText imports an exported preset string and returns its index.
func (s *Service) ImportText(text string) (int, error) {
	s.mu.Lock()
	i, err := s.deps.Library.ImportJSON(text)
	var zone uint16
	if err == nil {
		p, _ := s.deps.Library.Preset(i)
		zone = p.ZoneID()
	}
	s.mu.Unlock()
	if err != nil {
		return -1, err
	}

	s.writeLog("ImportText", fmt.Sprintf("Imported preset %d", i), "INFO")
	s.recordImport(SourceText, zone)
	s.save()
	return i, nil
}

// CaptureCurrentWaymarks saves the waymarks placed in the world as a new
// preset for the current zone.
func (s *Service) CaptureCurrentWaymarks(ctx context.Context, name string) (int, error) {
	ws, err := s.deps.Store.CurrentWaymarks(ctx)
	if err != nil {
		return -1, fmt.Errorf("read current waymarks: %w", err)
	}
	if name == "" {
		name = core.DefaultPresetName
	}

	p := core.NewPreset(name)
	p.SetWaymarks(ws)
	p.SetZoneID(s.CurrentZone())

	s.mu.Lock()
	i := s.deps.Library.Import(p)
	s.mu.Unlock()

	s.recordImport(SourceCapture, p.ZoneID())
	s.save()
	return i, nil
}

// ExportPreset returns the interchange string of the library preset at index.
func (s *Service) ExportPreset(index int, includeTime bool) (string, error) {
	s.mu.Lock()
	p, err := s.deps.Library.Preset(index)
	s.mu.Unlock()
	if err != nil {
		return "", err
	}
	return codec.ExportJSON(p, includeTime)
}

func (s *Service) readSlot(ctx context.Context, slot int) (core.Preset, error) {
	if err := gamemem.CheckSlot(slot); err != nil {
		return core.Preset{}, err
	}
	gp, err := s.deps.Store.ReadSlot(ctx, slot)
	if err != nil {
		return core.Preset{}, fmt.Errorf("read slot %d: %w", slot, err)
	}
	return codec.Parse(gp), nil
}

// ExportSlot returns the interchange string of a game slot.
func (s *Service) ExportSlot(ctx context.Context, slot int, includeTime bool) (string, error) {
	p, err := s.readSlot(ctx, slot)
	if err != nil {
		return "", err
	}
	return codec.ExportJSON(p, includeTime)
}

// ExportToSlot writes the library preset at index into a game slot.
func (s *Service) ExportToSlot(ctx context.Context, index, slot int) error {
	if err := gamemem.CheckSlot(slot); err != nil {
		return err
	}
	s.mu.Lock()
	p, err := s.deps.Library.Preset(index)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.writeSlot(ctx, slot, codec.ToGamePreset(p))
}

// CopySlotToSlot writes the contents of one game slot into another.
func (s *Service) CopySlotToSlot(ctx context.Context, from, to int) error {
	if err := gamemem.CheckSlot(to); err != nil {
		return err
	}
	p, err := s.readSlot(ctx, from)
	if err != nil {
		return err
	}
	return s.writeSlot(ctx, to, codec.ToGamePreset(p))
}

func (s *Service) writeSlot(ctx context.Context, slot int, gp fieldmarker.FieldMarkerPreset) error {
	if err := s.deps.Store.WriteSlot(ctx, slot, gp); err != nil {
		return fmt.Errorf("write slot %d: %w", slot, err)
	}
	return nil
}

// ExportAll returns one interchange string per line for the whole library.
func (s *Service) ExportAll(includeTime bool) (string, error) {
	s.mu.Lock()
	presets := s.deps.Library.Presets()
	s.mu.Unlock()
	return codec.ExportAll(presets, includeTime)
}

// SlotInfo renders the human-readable form of a game slot.
func (s *Service) SlotInfo(ctx context.Context, slot int) (string, error) {
	p, err := s.readSlot(ctx, slot)
	if err != nil {
		return "", err
	}
	return p.DataString(s.ZoneDisplayName(p.ZoneID())), nil
}

// ZoneDisplayName is the zone name shown to the user.
func (s *Service) ZoneDisplayName(zone uint16) string {
	return s.deps.Zones.DisplayName(zone, s.deps.Config.ShowIDNumberNextToZoneNames)
}

////////////////////////
// QUERIES
////////////////////////

// ZoneRef names one zone in search results.
type ZoneRef struct {
	ZoneID uint16 `json:"zoneId"`
	Name   string `json:"name"`
}

// SearchZones lists the known zones whose names or ids contain query,
// ordered by id. An empty query lists every zone.
func (s *Service) SearchZones(query string) []ZoneRef {
	s.mu.Lock()
	ids := s.zoneSearch.Search(query)
	s.mu.Unlock()

	refs := make([]ZoneRef, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		refs = append(refs, ZoneRef{ZoneID: id, Name: s.ZoneDisplayName(id)})
	}
	return refs
}

// PresetsForZone lists the presets of zone in library order. Zone 0 never
// matches.
func (s *Service) PresetsForZone(zone uint16) []PresetRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	refs := []PresetRef{}
	for _, i := range s.deps.Library.IndicesForZone(zone) {
		p, _ := s.deps.Library.Preset(i)
		refs = append(refs, PresetRef{Index: i, Name: p.Name()})
	}
	return refs
}

func (s *Service) PresetsForTerritory(territory uint32) []PresetRef {
	return s.PresetsForZone(s.deps.Zones.ContentFinderIDFromTerritory(territory))
}

func (s *Service) PresetsForCurrentArea() []PresetRef {
	return s.PresetsForTerritory(s.Territory())
}

// Status is a snapshot of the library for the status monitor.
type Status struct {
	Time        time.Time `json:"time"`
	Presets     int       `json:"presets"`
	Zones       int       `json:"zones"`
	CustomOrder int       `json:"customOrder"`
	Territory   uint32    `json:"territory"`
	Zone        uint16    `json:"zone"`
}

func (s *Service) Status() Status {
	territory := s.Territory()
	zone := s.deps.Zones.ContentFinderIDFromTerritory(territory)

	s.mu.Lock()
	defer s.mu.Unlock()
	zones := map[uint16]struct{}{}
	for _, p := range s.deps.Library.Presets() {
		zones[p.ZoneID()] = struct{}{}
	}
	return Status{
		Time:        time.Now().UTC(),
		Presets:     s.deps.Library.Len(),
		Zones:       len(zones),
		CustomOrder: len(s.deps.Library.CustomSortOrder()),
		Territory:   territory,
		Zone:        zone,
	}
}

// ZoneGroup is one zone of the library view.
type ZoneGroup struct {
	ZoneID   uint16      `json:"zoneId"`
	ZoneName string      `json:"zoneName"`
	Presets  []PresetRef `json:"presets"`
}

// SetViewOptions groups the library view by zone using sortType and the
// given direction.
func (s *Service) SetViewOptions(sortType zonesort.SortType, descending bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deps.Config.SortPresetsByZone = true
	s.deps.Config.ZoneSortType = sortType.String()
	s.deps.Config.SortZonesDescending = descending
	s.deps.Library.SetZoneSortDescending(descending)
}

// LibraryView groups the library by zone with the configured sort type and
// direction. With zone grouping turned off everything is one group under
// the unknown zone, in library order.
func (s *Service) LibraryView() []ZoneGroup {
	s.mu.Lock()
	defer s.mu.Unlock()

	lib := s.deps.Library
	if !s.deps.Config.SortPresetsByZone {
		all := ZoneGroup{ZoneID: core.UnknownZone, Presets: []PresetRef{}}
		for i, p := range lib.Presets() {
			all.Presets = append(all.Presets, PresetRef{Index: i, Name: p.Name()})
		}
		return []ZoneGroup{all}
	}

	sortType, err := zonesort.ParseSortType(s.deps.Config.ZoneSortType)
	if err != nil {
		sortType = zonesort.Basic
	}

	var out []ZoneGroup
	for _, g := range lib.SortedIndices(sortType) {
		zg := ZoneGroup{ZoneID: g.ZoneID, ZoneName: s.ZoneDisplayName(g.ZoneID)}
		for _, i := range g.Indices {
			p, _ := lib.Preset(i)
			zg.Presets = append(zg.Presets, PresetRef{Index: i, Name: p.Name()})
		}
		out = append(out, zg)
	}
	return out
}

////////////////////////
// LIBRARY EDITS
////////////////////////

func (s *Service) DeletePreset(index int) error {
	s.mu.Lock()
	err := s.deps.Library.Delete(index)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.save()
	return nil
}

// MovePreset relocates a preset in the flat library list and returns its
// new index.
func (s *Service) MovePreset(index, newPos int, placeAfter bool) (int, error) {
	s.mu.Lock()
	i, err := s.deps.Library.Move(index, newPos, placeAfter)
	s.mu.Unlock()
	if err != nil {
		return -1, err
	}
	s.save()
	return i, nil
}

// MoveZone drags zone in front of placeBefore in the custom zone order.
func (s *Service) MoveZone(zone, placeBefore uint16) {
	s.mu.Lock()
	s.deps.Library.MoveZone(zone, placeBefore, s.deps.Config.SortZonesDescending)
	s.mu.Unlock()
	s.save()
}

// RenamePreset changes the name of the preset at index.
func (s *Service) RenamePreset(index int, name string) error {
	s.mu.Lock()
	err := s.deps.Library.SetPresetName(index, name)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.save()
	return nil
}

////////////////////////
// ZONE CHANGE
////////////////////////

// OnTerritoryChanged runs the zone-change automation. Leaving a known duty
// saves its slot presets that the library does not already hold; entering
// one fills the game slots with that duty's presets and clears the rest.
// Slot failures are logged and returned together without stopping the loop.
func (s *Service) OnTerritoryChanged(ctx context.Context, territory uint32) error {
	prev := s.territory.Swap(territory)

	prevZone := s.deps.Zones.GetByTerritory(prev)
	nextZone := s.deps.Zones.GetByTerritory(territory)

	var errs []error
	if s.deps.Config.AutoSavePresetsOnInstanceLeave && s.deps.Zones.IsKnown(prevZone.ContentFinderConditionID) {
		errs = append(errs, s.autoSave(ctx, prevZone))
	}
	if s.deps.Config.AutoPopulatePresetsOnEnterInstance && s.deps.Zones.IsKnown(nextZone.ContentFinderConditionID) {
		errs = append(errs, s.autoLoad(ctx, nextZone))
	}
	return errors.Join(errs...)
}

func (s *Service) autoSave(ctx context.Context, zone zoneinfo.ZoneInfo) error {
	var errs []error
	imported := 0
	for slot := 1; slot <= gamemem.MaxPresetSlotNum; slot++ {
		p, err := s.readSlot(ctx, slot)
		if err != nil {
			s.writeLog("autoSave", fmt.Sprintf("Error while attempting to auto-import game slot %d: %v", slot, err), "ERROR")
			errs = append(errs, err)
			continue
		}
		if p.ZoneID() != zone.ContentFinderConditionID {
			continue
		}

		s.mu.Lock()
		if s.deps.Library.FindEqual(p) < 0 {
			p.SetName(zone.DutyName + AutoImportedSuffix)
			s.deps.Library.Import(p)
			imported++
		}
		s.mu.Unlock()
	}

	if imported > 0 {
		s.writeLog("autoSave", fmt.Sprintf("Auto-imported %d presets from %s", imported, zone.DutyName), "INFO")
		s.recordImport(SourceAuto, zone.ContentFinderConditionID)
	}
	s.save()
	return errors.Join(errs...)
}

func (s *Service) autoLoad(ctx context.Context, zone zoneinfo.ZoneInfo) error {
	s.mu.Lock()
	indices := s.deps.Library.IndicesForZone(zone.ContentFinderConditionID)
	if len(indices) > gamemem.MaxPresetSlotNum {
		indices = indices[:gamemem.MaxPresetSlotNum]
	}
	games := make([]fieldmarker.FieldMarkerPreset, gamemem.MaxPresetSlotNum)
	for n, i := range indices {
		p, _ := s.deps.Library.Preset(i)
		games[n] = codec.ToGamePreset(p)
	}
	s.mu.Unlock()

	var errs []error
	for n, gp := range games {
		if err := s.writeSlot(ctx, n+1, gp); err != nil {
			s.writeLog("autoLoad", fmt.Sprintf("Error while auto copying preset data to game slot %d: %v", n+1, err), "ERROR")
			errs = append(errs, err)
		}
	}
	s.writeLog("autoLoad", fmt.Sprintf("Loaded %d presets for %s", len(indices), zone.DutyName), "INFO")
	return errors.Join(errs...)
}
