// Package zoneinfo is the read-only lookup of duties that allow waymark
// presets, keyed by content finder condition id.
package zoneinfo

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// ZoneInfo describes one duty.
type ZoneInfo struct {
	DutyName                 string `yaml:"dutyName"`
	ZoneName                 string `yaml:"zoneName"`
	TerritoryTypeID          uint32 `yaml:"territoryTypeId"`
	MapBaseName              string `yaml:"mapBaseName"`
	ContentFinderConditionID uint16 `yaml:"contentFinderConditionId"`
	ContentLinkID            uint32 `yaml:"contentLinkId"`
}

// Unknown is returned for any id that is not in the index.
var Unknown = ZoneInfo{
	DutyName:    "Unknown Duty",
	ZoneName:    "Unknown Zone",
	MapBaseName: "default",
}

type dataFile struct {
	Zones []ZoneInfo `yaml:"zones"`
}

//go:embed zones.yaml
var defaultData []byte

// Index maps content finder condition ids and territory ids to ZoneInfo.
type Index struct {
	mu          sync.RWMutex
	zones       map[uint16]ZoneInfo
	territories map[uint32]uint16
}

// NewIndex returns an index that only knows the Unknown zone.
func NewIndex() *Index {
	return &Index{
		zones:       map[uint16]ZoneInfo{0: Unknown},
		territories: map[uint32]uint16{0: 0},
	}
}

// Default returns an index loaded from the bundled zone table.
func Default() (*Index, error) {
	idx := NewIndex()
	if err := idx.LoadYAML(bytes.NewReader(defaultData)); err != nil {
		return nil, fmt.Errorf("loading bundled zone data: %w", err)
	}
	return idx, nil
}

// Load returns an index of the zones in the YAML file at path merged with
// the bundled table. Entries from the file win for ids present in both.
func Load(path string) (*Index, error) {
	idx := NewIndex()
	if err := idx.LoadFile(path); err != nil {
		return nil, err
	}
	if err := idx.LoadYAML(bytes.NewReader(defaultData)); err != nil {
		return nil, fmt.Errorf("loading bundled zone data: %w", err)
	}
	return idx, nil
}

// Add registers a zone. The first entry for a content id wins; later
// entries only add their territory mapping. Id 0 is reserved for Unknown.
func (x *Index) Add(z ZoneInfo) {
	if z.ContentFinderConditionID == 0 {
		return
	}
	z.DutyName = capitalize(strings.TrimSpace(z.DutyName))
	if z.MapBaseName == "" {
		z.MapBaseName = Unknown.MapBaseName
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.zones[z.ContentFinderConditionID]; !ok {
		x.zones[z.ContentFinderConditionID] = z
	}
	if _, ok := x.territories[z.TerritoryTypeID]; !ok && z.TerritoryTypeID != 0 {
		x.territories[z.TerritoryTypeID] = z.ContentFinderConditionID
	}
}

// LoadYAML adds every zone listed in a zone data document.
func (x *Index) LoadYAML(r io.Reader) error {
	var doc dataFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return fmt.Errorf("decoding zone data: %w", err)
	}
	for _, z := range doc.Zones {
		x.Add(z)
	}
	return nil
}

// LoadFile adds the zones from a YAML file on disk.
func (x *Index) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening zone data: %w", err)
	}
	defer f.Close()
	return x.LoadYAML(f)
}

// IsKnown reports whether id names a real duty.
func (x *Index) IsKnown(id uint16) bool {
	if id == 0 {
		return false
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.zones[id]
	return ok
}

// Get returns the zone for a content id, or Unknown.
func (x *Index) Get(id uint16) ZoneInfo {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if z, ok := x.zones[id]; ok {
		return z
	}
	return Unknown
}

// ContentFinderIDFromTerritory maps a territory id to its content id, or 0.
func (x *Index) ContentFinderIDFromTerritory(territory uint32) uint16 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.territories[territory]
}

// GetByTerritory returns the zone for a territory id, or Unknown.
func (x *Index) GetByTerritory(territory uint32) ZoneInfo {
	return x.Get(x.ContentFinderIDFromTerritory(territory))
}

// All returns every zone, Unknown included, ordered by content id.
func (x *Index) All() []ZoneInfo {
	x.mu.RLock()
	out := make([]ZoneInfo, 0, len(x.zones))
	for _, z := range x.zones {
		out = append(out, z)
	}
	x.mu.RUnlock()

	slices.SortFunc(out, func(a, b ZoneInfo) int {
		return int(a.ContentFinderConditionID) - int(b.ContentFinderConditionID)
	})
	return out
}

// ZoneName returns the duty name used for alphabetical sorting.
func (x *Index) ZoneName(id uint16) (string, bool) {
	if !x.IsKnown(id) {
		return "", false
	}
	return x.Get(id).DutyName, true
}

// DisplayName is the duty name, optionally followed by the id.
func (x *Index) DisplayName(id uint16, showID bool) string {
	name := x.Get(id).DutyName
	if showID {
		return fmt.Sprintf("%s (%d)", name, id)
	}
	return name
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
