// Package catalog holds the ordered per-level character lists.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/verte-zerg/tuihanzi/internal/model"
)

//go:embed data/characters.json
var defaultData []byte

// Catalog is an immutable mapping from level key to characters.
type Catalog struct {
	levels []string
	chars  map[string][]string
}

// New builds a catalog from a level map. Characters are NFC-normalized
// and blank entries are dropped; empty levels are kept.
func New(data map[string][]string) *Catalog {
	c := &Catalog{chars: make(map[string][]string, len(data))}
	for level, list := range data {
		level = strings.TrimSpace(level)
		if level == "" {
			continue
		}
		clean := make([]string, 0, len(list))
		for _, ch := range list {
			ch = norm.NFC.String(strings.TrimSpace(ch))
			if ch == "" {
				continue
			}
			clean = append(clean, ch)
		}
		c.chars[level] = clean
		c.levels = append(c.levels, level)
	}
	sort.Strings(c.levels)
	return c
}

// Parse decodes a JSON object of level -> character list.
func Parse(raw []byte) (*Catalog, error) {
	var data map[string][]string
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return New(data), nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultData)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from a JSON file.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(raw)
}

// Levels returns the sorted level keys.
func (c *Catalog) Levels() []string {
	return append([]string(nil), c.levels...)
}

// Has reports whether level exists.
func (c *Catalog) Has(level string) bool {
	_, ok := c.chars[level]
	return ok
}

// CharactersFor returns the characters of level, possibly empty.
func (c *Catalog) CharactersFor(level string) []string {
	return append([]string(nil), c.chars[level]...)
}

// Len returns the number of characters in level.
func (c *Catalog) Len(level string) int {
	return len(c.chars[level])
}

// Clamp limits index to the valid range of level. An empty level yields 0.
func (c *Catalog) Clamp(level string, index int) int {
	n := len(c.chars[level])
	if n == 0 {
		return 0
	}
	if index < 0 {
		return 0
	}
	if index > n-1 {
		return n - 1
	}
	return index
}

// Navigate moves index by delta within level, clamped. It returns index
// unchanged when the level is empty.
func (c *Catalog) Navigate(level string, index, delta int) int {
	if len(c.chars[level]) == 0 {
		return index
	}
	return c.Clamp(level, index+delta)
}

// Entry returns the character at (level, index) after clamping.
func (c *Catalog) Entry(level string, index int) (model.CharacterEntry, bool) {
	list := c.chars[level]
	if len(list) == 0 {
		return model.CharacterEntry{Level: level}, false
	}
	idx := c.Clamp(level, index)
	return model.CharacterEntry{Character: list[idx], Level: level, Index: idx}, true
}

// NextLevel returns the level delta steps away from level, wrapping around.
func (c *Catalog) NextLevel(level string, delta int) string {
	if len(c.levels) == 0 {
		return level
	}
	pos := sort.SearchStrings(c.levels, level)
	if pos >= len(c.levels) || c.levels[pos] != level {
		return c.levels[0]
	}
	n := len(c.levels)
	return c.levels[((pos+delta)%n+n)%n]
}

var chineseNumerals = []string{"一", "二", "三", "四", "五", "六", "七", "八", "九", "十"}

// LevelLabel renders keys like "grade03" as "小学三年级".
func LevelLabel(level string) string {
	num, err := strconv.Atoi(strings.TrimPrefix(level, "grade"))
	if err != nil || !strings.HasPrefix(level, "grade") {
		return level
	}
	numeral := strconv.Itoa(num)
	if num >= 1 && num <= len(chineseNumerals) {
		numeral = chineseNumerals[num-1]
	}
	return "小学" + numeral + "年级"
}
