// Package phonetic transliterates characters to pinyin.
package phonetic

import (
	"strings"
	"sync"

	"github.com/mozillazg/go-pinyin"
)

// Pinyin converts characters to tone-marked pinyin and remembers results.
type Pinyin struct {
	args  pinyin.Args
	mu    sync.Mutex
	cache map[string]string
}

// New returns a transliterator using tone marks.
func New() *Pinyin {
	args := pinyin.NewArgs()
	args.Style = pinyin.Tone
	return &Pinyin{args: args, cache: make(map[string]string)}
}

// Transliterate returns the pinyin for text, or text itself when no reading
// is known.
func (p *Pinyin) Transliterate(text string) string {
	if text == "" {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if out, ok := p.cache[text]; ok {
		return out
	}
	out := p.convert(text)
	p.cache[text] = out
	return out
}

func (p *Pinyin) convert(text string) string {
	readings := pinyin.Pinyin(text, p.args)
	parts := make([]string, 0, len(readings))
	for _, r := range readings {
		if len(r) == 0 || r[0] == "" {
			continue
		}
		parts = append(parts, r[0])
	}
	if len(parts) == 0 {
		return text
	}
	return strings.Join(parts, " ")
}
