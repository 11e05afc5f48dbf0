// Package memory bounds the per-session context window and mediates
// access to cross-session persona profiles.
package memory

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/simforge/wander/pkg/model"
)

// Counter estimates token counts for window budgeting.
type Counter interface {
	Count(text string) int
}

// WordCounter approximates tokens by whitespace-separated words.
type WordCounter struct{}

func (WordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

// TiktokenCounter counts tokens with the cl100k_base encoding,
// falling back to word counting when the encoding cannot load.
type TiktokenCounter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

func NewTiktokenCounter() *TiktokenCounter {
	return &TiktokenCounter{}
}

func (c *TiktokenCounter) Count(text string) int {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			c.enc = enc
		}
	})
	if c.enc == nil {
		return WordCounter{}.Count(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

// Window returns the turns to include in the next model call:
// the seed opening turn is always retained for grounding, the most
// recent turn is always retained, and older turns are dropped oldest
// first once the token budget is exceeded.
func Window(turns []model.Turn, counter Counter, budget int) []model.Turn {
	if len(turns) == 0 {
		return nil
	}
	if budget <= 0 {
		return turns
	}

	seed := turns[0]
	used := counter.Count(seed.Text)

	// walk backwards from the newest turn, keeping what fits
	var kept []model.Turn
	for i := len(turns) - 1; i >= 1; i-- {
		cost := counter.Count(turns[i].Text)
		if len(kept) > 0 && used+cost > budget {
			break
		}
		kept = append(kept, turns[i])
		used += cost
	}

	out := make([]model.Turn, 0, len(kept)+1)
	out = append(out, seed)
	for i := len(kept) - 1; i >= 0; i-- {
		out = append(out, kept[i])
	}
	return out
}
