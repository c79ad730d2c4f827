package arena

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"

	"github.com/sergev/wormscript/diag"
	"github.com/sergev/wormscript/program"
)

type cachedScript struct {
	script *program.Script
	diags  diag.List
}

// ScriptCache remembers the compiled form of recently used sources, so
// worms sharing a script only compile it once. It is safe for concurrent
// use.
type ScriptCache struct {
	scripts      *lru.ARCCache
	hits, misses atomic.Int64
}

// NewScriptCache creates a cache holding up to size scripts.
func NewScriptCache(size int) (*ScriptCache, error) {
	scripts, err := lru.NewARC(size)
	if err != nil {
		return nil, err
	}
	return &ScriptCache{scripts: scripts}, nil
}

// Compile returns the compiled script of src together with its diagnostics.
// Failed compilations are cached as well.
func (c *ScriptCache) Compile(src string) (*program.Script, diag.List) {
	if v, ok := c.scripts.Get(src); ok {
		c.hits.Add(1)
		entry := v.(cachedScript)
		return entry.script, entry.diags
	}
	c.misses.Add(1)
	script, diags := program.Compile(src)
	c.scripts.Add(src, cachedScript{script: script, diags: diags})
	return script, diags
}

// Len returns the number of cached scripts.
func (c *ScriptCache) Len() int { return c.scripts.Len() }

// Stats returns the number of cache hits and misses.
func (c *ScriptCache) Stats() (hits, misses int) {
	return int(c.hits.Load()), int(c.misses.Load())
}
