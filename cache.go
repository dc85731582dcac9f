package indicators

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rulego/indicators/formula"
)

// formulaCache memoises compiled formulas by source text.
// Compiled trees are immutable and schema independent, so a hit is
// indistinguishable from a fresh compile.
type formulaCache struct {
	entries *lru.Cache[string, *formula.Expression]
	metrics *metrics
}

func newFormulaCache(size int, m *metrics) *formulaCache {
	c := &formulaCache{metrics: m}
	if size > 0 {
		// lru.New only fails for non-positive sizes.
		c.entries, _ = lru.New[string, *formula.Expression](size)
	}
	return c
}

func (c *formulaCache) compile(src string) (*formula.Expression, error) {
	if c.entries == nil {
		return formula.Compile(src)
	}
	if e, ok := c.entries.Get(src); ok {
		c.metrics.cacheRequests.WithLabelValues("hit").Inc()
		return e, nil
	}
	c.metrics.cacheRequests.WithLabelValues("miss").Inc()
	e, err := formula.Compile(src)
	if err != nil {
		return nil, err
	}
	c.entries.Add(src, e)
	return e, nil
}

func (c *formulaCache) len() int {
	if c.entries == nil {
		return 0
	}
	return c.entries.Len()
}

func (c *formulaCache) purge() {
	if c.entries != nil {
		c.entries.Purge()
	}
}
