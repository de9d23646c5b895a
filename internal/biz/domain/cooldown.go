package domain

import "time"

// CooldownGate remembers, per sender, the time of their last cooldown-gated
// match. The map is bounded: Sweep drops entries older than maxAge and
// Record evicts the oldest entry once maxEntries is reached.
type CooldownGate struct {
	lastMatch  map[string]time.Time
	maxEntries int
	maxAge     time.Duration
}

// NewCooldownGate creates a cooldown gate. maxEntries <= 0 disables the cap,
// maxAge <= 0 disables age-based sweeping.
func NewCooldownGate(maxEntries int, maxAge time.Duration) *CooldownGate {
	return &CooldownGate{
		lastMatch:  make(map[string]time.Time),
		maxEntries: maxEntries,
		maxAge:     maxAge,
	}
}

// IsBlocked reports whether the rule is suppressed for the sender. Rules
// without a cooldown and senders without a record are never blocked.
func (g *CooldownGate) IsBlocked(sender string, rule *ReplyRule) bool {
	if rule.Cooldown == 0 {
		return false
	}
	last, ok := g.lastMatch[sender]
	if !ok {
		return false
	}
	return time.Since(last) < time.Duration(rule.Cooldown)*time.Second
}

// Record overwrites the sender's last gated match timestamp
func (g *CooldownGate) Record(sender string) {
	if g.maxEntries > 0 && len(g.lastMatch) >= g.maxEntries {
		if _, ok := g.lastMatch[sender]; !ok {
			g.evictOldest()
		}
	}
	g.lastMatch[sender] = time.Now()
}

// ClearAll empties the gate and returns the prior entry count
func (g *CooldownGate) ClearAll() int {
	count := len(g.lastMatch)
	g.lastMatch = make(map[string]time.Time)
	return count
}

// Size returns the number of tracked senders
func (g *CooldownGate) Size() int {
	return len(g.lastMatch)
}

// Sweep removes entries older than the gate's max age and returns how many
// were dropped
func (g *CooldownGate) Sweep() int {
	if g.maxAge <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-g.maxAge)
	removed := 0
	for sender, last := range g.lastMatch {
		if last.Before(cutoff) {
			delete(g.lastMatch, sender)
			removed++
		}
	}
	return removed
}

func (g *CooldownGate) evictOldest() {
	var oldestSender string
	var oldest time.Time
	first := true
	for sender, last := range g.lastMatch {
		if first || last.Before(oldest) {
			oldestSender = sender
			oldest = last
			first = false
		}
	}
	if !first {
		delete(g.lastMatch, oldestSender)
	}
}
