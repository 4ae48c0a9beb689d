// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package slave

import "sync"

// Counter identifies a slave diagnostic counter.
type Counter int

const (
	CntRequest Counter = iota
	CntException
	CntIllegalFunction
	CntCallbackFailed
	CntTruncated

	cntNum = iota
)

var counterNames = [cntNum]string{
	CntRequest:         "requests",
	CntException:       "exceptions",
	CntIllegalFunction: "illegal_function",
	CntCallbackFailed:  "callback_failed",
	CntTruncated:       "truncated",
}

func (c Counter) String() string {
	if c < 0 || int(c) >= cntNum {
		return "unknown"
	}
	return counterNames[c]
}

// Counters holds the diagnostic counters of a slave.
type Counters struct {
	mu sync.Mutex
	ca [cntNum]uint64
}

// Inc increments cnt. Unknown counters are ignored.
func (c *Counters) Inc(cnt Counter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cnt < 0 || int(cnt) >= cntNum {
		return
	}
	c.ca[cnt]++
}

// Get returns the value of cnt.
func (c *Counters) Get(cnt Counter) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cnt < 0 || int(cnt) >= cntNum {
		return 0
	}
	return c.ca[cnt]
}

// Snapshot returns all counters keyed by name.
func (c *Counters) Snapshot() map[string]uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := make(map[string]uint64, cntNum)
	for i, v := range c.ca {
		r[Counter(i).String()] = v
	}
	return r
}

// Reset zeroes every counter.
func (c *Counters) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ca = [cntNum]uint64{}
}
