// Package errors provides the structured error types shared by the
// dictionary loaders, the configuration layer and the HTTP server.
package errors

import (
	"fmt"
	"strings"
	"sync"
)

// Collector accumulates errors so a loader can report every bad entry of a
// dictionary instead of stopping at the first one.
type Collector struct {
	errors []error
	mutex  sync.RWMutex
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{errors: make([]error, 0)}
}

// Add records err. nil is ignored.
func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = append(c.errors, err)
}

// Err folds the collected errors into one, or returns nil. The folded error
// is recoverable only if every collected error is; otherwise its cause is
// the first unrecoverable one.
func (c *Collector) Err() error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	switch len(c.errors) {
	case 0:
		return nil
	case 1:
		return c.errors[0]
	}
	msgs := make([]string, 0, len(c.errors))
	cause, recoverable := c.errors[0], true
	for _, err := range c.errors {
		msgs = append(msgs, err.Error())
		if recoverable && !IsRecoverable(err) {
			cause, recoverable = err, false
		}
	}
	return &HyphenError{
		Type:        ErrorTypeParse,
		Code:        CodeTexParse,
		Message:     fmt.Sprintf("%d invalid entries: %s", len(c.errors), strings.Join(msgs, "; ")),
		Cause:       cause,
		Recoverable: recoverable,
	}
}
