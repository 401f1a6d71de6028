// Package config reads and writes git configuration through the git
// binary, so every include, conditional section and environment override
// behaves exactly as it does for git itself.
//
// All three scopes are loaded up front, concurrently, and kept in memory;
// lookups after Load never touch the child process again. Writes go
// through `git config` and refresh the written scope.
package config

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/stackedgit/stackgit/pkg/common/err"
	"github.com/stackedgit/stackgit/pkg/common/logger"
	"github.com/stackedgit/stackgit/pkg/gitcmd"
	"golang.org/x/sync/errgroup"
)

// Runner is the slice of gitcmd.Runner the config accessor needs.
type Runner interface {
	OutputLines(ctx context.Context, args []string, opts ...gitcmd.RunOption) ([]string, error)
	Run(ctx context.Context, args []string, opts ...gitcmd.RunOption) error
}

// Config is the merged view over git's configuration scopes. Safe for
// concurrent use after Load.
type Config struct {
	run Runner
	log *slog.Logger

	mu     sync.RWMutex
	loaded map[Scope][]Entry
}

// New creates a Config over the given runner. Nothing is read until Load.
func New(run Runner) *Config {
	return &Config{
		run:    run,
		log:    logger.Component("config"),
		loaded: make(map[Scope][]Entry),
	}
}

// Load reads every scope, concurrently. A scope whose file does not exist
// (or, for the local scope, a runner outside any repository) is simply
// empty; only real failures such as a cancelled context propagate.
func (c *Config) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	results := make([][]Entry, len(scopes))
	for i, scope := range scopes {
		g.Go(func() error {
			entries, loadErr := c.loadScope(gctx, scope)
			if loadErr != nil {
				return loadErr
			}
			results[i] = entries
			return nil
		})
	}
	if waitErr := g.Wait(); waitErr != nil {
		return waitErr
	}

	for i, scope := range scopes {
		c.loaded[scope] = results[i]
	}
	return nil
}

// loadScope lists one scope's entries.
func (c *Config) loadScope(ctx context.Context, scope Scope) ([]Entry, error) {
	records, listErr := c.run.OutputLines(ctx,
		[]string{"config", "--list", "--null", scope.Flag()},
		gitcmd.NullTerminated(), gitcmd.DiscardStderr())
	if listErr != nil {
		// a missing config file is an ordinary condition
		var execErr *gitcmd.ExecError
		if errors.As(listErr, &execErr) {
			c.log.Debug("config scope unavailable", "scope", scope.String())
			return nil, nil
		}
		return nil, err.Wrap(listErr, pkgName, "load")
	}
	return parseRecords(records, scope), nil
}

// parseRecords turns `git config --list --null` records into entries. Each
// record is "key\nvalue"; a bare key is git's valueless shorthand for true.
func parseRecords(records []string, scope Scope) []Entry {
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		if rec == "" {
			continue
		}
		key, value, hasValue := strings.Cut(rec, "\n")
		if !hasValue {
			value = "true"
		}
		entries = append(entries, Entry{Key: key, Value: value, Scope: scope})
	}
	return entries
}

// Get returns the effective entry for key: the highest-precedence scope
// that sets it, and within that scope the last assignment. Nil when no
// scope sets the key.
func (c *Config) Get(key string) *Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, scope := range scopes {
		entries := c.loaded[scope]
		for i := len(entries) - 1; i >= 0; i-- {
			if entries[i].Key == key {
				e := entries[i]
				return &e
			}
		}
	}
	return nil
}

// GetAll returns every value set for key, in the order git reads them:
// system first, local last. Multi-valued keys keep their file order.
func (c *Config) GetAll(key string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var values []string
	for i := len(scopes) - 1; i >= 0; i-- {
		for _, e := range c.loaded[scopes[i]] {
			if e.Key == key {
				values = append(values, e.Value)
			}
		}
	}
	return values
}

// GetString returns the effective value for key, or the empty string.
func (c *Config) GetString(key string) string {
	if e := c.Get(key); e != nil {
		return e.AsString()
	}
	return ""
}

// GetBool returns the effective value for key as a boolean.
func (c *Config) GetBool(key string) (bool, error) {
	e := c.Get(key)
	if e == nil {
		return false, NewNotFoundError(key)
	}
	return e.AsBoolean()
}

// GetInt returns the effective value for key as an integer.
func (c *Config) GetInt(key string) (int, error) {
	e := c.Get(key)
	if e == nil {
		return 0, NewNotFoundError(key)
	}
	return e.AsInt()
}

// GetList returns the effective value for key split into elements, or nil.
func (c *Config) GetList(key string) []string {
	if e := c.Get(key); e != nil {
		return e.AsList()
	}
	return nil
}

// Keys returns every configured key, sorted and deduplicated.
func (c *Config) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{})
	var keys []string
	for _, scope := range scopes {
		for _, e := range c.loaded[scope] {
			if _, ok := seen[e.Key]; ok {
				continue
			}
			seen[e.Key] = struct{}{}
			keys = append(keys, e.Key)
		}
	}
	slices.Sort(keys)
	return keys
}

// Set writes key=value into the given scope and refreshes it.
func (c *Config) Set(ctx context.Context, key, value string, scope Scope) error {
	if !scope.IsValid() {
		return err.New(pkgName, CodeInvalidScope, "set",
			"no such config scope", nil)
	}
	if setErr := c.run.Run(ctx, []string{"config", scope.Flag(), key, value}); setErr != nil {
		return err.Wrap(setErr, pkgName, "set")
	}
	return c.reloadScope(ctx, scope)
}

// Unset removes every value of key from the given scope and refreshes it.
// Unsetting a key that is not set is a no-op.
func (c *Config) Unset(ctx context.Context, key string, scope Scope) error {
	if !scope.IsValid() {
		return err.New(pkgName, CodeInvalidScope, "unset",
			"no such config scope", nil)
	}
	// exit code 5 is git for "nothing to unset"
	unsetErr := c.run.Run(ctx,
		[]string{"config", scope.Flag(), "--unset-all", key},
		gitcmd.AllowExitCodes(5))
	if unsetErr != nil {
		return err.Wrap(unsetErr, pkgName, "unset")
	}
	return c.reloadScope(ctx, scope)
}

// reloadScope refreshes one scope after a write.
func (c *Config) reloadScope(ctx context.Context, scope Scope) error {
	entries, loadErr := c.loadScope(ctx, scope)
	if loadErr != nil {
		return loadErr
	}
	c.mu.Lock()
	c.loaded[scope] = entries
	c.mu.Unlock()
	return nil
}
