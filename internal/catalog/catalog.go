// Package catalog loads, validates, and mutates the intent catalog: the
// single YAML file declaring every intent an assistant may select and
// act against.
package catalog

import (
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/orchestrated/intentgate/internal/logging"
	"github.com/orchestrated/intentgate/internal/types"
)

var log = logging.Component("catalog")

// cacheTTL is how long a loaded catalog is served from cache before the
// next Load re-reads the file.
const cacheTTL = 5 * time.Second

// catalogFile is the top-level YAML shape. ActiveIntents is the current
// key name; Intents is accepted as a legacy alias.
type catalogFile struct {
	ActiveIntents []yaml.Node `yaml:"active_intents"`
	Intents       []yaml.Node `yaml:"intents"`
}

// Catalog loads and caches the set of valid intents declared in a
// single YAML file, and exposes the mutating lifecycle operations.
type Catalog struct {
	path string

	mu         sync.Mutex
	loadedAt   time.Time
	intents    []types.Intent
	intentByID map[string]types.Intent
}

// New creates a Catalog reading from path. Nothing is loaded until the
// first call to Load.
func New(path string) *Catalog {
	return &Catalog{path: path}
}

// Load returns the cached intent list, re-reading the file if the
// cache has expired. Parse failures, a missing file, or a non-array
// root yield an empty catalog and a logged warning: the catalog fails
// open rather than blocking every tool call on a bad file.
func (c *Catalog) Load() []types.Intent {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.intents != nil && time.Since(c.loadedAt) < cacheTTL {
		return c.intents
	}

	c.intents, c.intentByID = c.loadFromDisk()
	c.loadedAt = time.Now()
	return c.intents
}

// Reload invalidates the cache and immediately re-reads the file.
func (c *Catalog) Reload() []types.Intent {
	c.mu.Lock()
	c.intents = nil
	c.mu.Unlock()
	return c.Load()
}

// Get returns the intent with the given id, loading the catalog first
// if the cache is stale.
func (c *Catalog) Get(id string) (types.Intent, bool) {
	c.Load()

	c.mu.Lock()
	defer c.mu.Unlock()
	intent, ok := c.intentByID[id]
	return intent, ok
}

func (c *Catalog) loadFromDisk() ([]types.Intent, map[string]types.Intent) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", c.path).Msg("failed to read catalog file")
		}
		return []types.Intent{}, map[string]types.Intent{}
	}

	var raw catalogFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		log.Warn().Err(err).Str("path", c.path).Msg("failed to parse catalog file, serving empty catalog")
		return []types.Intent{}, map[string]types.Intent{}
	}

	nodes := raw.ActiveIntents
	if len(nodes) == 0 {
		nodes = raw.Intents
	}

	seen := map[string]bool{}
	intents := make([]types.Intent, 0, len(nodes))
	byID := make(map[string]types.Intent, len(nodes))

	for i, node := range nodes {
		var intent types.Intent
		if err := node.Decode(&intent); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("dropping intent: malformed entry")
			continue
		}

		if intent.Version == 0 {
			intent.Version = 1
		}

		if verrs := Validate(intent, seen); len(verrs) > 0 {
			for _, v := range verrs {
				if v.Severity == SeverityError {
					log.Warn().Str("intent_id", intent.ID).Str("field", v.Field).Msg(v.Message)
				} else {
					log.Info().Str("intent_id", intent.ID).Str("field", v.Field).Msg(v.Message)
				}
			}
			if hasErrorSeverity(verrs) {
				continue
			}
		}

		seen[intent.ID] = true
		intents = append(intents, intent)
		byID[intent.ID] = intent
	}

	return intents, byID
}

func hasErrorSeverity(verrs []ValidationIssue) bool {
	for _, v := range verrs {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Path returns the catalog file path this Catalog was constructed with.
func (c *Catalog) Path() string { return c.path }

// Exists reports whether a catalog file is present at path, for callers
// (e.g. the hook engine's isEnabled check) that need to know without
// paying for a full load.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
