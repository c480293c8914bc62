package wing

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/edtools/wingbot/pkg/util"
)

// rulesFile is the on-disk shape of the game-specific team rules:
// spot caps per activity and which platforms can run which game
// version. These are plain data, not code, because the community
// changes them with game patches.
type rulesFile struct {
	DefaultSpots     int                 `yaml:"default_spots"`
	ActivitySpots    map[string]int      `yaml:"activity_spots"`
	VersionPlatforms map[string][]string `yaml:"version_platforms"`
}

type Rules struct {
	file    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	mx               sync.RWMutex
	defaultSpots     int
	activitySpots    map[string]int
	versionPlatforms map[string]util.StringSet
}

func defaultRules() rulesFile {
	return rulesFile{
		DefaultSpots: 3,
		ActivitySpots: map[string]int{
			"AX Conflict Zone": 7,
		},
		VersionPlatforms: map[string][]string{
			"Odyssey":  {"PC"},
			"Horizons": {"PC", "Xbox", "PlayStation"},
			"Legacy":   {"PC", "Xbox", "PlayStation"},
		},
	}
}

// NewRules builds the rule set, overlaying the yaml file when given.
func NewRules(file string) *Rules {
	r := &Rules{
		file:   file,
		logger: slog.Default().With("logger", "wing_rules"),
	}

	r.apply(defaultRules())

	if file != "" {
		if err := r.loadFile(); err != nil {
			r.logger.Error("error loading rules file", slog.Any("error", err))
		}
	}

	return r
}

func (r *Rules) apply(rf rulesFile) {
	r.mx.Lock()
	defer r.mx.Unlock()

	if rf.DefaultSpots > 0 {
		r.defaultSpots = rf.DefaultSpots
	}

	if rf.ActivitySpots != nil {
		r.activitySpots = rf.ActivitySpots
	}

	if rf.VersionPlatforms != nil {
		r.versionPlatforms = make(map[string]util.StringSet, len(rf.VersionPlatforms))

		for v, platforms := range rf.VersionPlatforms {
			r.versionPlatforms[v] = util.NewStringSet(platforms...)
		}
	}
}

func (r *Rules) loadFile() error {
	dat, err := os.ReadFile(r.file)
	if err != nil {
		return err
	}

	rf := rulesFile{}

	if err := yaml.Unmarshal(dat, &rf); err != nil {
		return err
	}

	r.apply(rf)

	return nil
}

// Start watches the rules file and reloads it on change.
func (r *Rules) Start() error {
	if r.file == "" {
		return nil
	}

	var err error
	r.watcher, err = fsnotify.NewWatcher()

	if err != nil {
		return err
	}

	if err := r.watcher.Add(r.file); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case event, ok := <-r.watcher.Events:
				if !ok {
					return
				}

				r.logger.Debug(fmt.Sprintf("event: %v", event))

				if event.Has(fsnotify.Write) && event.Name == r.file {
					r.logger.Info("rules file is modified, reloading")

					if err := r.loadFile(); err != nil {
						r.logger.Error("error", slog.Any("error", err))
					}
				}
			case err, ok := <-r.watcher.Errors:
				if !ok {
					return
				}

				r.logger.Error("error", slog.Any("error", err))
			}
		}
	}()

	return nil
}

func (r *Rules) Stop() {
	if r.watcher != nil {
		_ = r.watcher.Close()
	}
}

// SpotsFor is the open spot cap for an activity.
func (r *Rules) SpotsFor(activity string) int {
	r.mx.RLock()
	defer r.mx.RUnlock()

	if n, ok := r.activitySpots[activity]; ok {
		return n
	}

	return r.defaultSpots
}

// PlatformAllowed tells whether the platform can run the game version.
// Unknown versions or empty values are not restricted.
func (r *Rules) PlatformAllowed(version, platform string) bool {
	if version == "" || platform == "" {
		return true
	}

	r.mx.RLock()
	defer r.mx.RUnlock()

	set, ok := r.versionPlatforms[version]

	if !ok {
		return true
	}

	return set.Has(platform)
}
