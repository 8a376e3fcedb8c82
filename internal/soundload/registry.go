package soundload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bareroseaudio/mixer"
)

// LoadDir scans dir for *.wav and *.ogg files and decodes each into a
// mixer.Sound, keyed by its base filename without extension. A file that
// fails to decode is skipped with its error collected rather than
// aborting the whole directory, so one bad asset doesn't take down every
// other sound the mixer would otherwise have loaded.
func LoadDir(dir string) (map[string]*mixer.Sound, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("soundload: read dir %s: %w", dir, err)}
	}

	sounds := make(map[string]*mixer.Sound, len(entries))
	var errs []error

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		key := strings.TrimSuffix(name, filepath.Ext(name))
		path := filepath.Join(dir, name)

		var snd *mixer.Sound
		var loadErr error
		switch ext {
		case ".wav":
			snd, loadErr = LoadWAV(path)
		case ".ogg":
			snd, loadErr = LoadOGG(path)
		default:
			continue
		}

		if loadErr != nil {
			errs = append(errs, fmt.Errorf("soundload: %s: %w", name, loadErr))
			continue
		}
		sounds[key] = snd
	}

	return sounds, errs
}
