package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"trivia-hub-service/internal/domain"
)

// FileSource reads question files from a directory on disk. Files hold one
// QuestionSet document: {"quiz": {"<difficulty>": [ ... ]}}.
type FileSource struct {
	dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (s *FileSource) LoadQuestions(_ context.Context, file, difficulty string) ([]domain.Question, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, file))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrContentUnavailable, file, err)
	}

	var set domain.QuestionSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrContentUnavailable, file, err)
	}

	qs, ok := set.Difficulties[difficulty]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", domain.ErrDifficultyNotFound, difficulty, file)
	}
	return qs, nil
}

// ListFiles returns the sorted names of the question files in the directory.
func (s *FileSource) ListFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list question files: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}
