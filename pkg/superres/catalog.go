package superres

import (
	"fmt"

	"github.com/user/upscaler/pkg/ports"
)

// Model is one model file found in a models directory.
type Model struct {
	Algo  Algo
	Scale int
	Path  string
}

// Catalog lists the models present under dir, ordered by algorithm then scale.
func Catalog(fs ports.FileSystem, dir string) ([]Model, error) {
	isDir, err := fs.IsDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrModelsDirNotFound, dir, err)
	}
	if !isDir {
		return nil, fmt.Errorf("%w: %s", ErrModelsDirNotFound, dir)
	}

	var models []Model
	for _, algo := range Algos() {
		for scale := 2; scale <= 8; scale++ {
			if ValidateScale(algo, scale) != nil {
				continue
			}
			path := ModelPath(dir, algo, scale)
			exists, err := fs.Exists(path)
			if err != nil {
				return nil, err
			}
			if exists {
				models = append(models, Model{Algo: algo, Scale: scale, Path: path})
			}
		}
	}
	return models, nil
}
