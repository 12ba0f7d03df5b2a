package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/ryabkov82/size-tally/internal/sizes"
)

// bucketFile - формат YAML-файла с корзинами:
//
//	buckets:
//	  - label: "34-48"
//	    sizes: [34, 36, 38, 40, 42, 44, 46, 48]
//	  - label: "50-52"
//	    sizes: [50, 52]
type bucketFile struct {
	Buckets sizes.BucketSet `yaml:"buckets"`
}

// LoadBuckets читает и проверяет набор корзин из YAML-файла.
func LoadBuckets(path string) (sizes.BucketSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла корзин: %w", err)
	}

	var bf bucketFile
	if err := yaml.UnmarshalStrict(data, &bf); err != nil {
		return nil, fmt.Errorf("ошибка разбора файла корзин %s: %w", path, err)
	}
	if err := bf.Buckets.Validate(); err != nil {
		return nil, fmt.Errorf("файл корзин %s: %w", path, err)
	}
	return bf.Buckets, nil
}
