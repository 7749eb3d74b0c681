package vocabulary

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Catalog is the on-disk shape of a vocabulary file.
type Catalog struct {
	Words   []WordEntry `yaml:"words" validate:"dive"`
	Lessons []Lesson    `yaml:"lessons" validate:"dive"`
}

var defaultWords = []WordEntry{
	{ID: "1", Character: "人", Pinyin: "rén", Meaning: "人类，人员", Difficulty: 1, Strokes: []string{"丿", "乀"}, ImageURL: "person.jpg"},
	{ID: "2", Character: "大", Pinyin: "dà", Meaning: "大的，巨大", Difficulty: 1, Strokes: []string{"一", "丿", "乀"}, ImageURL: "big.jpg"},
	{ID: "3", Character: "小", Pinyin: "xiǎo", Meaning: "小的，微小", Difficulty: 1, Strokes: []string{"丨", "八", "丶"}, ImageURL: "small.jpg"},
	{ID: "4", Character: "家", Pinyin: "jiā", Meaning: "家庭，家里", Difficulty: 2, Strokes: []string{"宀", "豕"}, ImageURL: "home.jpg"},
	{ID: "5", Character: "水", Pinyin: "shuǐ", Meaning: "水，液体", Difficulty: 2, Strokes: []string{"丨", "乀", "丿", "乀"}, ImageURL: "water.jpg"},
	{ID: "6", Character: "学习", Pinyin: "xué xí", Meaning: "学习，学会", Difficulty: 3, Strokes: []string{}, ImageURL: "study.jpg"},
}

var defaultLessons = []Lesson{
	{ID: "lesson1", Title: "基础汉字", Difficulty: 1, Category: "基础", WordIDs: []string{"1", "2", "3"}},
	{ID: "lesson2", Title: "日常用字", Difficulty: 2, Category: "日常", WordIDs: []string{"4", "5"}},
	{ID: "lesson3", Title: "学习词汇", Difficulty: 3, Category: "学习", WordIDs: []string{"6"}},
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *MemoryStore {
	store, err := NewMemoryStore(defaultWords, defaultLessons)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return store
}

// LoadYAMLCatalog reads and validates a catalog file.
func LoadYAMLCatalog(path string) (*MemoryStore, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(contents, &catalog); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal(%s) > %w", path, err)
	}
	if err := validator.New().Struct(catalog); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}

	store, err := NewMemoryStore(catalog.Words, catalog.Lessons)
	if err != nil {
		return nil, fmt.Errorf("NewMemoryStore(%s) > %w", path, err)
	}
	return store, nil
}

// Open returns the catalog at path, or the built-in catalog when path is empty.
func Open(path string) (*MemoryStore, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	return LoadYAMLCatalog(path)
}
