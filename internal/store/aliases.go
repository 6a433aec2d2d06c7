package store

import (
	"errors"
	"fmt"
	"os"

	"pepedou/budget-nanny/internal/logging"
	"pepedou/budget-nanny/internal/normalizer"

	"gopkg.in/yaml.v3"
)


// LoadAliases reads an ordered alias table. The file holds either an
// `aliases:` list or a bare list of {kind, match, replacement} entries.
// When path is empty or the file does not exist the default table is returned.
func LoadAliases(path string, logger logging.Logger) ([]normalizer.AliasRule, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if path == "" {
		return normalizer.DefaultAliases(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("Aliases file not found, using built-in aliases",
				logging.F(logging.FieldFile, path))
			return normalizer.DefaultAliases(), nil
		}
		return nil, fmt.Errorf("error reading aliases file: %w", err)
	}

	rules, err := decodeAliases(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing aliases file %s: %w", path, err)
	}
	logger.Debug("Loaded alias rules",
		logging.F(logging.FieldCount, len(rules)),
		logging.F(logging.FieldFile, path))
	return rules, nil
}

// decodeAliases accepts a bare list or a mapping with an `aliases` key.
// An empty document or an empty list is an empty table.
func decodeAliases(data []byte) ([]normalizer.AliasRule, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	rules := []normalizer.AliasRule{}
	if len(doc.Content) == 0 {
		return rules, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
	case yaml.MappingNode:
		var list *yaml.Node
		for i := 0; i+1 < len(root.Content); i += 2 {
			if root.Content[i].Value == "aliases" {
				list = root.Content[i+1]
			}
		}
		if list == nil {
			return nil, errors.New("mapping has no aliases key")
		}
		root = list
	default:
		return nil, fmt.Errorf("line %d: expected a list of alias rules", root.Line)
	}

	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return rules, nil
	}
	if err := root.Decode(&rules); err != nil {
		return nil, err
	}
	return rules, nil
}
