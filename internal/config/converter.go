package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wordsieve/runtime/pkg/sieve"
)

var nonIDChars = regexp.MustCompile(`[^a-z0-9_.-]+`)

// ConvertToPipeline converts parsed configuration data to a Pipeline struct.
// The input data should have been validated against the schema before calling this function.
//
// The configuration is expected to have this structure:
//
//	{
//	  "schemaVersion": "1.0",
//	  "pipeline": {
//	    "name": "...",
//	    "version": "...",
//	    "corpus": {...},
//	    "filters": [...],
//	    "meaning": {...},
//	    "grouping": {...},
//	    "output": {...}
//	  }
//	}
func ConvertToPipeline(data map[string]interface{}) (*sieve.Pipeline, error) {
	if data == nil {
		return nil, fmt.Errorf("configuration data is nil")
	}

	pipelineData, ok := data["pipeline"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'pipeline' section")
	}

	pipeline := &sieve.Pipeline{}

	name, ok := pipelineData["name"].(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("missing required field 'pipeline.name'")
	}
	pipeline.Name = name
	pipeline.ID = deriveID(name)

	if pipeline.Version, ok = pipelineData["version"].(string); !ok {
		return nil, fmt.Errorf("missing required field 'pipeline.version'")
	}
	if id, okID := pipelineData["id"].(string); okID && id != "" {
		pipeline.ID = id
	}
	if description, okDesc := pipelineData["description"].(string); okDesc {
		pipeline.Description = description
	}

	var err error
	if pipeline.Corpus, err = requiredModule(pipelineData, "corpus"); err != nil {
		return nil, err
	}
	if pipeline.Output, err = requiredModule(pipelineData, "output"); err != nil {
		return nil, err
	}

	if filtersData, okFilters := pipelineData["filters"].([]interface{}); okFilters {
		for i, filterData := range filtersData {
			filterMap, isMap := filterData.(map[string]interface{})
			if !isMap {
				return nil, fmt.Errorf("invalid filter at index %d", i)
			}
			filterConfig, convertErr := convertModuleConfig(filterMap)
			if convertErr != nil {
				return nil, fmt.Errorf("invalid filter at index %d: %w", i, convertErr)
			}
			pipeline.Filters = append(pipeline.Filters, *filterConfig)
		}
	}

	if meaningData, okMeaning := pipelineData["meaning"].(map[string]interface{}); okMeaning {
		meaning, convertErr := convertModuleConfig(meaningData)
		if convertErr != nil {
			return nil, fmt.Errorf("invalid meaning config: %w", convertErr)
		}
		pipeline.Meaning = meaning
	}

	if groupingData, okGrouping := pipelineData["grouping"].(map[string]interface{}); okGrouping {
		grouping, convertErr := convertGrouping(groupingData)
		if convertErr != nil {
			return nil, fmt.Errorf("invalid grouping config: %w", convertErr)
		}
		pipeline.Grouping = grouping
	}

	if dryRunData, okDryRun := pipelineData["dryRunOptions"].(map[string]interface{}); okDryRun {
		pipeline.DryRunOptions = &sieve.DryRunOptions{}
		if n, okN := dryRunData["sampleLines"].(float64); okN {
			pipeline.DryRunOptions.SampleLines = int(n)
		}
	}

	return pipeline, nil
}

func requiredModule(data map[string]interface{}, key string) (*sieve.ModuleConfig, error) {
	moduleData, ok := data[key].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'pipeline.%s' section", key)
	}
	module, err := convertModuleConfig(moduleData)
	if err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", key, err)
	}
	return module, nil
}

// convertModuleConfig converts a raw module configuration map to ModuleConfig.
// Every key except "type" becomes module configuration.
func convertModuleConfig(data map[string]interface{}) (*sieve.ModuleConfig, error) {
	moduleType, ok := data["type"].(string)
	if !ok || moduleType == "" {
		return nil, fmt.Errorf("missing required field 'type'")
	}

	moduleConfig := &sieve.ModuleConfig{
		Type:   moduleType,
		Config: make(map[string]interface{}, len(data)-1),
	}
	for key, value := range data {
		if key != "type" {
			moduleConfig.Config[key] = value
		}
	}
	return moduleConfig, nil
}

func convertGrouping(data map[string]interface{}) (*sieve.Grouping, error) {
	key, _ := data["key"].(string)
	switch key {
	case sieve.GroupByFirstLetter, sieve.GroupByLastLetter:
	default:
		return nil, fmt.Errorf("unknown group key %q", key)
	}

	grouping := &sieve.Grouping{Key: key, MinSize: 1}
	if minSize, ok := data["minSize"].(float64); ok {
		if minSize < 1 {
			return nil, fmt.Errorf("minSize must be at least 1, got %v", minSize)
		}
		grouping.MinSize = int(minSize)
	}
	return grouping, nil
}

// deriveID turns a pipeline name into an identifier usable in logs and metric labels.
func deriveID(name string) string {
	id := nonIDChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	id = strings.Trim(id, "-")
	if id == "" {
		return "pipeline"
	}
	return id
}
