package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NahomWondimu/neurobit-simulation/pkg/neurobit"
)

// runConfigFile mirrors neurobit.RunRequest for on-disk run configs.
type runConfigFile struct {
	RunID              string  `json:"run_id" yaml:"run_id"`
	World              string  `json:"world" yaml:"world"`
	Population         int     `json:"population" yaml:"population"`
	Generations        int     `json:"generations" yaml:"generations"`
	TicksPerGeneration int     `json:"ticks_per_generation" yaml:"ticks_per_generation"`
	TTL                int     `json:"ttl" yaml:"ttl"`
	ExplorationRate    float64 `json:"exploration_rate" yaml:"exploration_rate"`
	PatternWidth       uint    `json:"pattern_width" yaml:"pattern_width"`
	MutationRate       float64 `json:"mutation_rate" yaml:"mutation_rate"`
	GoalReward         float64 `json:"goal_reward" yaml:"goal_reward"`
	DeadEndReward      float64 `json:"dead_end_reward" yaml:"dead_end_reward"`
	Selection          string  `json:"selection" yaml:"selection"`
	Workers            int     `json:"workers" yaml:"workers"`
	Seed               int64   `json:"seed" yaml:"seed"`
	TopCount           int     `json:"top_count" yaml:"top_count"`
}

func loadRunRequest(path string) (neurobit.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return neurobit.RunRequest{}, err
	}

	var cfg runConfigFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return neurobit.RunRequest{}, fmt.Errorf("parse yaml config %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return neurobit.RunRequest{}, fmt.Errorf("parse json config %s: %w", path, err)
		}
	default:
		return neurobit.RunRequest{}, fmt.Errorf("unsupported config extension: %s", path)
	}

	return neurobit.RunRequest{
		RunID:              cfg.RunID,
		World:              cfg.World,
		Population:         cfg.Population,
		Generations:        cfg.Generations,
		TicksPerGeneration: cfg.TicksPerGeneration,
		TTL:                cfg.TTL,
		ExplorationRate:    cfg.ExplorationRate,
		PatternWidth:       cfg.PatternWidth,
		MutationRate:       cfg.MutationRate,
		GoalReward:         cfg.GoalReward,
		DeadEndReward:      cfg.DeadEndReward,
		Selection:          cfg.Selection,
		Workers:            cfg.Workers,
		Seed:               cfg.Seed,
		TopCount:           cfg.TopCount,
	}, nil
}
